package domain

// Order lifecycle states. Any value different from the previous one counts
// as a transition; terminal states get no special handling here.
const (
	StateScheduled  = "Scheduled"
	StateProcessing = "Processing"
	StateCompleted  = "Completed"
	StateFailed     = "Failed"
)

// DatePattern is the wire format for order/modify dates.
const DatePattern = "2006-01-02 15:04:05"

// Order is the tracked business entity. Dates are kept as formatted
// strings because that is what the REST surface exchanges.
type Order struct {
	ID          string `json:"id,omitempty"`
	Description string `json:"description,omitempty"`
	State       string `json:"state,omitempty"`
	OrderDate   string `json:"orderDate,omitempty"`
	ModifyDate  string `json:"modifyDate,omitempty"`
	Notes       []Note `json:"notes,omitempty"`
}

// Note is an annotation attached to an order, supplied by the external
// OPS module when the order is created.
type Note struct {
	ID     int64  `json:"id,omitempty"`
	Author string `json:"author,omitempty"`
	Date   string `json:"date,omitempty"`
	Text   string `json:"text,omitempty"`
}
