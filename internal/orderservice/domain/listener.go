package domain

// Listener is a registered webhook subscription: callbacks for UserID are
// invoked when one of that user's orders changes state. Query is a filter
// expression of the form "state=<v1,v2,...>"; empty means every state.
type Listener struct {
	ID       int64  `json:"id,omitempty"`
	UserID   string `json:"userId,omitempty"`
	Callback string `json:"callback,omitempty"`
	Query    string `json:"query"`
}
