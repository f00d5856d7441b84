package domain

import "time"

// TriggerTypeStateChange tags every audit row written by the dispatcher.
const TriggerTypeStateChange = "StateChangeNotify"

// StateChangeNotify is the audit record of one notification dispatch.
// It is persisted before the callback is issued, so a row proves intent
// to notify, not delivery. Never mutated after creation.
type StateChangeNotify struct {
	TriggerID   string    `json:"triggerId,omitempty"`
	TriggerTime time.Time `json:"triggerTime"`
	TriggerType string    `json:"triggerType,omitempty"`
	TriggerData *Order    `json:"triggerData,omitempty"`
}
