package models

import "time"

// Event types.
const (
	EventScan           = "SCAN"
	EventSyncLost       = "SYNC_LOST"
	EventTempOutOfRange = "TEMP_OUT_OF_RANGE"
	EventRelayOn        = "RELAY_ON"
	EventRelayOff       = "RELAY_OFF"
	EventError          = "ERROR"
)

// IsEventType reports whether typ is one of the event types above.
func IsEventType(typ string) bool {
	switch typ {
	case EventScan, EventSyncLost, EventTempOutOfRange, EventRelayOn, EventRelayOff, EventError:
		return true
	}
	return false
}

// Event is a single bench log entry.
type Event struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}
