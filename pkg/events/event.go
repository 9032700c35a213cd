package events

import "time"

// Event defines the contract for all workflow lifecycle events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "PAIRS_SAVED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the plain implementation used by the services.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// PairsSaved reports a completed bulk save for a wizard session.
func PairsSaved(projectID, taskID string, saved, failed int) BaseEvent {
	now := time.Now()
	return BaseEvent{
		Type: "PAIRS_SAVED",
		Data: map[string]interface{}{
			"project_id":  projectID,
			"task_id":     taskID,
			"saved":       saved,
			"failed":      failed,
			"occurred_at": now,
		},
		OccurredAt: now,
	}
}

// SessionCleared reports that a wizard session was explicitly reset.
func SessionCleared(projectID, taskID string) BaseEvent {
	now := time.Now()
	return BaseEvent{
		Type: "SESSION_CLEARED",
		Data: map[string]interface{}{
			"project_id":  projectID,
			"task_id":     taskID,
			"occurred_at": now,
		},
		OccurredAt: now,
	}
}
