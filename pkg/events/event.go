package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event.
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the common implementation most events embed directly.
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

// Event type codes.
const (
	TypeTurnCompleted   = "conversation.turn.completed"
	TypeIndexRebuilt    = "knowledge.index.rebuilt"
	TypeDocumentsLoaded = "knowledge.documents.loaded"
)

// NewTurnCompleted records one finished conversational exchange.
func NewTurnCompleted(chatID, userID, messageID string) Event {
	return BaseEvent{
		Type: TypeTurnCompleted,
		Data: map[string]interface{}{
			"chat_id":    chatID,
			"user_id":    userID,
			"message_id": messageID,
		},
		OccurredAt: time.Now(),
	}
}

// NewIndexRebuilt records a completed collection rebuild.
func NewIndexRebuilt(collection string, chunks int) Event {
	return BaseEvent{
		Type: TypeIndexRebuilt,
		Data: map[string]interface{}{
			"collection": collection,
			"chunks":     chunks,
		},
		OccurredAt: time.Now(),
	}
}
