package model

import (
	"time"

	"github.com/google/uuid"
)

// Message is one user turn and, once the agent has answered, its response.
// Response stays NULL while the turn is in flight or has failed.
type Message struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatId    uuid.UUID `gorm:"type:uuid;not null;index"`
	Content   string    `gorm:"type:text;not null"`
	Response  *string   `gorm:"type:text"`
	CreatedAt time.Time
}

func (Message) TableName() string {
	return "messages"
}
