package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Chat is one conversation owned by a user. UserData holds free-form
// personalization fields (state, gender, style) attached at creation.
type Chat struct {
	Id        uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID         `gorm:"type:uuid;not null;index"`
	Title     string            `gorm:"type:varchar(255)"`
	UserData  datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Messages []Message `gorm:"foreignKey:ChatId;constraint:OnDelete:CASCADE"`
}

func (Chat) TableName() string {
	return "chats"
}
