package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateChatRequest struct {
	Title    string                 `json:"title" validate:"max=255"`
	UserData map[string]interface{} `json:"user_data"`
}

type ChatResponse struct {
	Id        uuid.UUID              `json:"id"`
	Title     string                 `json:"title"`
	UserData  map[string]interface{} `json:"user_data,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

type MessageResponse struct {
	Id        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	Response  *string   `json:"response"`
	CreatedAt time.Time `json:"created_at"`
}
