package entity

import (
	"time"

	"github.com/google/uuid"
)

type Chat struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Title     string
	UserData  map[string]interface{}
	CreatedAt time.Time
	UpdatedAt time.Time
}
