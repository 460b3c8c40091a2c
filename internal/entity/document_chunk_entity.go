package entity

import (
	"time"

	"github.com/google/uuid"
)

type DocumentChunk struct {
	Id         uuid.UUID
	Collection string
	Document   string
	Metadata   map[string]interface{}
	Embedding  []float32
	ChunkIndex int
	CreatedAt  time.Time
}
