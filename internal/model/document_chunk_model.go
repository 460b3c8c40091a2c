package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

// DocumentChunk is one embedded slice of a source document. Collection
// groups chunks into an independently rebuildable index.
type DocumentChunk struct {
	Id         uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Collection string            `gorm:"type:varchar(255);not null;index"`
	Document   string            `gorm:"type:text;not null"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb"`
	Embedding  pgvector.Vector   `gorm:"type:vector(768)"`
	ChunkIndex int               `gorm:"not null"`
	CreatedAt  time.Time
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
