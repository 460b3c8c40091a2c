package mapper

import (
	"healthbridge-be/internal/entity"
	"healthbridge-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type DocumentChunkMapper struct{}

func NewDocumentChunkMapper() *DocumentChunkMapper {
	return &DocumentChunkMapper{}
}

func (m *DocumentChunkMapper) ToEntity(c *model.DocumentChunk) *entity.DocumentChunk {
	if c == nil {
		return nil
	}

	return &entity.DocumentChunk{
		Id:         c.Id,
		Collection: c.Collection,
		Document:   c.Document,
		Metadata:   map[string]interface{}(c.Metadata),
		Embedding:  c.Embedding.Slice(),
		ChunkIndex: c.ChunkIndex,
		CreatedAt:  c.CreatedAt,
	}
}

func (m *DocumentChunkMapper) ToModel(c *entity.DocumentChunk) *model.DocumentChunk {
	if c == nil {
		return nil
	}

	return &model.DocumentChunk{
		Id:         c.Id,
		Collection: c.Collection,
		Document:   c.Document,
		Metadata:   datatypes.JSONMap(c.Metadata),
		Embedding:  pgvector.NewVector(c.Embedding),
		ChunkIndex: c.ChunkIndex,
		CreatedAt:  c.CreatedAt,
	}
}
