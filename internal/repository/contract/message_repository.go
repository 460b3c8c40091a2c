package contract

import (
	"context"

	"healthbridge-be/internal/entity"
	"healthbridge-be/internal/repository/specification"

	"github.com/google/uuid"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	// AttachResponse sets the response column of an existing message.
	AttachResponse(ctx context.Context, id uuid.UUID, response string) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Message, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
