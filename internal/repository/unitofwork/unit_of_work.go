package unitofwork

import (
	"context"

	"healthbridge-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ChatRepository() contract.ChatRepository
	MessageRepository() contract.MessageRepository
	DocumentChunkRepository() contract.DocumentChunkRepository
}
