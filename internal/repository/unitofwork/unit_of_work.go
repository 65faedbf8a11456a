package unitofwork

import (
	"context"

	"citizen-helpdesk-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ConversationRepository() contract.ConversationRepository
	ConversationMessageRepository() contract.ConversationMessageRepository
	KbDocumentRepository() contract.KbDocumentRepository
	KbChunkRepository() contract.KbChunkRepository
}
