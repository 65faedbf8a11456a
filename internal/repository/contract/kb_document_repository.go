package contract

import (
	"context"

	"citizen-helpdesk-be/internal/entity"
	"citizen-helpdesk-be/internal/repository/specification"

	"github.com/google/uuid"
)

type KbDocumentRepository interface {
	Create(ctx context.Context, document *entity.KbDocument) error
	Update(ctx context.Context, document *entity.KbDocument) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KbDocument, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KbDocument, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
