package contract

import (
	"context"

	"persona-forge-be/internal/entity"
	"persona-forge-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	Create(ctx context.Context, document *entity.Document) error
	Update(ctx context.Context, document *entity.Document) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// UpdateStatus moves a document through its ingestion lifecycle. failReason
	// is only persisted for failed documents, pass nil otherwise.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, failReason *string) error
}
