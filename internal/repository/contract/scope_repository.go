package contract

import (
	"context"

	"persona-forge-be/internal/entity"
	"persona-forge-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ScopeRepository interface {
	Create(ctx context.Context, scope *entity.Scope) error
	Update(ctx context.Context, scope *entity.Scope) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Scope, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Scope, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
