package contract

import (
	"context"

	"persona-forge-be/internal/entity"
	"persona-forge-be/internal/repository/specification"

	"github.com/google/uuid"
)

type PersonaSetRepository interface {
	// Create persists the set together with its nested personas.
	Create(ctx context.Context, set *entity.PersonaSet) error
	Update(ctx context.Context, set *entity.PersonaSet) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PersonaSet, error)
	// FindOneWithPersonas preloads the personas of the set.
	FindOneWithPersonas(ctx context.Context, specs ...specification.Specification) (*entity.PersonaSet, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PersonaSet, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// NextGenerationCycle returns max(generation_cycle)+1 for the scope.
	// Must be called inside the same transaction that creates the set.
	NextGenerationCycle(ctx context.Context, scopeId *uuid.UUID) (int, error)
}
