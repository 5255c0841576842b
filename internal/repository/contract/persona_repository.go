package contract

import (
	"context"

	"persona-forge-be/internal/entity"
	"persona-forge-be/internal/repository/specification"

	"github.com/google/uuid"
)

type PersonaRepository interface {
	CreateBulk(ctx context.Context, personas []*entity.Persona) error
	Update(ctx context.Context, persona *entity.Persona) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByPersonaSetId(ctx context.Context, personaSetId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Persona, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Persona, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
