package unitofwork

import (
	"context"

	"persona-forge-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ScopeRepository() contract.ScopeRepository
	DocumentRepository() contract.DocumentRepository
	ChunkRepository() contract.ChunkRepository
	PersonaSetRepository() contract.PersonaSetRepository
	PersonaRepository() contract.PersonaRepository
}
