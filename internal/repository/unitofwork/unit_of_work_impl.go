package unitofwork

import (
	"context"
	"fmt"

	"persona-forge-be/internal/repository/contract"
	"persona-forge-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB // active transaction, nil when not started
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

// Repository Accessors

func (u *UnitOfWorkImpl) ScopeRepository() contract.ScopeRepository {
	return implementation.NewScopeRepository(u.getDB())
}

func (u *UnitOfWorkImpl) DocumentRepository() contract.DocumentRepository {
	return implementation.NewDocumentRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ChunkRepository() contract.ChunkRepository {
	return implementation.NewChunkRepository(u.getDB())
}

func (u *UnitOfWorkImpl) PersonaSetRepository() contract.PersonaSetRepository {
	return implementation.NewPersonaSetRepository(u.getDB())
}

func (u *UnitOfWorkImpl) PersonaRepository() contract.PersonaRepository {
	return implementation.NewPersonaRepository(u.getDB())
}
