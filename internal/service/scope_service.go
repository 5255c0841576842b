package service

import (
	"context"
	"fmt"
	"time"

	"persona-forge-be/internal/dto"
	"persona-forge-be/internal/entity"
	"persona-forge-be/internal/pkg/apperrors"
	"persona-forge-be/internal/pkg/logger"
	"persona-forge-be/internal/repository/contract"
	"persona-forge-be/internal/repository/specification"
	"persona-forge-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IScopeService interface {
	Create(ctx context.Context, req *dto.CreateScopeRequest) (*dto.CreateScopeResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.ScopeResponse, error)
	List(ctx context.Context) ([]*dto.ScopeResponse, error)
	Update(ctx context.Context, req *dto.UpdateScopeRequest) (*dto.UpdateScopeResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type scopeService struct {
	uowFactory       unitofwork.RepositoryFactory
	retrievalService IRetrievalService
	logger           logger.ILogger
}

func NewScopeService(
	uowFactory unitofwork.RepositoryFactory,
	retrievalService IRetrievalService,
	log logger.ILogger,
) IScopeService {
	return &scopeService{
		uowFactory:       uowFactory,
		retrievalService: retrievalService,
		logger:           log,
	}
}

func (s *scopeService) Create(ctx context.Context, req *dto.CreateScopeRequest) (*dto.CreateScopeResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	scope := entity.Scope{
		Id:            uuid.New(),
		Name:          req.Name,
		FieldOfStudy:  req.FieldOfStudy,
		CoreObjective: req.CoreObjective,
		CreatedAt:     time.Now(),
	}

	if err := uow.ScopeRepository().Create(ctx, &scope); err != nil {
		return nil, err
	}

	s.logger.Info("ScopeService", "Scope created", map[string]interface{}{"scope_id": scope.Id, "name": scope.Name})

	return &dto.CreateScopeResponse{Id: scope.Id}, nil
}

func (s *scopeService) Show(ctx context.Context, id uuid.UUID) (*dto.ScopeResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	scope, err := uow.ScopeRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if scope == nil {
		return nil, fmt.Errorf("%w: scope %s", apperrors.ErrNotFound, id)
	}

	return s.toResponse(ctx, uow, scope)
}

func (s *scopeService) List(ctx context.Context) ([]*dto.ScopeResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	scopes, err := uow.ScopeRepository().FindAll(ctx, specification.OrderBy{Field: "created_at", Desc: true})
	if err != nil {
		return nil, err
	}

	response := make([]*dto.ScopeResponse, 0, len(scopes))
	for _, scope := range scopes {
		res, err := s.toResponse(ctx, uow, scope)
		if err != nil {
			return nil, err
		}
		response = append(response, res)
	}
	return response, nil
}

func (s *scopeService) Update(ctx context.Context, req *dto.UpdateScopeRequest) (*dto.UpdateScopeResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	scope, err := uow.ScopeRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if scope == nil {
		return nil, fmt.Errorf("%w: scope %s", apperrors.ErrNotFound, req.Id)
	}

	now := time.Now()
	scope.Name = req.Name
	scope.FieldOfStudy = req.FieldOfStudy
	scope.CoreObjective = req.CoreObjective
	scope.UpdatedAt = &now

	if err := uow.ScopeRepository().Update(ctx, scope); err != nil {
		return nil, err
	}

	return &dto.UpdateScopeResponse{Id: scope.Id}, nil
}

// Delete removes the scope with everything derived from it: documents with
// their chunks, and persona sets with their personas.
func (s *scopeService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	scope, err := uow.ScopeRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if scope == nil {
		return fmt.Errorf("%w: scope %s", apperrors.ErrNotFound, id)
	}

	documents, err := uow.DocumentRepository().FindAll(ctx, specification.ByScopeID{ScopeID: id})
	if err != nil {
		return err
	}
	sets, err := uow.PersonaSetRepository().FindAll(ctx, specification.ByScopeID{ScopeID: id})
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	for _, doc := range documents {
		if err := uow.ChunkRepository().DeleteByDocumentId(ctx, doc.Id); err != nil {
			return err
		}
		if err := uow.DocumentRepository().Delete(ctx, doc.Id); err != nil {
			return err
		}
	}

	for _, set := range sets {
		if err := uow.PersonaRepository().DeleteByPersonaSetId(ctx, set.Id); err != nil {
			return err
		}
		if err := uow.PersonaSetRepository().Delete(ctx, set.Id); err != nil {
			return err
		}
	}

	if err := uow.ScopeRepository().Delete(ctx, id); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	s.logger.Info("ScopeService", "Scope deleted", map[string]interface{}{
		"scope_id":     id,
		"documents":    len(documents),
		"persona_sets": len(sets),
	})
	return nil
}

func (s *scopeService) toResponse(ctx context.Context, uow unitofwork.UnitOfWork, scope *entity.Scope) (*dto.ScopeResponse, error) {
	availability, err := s.retrievalService.Availability(ctx, contract.ChunkFilter{ScopeID: &scope.Id})
	if err != nil {
		return nil, err
	}

	documentCount, err := uow.DocumentRepository().Count(ctx, specification.ByScopeID{ScopeID: scope.Id})
	if err != nil {
		return nil, err
	}
	setCount, err := uow.PersonaSetRepository().Count(ctx, specification.ByScopeID{ScopeID: scope.Id})
	if err != nil {
		return nil, err
	}

	return &dto.ScopeResponse{
		Id:                 scope.Id,
		Name:               scope.Name,
		FieldOfStudy:       scope.FieldOfStudy,
		CoreObjective:      scope.CoreObjective,
		IncludesContext:    availability.IncludesContext,
		IncludesInterviews: availability.IncludesInterviews,
		DocumentCount:      documentCount,
		PersonaSetCount:    setCount,
		CreatedAt:          scope.CreatedAt,
		UpdatedAt:          scope.UpdatedAt,
	}, nil
}
