package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"persona-forge-be/internal/constant"
	"persona-forge-be/internal/dto"
	"persona-forge-be/internal/entity"
	"persona-forge-be/internal/pkg/apperrors"
	"persona-forge-be/internal/pkg/logger"
	"persona-forge-be/internal/repository/specification"
	"persona-forge-be/internal/repository/unitofwork"
	"persona-forge-be/pkg/textsplit"

	"github.com/google/uuid"
)

type IDocumentService interface {
	Create(ctx context.Context, req *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error)
	Show(ctx context.Context, id uuid.UUID) (*dto.DocumentResponse, error)
	List(ctx context.Context, req *dto.ListDocumentsRequest) ([]*dto.DocumentResponse, error)
	// Update supersedes the document's content and queues a wholesale
	// re-chunk; the old chunk set stays queryable until the replacement lands.
	Update(ctx context.Context, req *dto.UpdateDocumentRequest) (*dto.UpdateDocumentResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	logger           logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		logger:           log,
	}
}

func (s *documentService) Create(ctx context.Context, req *dto.CreateDocumentRequest) (*dto.CreateDocumentResponse, error) {
	if !utf8.ValidString(req.Content) {
		return nil, fmt.Errorf("%w: document content is not valid UTF-8", apperrors.ErrEncoding)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	if req.ScopeId != nil {
		scope, err := uow.ScopeRepository().FindOne(ctx, specification.ByID{ID: *req.ScopeId})
		if err != nil {
			return nil, err
		}
		if scope == nil {
			return nil, fmt.Errorf("%w: scope %s", apperrors.ErrNotFound, *req.ScopeId)
		}
	}

	document := entity.Document{
		Id:         uuid.New(),
		ScopeId:    req.ScopeId,
		Type:       req.Type,
		Filename:   req.Filename,
		RawText:    req.Content,
		TokenCount: textsplit.EstimateTokens(req.Content),
		Status:     constant.DocumentStatusPending,
		CreatedAt:  time.Now(),
	}

	if err := uow.DocumentRepository().Create(ctx, &document); err != nil {
		return nil, err
	}

	if err := s.queueProcessing(ctx, document.Id); err != nil {
		return nil, err
	}

	s.logger.Info("DocumentService", "Document stored, processing queued", map[string]interface{}{
		"document_id": document.Id,
		"type":        document.Type,
		"tokens":      document.TokenCount,
	})

	return &dto.CreateDocumentResponse{
		Id:     document.Id,
		Status: document.Status,
	}, nil
}

func (s *documentService) Show(ctx context.Context, id uuid.UUID) (*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, fmt.Errorf("%w: document %s", apperrors.ErrNotFound, id)
	}

	chunkCount, err := uow.ChunkRepository().Count(ctx, specification.ByDocumentID{DocumentID: id})
	if err != nil {
		return nil, err
	}

	return toDocumentResponse(document, chunkCount), nil
}

func (s *documentService) List(ctx context.Context, req *dto.ListDocumentsRequest) ([]*dto.DocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if req.ScopeId != nil {
		specs = append(specs, specification.ByScopeID{ScopeID: *req.ScopeId})
	}
	if req.Type != "" {
		specs = append(specs, specification.ByDocumentType{Type: req.Type})
	}
	if req.Status != "" {
		specs = append(specs, specification.ByStatus{Status: req.Status})
	}

	documents, err := uow.DocumentRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	response := make([]*dto.DocumentResponse, 0, len(documents))
	for _, document := range documents {
		chunkCount, err := uow.ChunkRepository().Count(ctx, specification.ByDocumentID{DocumentID: document.Id})
		if err != nil {
			return nil, err
		}
		response = append(response, toDocumentResponse(document, chunkCount))
	}
	return response, nil
}

func (s *documentService) Update(ctx context.Context, req *dto.UpdateDocumentRequest) (*dto.UpdateDocumentResponse, error) {
	if !utf8.ValidString(req.Content) {
		return nil, fmt.Errorf("%w: document content is not valid UTF-8", apperrors.ErrEncoding)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: req.Id})
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, fmt.Errorf("%w: document %s", apperrors.ErrNotFound, req.Id)
	}

	now := time.Now()
	document.RawText = req.Content
	document.TokenCount = textsplit.EstimateTokens(req.Content)
	document.Status = constant.DocumentStatusPending
	document.FailReason = ""
	if req.Filename != "" {
		document.Filename = req.Filename
	}
	document.UpdatedAt = &now

	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		return nil, err
	}

	if err := s.queueProcessing(ctx, document.Id); err != nil {
		return nil, err
	}

	return &dto.UpdateDocumentResponse{
		Id:     document.Id,
		Status: document.Status,
	}, nil
}

func (s *documentService) Delete(ctx context.Context, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return err
	}
	if document == nil {
		return fmt.Errorf("%w: document %s", apperrors.ErrNotFound, id)
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChunkRepository().DeleteByDocumentId(ctx, id); err != nil {
		return err
	}
	if err := uow.DocumentRepository().Delete(ctx, id); err != nil {
		return err
	}

	return uow.Commit()
}

func (s *documentService) queueProcessing(ctx context.Context, documentId uuid.UUID) error {
	payload := dto.PublishProcessDocumentMessage{DocumentId: documentId}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.publisherService.Publish(ctx, payloadJson)
}

func toDocumentResponse(document *entity.Document, chunkCount int64) *dto.DocumentResponse {
	var failReason string
	if document.Status == constant.DocumentStatusFailed {
		failReason = document.FailReason
	}
	return &dto.DocumentResponse{
		Id:         document.Id,
		ScopeId:    document.ScopeId,
		Filename:   document.Filename,
		Type:       document.Type,
		Status:     document.Status,
		TokenCount: document.TokenCount,
		FailReason: failReason,
		ChunkCount: chunkCount,
		CreatedAt:  document.CreatedAt,
		UpdatedAt:  document.UpdatedAt,
	}
}
