package service

import (
	"context"

	"persona-forge-be/internal/constant"
	"persona-forge-be/internal/dto"
	"persona-forge-be/internal/pkg/logger"
	"persona-forge-be/internal/repository/specification"
	"persona-forge-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IAnalyticsService interface {
	// DiversityTrend returns the diversity score of every persona set in a
	// scope, ordered by generation cycle, for charting drift across reruns.
	DiversityTrend(ctx context.Context, scopeId *uuid.UUID) (*dto.DiversityTrendResponse, error)
	// ScopeReport aggregates corpus and synthesis counters for one scope. A
	// nil scope reports on the unscoped slice of the corpus.
	ScopeReport(ctx context.Context, scopeId *uuid.UUID) (*dto.ScopeReportResponse, error)
}

type analyticsService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewAnalyticsService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IAnalyticsService {
	return &analyticsService{uowFactory: uowFactory, logger: log}
}

func (s *analyticsService) DiversityTrend(ctx context.Context, scopeId *uuid.UUID) (*dto.DiversityTrendResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sets, err := uow.PersonaSetRepository().FindAll(ctx,
		scopeSpec(scopeId),
		specification.OrderBy{Field: "generation_cycle", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	points := make([]dto.DiversityTrendPoint, 0, len(sets))
	for _, set := range sets {
		personaCount, err := uow.PersonaRepository().Count(ctx, specification.ByPersonaSetID{PersonaSetID: set.Id})
		if err != nil {
			return nil, err
		}
		points = append(points, dto.DiversityTrendPoint{
			PersonaSetId:    set.Id,
			GenerationCycle: set.GenerationCycle,
			DiversityScore:  set.DiversityScore,
			PersonaCount:    int(personaCount),
			CreatedAt:       set.CreatedAt,
		})
	}

	return &dto.DiversityTrendResponse{ScopeId: scopeId, Points: points}, nil
}

func (s *analyticsService) ScopeReport(ctx context.Context, scopeId *uuid.UUID) (*dto.ScopeReportResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	scope := scopeSpec(scopeId)

	documentCount, err := uow.DocumentRepository().Count(ctx, scope)
	if err != nil {
		return nil, err
	}
	contextDocuments, err := uow.DocumentRepository().Count(ctx, scope,
		specification.ByDocumentType{Type: constant.DocumentTypeContext})
	if err != nil {
		return nil, err
	}
	interviewDocuments, err := uow.DocumentRepository().Count(ctx, scope,
		specification.ByDocumentType{Type: constant.DocumentTypeInterview})
	if err != nil {
		return nil, err
	}
	readyDocuments, err := uow.DocumentRepository().Count(ctx, scope,
		specification.ByStatus{Status: constant.DocumentStatusReady})
	if err != nil {
		return nil, err
	}
	failedDocuments, err := uow.DocumentRepository().Count(ctx, scope,
		specification.ByStatus{Status: constant.DocumentStatusFailed})
	if err != nil {
		return nil, err
	}
	chunkCount, err := uow.ChunkRepository().Count(ctx, scope)
	if err != nil {
		return nil, err
	}

	sets, err := uow.PersonaSetRepository().FindAll(ctx, scope,
		specification.OrderBy{Field: "generation_cycle", Desc: false})
	if err != nil {
		return nil, err
	}

	report := &dto.ScopeReportResponse{
		ScopeId:            scopeId,
		DocumentCount:      documentCount,
		ContextDocuments:   contextDocuments,
		InterviewDocuments: interviewDocuments,
		ReadyDocuments:     readyDocuments,
		FailedDocuments:    failedDocuments,
		ChunkCount:         chunkCount,
		PersonaSetCount:    int64(len(sets)),
	}

	var diversitySum, validationSum float64
	diversityCount, validationCount := 0, 0
	for _, set := range sets {
		if set.GenerationCycle > report.LatestCycle {
			report.LatestCycle = set.GenerationCycle
		}
		if set.DiversityScore != nil {
			diversitySum += *set.DiversityScore
			diversityCount++
		}
		if set.ValidationSummary != nil {
			validationSum += set.ValidationSummary.OverallAverage
			validationCount++
		}

		personaCount, err := uow.PersonaRepository().Count(ctx, specification.ByPersonaSetID{PersonaSetID: set.Id})
		if err != nil {
			return nil, err
		}
		report.PersonaCount += personaCount

		validated, err := uow.PersonaRepository().Count(ctx,
			specification.ByPersonaSetID{PersonaSetID: set.Id},
			specification.Filter("validation_status", constant.ValidationStatusValidated),
		)
		if err != nil {
			return nil, err
		}
		report.ValidatedPersonas += validated
	}

	if diversityCount > 0 {
		average := diversitySum / float64(diversityCount)
		report.AverageDiversity = &average
	}
	if validationCount > 0 {
		average := validationSum / float64(validationCount)
		report.AverageValidation = &average
	}
	return report, nil
}

func scopeSpec(scopeId *uuid.UUID) specification.Specification {
	if scopeId == nil {
		return specification.GlobalScope{}
	}
	return specification.ByScopeID{ScopeID: *scopeId}
}
