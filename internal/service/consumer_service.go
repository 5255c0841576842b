package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"persona-forge-be/internal/config"
	"persona-forge-be/internal/constant"
	"persona-forge-be/internal/dto"
	"persona-forge-be/internal/entity"
	"persona-forge-be/internal/pkg/logger"
	"persona-forge-be/internal/realtime"
	"persona-forge-be/internal/repository/specification"
	"persona-forge-be/internal/repository/unitofwork"
	"persona-forge-be/pkg/embedding"
	"persona-forge-be/pkg/events"
	pktNats "persona-forge-be/pkg/nats"
	"persona-forge-be/pkg/textsplit"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// ProgressSink receives realtime frames while the pipeline works. The
// websocket hub implements it; a nil sink disables the feed.
type ProgressSink interface {
	Publish(scopeKey string, event realtime.PipelineEvent)
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the document processing queue: each message names a
// stored document that needs chunking and embedding before it becomes
// retrievable.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	gateway        *embedding.Gateway
	pipelineCfg    config.PipelineConfig
	eventPublisher *pktNats.Publisher
	progress       ProgressSink
	logger         logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	gateway *embedding.Gateway,
	pipelineCfg config.PipelineConfig,
	eventPublisher *pktNats.Publisher,
	progress ProgressSink,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		uowFactory:     uowFactory,
		gateway:        gateway,
		pipelineCfg:    pipelineCfg,
		eventPublisher: eventPublisher,
		progress:       progress,
		logger:         log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishProcessDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("ConsumerService", "Invalid queue payload", map[string]interface{}{"error": err.Error()})
		msg.Ack() // malformed messages never become valid, drop them
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil {
		cs.logger.Error("ConsumerService", "Failed to load document", map[string]interface{}{
			"document_id": payload.DocumentId, "error": err.Error(),
		})
		msg.Nack()
		return
	}
	if document == nil {
		// Deleted between enqueue and processing.
		msg.Ack()
		return
	}

	if err := uow.DocumentRepository().UpdateStatus(ctx, document.Id, constant.DocumentStatusProcessing, nil); err != nil {
		msg.Nack()
		return
	}
	cs.pushProgress(document, "processing", 0)

	chunks, err := cs.buildChunks(ctx, document)
	if err != nil {
		if errors.Is(err, textsplit.ErrInvalidEncoding) {
			// Deterministic failure: retrying the same bytes cannot succeed.
			cs.markFailed(ctx, uow, document, err)
			msg.Ack()
			return
		}
		cs.logger.Error("ConsumerService", "Embedding failed, message will be redelivered", map[string]interface{}{
			"document_id": document.Id, "error": err.Error(),
		})
		msg.Nack()
		return
	}

	if err := uow.ChunkRepository().ReplaceForDocument(ctx, document.Id, chunks); err != nil {
		cs.logger.Error("ConsumerService", "Chunk replacement failed", map[string]interface{}{
			"document_id": document.Id, "error": err.Error(),
		})
		msg.Nack()
		return
	}

	if err := uow.DocumentRepository().UpdateStatus(ctx, document.Id, constant.DocumentStatusReady, nil); err != nil {
		msg.Nack()
		return
	}

	if cs.eventPublisher != nil {
		evt := events.NewDocumentProcessedEvent(document.Id, len(chunks))
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			cs.logger.Warn("ConsumerService", "Failed to publish processed event", map[string]interface{}{"error": err.Error()})
		}
	}
	cs.pushProgress(document, constant.DocumentStatusReady, len(chunks))

	cs.logger.Info("ConsumerService", "Document processed", map[string]interface{}{
		"document_id": document.Id,
		"chunks":      len(chunks),
	})
	msg.Ack()
}

// buildChunks splits the document and embeds every piece. The gateway embeds
// pieces in parallel but returns vectors in input order, so chunk i always
// carries the embedding of piece i.
func (cs *consumerService) buildChunks(ctx context.Context, document *entity.Document) ([]*entity.Chunk, error) {
	pieces, err := textsplit.Split(document.RawText, cs.pipelineCfg.ChunkMaxTokens, cs.pipelineCfg.ChunkOverlapTokens)
	if err != nil {
		return nil, err
	}
	if len(pieces) == 0 {
		return nil, nil
	}

	texts := make([]string, len(pieces))
	for i, piece := range pieces {
		texts[i] = piece.Text
	}

	vectors, err := cs.gateway.EmbedBatch(ctx, texts, embedding.TaskTypeDocument)
	if err != nil {
		return nil, fmt.Errorf("embedding document %s: %w", document.Id, err)
	}

	now := time.Now()
	chunks := make([]*entity.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = &entity.Chunk{
			Id:           uuid.New(),
			DocumentId:   document.Id,
			ChunkIndex:   piece.Index,
			TokenStart:   piece.TokenStart,
			TokenEnd:     piece.TokenEnd,
			Text:         piece.Text,
			Embedding:    vectors[i],
			DocumentType: document.Type,
			ScopeId:      document.ScopeId,
			CreatedAt:    now,
		}
	}
	return chunks, nil
}

func (cs *consumerService) markFailed(ctx context.Context, uow unitofwork.UnitOfWork, document *entity.Document, cause error) {
	reason := cause.Error()
	if err := uow.DocumentRepository().UpdateStatus(ctx, document.Id, constant.DocumentStatusFailed, &reason); err != nil {
		cs.logger.Error("ConsumerService", "Failed to record failure", map[string]interface{}{
			"document_id": document.Id, "error": err.Error(),
		})
	}
	if cs.eventPublisher != nil {
		evt := events.NewDocumentFailedEvent(document.Id, reason)
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			cs.logger.Warn("ConsumerService", "Failed to publish failed event", map[string]interface{}{"error": err.Error()})
		}
	}
	cs.pushProgress(document, constant.DocumentStatusFailed, 0)
}

func (cs *consumerService) pushProgress(document *entity.Document, status string, chunks int) {
	if cs.progress == nil {
		return
	}
	scopeKey := ""
	if document.ScopeId != nil {
		scopeKey = document.ScopeId.String()
	}
	cs.progress.Publish(scopeKey, realtime.PipelineEvent{
		Type: "document." + status,
		Data: map[string]interface{}{
			"document_id": document.Id.String(),
			"status":      status,
			"chunks":      chunks,
		},
	})
}
