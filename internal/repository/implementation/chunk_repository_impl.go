package implementation

import (
	"context"

	"persona-forge-be/internal/entity"
	"persona-forge-be/internal/mapper"
	"persona-forge-be/internal/model"
	"persona-forge-be/internal/repository/contract"
	"persona-forge-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type ChunkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChunkMapper
}

func NewChunkRepository(db *gorm.DB) contract.ChunkRepository {
	return &ChunkRepositoryImpl{
		db:     db,
		mapper: mapper.NewChunkMapper(),
	}
}

func (r *ChunkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// applyFilter narrows the query to the corpus slice described by the filter.
// Explicit document IDs win over the scope, matching retrieval precedence.
func (r *ChunkRepositoryImpl) applyFilter(db *gorm.DB, filter contract.ChunkFilter) *gorm.DB {
	if len(filter.DocumentIDs) > 0 {
		db = db.Where("document_id IN ?", filter.DocumentIDs)
	} else if filter.ScopeID != nil {
		db = db.Where("scope_id = ?", *filter.ScopeID)
	}
	if filter.DocumentType != "" {
		db = db.Where("document_type = ?", filter.DocumentType)
	}
	return db
}

func (r *ChunkRepositoryImpl) CreateBulk(ctx context.Context, chunks []*entity.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	models := r.mapper.ToModels(chunks)
	if err := r.db.WithContext(ctx).CreateInBatches(models, 100).Error; err != nil {
		return err
	}
	for i, m := range models {
		*chunks[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *ChunkRepositoryImpl) ReplaceForDocument(ctx context.Context, documentId uuid.UUID, chunks []*entity.Chunk) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", documentId).Delete(&model.Chunk{}).Error; err != nil {
			return err
		}
		if len(chunks) == 0 {
			return nil
		}
		models := r.mapper.ToModels(chunks)
		if err := tx.CreateInBatches(models, 100).Error; err != nil {
			return err
		}
		for i, m := range models {
			*chunks[i] = *r.mapper.ToEntity(m)
		}
		return nil
	})
}

func (r *ChunkRepositoryImpl) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("document_id = ?", documentId).Delete(&model.Chunk{}).Error
}

func (r *ChunkRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chunk, error) {
	var models []*model.Chunk
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ChunkRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.Chunk{}).Count(&count).Error
	return count, err
}

func (r *ChunkRepositoryImpl) CountForFilter(ctx context.Context, filter contract.ChunkFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&model.Chunk{}), filter)
	err := query.Count(&count).Error
	return count, err
}

// SearchSimilar ranks chunks by cosine similarity to the query vector.
// Cosine distance in pgvector is 1 - cosine_similarity, so we compute
// 1 - (embedding <=> query_vector) and order on it. chunk_index breaks ties
// so equal-similarity results come back in document order.
func (r *ChunkRepositoryImpl) SearchSimilar(ctx context.Context, embedding []float32, limit int, filter contract.ChunkFilter) ([]*contract.ScoredChunk, error) {
	if limit <= 0 {
		limit = 5
	}

	type result struct {
		model.Chunk
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	query := r.db.WithContext(ctx).
		Table("chunks").
		Select("chunks.*, 1 - (embedding <=> ?) as similarity", queryVector)
	query = r.applyFilter(query, filter)

	err := query.
		Order("similarity DESC, chunk_index ASC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredChunk, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredChunk{
			Chunk:      r.mapper.ToEntity(&res.Chunk),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
