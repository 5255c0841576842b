package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"persona-forge-be/internal/entity"
	"persona-forge-be/internal/repository/contract"
	"persona-forge-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ChunkIndex is a brute-force in-memory chunk store with cosine similarity
// search. It satisfies contract.ChunkRepository so retrieval and scoring can
// run against it in tests and in environments without Postgres. Vectors are
// not assumed normalized, similarity is full cosine.
type ChunkIndex struct {
	mu     sync.RWMutex
	byDoc  map[uuid.UUID][]entity.Chunk
	docSeq []uuid.UUID // insertion order, keeps iteration deterministic
}

func NewChunkIndex() *ChunkIndex {
	return &ChunkIndex{
		byDoc: make(map[uuid.UUID][]entity.Chunk),
	}
}

func (r *ChunkIndex) CreateBulk(ctx context.Context, chunks []*entity.Chunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range chunks {
		if c.Id == uuid.Nil {
			c.Id = uuid.New()
		}
		if _, ok := r.byDoc[c.DocumentId]; !ok {
			r.docSeq = append(r.docSeq, c.DocumentId)
		}
		r.byDoc[c.DocumentId] = append(r.byDoc[c.DocumentId], *c)
	}
	return nil
}

func (r *ChunkIndex) ReplaceForDocument(ctx context.Context, documentId uuid.UUID, chunks []*entity.Chunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byDoc[documentId]; !ok {
		r.docSeq = append(r.docSeq, documentId)
	}
	fresh := make([]entity.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if c.Id == uuid.Nil {
			c.Id = uuid.New()
		}
		fresh = append(fresh, *c)
	}
	r.byDoc[documentId] = fresh
	return nil
}

func (r *ChunkIndex) DeleteByDocumentId(ctx context.Context, documentId uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byDoc, documentId)
	for i, id := range r.docSeq {
		if id == documentId {
			r.docSeq = append(r.docSeq[:i], r.docSeq[i+1:]...)
			break
		}
	}
	return nil
}

func (r *ChunkIndex) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chunk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.Chunk
	for _, c := range r.all() {
		if r.matchesAll(c, specs) {
			copied := *c
			out = append(out, &copied)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DocumentId != out[j].DocumentId {
			return out[i].DocumentId.String() < out[j].DocumentId.String()
		}
		return out[i].ChunkIndex < out[j].ChunkIndex
	})
	return out, nil
}

func (r *ChunkIndex) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, c := range r.all() {
		if r.matchesAll(c, specs) {
			count++
		}
	}
	return count, nil
}

func (r *ChunkIndex) CountForFilter(ctx context.Context, filter contract.ChunkFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, c := range r.all() {
		if matchesFilter(c, filter) {
			count++
		}
	}
	return count, nil
}

func (r *ChunkIndex) SearchSimilar(ctx context.Context, embedding []float32, limit int, filter contract.ChunkFilter) ([]*contract.ScoredChunk, error) {
	if limit <= 0 {
		limit = 5
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var scored []*contract.ScoredChunk
	for _, c := range r.all() {
		if !matchesFilter(c, filter) {
			continue
		}
		copied := *c
		scored = append(scored, &contract.ScoredChunk{
			Chunk:      &copied,
			Similarity: cosineSimilarity(embedding, c.Embedding),
		})
	}

	// Same ordering contract as the SQL index: similarity descending with
	// chunk_index as tie-break.
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		return scored[i].Chunk.ChunkIndex < scored[j].Chunk.ChunkIndex
	})

	if limit > len(scored) {
		limit = len(scored)
	}
	return scored[:limit], nil
}

func (r *ChunkIndex) all() []*entity.Chunk {
	var out []*entity.Chunk
	for _, docId := range r.docSeq {
		chunks := r.byDoc[docId]
		for i := range chunks {
			out = append(out, &chunks[i])
		}
	}
	return out
}

func (r *ChunkIndex) matchesAll(c *entity.Chunk, specs []specification.Specification) bool {
	for _, spec := range specs {
		if !matchesSpec(c, spec) {
			return false
		}
	}
	return true
}

// matchesSpec interprets the subset of specifications that make sense for
// chunks. Unknown specifications are treated as pass-through.
func matchesSpec(c *entity.Chunk, spec specification.Specification) bool {
	switch s := spec.(type) {
	case specification.ByID:
		return c.Id == s.ID
	case specification.ByDocumentID:
		return c.DocumentId == s.DocumentID
	case specification.ByScopeID:
		return c.ScopeId != nil && *c.ScopeId == s.ScopeID
	case specification.GlobalScope:
		return c.ScopeId == nil
	case specification.ByDocumentType:
		return c.DocumentType == s.Type
	default:
		return true
	}
}

func matchesFilter(c *entity.Chunk, filter contract.ChunkFilter) bool {
	if len(filter.DocumentIDs) > 0 {
		found := false
		for _, id := range filter.DocumentIDs {
			if c.DocumentId == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	} else if filter.ScopeID != nil {
		if c.ScopeId == nil || *c.ScopeId != *filter.ScopeID {
			return false
		}
	}
	if filter.DocumentType != "" && c.DocumentType != filter.DocumentType {
		return false
	}
	return true
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
