package memory

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// QueryEmbeddingCache memoizes embeddings of the fixed stage queries so that
// repeated retrieval passes do not re-embed the same strings. Keys combine
// the task type and the query text because the same text embeds differently
// per task type.
type QueryEmbeddingCache struct {
	cache *cache.Cache
}

func NewQueryEmbeddingCache() *QueryEmbeddingCache {
	// Create a cache with a default expiration time of 1 hour, and which
	// purges expired items every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &QueryEmbeddingCache{
		cache: c,
	}
}

func (r *QueryEmbeddingCache) key(taskType, query string) string {
	return taskType + "|" + query
}

func (r *QueryEmbeddingCache) Save(taskType, query string, embedding []float32) {
	r.cache.Set(r.key(taskType, query), embedding, cache.DefaultExpiration)
}

func (r *QueryEmbeddingCache) Get(taskType, query string) ([]float32, bool) {
	if x, found := r.cache.Get(r.key(taskType, query)); found {
		return x.([]float32), true
	}
	return nil, false
}

func (r *QueryEmbeddingCache) Delete(taskType, query string) {
	r.cache.Delete(r.key(taskType, query))
}
