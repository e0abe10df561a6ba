package search

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores already-computed faceted search responses, keyed by
// cacheKey (spec.md §4.7's "Cache lookup; hit short-circuits" step).
type Cache interface {
	Get(ctx context.Context, key string) (*Response, bool)
	Set(ctx context.Context, key string, resp *Response, ttl time.Duration)
}

// RedisCache is the production Cache, grounded on the teacher's own
// go-redis dependency (already required for the task scheduler's
// distributed lock, per SPEC_FULL.md's DOMAIN STACK) rather than a second,
// unrelated caching library.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*Response, bool) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var resp cachedResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, false
	}
	out := resp.toResponse()
	return &out, true
}

func (c *RedisCache) Set(ctx context.Context, key string, resp *Response, ttl time.Duration) {
	payload, err := json.Marshal(newCachedResponse(resp))
	if err != nil {
		return
	}
	c.client.Set(ctx, key, payload, ttl)
}

// MemoryCache is an in-process Cache for tests and single-instance
// deployments without Redis configured.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryCacheEntry
}

type memoryCacheEntry struct {
	resp      Response
	expiresAt time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]memoryCacheEntry)}
}

func (c *MemoryCache) Get(_ context.Context, key string) (*Response, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	resp := entry.resp
	return &resp, true
}

func (c *MemoryCache) Set(_ context.Context, key string, resp *Response, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryCacheEntry{resp: *resp, expiresAt: time.Now().Add(ttl)}
}

// cachedResponse is Response's JSON-safe shadow: time.Duration doesn't
// round-trip through encoding/json in a portable way, so ExecutionTime is
// carried as nanoseconds.
type cachedResponse struct {
	Items             []ResultItem
	Total             int
	Page              int
	PageSize          int
	TotalPages        int
	Facets            []Facet
	AppliedFacets     []FacetSelection
	Query             string
	ExecutionTimeNanos int64
}

func newCachedResponse(r *Response) cachedResponse {
	return cachedResponse{
		Items:              r.Items,
		Total:              r.Total,
		Page:               r.Page,
		PageSize:           r.PageSize,
		TotalPages:         r.TotalPages,
		Facets:             r.Facets,
		AppliedFacets:      r.AppliedFacets,
		Query:              r.Query,
		ExecutionTimeNanos: int64(r.ExecutionTime),
	}
}

func (c cachedResponse) toResponse() Response {
	return Response{
		Items:         c.Items,
		Total:         c.Total,
		Page:          c.Page,
		PageSize:      c.PageSize,
		TotalPages:    c.TotalPages,
		Facets:        c.Facets,
		AppliedFacets: c.AppliedFacets,
		Query:         c.Query,
		ExecutionTime: time.Duration(c.ExecutionTimeNanos),
		CacheHit:      true,
	}
}
