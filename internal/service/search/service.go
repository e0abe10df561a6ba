package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/repository"
)

// DefaultCacheTTL mirrors the original source's CacheTTL.MEDIUM default for
// facet cache entries.
const DefaultCacheTTL = 5 * time.Minute

// defaultAssignmentWindow bounds the assignment search's date range when
// the caller doesn't supply one -- assignments are stored per-block and
// have no unbounded "list all" accessor (unlike person/rotation/absence),
// matching AssignmentRepository.GetByDateRange's contract.
const defaultAssignmentWindow = 365 * 24 * time.Hour

// Service runs faceted search over the five entity types spec.md §4.7
// names, caching full responses and accumulating facet-usage analytics.
// Grounded on original_source/backend/app/search/faceted_search.py's
// FacetedSearchService; the thin-orchestrator-over-pure-functions split used
// by service/compliance and service/contingency doesn't fit here as cleanly
// since facet generation and analytics genuinely need the Service's own
// cache/analytics state, so this package keeps the state on Service itself
// while factoring per-type search (entitysearch.go) and facet math
// (facets.go) into stateless helpers.
type Service struct {
	db    repository.Database
	cache Cache

	mu        sync.RWMutex
	analytics map[string]*FacetAnalytics
}

// NewService wires a faceted search Service against db and cache. Pass
// NewMemoryCache() for tests or single-instance deployments without Redis
// configured.
func NewService(db repository.Database, cache Cache) *Service {
	return &Service{
		db:        db,
		cache:     cache,
		analytics: make(map[string]*FacetAnalytics),
	}
}

// Search executes spec.md §4.7's full pipeline: cache-key → cache lookup →
// per-type search → facet aggregation → pagination → cache store →
// analytics update.
func (s *Service) Search(ctx context.Context, query string, entityTypes []EntityType, selections []FacetSelection, config FacetConfig, page, pageSize int) (*Response, error) {
	start := time.Now()

	if len(entityTypes) == 0 {
		entityTypes = AllEntityTypes
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	// Cached responses hold one page, so the page and page size are part of
	// the key.
	key := fmt.Sprintf("%s:%d:%d", cacheKey(query, entityTypes, selections), page, pageSize)

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, key); ok {
			cached.CacheHit = true
			return cached, nil
		}
	}

	results, err := s.executeSearch(ctx, query, entityTypes, selections)
	if err != nil {
		return nil, err
	}

	facets := s.generateFacets(results, config, selections)

	total := len(results)
	startIdx := (page - 1) * pageSize
	endIdx := startIdx + pageSize
	if startIdx > total {
		startIdx = total
	}
	if endIdx > total {
		endIdx = total
	}
	paged := results[startIdx:endIdx]

	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	resp := &Response{
		Items:         paged,
		Total:         total,
		Page:          page,
		PageSize:      pageSize,
		TotalPages:    totalPages,
		Facets:        facets,
		AppliedFacets: selections,
		Query:         query,
		ExecutionTime: time.Since(start),
	}

	if s.cache != nil {
		s.cache.Set(ctx, key, resp, DefaultCacheTTL)
	}

	s.trackFacetUsage(selections, total, len(paged))

	return resp, nil
}

func (s *Service) executeSearch(ctx context.Context, query string, entityTypes []EntityType, selections []FacetSelection) ([]ResultItem, error) {
	var all []ResultItem

	has := func(t EntityType) bool {
		for _, et := range entityTypes {
			if et == t {
				return true
			}
		}
		return false
	}

	if has(EntityPerson) {
		items, err := s.searchPersons(ctx, query, selections)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	if has(EntityRotation) {
		items, err := s.searchRotations(ctx, query, selections)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	if has(EntityAssignment) {
		now := time.Now()
		items, err := s.searchAssignments(ctx, query, selections, now.Add(-defaultAssignmentWindow), now)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	if has(EntityProcedure) {
		items, err := s.searchProcedures(ctx, query, selections)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}
	if has(EntitySwap) {
		items, err := s.searchSwaps(ctx, query, selections)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
	}

	return all, nil
}
