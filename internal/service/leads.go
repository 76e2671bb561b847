package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/dto"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/entity"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/repository"
)

const (
	leadCacheTTL  = 5 * time.Minute
	listCacheTTL  = time.Minute
	statsCacheTTL = time.Minute

	statsCacheKey    = "leads:stats:overview"
	listCachePattern = "leads:list:*"
)

// Cache is the subset of the cache client the leads service needs.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	DeletePattern(ctx context.Context, pattern string) error
}

// Scorer recalculates lead scores and reads snapshot history.
type Scorer interface {
	CalculateAndSaveScore(ctx context.Context, leadID uuid.UUID) (*entity.ScoreSnapshot, error)
	BulkRescore(ctx context.Context, leadIDs []string) []dto.BulkRescoreItem
	History(ctx context.Context, leadID uuid.UUID, limit int) ([]entity.ScoreSnapshot, error)
	ScoreCategory(score float64) string
}

// Enricher runs enrichment orchestration passes.
type Enricher interface {
	EnrichLead(ctx context.Context, lead *entity.Lead, preferred string) (*entity.EnrichmentOutcome, error)
	BulkEnrich(ctx context.Context, leadIDs []string, preferred string) ([]dto.BulkEnrichItem, error)
}

// ListResult pairs a page of catalogue rows with the total row count.
type ListResult struct {
	Items []repository.LeadListItem `json:"items"`
	Total int                       `json:"total"`
}

// EnrichResult reports one enrichment pass plus the snapshot recalculated
// from the freshly enriched profile.
type EnrichResult struct {
	Outcome  *entity.EnrichmentOutcome `json:"outcome"`
	Snapshot *entity.ScoreSnapshot     `json:"snapshot,omitempty"`
}

// LeadsService fronts the lead catalogue: validation, persistence, caching,
// scoring, and enrichment fan-out.
type LeadsService struct {
	leads     repository.LeadsRepository
	validator *LeadValidator
	scorer    Scorer
	enricher  Enricher
	cache     Cache
}

// NewLeadsService wires the lead catalogue service.
func NewLeadsService(leads repository.LeadsRepository, validator *LeadValidator, scorer Scorer, enricher Enricher, cache Cache) *LeadsService {
	return &LeadsService{
		leads:     leads,
		validator: validator,
		scorer:    scorer,
		enricher:  enricher,
		cache:     cache,
	}
}

// Create validates the payload, inserts the lead, and computes its initial
// score snapshot.
func (s *LeadsService) Create(ctx context.Context, req dto.CreateLeadRequest) (*entity.Lead, error) {
	lead, err := s.validator.ValidateCreate(ctx, req)
	if err != nil {
		return nil, err
	}

	created, err := s.leads.Create(ctx, lead)
	if err != nil {
		return nil, err
	}

	if _, err := s.scorer.CalculateAndSaveScore(ctx, created.ID); err != nil {
		return nil, fmt.Errorf("score new lead: %w", err)
	}

	s.invalidateLists(ctx)
	return created, nil
}

// Get serves the lead from cache when fresh, falling back to the store.
func (s *LeadsService) Get(ctx context.Context, id uuid.UUID) (*entity.Lead, error) {
	cacheKey := leadCacheKey(id)

	var cached entity.Lead
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	lead, err := s.leads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, cacheKey, lead, leadCacheTTL); err != nil {
		log.Printf("cache lead %s: %v", id, err)
	}
	return lead, nil
}

// List returns a catalogue page, served from cache when an identical filter
// was requested within the last minute.
func (s *LeadsService) List(ctx context.Context, filter dto.LeadListFilter) (*ListResult, error) {
	cacheKey := listCacheKey(filter)

	var cached ListResult
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	items, total, err := s.leads.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := &ListResult{Items: items, Total: total}
	if err := s.cache.Set(ctx, cacheKey, result, listCacheTTL); err != nil {
		log.Printf("cache lead list: %v", err)
	}
	return result, nil
}

// Update patches the lead and drops its cache entries.
func (s *LeadsService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateLeadRequest) (*entity.Lead, error) {
	if err := s.validator.ValidateUpdate(&req); err != nil {
		return nil, err
	}

	updated, err := s.leads.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}

	s.invalidateLead(ctx, id)
	return updated, nil
}

// Delete soft-deletes the lead and drops its cache entries.
func (s *LeadsService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.leads.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidateLead(ctx, id)
	return nil
}

// Enrich runs one orchestration pass for the lead and, when new data arrived,
// recalculates its score so the snapshot reflects the enriched profile.
func (s *LeadsService) Enrich(ctx context.Context, id uuid.UUID, preferred string) (*EnrichResult, error) {
	lead, err := s.leads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	outcome, err := s.enricher.EnrichLead(ctx, lead, preferred)
	if err != nil {
		return nil, err
	}

	result := &EnrichResult{Outcome: outcome}
	if outcome.Enriched {
		snapshot, err := s.scorer.CalculateAndSaveScore(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("rescore enriched lead: %w", err)
		}
		result.Snapshot = snapshot
	}

	s.invalidateLead(ctx, id)
	return result, nil
}

// BulkEnrich enriches a batch of leads and drops list caches afterwards.
func (s *LeadsService) BulkEnrich(ctx context.Context, leadIDs []string, preferred string) ([]dto.BulkEnrichItem, error) {
	items, err := s.enricher.BulkEnrich(ctx, leadIDs, preferred)
	if err != nil {
		return nil, err
	}
	s.invalidateLists(ctx)
	return items, nil
}

// BulkRescore recalculates a batch of leads and drops list caches afterwards.
func (s *LeadsService) BulkRescore(ctx context.Context, leadIDs []string) []dto.BulkRescoreItem {
	results := s.scorer.BulkRescore(ctx, leadIDs)
	s.invalidateLists(ctx)
	return results
}

// ScoreHistory returns the lead's snapshot history, newest first.
func (s *LeadsService) ScoreHistory(ctx context.Context, id uuid.UUID, limit int) ([]entity.ScoreSnapshot, error) {
	if _, err := s.leads.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.scorer.History(ctx, id, limit)
}

// ScoreCategory buckets a total score using the configured thresholds.
func (s *LeadsService) ScoreCategory(score float64) string {
	return s.scorer.ScoreCategory(score)
}

// Stats aggregates dashboard counters, cached for one minute.
func (s *LeadsService) Stats(ctx context.Context) (*entity.LeadStats, error) {
	var cached entity.LeadStats
	if hit, err := s.cache.Get(ctx, statsCacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	stats, err := s.leads.Stats(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, statsCacheKey, stats, statsCacheTTL); err != nil {
		log.Printf("cache lead stats: %v", err)
	}
	return stats, nil
}

func (s *LeadsService) invalidateLead(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Delete(ctx, leadCacheKey(id)); err != nil {
		log.Printf("invalidate lead %s: %v", id, err)
	}
	s.invalidateLists(ctx)
}

func (s *LeadsService) invalidateLists(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, listCachePattern); err != nil {
		log.Printf("invalidate lead lists: %v", err)
	}
	if err := s.cache.Delete(ctx, statsCacheKey); err != nil {
		log.Printf("invalidate lead stats: %v", err)
	}
}

func leadCacheKey(id uuid.UUID) string {
	return "lead:" + id.String()
}

func listCacheKey(filter dto.LeadListFilter) string {
	return fmt.Sprintf("leads:list:%s:%s:%s:%s:%s:%s:%s:%d:%d",
		filter.Status, filter.Source, floatKey(filter.MinScore), floatKey(filter.MaxScore),
		filter.Search, filter.SortBy, filter.SortOrder, filter.Page, filter.PerPage)
}

func floatKey(value *float64) string {
	if value == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *value)
}
