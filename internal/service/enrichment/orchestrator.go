// Package enrichment walks the configured provider registry to fill in lead
// data, caching provider payloads and recording one history row per pass.
package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/config"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/dto"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/entity"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/provider"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/repository"
)

// providerCacheTTL is how long a successful provider payload is reused.
const providerCacheTTL = 24 * time.Hour

// Cache is the subset of the cache client the orchestrator needs.
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// LeadStore is the subset of the leads repository used during bulk passes.
type LeadStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Lead, error)
}

// HistoryStore records enrichment history rows.
type HistoryStore interface {
	InsertEnrichmentHistory(ctx context.Context, record *entity.EnrichmentHistory) error
}

// Registry is the provider lookup the orchestrator walks.
type Registry interface {
	Get(name string) (provider.Provider, error)
	All() []provider.Provider
}

// Orchestrator coordinates provider calls, caching, and history logging.
type Orchestrator struct {
	registry Registry
	cache    Cache
	leads    LeadStore
	history  HistoryStore
	limiter  *rate.Limiter
}

// NewOrchestrator wires the enrichment orchestrator. The bulk rate limit
// paces sequential lead processing in BulkEnrich.
func NewOrchestrator(registry Registry, cache Cache, leads LeadStore, history HistoryStore, bulkLimit config.RateLimitConfig) *Orchestrator {
	perRequest := time.Second
	burst := 1
	if bulkLimit.Requests > 0 && bulkLimit.Interval > 0 {
		perRequest = bulkLimit.Interval / time.Duration(bulkLimit.Requests)
		burst = bulkLimit.Requests
	}
	return &Orchestrator{
		registry: registry,
		cache:    cache,
		leads:    leads,
		history:  history,
		limiter:  rate.NewLimiter(rate.Every(perRequest), burst),
	}
}

// EnrichLead runs one orchestration pass. The preferred provider is attempted
// first and short-circuits on success; otherwise the remaining providers are
// tried in registry order and the cheapest successful payload wins.
func (o *Orchestrator) EnrichLead(ctx context.Context, lead *entity.Lead, preferred string) (*entity.EnrichmentOutcome, error) {
	start := time.Now()

	var results []entity.EnrichmentResult
	var best *entity.EnrichmentResult

	if preferred != "" {
		if p, err := o.registry.Get(preferred); err == nil {
			result := o.callProvider(ctx, p, lead)
			results = append(results, result)
			if result.Success {
				best = &results[len(results)-1]
			}
		}
	}

	if best == nil {
		for _, p := range o.registry.All() {
			if p.Name() == preferred {
				continue
			}
			result := o.callProvider(ctx, p, lead)
			results = append(results, result)
			if result.Success && (best == nil || result.CreditsUsed < best.CreditsUsed) {
				best = &results[len(results)-1]
			}
		}
	}

	if err := o.logHistory(ctx, lead.ID, results, best, time.Since(start)); err != nil {
		return nil, err
	}

	outcome := &entity.EnrichmentOutcome{Results: results}
	if best != nil {
		outcome.Enriched = true
		outcome.Provider = best.Provider
		outcome.Data = best.Data
	}
	return outcome, nil
}

// callProvider serves the payload from cache when possible; a cache hit
// consumes no credits. Fresh successes are cached for 24 hours.
func (o *Orchestrator) callProvider(ctx context.Context, p provider.Provider, lead *entity.Lead) entity.EnrichmentResult {
	cacheKey := "enrichment:" + p.Name() + ":" + lead.Email

	var cached map[string]any
	if hit, err := o.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return entity.EnrichmentResult{
			Success:     true,
			Provider:    p.Name(),
			Data:        cached,
			CreditsUsed: 0,
		}
	}

	result := p.Enrich(ctx, lead)
	if result.Success {
		// Best effort: a failed cache write must not fail the enrichment.
		_ = o.cache.Set(ctx, cacheKey, result.Data, providerCacheTTL)
	}
	return result
}

// BulkEnrich processes leads sequentially, pacing each iteration through the
// configured limiter. Per-lead failures are reported in place.
func (o *Orchestrator) BulkEnrich(ctx context.Context, leadIDs []string, preferred string) ([]dto.BulkEnrichItem, error) {
	items := make([]dto.BulkEnrichItem, 0, len(leadIDs))

	for _, raw := range leadIDs {
		if err := o.limiter.Wait(ctx); err != nil {
			return items, err
		}

		id, err := uuid.Parse(raw)
		if err != nil {
			items = append(items, dto.BulkEnrichItem{LeadID: raw, Error: "Lead not found"})
			continue
		}

		lead, err := o.leads.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrLeadNotFound) {
				items = append(items, dto.BulkEnrichItem{LeadID: raw, Error: "Lead not found"})
			} else {
				items = append(items, dto.BulkEnrichItem{LeadID: raw, Error: err.Error()})
			}
			continue
		}

		outcome, err := o.EnrichLead(ctx, lead, preferred)
		if err != nil {
			items = append(items, dto.BulkEnrichItem{LeadID: raw, Error: err.Error()})
			continue
		}
		items = append(items, dto.BulkEnrichItem{
			LeadID:   raw,
			Enriched: outcome.Enriched,
			Data:     outcome.Data,
		})
	}

	return items, nil
}

func (o *Orchestrator) logHistory(ctx context.Context, leadID uuid.UUID, results []entity.EnrichmentResult, best *entity.EnrichmentResult, duration time.Duration) error {
	attempts := make([]map[string]any, 0, len(results))
	credits := 0
	var errorMessages []string
	for _, result := range results {
		attempts = append(attempts, map[string]any{"provider": result.Provider, "attempted": true})
		credits += result.CreditsUsed
		if result.Error != "" {
			errorMessages = append(errorMessages, result.Error)
		}
	}

	requestPayload, err := json.Marshal(attempts)
	if err != nil {
		return err
	}

	providerName := "none"
	status := "failed"
	responseData := []byte("null")
	if best != nil {
		providerName = best.Provider
		status = "completed"
		if responseData, err = json.Marshal(best.Data); err != nil {
			return err
		}
	}

	record := &entity.EnrichmentHistory{
		LeadID:         leadID,
		Provider:       providerName,
		EnrichmentType: "person_enrichment",
		RequestPayload: string(requestPayload),
		ResponseData:   string(responseData),
		Status:         status,
		CreditsUsed:    credits,
		DurationMS:     duration.Milliseconds(),
	}
	if len(errorMessages) > 0 {
		joined := strings.Join(errorMessages, "; ")
		record.ErrorMessage = &joined
	}

	return o.history.InsertEnrichmentHistory(ctx, record)
}
