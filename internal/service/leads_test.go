package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/dto"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/entity"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/repository"
)

type fakeLeadsRepo struct {
	leads      map[uuid.UUID]*entity.Lead
	getCalls   int
	listCalls  int
	statsCalls int
}

func newFakeLeadsRepo() *fakeLeadsRepo {
	return &fakeLeadsRepo{leads: map[uuid.UUID]*entity.Lead{}}
}

func (f *fakeLeadsRepo) Create(ctx context.Context, lead *entity.Lead) (*entity.Lead, error) {
	stored := *lead
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.leads[stored.ID] = &stored
	return &stored, nil
}

func (f *fakeLeadsRepo) CreateIfAbsent(ctx context.Context, lead *entity.Lead) (*entity.Lead, bool, error) {
	created, err := f.Create(ctx, lead)
	return created, true, err
}

func (f *fakeLeadsRepo) UpsertByEmail(ctx context.Context, lead *entity.Lead) (*entity.Lead, error) {
	return f.Create(ctx, lead)
}

func (f *fakeLeadsRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Lead, error) {
	f.getCalls++
	lead, ok := f.leads[id]
	if !ok {
		return nil, repository.ErrLeadNotFound
	}
	return lead, nil
}

func (f *fakeLeadsRepo) GetProfile(ctx context.Context, id uuid.UUID) (*entity.LeadProfile, error) {
	lead, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &entity.LeadProfile{Lead: *lead}, nil
}

func (f *fakeLeadsRepo) List(ctx context.Context, filter dto.LeadListFilter) ([]repository.LeadListItem, int, error) {
	f.listCalls++
	items := make([]repository.LeadListItem, 0, len(f.leads))
	for _, lead := range f.leads {
		items = append(items, repository.LeadListItem{Lead: *lead})
	}
	return items, len(items), nil
}

func (f *fakeLeadsRepo) Update(ctx context.Context, id uuid.UUID, req dto.UpdateLeadRequest) (*entity.Lead, error) {
	lead, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != nil {
		lead.Status = *req.Status
	}
	return lead, nil
}

func (f *fakeLeadsRepo) MergeMetadata(ctx context.Context, id uuid.UUID, metadata map[string]any) (*entity.Lead, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeLeadsRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.leads[id]; !ok {
		return repository.ErrLeadNotFound
	}
	delete(f.leads, id)
	return nil
}

func (f *fakeLeadsRepo) Stats(ctx context.Context) (*entity.LeadStats, error) {
	f.statsCalls++
	return &entity.LeadStats{TotalLeads: len(f.leads)}, nil
}

type fakeScorer struct {
	calls   int
	history []entity.ScoreSnapshot
}

func (f *fakeScorer) CalculateAndSaveScore(ctx context.Context, leadID uuid.UUID) (*entity.ScoreSnapshot, error) {
	f.calls++
	snapshot := entity.ScoreSnapshot{ID: uuid.New(), LeadID: leadID, TotalScore: 72.5, CalculatedAt: time.Now()}
	f.history = append(f.history, snapshot)
	return &snapshot, nil
}

func (f *fakeScorer) BulkRescore(ctx context.Context, leadIDs []string) []dto.BulkRescoreItem {
	items := make([]dto.BulkRescoreItem, 0, len(leadIDs))
	for _, id := range leadIDs {
		items = append(items, dto.BulkRescoreItem{LeadID: id, Score: 72.5, Success: true})
	}
	return items
}

func (f *fakeScorer) History(ctx context.Context, leadID uuid.UUID, limit int) ([]entity.ScoreSnapshot, error) {
	return f.history, nil
}

func (f *fakeScorer) ScoreCategory(score float64) string {
	if score >= 80 {
		return "hot"
	}
	if score >= 50 {
		return "warm"
	}
	return "cold"
}

type fakeEnricher struct {
	outcome *entity.EnrichmentOutcome
	calls   int
}

func (f *fakeEnricher) EnrichLead(ctx context.Context, lead *entity.Lead, preferred string) (*entity.EnrichmentOutcome, error) {
	f.calls++
	return f.outcome, nil
}

func (f *fakeEnricher) BulkEnrich(ctx context.Context, leadIDs []string, preferred string) ([]dto.BulkEnrichItem, error) {
	items := make([]dto.BulkEnrichItem, 0, len(leadIDs))
	for _, id := range leadIDs {
		items = append(items, dto.BulkEnrichItem{LeadID: id, Enriched: true})
	}
	return items, nil
}

type serviceCache struct {
	values map[string][]byte
}

func newServiceCache() *serviceCache {
	return &serviceCache{values: map[string][]byte{}}
}

func (c *serviceCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	raw, ok := c.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *serviceCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = raw
	return nil
}

func (c *serviceCache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(c.values, key)
	}
	return nil
}

func (c *serviceCache) DeletePattern(ctx context.Context, pattern string) error {
	// Good enough for the keys used here: "<prefix>*".
	prefix := pattern[:len(pattern)-1]
	for key := range c.values {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.values, key)
		}
	}
	return nil
}

func newTestLeadsService() (*LeadsService, *fakeLeadsRepo, *fakeScorer, *fakeEnricher, *serviceCache) {
	repo := newFakeLeadsRepo()
	scorer := &fakeScorer{}
	enricher := &fakeEnricher{outcome: &entity.EnrichmentOutcome{Enriched: true, Provider: "clearbit"}}
	cache := newServiceCache()
	svc := NewLeadsService(repo, NewLeadValidator("US"), scorer, enricher, cache)
	return svc, repo, scorer, enricher, cache
}

func TestLeadsServiceCreateScoresNewLead(t *testing.T) {
	svc, repo, scorer, _, _ := newTestLeadsService()

	lead, err := svc.Create(context.Background(), dto.CreateLeadRequest{Email: "jane@acme.io", Source: "website"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lead.ID == uuid.Nil {
		t.Fatalf("expected persisted lead, got %+v", lead)
	}
	if scorer.calls != 1 {
		t.Fatalf("expected initial score calculated, got %d calls", scorer.calls)
	}
	if _, ok := repo.leads[lead.ID]; !ok {
		t.Fatalf("lead missing from store")
	}
}

func TestLeadsServiceGetUsesCache(t *testing.T) {
	svc, repo, _, _, _ := newTestLeadsService()

	lead, err := svc.Create(context.Background(), dto.CreateLeadRequest{Email: "jane@acme.io", Source: "website"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Get(context.Background(), lead.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	callsAfterFirst := repo.getCalls
	if _, err := svc.Get(context.Background(), lead.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.getCalls != callsAfterFirst {
		t.Fatalf("second read must come from cache: %d calls", repo.getCalls)
	}
}

func TestLeadsServiceUpdateInvalidatesCache(t *testing.T) {
	svc, _, _, _, cache := newTestLeadsService()

	lead, err := svc.Create(context.Background(), dto.CreateLeadRequest{Email: "jane@acme.io", Source: "website"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Get(context.Background(), lead.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := cache.values[leadCacheKey(lead.ID)]; !ok {
		t.Fatalf("expected lead cached after read")
	}

	status := "qualified"
	if _, err := svc.Update(context.Background(), lead.ID, dto.UpdateLeadRequest{Status: &status}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := cache.values[leadCacheKey(lead.ID)]; ok {
		t.Fatalf("expected lead cache dropped after update")
	}
}

func TestLeadsServiceUpdateRejectsBadSource(t *testing.T) {
	svc, repo, _, _, _ := newTestLeadsService()

	lead, err := svc.Create(context.Background(), dto.CreateLeadRequest{Email: "jane@acme.io", Source: "website"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := "smoke-signal"
	callsBefore := repo.getCalls
	if _, err := svc.Update(context.Background(), lead.ID, dto.UpdateLeadRequest{Source: &bad}); err == nil {
		t.Fatalf("expected validation error")
	}
	if repo.getCalls != callsBefore {
		t.Fatalf("validation failure must not touch the store")
	}
}

func TestLeadsServiceEnrichRescores(t *testing.T) {
	svc, _, scorer, enricher, _ := newTestLeadsService()

	lead, err := svc.Create(context.Background(), dto.CreateLeadRequest{Email: "jane@acme.io", Source: "website"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	callsBefore := scorer.calls

	result, err := svc.Enrich(context.Background(), lead.ID, "clearbit")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Outcome.Enriched || result.Snapshot == nil {
		t.Fatalf("expected enriched result with fresh snapshot, got %+v", result)
	}
	if scorer.calls != callsBefore+1 {
		t.Fatalf("expected rescore after enrichment")
	}

	// A pass with no new data must not burn a scoring run.
	enricher.outcome = &entity.EnrichmentOutcome{Enriched: false}
	result, err = svc.Enrich(context.Background(), lead.ID, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Snapshot != nil {
		t.Fatalf("expected no snapshot for failed enrichment, got %+v", result.Snapshot)
	}
	if scorer.calls != callsBefore+1 {
		t.Fatalf("failed enrichment must not rescore")
	}
}

func TestLeadsServiceStatsCached(t *testing.T) {
	svc, repo, _, _, _ := newTestLeadsService()

	if _, err := svc.Stats(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Stats(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.statsCalls != 1 {
		t.Fatalf("expected stats served from cache, got %d store calls", repo.statsCalls)
	}
}

func TestLeadsServiceListCacheInvalidatedByCreate(t *testing.T) {
	svc, repo, _, _, _ := newTestLeadsService()

	if _, err := svc.Create(context.Background(), dto.CreateLeadRequest{Email: "a@acme.io", Source: "website"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	filter := dto.LeadListFilter{Page: 1, PerPage: 20}
	if _, err := svc.List(context.Background(), filter); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.List(context.Background(), filter); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.listCalls != 1 {
		t.Fatalf("expected second list served from cache, got %d", repo.listCalls)
	}

	if _, err := svc.Create(context.Background(), dto.CreateLeadRequest{Email: "b@acme.io", Source: "website"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := svc.List(context.Background(), filter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.listCalls != 2 {
		t.Fatalf("create must invalidate list caches, got %d store calls", repo.listCalls)
	}
	if result.Total != 2 {
		t.Fatalf("expected both leads visible, got %d", result.Total)
	}
}
