package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/dto"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/entity"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/repository"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/service"
)

type stubLeadsRepo struct {
	create         func(ctx context.Context, lead *entity.Lead) (*entity.Lead, error)
	createIfAbsent func(ctx context.Context, lead *entity.Lead) (*entity.Lead, bool, error)
	upsertByEmail  func(ctx context.Context, lead *entity.Lead) (*entity.Lead, error)
	getByID        func(ctx context.Context, id uuid.UUID) (*entity.Lead, error)
	list           func(ctx context.Context, filter dto.LeadListFilter) ([]repository.LeadListItem, int, error)
	update         func(ctx context.Context, id uuid.UUID, req dto.UpdateLeadRequest) (*entity.Lead, error)
	mergeMetadata  func(ctx context.Context, id uuid.UUID, metadata map[string]any) (*entity.Lead, error)
	softDelete     func(ctx context.Context, id uuid.UUID) error
	stats          func(ctx context.Context) (*entity.LeadStats, error)
}

func (s *stubLeadsRepo) Create(ctx context.Context, lead *entity.Lead) (*entity.Lead, error) {
	if s.create != nil {
		return s.create(ctx, lead)
	}
	stored := *lead
	stored.ID = uuid.New()
	return &stored, nil
}

func (s *stubLeadsRepo) CreateIfAbsent(ctx context.Context, lead *entity.Lead) (*entity.Lead, bool, error) {
	if s.createIfAbsent != nil {
		return s.createIfAbsent(ctx, lead)
	}
	stored := *lead
	stored.ID = uuid.New()
	return &stored, true, nil
}

func (s *stubLeadsRepo) UpsertByEmail(ctx context.Context, lead *entity.Lead) (*entity.Lead, error) {
	if s.upsertByEmail != nil {
		return s.upsertByEmail(ctx, lead)
	}
	stored := *lead
	stored.ID = uuid.New()
	return &stored, nil
}

func (s *stubLeadsRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Lead, error) {
	if s.getByID != nil {
		return s.getByID(ctx, id)
	}
	return nil, repository.ErrLeadNotFound
}

func (s *stubLeadsRepo) GetProfile(ctx context.Context, id uuid.UUID) (*entity.LeadProfile, error) {
	return nil, repository.ErrLeadNotFound
}

func (s *stubLeadsRepo) List(ctx context.Context, filter dto.LeadListFilter) ([]repository.LeadListItem, int, error) {
	if s.list != nil {
		return s.list(ctx, filter)
	}
	return nil, 0, nil
}

func (s *stubLeadsRepo) Update(ctx context.Context, id uuid.UUID, req dto.UpdateLeadRequest) (*entity.Lead, error) {
	if s.update != nil {
		return s.update(ctx, id, req)
	}
	return nil, repository.ErrLeadNotFound
}

func (s *stubLeadsRepo) MergeMetadata(ctx context.Context, id uuid.UUID, metadata map[string]any) (*entity.Lead, error) {
	if s.mergeMetadata != nil {
		return s.mergeMetadata(ctx, id, metadata)
	}
	return nil, repository.ErrLeadNotFound
}

func (s *stubLeadsRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if s.softDelete != nil {
		return s.softDelete(ctx, id)
	}
	return repository.ErrLeadNotFound
}

func (s *stubLeadsRepo) Stats(ctx context.Context) (*entity.LeadStats, error) {
	if s.stats != nil {
		return s.stats(ctx)
	}
	return &entity.LeadStats{}, nil
}

type noopCache struct{}

func (noopCache) Get(ctx context.Context, key string, dest any) (bool, error) { return false, nil }
func (noopCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return nil
}
func (noopCache) Delete(ctx context.Context, keys ...string) error        { return nil }
func (noopCache) DeletePattern(ctx context.Context, pattern string) error { return nil }

type stubScorer struct {
	snapshot *entity.ScoreSnapshot
	history  []entity.ScoreSnapshot
}

func (s *stubScorer) CalculateAndSaveScore(ctx context.Context, leadID uuid.UUID) (*entity.ScoreSnapshot, error) {
	if s.snapshot != nil {
		return s.snapshot, nil
	}
	return &entity.ScoreSnapshot{LeadID: leadID, TotalScore: 55}, nil
}

func (s *stubScorer) BulkRescore(ctx context.Context, leadIDs []string) []dto.BulkRescoreItem {
	items := make([]dto.BulkRescoreItem, 0, len(leadIDs))
	for _, id := range leadIDs {
		items = append(items, dto.BulkRescoreItem{LeadID: id, Score: 55, Success: true})
	}
	return items
}

func (s *stubScorer) History(ctx context.Context, leadID uuid.UUID, limit int) ([]entity.ScoreSnapshot, error) {
	return s.history, nil
}

func (s *stubScorer) ScoreCategory(score float64) string { return "warm" }

type stubEnricher struct {
	outcome *entity.EnrichmentOutcome
}

func (s *stubEnricher) EnrichLead(ctx context.Context, lead *entity.Lead, preferred string) (*entity.EnrichmentOutcome, error) {
	if s.outcome != nil {
		return s.outcome, nil
	}
	return &entity.EnrichmentOutcome{}, nil
}

func (s *stubEnricher) BulkEnrich(ctx context.Context, leadIDs []string, preferred string) ([]dto.BulkEnrichItem, error) {
	items := make([]dto.BulkEnrichItem, 0, len(leadIDs))
	for _, id := range leadIDs {
		items = append(items, dto.BulkEnrichItem{LeadID: id, Enriched: true})
	}
	return items, nil
}

func newLeadsHandler(repo *stubLeadsRepo, scorer *stubScorer, enricher *stubEnricher) *LeadsHandler {
	if scorer == nil {
		scorer = &stubScorer{}
	}
	if enricher == nil {
		enricher = &stubEnricher{}
	}
	validator := service.NewLeadValidator("US")
	svc := service.NewLeadsService(repo, validator, scorer, enricher, noopCache{})
	return NewLeadsHandler(svc)
}

func performJSON(t *testing.T, h echo.HandlerFunc, method, target, body string, params map[string]string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	e := echo.New()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for name, value := range params {
		c.SetParamNames(name)
		c.SetParamValues(value)
	}

	if err := h(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}

	var envelope APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("invalid response body %q: %v", rec.Body.String(), err)
	}
	return rec, envelope
}

func TestLeadsHandlerCreate(t *testing.T) {
	repo := &stubLeadsRepo{}
	h := newLeadsHandler(repo, nil, nil)

	rec, envelope := performJSON(t, h.Create, http.MethodPost, "/leads", `{"email":"Jane@Acme.io","source":"website"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if envelope.Status != "success" {
		t.Fatalf("expected success envelope, got %+v", envelope)
	}
}

func TestLeadsHandlerCreateRejectsInvalidEmail(t *testing.T) {
	h := newLeadsHandler(&stubLeadsRepo{}, nil, nil)

	rec, envelope := performJSON(t, h.Create, http.MethodPost, "/leads", `{"email":"not-an-email","source":"website"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if envelope.Status != "error" {
		t.Fatalf("expected error envelope, got %+v", envelope)
	}
}

func TestLeadsHandlerCreateDuplicateEmail(t *testing.T) {
	repo := &stubLeadsRepo{
		create: func(ctx context.Context, lead *entity.Lead) (*entity.Lead, error) {
			return nil, repository.ErrLeadEmailDuplicate
		},
	}
	h := newLeadsHandler(repo, nil, nil)

	rec, _ := performJSON(t, h.Create, http.MethodPost, "/leads", `{"email":"jane@acme.io","source":"website"}`, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestLeadsHandlerGet(t *testing.T) {
	id := uuid.New()
	repo := &stubLeadsRepo{
		getByID: func(ctx context.Context, got uuid.UUID) (*entity.Lead, error) {
			if got != id {
				t.Fatalf("expected lookup for %s, got %s", id, got)
			}
			return &entity.Lead{ID: id, Email: "jane@acme.io"}, nil
		},
	}
	h := newLeadsHandler(repo, nil, nil)

	rec, _ := performJSON(t, h.Get, http.MethodGet, "/leads/"+id.String(), "", map[string]string{"id": id.String()})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec, _ = performJSON(t, h.Get, http.MethodGet, "/leads/nope", "", map[string]string{"id": "nope"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", rec.Code)
	}

	rec, _ = performJSON(t, h.Get, http.MethodGet, "/leads/"+uuid.NewString(), "", map[string]string{"id": uuid.NewString()})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown id, got %d", rec.Code)
	}
}

func TestLeadsHandlerListPagination(t *testing.T) {
	repo := &stubLeadsRepo{
		list: func(ctx context.Context, filter dto.LeadListFilter) ([]repository.LeadListItem, int, error) {
			if filter.Status != "qualified" {
				t.Fatalf("expected status filter, got %q", filter.Status)
			}
			if filter.PerPage != 20 || filter.Page != 2 {
				t.Fatalf("unexpected page window: %+v", filter)
			}
			return []repository.LeadListItem{}, 45, nil
		},
	}
	h := newLeadsHandler(repo, nil, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/leads?status=qualified&page=2", nil)
	rec := httptest.NewRecorder()
	if err := h.List(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var envelope struct {
		Data struct {
			Pagination dto.Pagination `json:"pagination"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if envelope.Data.Pagination.Total != 45 || envelope.Data.Pagination.TotalPages != 3 {
		t.Fatalf("unexpected pagination: %+v", envelope.Data.Pagination)
	}
}

func TestLeadsHandlerListRejectsBadScoreFilter(t *testing.T) {
	h := newLeadsHandler(&stubLeadsRepo{}, nil, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/leads?min_score=high", nil)
	rec := httptest.NewRecorder()
	if err := h.List(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLeadsHandlerEnrich(t *testing.T) {
	id := uuid.New()
	repo := &stubLeadsRepo{
		getByID: func(ctx context.Context, got uuid.UUID) (*entity.Lead, error) {
			return &entity.Lead{ID: got, Email: "jane@acme.io"}, nil
		},
	}
	enricher := &stubEnricher{outcome: &entity.EnrichmentOutcome{Enriched: true, Provider: "clearbit"}}
	h := newLeadsHandler(repo, nil, enricher)

	rec, envelope := performJSON(t, h.Enrich, http.MethodPost, "/leads/"+id.String()+"/enrich", `{"provider":"clearbit"}`, map[string]string{"id": id.String()})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if envelope.Status != "success" {
		t.Fatalf("expected success envelope, got %+v", envelope)
	}
}

func TestLeadsHandlerBulkEnrichRequiresIDs(t *testing.T) {
	h := newLeadsHandler(&stubLeadsRepo{}, nil, nil)

	rec, _ := performJSON(t, h.BulkEnrich, http.MethodPost, "/leads/bulk/enrich", `{"lead_ids":[]}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLeadsHandlerBulkRescore(t *testing.T) {
	repo := &stubLeadsRepo{}
	h := newLeadsHandler(repo, &stubScorer{}, nil)

	rec, _ := performJSON(t, h.BulkRescore, http.MethodPost, "/leads/bulk/rescore", `{"lead_ids":["a","b"]}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec, _ = performJSON(t, h.BulkRescore, http.MethodPost, "/leads/bulk/rescore", `{"lead_ids":[]}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on empty ids, got %d", rec.Code)
	}
}

func TestLeadsHandlerScoreHistory(t *testing.T) {
	id := uuid.New()
	repo := &stubLeadsRepo{
		getByID: func(ctx context.Context, got uuid.UUID) (*entity.Lead, error) {
			return &entity.Lead{ID: got}, nil
		},
	}
	scorer := &stubScorer{history: []entity.ScoreSnapshot{{LeadID: id, TotalScore: 61}, {LeadID: id, TotalScore: 55}}}
	h := newLeadsHandler(repo, scorer, nil)

	rec, _ := performJSON(t, h.ScoreHistory, http.MethodGet, "/leads/"+id.String()+"/score/history", "", map[string]string{"id": id.String()})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
