package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/dto"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/repository"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/service"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// LeadsHandler exposes the lead catalogue endpoints.
type LeadsHandler struct {
	leads *service.LeadsService
}

// NewLeadsHandler constructs a LeadsHandler.
func NewLeadsHandler(leads *service.LeadsService) *LeadsHandler {
	return &LeadsHandler{leads: leads}
}

// List handles GET /leads requests.
func (h *LeadsHandler) List(c echo.Context) error {
	filter := dto.LeadListFilter{
		Status:    c.QueryParam("status"),
		Source:    c.QueryParam("source"),
		Search:    c.QueryParam("search"),
		SortBy:    c.QueryParam("sort_by"),
		SortOrder: c.QueryParam("sort_order"),
		Page:      queryInt(c, "page", 1),
		PerPage:   queryInt(c, "limit", defaultPageSize),
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 {
		filter.PerPage = defaultPageSize
	}
	if filter.PerPage > maxPageSize {
		filter.PerPage = maxPageSize
	}
	if raw := c.QueryParam("min_score"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Error(c, http.StatusBadRequest, "min_score must be a number")
		}
		filter.MinScore = &value
	}
	if raw := c.QueryParam("max_score"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Error(c, http.StatusBadRequest, "max_score must be a number")
		}
		filter.MaxScore = &value
	}

	result, err := h.leads.List(c.Request().Context(), filter)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to list leads")
	}

	totalPages := 0
	if result.Total > 0 {
		totalPages = (result.Total + filter.PerPage - 1) / filter.PerPage
	}

	return Success(c, http.StatusOK, "leads retrieved", map[string]any{
		"leads": result.Items,
		"pagination": dto.Pagination{
			Page:       filter.Page,
			Limit:      filter.PerPage,
			Total:      result.Total,
			TotalPages: totalPages,
		},
	})
}

// Get handles GET /leads/:id requests.
func (h *LeadsHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid lead id")
	}

	lead, err := h.leads.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) {
			return Error(c, http.StatusNotFound, "lead not found")
		}
		return Error(c, http.StatusInternalServerError, "failed to load lead")
	}

	return Success(c, http.StatusOK, "lead retrieved", lead)
}

// Create handles POST /leads requests.
func (h *LeadsHandler) Create(c echo.Context) error {
	var req dto.CreateLeadRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	lead, err := h.leads.Create(c.Request().Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, repository.ErrLeadEmailDuplicate):
			return Error(c, http.StatusConflict, "a lead with this email already exists")
		default:
			return Error(c, http.StatusInternalServerError, "failed to create lead")
		}
	}

	return Success(c, http.StatusCreated, "lead created", lead)
}

// Update handles PUT /leads/:id requests.
func (h *LeadsHandler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid lead id")
	}

	var req dto.UpdateLeadRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	lead, err := h.leads.Update(c.Request().Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return Error(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, repository.ErrLeadNotFound):
			return Error(c, http.StatusNotFound, "lead not found")
		default:
			return Error(c, http.StatusInternalServerError, "failed to update lead")
		}
	}

	return Success(c, http.StatusOK, "lead updated", lead)
}

// Delete handles DELETE /leads/:id requests.
func (h *LeadsHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid lead id")
	}

	if err := h.leads.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) {
			return Error(c, http.StatusNotFound, "lead not found")
		}
		return Error(c, http.StatusInternalServerError, "failed to delete lead")
	}

	return Success(c, http.StatusOK, "lead deleted", nil)
}

// Enrich handles POST /leads/:id/enrich requests.
func (h *LeadsHandler) Enrich(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid lead id")
	}

	var req dto.EnrichLeadRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	result, err := h.leads.Enrich(c.Request().Context(), id, req.Provider)
	if err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) {
			return Error(c, http.StatusNotFound, "lead not found")
		}
		return Error(c, http.StatusInternalServerError, "enrichment failed")
	}

	return Success(c, http.StatusOK, "enrichment completed", result)
}

// BulkEnrich handles POST /leads/bulk/enrich requests.
func (h *LeadsHandler) BulkEnrich(c echo.Context) error {
	var req dto.BulkEnrichRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	if len(req.LeadIDs) == 0 {
		return Error(c, http.StatusBadRequest, "lead_ids must not be empty")
	}

	items, err := h.leads.BulkEnrich(c.Request().Context(), req.LeadIDs, req.Provider)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "bulk enrichment failed")
	}

	return Success(c, http.StatusOK, "bulk enrichment completed", map[string]any{"results": items})
}

// BulkRescore handles POST /leads/bulk/rescore requests.
func (h *LeadsHandler) BulkRescore(c echo.Context) error {
	var req dto.BulkRescoreRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	if len(req.LeadIDs) == 0 {
		return Error(c, http.StatusBadRequest, "lead_ids must not be empty")
	}

	items := h.leads.BulkRescore(c.Request().Context(), req.LeadIDs)
	return Success(c, http.StatusOK, "bulk rescore completed", map[string]any{"results": items})
}

// ScoreHistory handles GET /leads/:id/score/history requests.
func (h *LeadsHandler) ScoreHistory(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid lead id")
	}

	limit := queryInt(c, "limit", 0)
	history, err := h.leads.ScoreHistory(c.Request().Context(), id, limit)
	if err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) {
			return Error(c, http.StatusNotFound, "lead not found")
		}
		return Error(c, http.StatusInternalServerError, "failed to load score history")
	}

	return Success(c, http.StatusOK, "score history retrieved", map[string]any{"history": history})
}

// Stats handles GET /leads/stats/overview requests.
func (h *LeadsHandler) Stats(c echo.Context) error {
	stats, err := h.leads.Stats(c.Request().Context())
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to load lead stats")
	}

	return Success(c, http.StatusOK, "lead stats retrieved", stats)
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
