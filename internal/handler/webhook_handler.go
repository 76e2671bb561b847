package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/dto"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/repository"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/service"
)

// WebhookHandler receives events pushed by upstream automation platforms.
type WebhookHandler struct {
	webhooks *service.WebhookService
}

// NewWebhookHandler constructs a WebhookHandler.
func NewWebhookHandler(webhooks *service.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhooks: webhooks}
}

// readBody drains the request body and restores it so Bind still works.
func readBody(c echo.Context) ([]byte, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return nil, err
	}
	c.Request().Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

// LeadCreated handles POST /webhooks/lead/created requests.
func (h *WebhookHandler) LeadCreated(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return Error(c, http.StatusBadRequest, "unreadable body")
	}

	var req dto.WebhookLeadCreatedRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	if req.Lead == nil || req.Lead.Email == "" {
		return Error(c, http.StatusBadRequest, "lead email is required")
	}

	lead, created, err := h.webhooks.LeadCreated(c.Request().Context(), req.Lead, body)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to store lead")
	}
	if !created {
		return Success(c, http.StatusOK, "lead already exists", map[string]any{"skipped": true})
	}

	return Success(c, http.StatusCreated, "lead created", lead)
}

// LeadUpdated handles POST /webhooks/lead/updated requests.
func (h *WebhookHandler) LeadUpdated(c echo.Context) error {
	var req dto.WebhookLeadUpdatedRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	if req.LeadID == "" {
		return Error(c, http.StatusBadRequest, "lead_id is required")
	}

	lead, err := h.webhooks.LeadUpdated(c.Request().Context(), req.LeadID, req.Updates.Metadata)
	if err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) {
			return Error(c, http.StatusNotFound, "lead not found")
		}
		return Error(c, http.StatusInternalServerError, "failed to update lead")
	}

	return Success(c, http.StatusOK, "lead updated", lead)
}

// Engagement handles POST /webhooks/engagement requests.
func (h *WebhookHandler) Engagement(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return Error(c, http.StatusBadRequest, "unreadable body")
	}

	var req dto.WebhookEngagementRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	if req.LeadID == "" || req.EngagementType == "" || req.Channel == "" {
		return Error(c, http.StatusBadRequest, "lead_id, engagement_type and channel are required")
	}

	event, err := h.webhooks.Engagement(c.Request().Context(), req, body)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrLeadNotFound):
			return Error(c, http.StatusNotFound, "lead not found")
		case errors.Is(err, service.ErrValidation):
			return Error(c, http.StatusBadRequest, err.Error())
		default:
			return Error(c, http.StatusInternalServerError, "failed to record engagement")
		}
	}

	return Success(c, http.StatusCreated, "engagement recorded", event)
}

// FormSubmitted handles POST /webhooks/form/submitted requests.
func (h *WebhookHandler) FormSubmitted(c echo.Context) error {
	body, err := readBody(c)
	if err != nil {
		return Error(c, http.StatusBadRequest, "unreadable body")
	}

	var req dto.WebhookFormSubmittedRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.FormID == "" {
		return Error(c, http.StatusBadRequest, "email and form_id are required")
	}

	lead, err := h.webhooks.FormSubmitted(c.Request().Context(), req, body)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to store form submission")
	}

	return Success(c, http.StatusOK, "form submission processed", lead)
}

// CustomEvent handles POST /webhooks/custom/:event_type requests.
func (h *WebhookHandler) CustomEvent(c echo.Context) error {
	eventType := c.Param("event_type")
	if eventType == "" {
		return Error(c, http.StatusBadRequest, "event type is required")
	}

	payload := map[string]any{}
	if err := c.Bind(&payload); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	event, err := h.webhooks.CustomEvent(c.Request().Context(), eventType, payload)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to store event")
	}

	return Success(c, http.StatusAccepted, "event queued", event)
}

// Batch handles POST /webhooks/batch requests.
func (h *WebhookHandler) Batch(c echo.Context) error {
	var req dto.WebhookBatchRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}
	if len(req.Events) == 0 {
		return Error(c, http.StatusBadRequest, "events must not be empty")
	}

	items := h.webhooks.Batch(c.Request().Context(), req.Events)
	return Success(c, http.StatusOK, "batch processed", map[string]any{"results": items})
}
