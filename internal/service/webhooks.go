package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/dto"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/entity"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/repository"
)

// engagementWeights maps engagement types to the points added to the latest
// snapshot's engagement score. Unknown types still count for one point.
var engagementWeights = map[string]float64{
	"demo_completed":      15,
	"meeting_scheduled":   12,
	"whitepaper_download": 5,
	"email_opened":        2,
	"email_clicked":       5,
	"website_visit":       3,
	"pricing_viewed":      8,
	"trial_started":       20,
	"support_ticket":      3,
	"social_engagement":   2,
}

// EngagementWeight returns the score delta for an engagement type.
func EngagementWeight(engagementType string) float64 {
	if weight, ok := engagementWeights[engagementType]; ok {
		return weight
	}
	return 1
}

// EngagementBumper applies in-place engagement bumps to the latest snapshot.
type EngagementBumper interface {
	BumpEngagement(ctx context.Context, leadID uuid.UUID, delta float64) (bool, error)
}

// WebhookService ingests external events: lead lifecycle pushes, engagement
// signals, form submissions, and opaque automation events.
type WebhookService struct {
	leads      repository.LeadsRepository
	scores     EngagementBumper
	events     repository.EventsRepository
	automation AutomationPoster
	cache      Cache
}

// NewWebhookService wires the webhook ingestion service. The automation
// poster may be nil when no downstream platform is configured.
func NewWebhookService(leads repository.LeadsRepository, scores EngagementBumper, events repository.EventsRepository, automation AutomationPoster, cache Cache) *WebhookService {
	return &WebhookService{
		leads:      leads,
		scores:     scores,
		events:     events,
		automation: automation,
		cache:      cache,
	}
}

// LeadCreated inserts a lead pushed by an upstream system. A known email is
// skipped rather than treated as an error.
func (s *WebhookService) LeadCreated(ctx context.Context, payload *dto.WebhookLeadPayload, rawBody []byte) (*entity.Lead, bool, error) {
	source := payload.Source
	if source == "" {
		source = "webhook"
	}

	lead := &entity.Lead{
		Email:       payload.Email,
		FirstName:   payload.FirstName,
		LastName:    payload.LastName,
		CompanyName: payload.CompanyName,
		JobTitle:    payload.JobTitle,
		Phone:       payload.Phone,
		Source:      source,
		Metadata:    payload.Metadata,
	}

	created, inserted, err := s.leads.CreateIfAbsent(ctx, lead)
	if err != nil {
		return nil, false, err
	}
	if !inserted {
		return nil, false, nil
	}

	s.logEvent(ctx, "lead.created", "webhook", rawBody, "completed")
	s.dropListCaches(ctx)
	return created, true, nil
}

// LeadUpdated merges pushed metadata into an existing lead.
func (s *WebhookService) LeadUpdated(ctx context.Context, leadID string, metadata map[string]any) (*entity.Lead, error) {
	id, err := uuid.Parse(leadID)
	if err != nil {
		return nil, repository.ErrLeadNotFound
	}

	updated, err := s.leads.MergeMetadata(ctx, id, metadata)
	if err != nil {
		return nil, err
	}

	s.dropLeadCaches(ctx, id)
	return updated, nil
}

// Engagement records an interaction and bumps the engagement score of the
// lead's latest snapshot.
func (s *WebhookService) Engagement(ctx context.Context, req dto.WebhookEngagementRequest, rawBody []byte) (*entity.EngagementEvent, error) {
	id, err := uuid.Parse(req.LeadID)
	if err != nil {
		return nil, repository.ErrLeadNotFound
	}

	if _, err := s.leads.GetByID(ctx, id); err != nil {
		return nil, err
	}

	event := &entity.EngagementEvent{
		LeadID:          id,
		EngagementType:  req.EngagementType,
		Channel:         req.Channel,
		Subject:         req.Subject,
		Content:         req.Content,
		DurationSeconds: req.Duration,
	}
	if req.OccurredAt != "" {
		occurred, err := time.Parse(time.RFC3339, req.OccurredAt)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid occurred_at %q", ErrValidation, req.OccurredAt)
		}
		event.OccurredAt = occurred
	}

	recorded, err := s.events.InsertEngagement(ctx, event)
	if err != nil {
		return nil, err
	}

	bumped, err := s.scores.BumpEngagement(ctx, id, EngagementWeight(req.EngagementType))
	if err != nil {
		return nil, err
	}
	if !bumped {
		log.Printf("engagement for lead %s arrived before any score snapshot", id)
	}

	s.logEvent(ctx, "engagement.detected", "webhook", rawBody, "completed")
	s.dropLeadCaches(ctx, id)
	return recorded, nil
}

// FormSubmitted creates or updates a lead from a marketing form submission.
func (s *WebhookService) FormSubmitted(ctx context.Context, req dto.WebhookFormSubmittedRequest, rawBody []byte) (*entity.Lead, error) {
	lead := &entity.Lead{
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		CompanyName: req.CompanyName,
		Source:      "form:" + req.FormID,
		Metadata: map[string]any{
			"form_fields": req.Fields,
			"form_id":     req.FormID,
		},
	}

	upserted, err := s.leads.UpsertByEmail(ctx, lead)
	if err != nil {
		return nil, err
	}

	s.logEvent(ctx, "form.submitted", "webhook", rawBody, "completed")
	s.dropLeadCaches(ctx, upserted.ID)
	return upserted, nil
}

// CustomEvent stores an opaque automation event and forwards it downstream
// when a platform is configured. Forwarding failures leave the event pending.
func (s *WebhookService) CustomEvent(ctx context.Context, eventType string, payload map[string]any) (*entity.WebhookEvent, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal event payload: %w", err)
	}

	stored, err := s.events.InsertWebhookEvent(ctx, &entity.WebhookEvent{
		EventType: eventType,
		Source:    "n8n",
		Payload:   string(encoded),
		Status:    "pending",
	})
	if err != nil {
		return nil, err
	}

	if s.automation != nil {
		if _, err := s.automation.PostJSON(ctx, "/webhook/"+eventType, payload, stored.ID.String()); err != nil {
			log.Printf("forward event %s to automation: %v", stored.ID, err)
		}
	}

	return stored, nil
}

// Batch stores multiple events, reporting per-event outcomes.
func (s *WebhookService) Batch(ctx context.Context, events []dto.WebhookBatchEvent) []dto.WebhookBatchItem {
	items := make([]dto.WebhookBatchItem, 0, len(events))

	for _, event := range events {
		encoded, err := json.Marshal(event.Data)
		if err != nil {
			items = append(items, dto.WebhookBatchItem{Type: event.Type, Status: "error", Error: err.Error()})
			continue
		}

		stored, err := s.events.InsertWebhookEvent(ctx, &entity.WebhookEvent{
			EventType: event.Type,
			Source:    "batch",
			Payload:   string(encoded),
			Status:    "pending",
		})
		if err != nil {
			items = append(items, dto.WebhookBatchItem{Type: event.Type, Status: "error", Error: err.Error()})
			continue
		}

		items = append(items, dto.WebhookBatchItem{Type: event.Type, Status: "queued", EventID: stored.ID.String()})
	}

	return items
}

func (s *WebhookService) logEvent(ctx context.Context, eventType, source string, rawBody []byte, status string) {
	payload := string(rawBody)
	if payload == "" {
		payload = "{}"
	}
	_, err := s.events.InsertWebhookEvent(ctx, &entity.WebhookEvent{
		EventType: eventType,
		Source:    source,
		Payload:   payload,
		Status:    status,
	})
	if err != nil {
		log.Printf("log webhook event %s: %v", eventType, err)
	}
}

func (s *WebhookService) dropLeadCaches(ctx context.Context, id uuid.UUID) {
	if err := s.cache.Delete(ctx, leadCacheKey(id)); err != nil {
		log.Printf("invalidate lead %s: %v", id, err)
	}
	s.dropListCaches(ctx)
}

func (s *WebhookService) dropListCaches(ctx context.Context) {
	if err := s.cache.DeletePattern(ctx, listCachePattern); err != nil {
		log.Printf("invalidate lead lists: %v", err)
	}
	if err := s.cache.Delete(ctx, statsCacheKey); err != nil {
		log.Printf("invalidate lead stats: %v", err)
	}
}
