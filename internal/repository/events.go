package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/entity"
)

// EventsRepository persists engagement events, webhook audit rows, and
// enrichment history records.
type EventsRepository interface {
	InsertEngagement(ctx context.Context, event *entity.EngagementEvent) (*entity.EngagementEvent, error)
	InsertWebhookEvent(ctx context.Context, event *entity.WebhookEvent) (*entity.WebhookEvent, error)
	InsertEnrichmentHistory(ctx context.Context, record *entity.EnrichmentHistory) error
	EnrichmentHistoryForLead(ctx context.Context, leadID uuid.UUID, limit int) ([]entity.EnrichmentHistory, error)
}

// PGXEventsRepository implements EventsRepository using pgx.
type PGXEventsRepository struct {
	pool pgxPool
}

// NewPGXEventsRepository wires a pgx backed events repository.
func NewPGXEventsRepository(pool *pgxpool.Pool) *PGXEventsRepository {
	return &PGXEventsRepository{pool: pool}
}

// InsertEngagement records a lead interaction.
func (r *PGXEventsRepository) InsertEngagement(ctx context.Context, event *entity.EngagementEvent) (*entity.EngagementEvent, error) {
	row := r.pool.QueryRow(ctx, `
        INSERT INTO engagement_events (lead_id, engagement_type, channel, subject, content, duration_seconds, occurred_at)
        VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()))
        RETURNING id, occurred_at, created_at`,
		event.LeadID, event.EngagementType, event.Channel, event.Subject,
		event.Content, event.DurationSeconds, nilIfZeroTime(event),
	)

	inserted := *event
	if err := row.Scan(&inserted.ID, &inserted.OccurredAt, &inserted.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert engagement event: %w", err)
	}
	return &inserted, nil
}

// InsertWebhookEvent appends an audit row for an inbound webhook payload.
func (r *PGXEventsRepository) InsertWebhookEvent(ctx context.Context, event *entity.WebhookEvent) (*entity.WebhookEvent, error) {
	row := r.pool.QueryRow(ctx, `
        INSERT INTO webhook_events (event_type, source, payload, status)
        VALUES ($1, $2, $3::jsonb, $4)
        RETURNING id, created_at`,
		event.EventType, event.Source, event.Payload, event.Status,
	)

	inserted := *event
	if err := row.Scan(&inserted.ID, &inserted.CreatedAt); err != nil {
		return nil, fmt.Errorf("insert webhook event: %w", err)
	}
	return &inserted, nil
}

// InsertEnrichmentHistory records one orchestration pass against a lead.
func (r *PGXEventsRepository) InsertEnrichmentHistory(ctx context.Context, record *entity.EnrichmentHistory) error {
	_, err := r.pool.Exec(ctx, `
        INSERT INTO enrichment_history (
            lead_id, provider, enrichment_type, request_payload, response_data,
            status, error_message, credits_used, enrichment_duration_ms
        )
        VALUES ($1, $2, $3, $4::jsonb, $5::jsonb, $6, $7, $8, $9)`,
		record.LeadID, record.Provider, record.EnrichmentType, record.RequestPayload,
		record.ResponseData, record.Status, record.ErrorMessage, record.CreditsUsed,
		record.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("insert enrichment history: %w", err)
	}
	return nil
}

// EnrichmentHistoryForLead returns past orchestration records, newest first.
func (r *PGXEventsRepository) EnrichmentHistoryForLead(ctx context.Context, leadID uuid.UUID, limit int) ([]entity.EnrichmentHistory, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
        SELECT id, lead_id, provider, enrichment_type, request_payload, response_data,
               status, error_message, credits_used, enrichment_duration_ms, created_at
        FROM enrichment_history
        WHERE lead_id = $1
        ORDER BY created_at DESC
        LIMIT $2`, leadID, limit)
	if err != nil {
		return nil, fmt.Errorf("query enrichment history: %w", err)
	}
	defer rows.Close()

	var records []entity.EnrichmentHistory
	for rows.Next() {
		var record entity.EnrichmentHistory
		err := rows.Scan(
			&record.ID, &record.LeadID, &record.Provider, &record.EnrichmentType,
			&record.RequestPayload, &record.ResponseData, &record.Status,
			&record.ErrorMessage, &record.CreditsUsed, &record.DurationMS, &record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan enrichment history: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate enrichment history: %w", err)
	}
	return records, nil
}

func nilIfZeroTime(event *entity.EngagementEvent) any {
	if event.OccurredAt.IsZero() {
		return nil
	}
	return event.OccurredAt
}
