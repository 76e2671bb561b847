package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/entity"
)

// ErrScoreNotFound indicates the lead has no score snapshot yet.
var ErrScoreNotFound = errors.New("score snapshot not found")

// ScoresRepository persists immutable score snapshots. Snapshots are only ever
// inserted; recalculation appends a new row rather than rewriting history.
type ScoresRepository interface {
	Insert(ctx context.Context, snapshot *entity.ScoreSnapshot) (*entity.ScoreSnapshot, error)
	Latest(ctx context.Context, leadID uuid.UUID) (*entity.ScoreSnapshot, error)
	History(ctx context.Context, leadID uuid.UUID, limit int) ([]entity.ScoreSnapshot, error)
	BumpEngagement(ctx context.Context, leadID uuid.UUID, delta float64) (bool, error)
}

// PGXScoresRepository implements ScoresRepository using pgx.
type PGXScoresRepository struct {
	pool pgxPool
}

// NewPGXScoresRepository wires a pgx backed scores repository.
func NewPGXScoresRepository(pool *pgxpool.Pool) *PGXScoresRepository {
	return &PGXScoresRepository{pool: pool}
}

const scoreColumns = `id, lead_id, contact_id, organization_id, total_score, demographic_score,
        firmographic_score, behavioral_score, engagement_score, ml_score, scoring_model,
        model_version, feature_weights, score_breakdown, calculated_at`

// Insert appends a snapshot row and returns it with the generated id and
// timestamp filled in.
func (r *PGXScoresRepository) Insert(ctx context.Context, snapshot *entity.ScoreSnapshot) (*entity.ScoreSnapshot, error) {
	weights, err := json.Marshal(snapshot.FeatureWeights)
	if err != nil {
		return nil, fmt.Errorf("marshal feature weights: %w", err)
	}
	breakdown, err := json.Marshal(snapshot.Breakdown)
	if err != nil {
		return nil, fmt.Errorf("marshal score breakdown: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
        INSERT INTO lead_scores (
            lead_id, contact_id, organization_id, total_score, demographic_score,
            firmographic_score, behavioral_score, engagement_score, ml_score,
            scoring_model, model_version, feature_weights, score_breakdown
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12::jsonb, $13::jsonb)
        RETURNING id, calculated_at`,
		snapshot.LeadID, snapshot.ContactID, snapshot.OrganizationID,
		snapshot.TotalScore, snapshot.DemographicScore, snapshot.FirmographicScore,
		snapshot.BehavioralScore, snapshot.EngagementScore, snapshot.MLScore,
		snapshot.ScoringModel, snapshot.ModelVersion, weights, breakdown,
	)

	inserted := *snapshot
	if err := row.Scan(&inserted.ID, &inserted.CalculatedAt); err != nil {
		return nil, fmt.Errorf("insert score snapshot: %w", err)
	}
	return &inserted, nil
}

// Latest fetches the most recent snapshot for a lead.
func (r *PGXScoresRepository) Latest(ctx context.Context, leadID uuid.UUID) (*entity.ScoreSnapshot, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT `+scoreColumns+`
        FROM lead_scores
        WHERE lead_id = $1
        ORDER BY calculated_at DESC
        LIMIT 1`, leadID)

	snapshot, err := scanScoreSnapshot(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScoreNotFound
		}
		return nil, fmt.Errorf("query latest score: %w", err)
	}
	return snapshot, nil
}

// History returns snapshots for a lead, newest first.
func (r *PGXScoresRepository) History(ctx context.Context, leadID uuid.UUID, limit int) ([]entity.ScoreSnapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
        SELECT `+scoreColumns+`
        FROM lead_scores
        WHERE lead_id = $1
        ORDER BY calculated_at DESC
        LIMIT $2`, leadID, limit)
	if err != nil {
		return nil, fmt.Errorf("query score history: %w", err)
	}
	defer rows.Close()

	var snapshots []entity.ScoreSnapshot
	for rows.Next() {
		snapshot, err := scanScoreSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan score snapshot: %w", err)
		}
		snapshots = append(snapshots, *snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate score history: %w", err)
	}
	return snapshots, nil
}

// BumpEngagement atomically raises the engagement score of the latest snapshot,
// capping at 100. Returns false when the lead has no snapshot to bump.
func (r *PGXScoresRepository) BumpEngagement(ctx context.Context, leadID uuid.UUID, delta float64) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
        UPDATE lead_scores
        SET engagement_score = LEAST(100, engagement_score + $1), calculated_at = NOW()
        WHERE lead_id = $2 AND calculated_at = (
            SELECT MAX(calculated_at) FROM lead_scores WHERE lead_id = $2
        )`, delta, leadID)
	if err != nil {
		return false, fmt.Errorf("bump engagement score: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanScoreSnapshot(row pgx.Row) (*entity.ScoreSnapshot, error) {
	var (
		snapshot     entity.ScoreSnapshot
		weightsRaw   []byte
		breakdownRaw []byte
	)
	err := row.Scan(
		&snapshot.ID, &snapshot.LeadID, &snapshot.ContactID, &snapshot.OrganizationID,
		&snapshot.TotalScore, &snapshot.DemographicScore, &snapshot.FirmographicScore,
		&snapshot.BehavioralScore, &snapshot.EngagementScore, &snapshot.MLScore,
		&snapshot.ScoringModel, &snapshot.ModelVersion,
		&weightsRaw, &breakdownRaw, &snapshot.CalculatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(weightsRaw) > 0 {
		if err := json.Unmarshal(weightsRaw, &snapshot.FeatureWeights); err != nil {
			return nil, fmt.Errorf("decode feature weights: %w", err)
		}
	}
	if len(breakdownRaw) > 0 {
		if err := json.Unmarshal(breakdownRaw, &snapshot.Breakdown); err != nil {
			return nil, fmt.Errorf("decode score breakdown: %w", err)
		}
	}
	return &snapshot, nil
}
