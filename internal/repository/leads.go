package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/dto"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/entity"
)

var (
	// ErrLeadNotFound indicates the lead is absent or soft-deleted.
	ErrLeadNotFound = errors.New("lead not found")
	// ErrLeadEmailDuplicate indicates a unique-email violation on insert.
	ErrLeadEmailDuplicate = errors.New("lead with this email already exists")
)

// LeadListItem is a catalogue row joined with its latest score and organization.
type LeadListItem struct {
	entity.Lead
	TotalScore        *float64 `json:"total_score,omitempty"`
	DemographicScore  *float64 `json:"demographic_score,omitempty"`
	FirmographicScore *float64 `json:"firmographic_score,omitempty"`
	BehavioralScore   *float64 `json:"behavioral_score,omitempty"`
	EngagementScore   *float64 `json:"engagement_score,omitempty"`
	MLScore           *float64 `json:"ml_score,omitempty"`
	OrganizationName  *string  `json:"organization_name,omitempty"`
	Industry          *string  `json:"industry,omitempty"`
	CompanySize       *string  `json:"company_size,omitempty"`
}

// LeadsRepository describes persistence operations for leads.
type LeadsRepository interface {
	Create(ctx context.Context, lead *entity.Lead) (*entity.Lead, error)
	CreateIfAbsent(ctx context.Context, lead *entity.Lead) (*entity.Lead, bool, error)
	UpsertByEmail(ctx context.Context, lead *entity.Lead) (*entity.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Lead, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*entity.LeadProfile, error)
	List(ctx context.Context, filter dto.LeadListFilter) ([]LeadListItem, int, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateLeadRequest) (*entity.Lead, error)
	MergeMetadata(ctx context.Context, id uuid.UUID, metadata map[string]any) (*entity.Lead, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*entity.LeadStats, error)
}

// PGXLeadsRepository implements LeadsRepository using pgx.
type PGXLeadsRepository struct {
	pool pgxPool
}

// NewPGXLeadsRepository wires a pgx backed leads repository.
func NewPGXLeadsRepository(pool *pgxpool.Pool) *PGXLeadsRepository {
	return &PGXLeadsRepository{pool: pool}
}

var _ pgxPool = (*pgxpool.Pool)(nil)

const leadColumns = `id, email, first_name, last_name, company_name, job_title, phone,
        source, status, tags, metadata, organization_id, contact_id, deleted_at, created_at, updated_at`

// Create inserts a new lead row.
func (r *PGXLeadsRepository) Create(ctx context.Context, lead *entity.Lead) (*entity.Lead, error) {
	tags, metadata, err := marshalLeadJSON(lead)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
        INSERT INTO leads (email, first_name, last_name, company_name, job_title, phone, source, tags, metadata)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9::jsonb)
        RETURNING `+leadColumns,
		lead.Email, lead.FirstName, lead.LastName, lead.CompanyName, lead.JobTitle,
		lead.Phone, lead.Source, tags, metadata,
	)

	created, err := scanLead(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("%w: %v", ErrLeadEmailDuplicate, pgErr)
		}
		return nil, fmt.Errorf("insert lead: %w", err)
	}
	return created, nil
}

// CreateIfAbsent inserts a lead unless the email is already present. The
// boolean reports whether a new row was created.
func (r *PGXLeadsRepository) CreateIfAbsent(ctx context.Context, lead *entity.Lead) (*entity.Lead, bool, error) {
	tags, metadata, err := marshalLeadJSON(lead)
	if err != nil {
		return nil, false, err
	}

	row := r.pool.QueryRow(ctx, `
        INSERT INTO leads (email, first_name, last_name, company_name, job_title, phone, source, tags, metadata)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9::jsonb)
        ON CONFLICT (email) DO NOTHING
        RETURNING `+leadColumns,
		lead.Email, lead.FirstName, lead.LastName, lead.CompanyName, lead.JobTitle,
		lead.Phone, lead.Source, tags, metadata,
	)

	created, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("insert lead if absent: %w", err)
	}
	return created, true, nil
}

// UpsertByEmail inserts a lead or fills missing fields of the existing row,
// merging metadata. Used by the form-submission webhook.
func (r *PGXLeadsRepository) UpsertByEmail(ctx context.Context, lead *entity.Lead) (*entity.Lead, error) {
	tags, metadata, err := marshalLeadJSON(lead)
	if err != nil {
		return nil, err
	}

	row := r.pool.QueryRow(ctx, `
        INSERT INTO leads (email, first_name, last_name, company_name, source, tags, metadata)
        VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7::jsonb)
        ON CONFLICT (email) DO UPDATE SET
            first_name = COALESCE(EXCLUDED.first_name, leads.first_name),
            last_name = COALESCE(EXCLUDED.last_name, leads.last_name),
            company_name = COALESCE(EXCLUDED.company_name, leads.company_name),
            metadata = leads.metadata || EXCLUDED.metadata,
            updated_at = NOW()
        RETURNING `+leadColumns,
		lead.Email, lead.FirstName, lead.LastName, lead.CompanyName, lead.Source, tags, metadata,
	)

	upserted, err := scanLead(row)
	if err != nil {
		return nil, fmt.Errorf("upsert lead by email: %w", err)
	}
	return upserted, nil
}

// GetByID fetches a lead by id, honoring the soft-delete marker.
func (r *PGXLeadsRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Lead, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE id = $1 AND deleted_at IS NULL`, id)

	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("query lead by id: %w", err)
	}
	return lead, nil
}

// GetProfile fetches a lead joined with its organization, contact, and the
// engagement score of its most recent snapshot.
func (r *PGXLeadsRepository) GetProfile(ctx context.Context, id uuid.UUID) (*entity.LeadProfile, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT
            l.id, l.email, l.first_name, l.last_name, l.company_name, l.job_title, l.phone,
            l.source, l.status, l.tags, l.metadata, l.organization_id, l.contact_id,
            l.deleted_at, l.created_at, l.updated_at,
            o.id, o.name, o.industry, o.company_size, o.annual_revenue, o.data_quality_score,
            c.id, c.job_title, c.seniority_level, c.department, c.email_validated,
            ls.engagement_score
        FROM leads l
        LEFT JOIN organizations o ON l.organization_id = o.id
        LEFT JOIN contacts c ON l.contact_id = c.id
        LEFT JOIN lead_scores ls ON l.id = ls.lead_id AND ls.calculated_at = (
            SELECT MAX(calculated_at) FROM lead_scores WHERE lead_id = l.id
        )
        WHERE l.id = $1 AND l.deleted_at IS NULL
    `, id)

	var (
		profile      entity.LeadProfile
		tagsRaw      []byte
		metadataRaw  []byte
		orgID        sql.NullString
		orgName      sql.NullString
		industry     sql.NullString
		companySize  sql.NullString
		revenue      sql.NullFloat64
		quality      sql.NullFloat64
		contactID    sql.NullString
		jobTitle     sql.NullString
		seniority    sql.NullString
		department   sql.NullString
		validated    sql.NullBool
		engScore     sql.NullFloat64
		firstName    sql.NullString
		lastName     sql.NullString
		companyName  sql.NullString
		leadJobTitle sql.NullString
		phone        sql.NullString
		leadOrgID    sql.NullString
		leadConID    sql.NullString
		deletedAt    sql.NullTime
	)

	err := row.Scan(
		&profile.ID, &profile.Email, &firstName, &lastName, &companyName, &leadJobTitle, &phone,
		&profile.Source, &profile.Status, &tagsRaw, &metadataRaw, &leadOrgID, &leadConID,
		&deletedAt, &profile.CreatedAt, &profile.UpdatedAt,
		&orgID, &orgName, &industry, &companySize, &revenue, &quality,
		&contactID, &jobTitle, &seniority, &department, &validated,
		&engScore,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("query lead profile: %w", err)
	}

	profile.FirstName = nullableString(firstName)
	profile.LastName = nullableString(lastName)
	profile.CompanyName = nullableString(companyName)
	profile.JobTitle = nullableString(leadJobTitle)
	profile.Phone = nullableString(phone)
	if err := unmarshalLeadJSON(tagsRaw, metadataRaw, &profile.Lead); err != nil {
		return nil, err
	}
	if id, ok := nullableUUID(leadOrgID); ok {
		profile.Lead.OrganizationID = &id
	}
	if id, ok := nullableUUID(leadConID); ok {
		profile.Lead.ContactID = &id
	}

	if parsed, ok := nullableUUID(orgID); ok {
		org := &entity.Organization{ID: parsed, Industry: nullableString(industry), CompanySize: nullableString(companySize)}
		if orgName.Valid {
			org.Name = orgName.String
		}
		if revenue.Valid {
			org.AnnualRevenue = &revenue.Float64
		}
		if quality.Valid {
			org.DataQualityScore = &quality.Float64
		}
		profile.Organization = org
	}

	if parsed, ok := nullableUUID(contactID); ok {
		profile.Contact = &entity.Contact{
			ID:             parsed,
			JobTitle:       nullableString(jobTitle),
			SeniorityLevel: nullableString(seniority),
			Department:     nullableString(department),
			EmailValidated: validated.Valid && validated.Bool,
		}
	}

	if engScore.Valid {
		profile.CurrentEngagementScore = &engScore.Float64
	}

	return &profile, nil
}

var leadSortColumns = map[string]string{
	"created_at": "l.created_at",
	"updated_at": "l.updated_at",
	"email":      "l.email",
	"first_name": "l.first_name",
	"total_score": "ls.total_score",
}

// List retrieves leads matching the filter plus the total row count.
func (r *PGXLeadsRepository) List(ctx context.Context, filter dto.LeadListFilter) ([]LeadListItem, int, error) {
	var (
		clauses = []string{"l.deleted_at IS NULL"}
		args    []any
		idx     = 1
	)

	if filter.Status != "" {
		clauses = append(clauses, fmt.Sprintf("l.status = $%d", idx))
		args = append(args, filter.Status)
		idx++
	}
	if filter.Source != "" {
		clauses = append(clauses, fmt.Sprintf("l.source = $%d", idx))
		args = append(args, filter.Source)
		idx++
	}
	if filter.MinScore != nil {
		clauses = append(clauses, fmt.Sprintf("ls.total_score >= $%d", idx))
		args = append(args, *filter.MinScore)
		idx++
	}
	if filter.MaxScore != nil {
		clauses = append(clauses, fmt.Sprintf("ls.total_score <= $%d", idx))
		args = append(args, *filter.MaxScore)
		idx++
	}
	if filter.Search != "" {
		pattern := fmt.Sprintf("%%%s%%", filter.Search)
		clauses = append(clauses, fmt.Sprintf(
			"(l.email ILIKE $%d OR l.first_name ILIKE $%d OR l.last_name ILIKE $%d OR l.company_name ILIKE $%d)",
			idx, idx, idx, idx))
		args = append(args, pattern)
		idx++
	}

	whereClause := "WHERE " + strings.Join(clauses, " AND ")
	latestScoreJoin := `
        LEFT JOIN lead_scores ls ON l.id = ls.lead_id AND ls.calculated_at = (
            SELECT MAX(calculated_at) FROM lead_scores WHERE lead_id = l.id
        )`

	var total int
	countQuery := "SELECT COUNT(*) FROM leads l" + latestScoreJoin + " " + whereClause
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	sortColumn, ok := leadSortColumns[filter.SortBy]
	if !ok {
		sortColumn = "l.created_at"
	}
	sortDir := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		sortDir = "ASC"
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	offset := (page - 1) * perPage

	query := `
        SELECT
            l.id, l.email, l.first_name, l.last_name, l.company_name, l.job_title, l.phone,
            l.source, l.status, l.tags, l.metadata, l.organization_id, l.contact_id,
            l.deleted_at, l.created_at, l.updated_at,
            ls.total_score, ls.demographic_score, ls.firmographic_score,
            ls.behavioral_score, ls.engagement_score, ls.ml_score,
            o.name, o.industry, o.company_size
        FROM leads l` + latestScoreJoin + `
        LEFT JOIN organizations o ON l.organization_id = o.id
        ` + whereClause +
		fmt.Sprintf(" ORDER BY %s %s NULLS LAST LIMIT $%d OFFSET $%d", sortColumn, sortDir, idx, idx+1)
	args = append(args, perPage, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var items []LeadListItem
	for rows.Next() {
		item, err := scanLeadListItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate leads: %w", err)
	}

	return items, total, nil
}

// Update patches whitelisted lead fields. Absent pointers are left untouched.
func (r *PGXLeadsRepository) Update(ctx context.Context, id uuid.UUID, req dto.UpdateLeadRequest) (*entity.Lead, error) {
	setClauses := make([]string, 0)
	args := make([]any, 0)
	idx := 1

	addString := func(column string, value *string) {
		if value != nil {
			setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, idx))
			args = append(args, *value)
			idx++
		}
	}
	addString("first_name", req.FirstName)
	addString("last_name", req.LastName)
	addString("company_name", req.CompanyName)
	addString("job_title", req.JobTitle)
	addString("phone", req.Phone)
	addString("source", req.Source)
	addString("status", req.Status)

	if req.Tags != nil {
		encoded, err := json.Marshal(*req.Tags)
		if err != nil {
			return nil, fmt.Errorf("marshal tags: %w", err)
		}
		setClauses = append(setClauses, fmt.Sprintf("tags = $%d::jsonb", idx))
		args = append(args, encoded)
		idx++
	}
	if req.Metadata != nil {
		encoded, err := json.Marshal(*req.Metadata)
		if err != nil {
			return nil, fmt.Errorf("marshal metadata: %w", err)
		}
		setClauses = append(setClauses, fmt.Sprintf("metadata = $%d::jsonb", idx))
		args = append(args, encoded)
		idx++
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE leads SET %s WHERE id = $%d AND deleted_at IS NULL RETURNING %s`,
		strings.Join(setClauses, ", "), idx, leadColumns)

	lead, err := scanLead(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("update lead: %w", err)
	}
	return lead, nil
}

// MergeMetadata merges the given keys into the lead's metadata document.
func (r *PGXLeadsRepository) MergeMetadata(ctx context.Context, id uuid.UUID, metadata map[string]any) (*entity.Lead, error) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
        UPDATE leads
        SET metadata = metadata || $1::jsonb, updated_at = NOW()
        WHERE id = $2 AND deleted_at IS NULL
        RETURNING `+leadColumns, encoded, id)

	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("merge lead metadata: %w", err)
	}
	return lead, nil
}

// SoftDelete marks the lead deleted without removing the row.
func (r *PGXLeadsRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE leads SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("soft delete lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

// Stats aggregates dashboard counters across non-deleted leads.
func (r *PGXLeadsRepository) Stats(ctx context.Context) (*entity.LeadStats, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT
            COUNT(*) FILTER (WHERE l.deleted_at IS NULL) AS total_leads,
            COUNT(*) FILTER (WHERE l.status = 'new') AS new_leads,
            COUNT(*) FILTER (WHERE l.status = 'qualified') AS qualified_leads,
            COUNT(*) FILTER (WHERE l.status IN ('won', 'qualified')) AS converted_leads,
            AVG(ls.total_score) AS avg_score,
            COUNT(*) FILTER (WHERE ls.total_score >= 80) AS hot_leads,
            COUNT(*) FILTER (WHERE ls.total_score BETWEEN 50 AND 79) AS warm_leads,
            COUNT(*) FILTER (WHERE ls.total_score < 50) AS cold_leads,
            COUNT(DISTINCT l.source) AS active_sources
        FROM leads l
        LEFT JOIN lead_scores ls ON l.id = ls.lead_id AND ls.calculated_at = (
            SELECT MAX(calculated_at) FROM lead_scores WHERE lead_id = l.id
        )
        WHERE l.deleted_at IS NULL
    `)

	var (
		stats    entity.LeadStats
		avgScore sql.NullFloat64
	)
	err := row.Scan(
		&stats.TotalLeads, &stats.NewLeads, &stats.QualifiedLeads, &stats.ConvertedLeads,
		&avgScore, &stats.HotLeads, &stats.WarmLeads, &stats.ColdLeads, &stats.ActiveSources,
	)
	if err != nil {
		return nil, fmt.Errorf("query lead stats: %w", err)
	}
	if avgScore.Valid {
		stats.AvgScore = &avgScore.Float64
	}
	return &stats, nil
}

func scanLead(row pgx.Row) (*entity.Lead, error) {
	var (
		lead        entity.Lead
		firstName   sql.NullString
		lastName    sql.NullString
		companyName sql.NullString
		jobTitle    sql.NullString
		phone       sql.NullString
		tagsRaw     []byte
		metadataRaw []byte
		orgID       sql.NullString
		contactID   sql.NullString
		deletedAt   sql.NullTime
	)

	err := row.Scan(
		&lead.ID, &lead.Email, &firstName, &lastName, &companyName, &jobTitle, &phone,
		&lead.Source, &lead.Status, &tagsRaw, &metadataRaw, &orgID, &contactID,
		&deletedAt, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	lead.FirstName = nullableString(firstName)
	lead.LastName = nullableString(lastName)
	lead.CompanyName = nullableString(companyName)
	lead.JobTitle = nullableString(jobTitle)
	lead.Phone = nullableString(phone)
	if id, ok := nullableUUID(orgID); ok {
		lead.OrganizationID = &id
	}
	if id, ok := nullableUUID(contactID); ok {
		lead.ContactID = &id
	}
	if deletedAt.Valid {
		lead.DeletedAt = &deletedAt.Time
	}
	if err := unmarshalLeadJSON(tagsRaw, metadataRaw, &lead); err != nil {
		return nil, err
	}

	return &lead, nil
}

func scanLeadListItem(row pgx.Row) (*LeadListItem, error) {
	var (
		item        LeadListItem
		firstName   sql.NullString
		lastName    sql.NullString
		companyName sql.NullString
		jobTitle    sql.NullString
		phone       sql.NullString
		tagsRaw     []byte
		metadataRaw []byte
		orgID       sql.NullString
		contactID   sql.NullString
		deletedAt   sql.NullTime
		total       sql.NullFloat64
		demo        sql.NullFloat64
		firmo       sql.NullFloat64
		behav       sql.NullFloat64
		engage      sql.NullFloat64
		ml          sql.NullFloat64
		orgName     sql.NullString
		industry    sql.NullString
		companySize sql.NullString
	)

	err := row.Scan(
		&item.ID, &item.Email, &firstName, &lastName, &companyName, &jobTitle, &phone,
		&item.Source, &item.Status, &tagsRaw, &metadataRaw, &orgID, &contactID,
		&deletedAt, &item.CreatedAt, &item.UpdatedAt,
		&total, &demo, &firmo, &behav, &engage, &ml,
		&orgName, &industry, &companySize,
	)
	if err != nil {
		return nil, fmt.Errorf("scan lead row: %w", err)
	}

	item.FirstName = nullableString(firstName)
	item.LastName = nullableString(lastName)
	item.CompanyName = nullableString(companyName)
	item.JobTitle = nullableString(jobTitle)
	item.Phone = nullableString(phone)
	if id, ok := nullableUUID(orgID); ok {
		item.OrganizationID = &id
	}
	if id, ok := nullableUUID(contactID); ok {
		item.ContactID = &id
	}
	if err := unmarshalLeadJSON(tagsRaw, metadataRaw, &item.Lead); err != nil {
		return nil, err
	}

	assign := func(dst **float64, src sql.NullFloat64) {
		if src.Valid {
			value := src.Float64
			*dst = &value
		}
	}
	assign(&item.TotalScore, total)
	assign(&item.DemographicScore, demo)
	assign(&item.FirmographicScore, firmo)
	assign(&item.BehavioralScore, behav)
	assign(&item.EngagementScore, engage)
	assign(&item.MLScore, ml)
	item.OrganizationName = nullableString(orgName)
	item.Industry = nullableString(industry)
	item.CompanySize = nullableString(companySize)

	return &item, nil
}

func marshalLeadJSON(lead *entity.Lead) ([]byte, []byte, error) {
	if lead == nil {
		return nil, nil, fmt.Errorf("lead payload is nil")
	}

	tags := lead.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal tags: %w", err)
	}

	metadata := lead.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal metadata: %w", err)
	}

	return tagsJSON, metadataJSON, nil
}

func unmarshalLeadJSON(tagsRaw, metadataRaw []byte, lead *entity.Lead) error {
	lead.Tags = []string{}
	if len(tagsRaw) > 0 {
		if err := json.Unmarshal(tagsRaw, &lead.Tags); err != nil {
			return fmt.Errorf("decode lead tags: %w", err)
		}
	}
	lead.Metadata = map[string]any{}
	if len(metadataRaw) > 0 {
		if err := json.Unmarshal(metadataRaw, &lead.Metadata); err != nil {
			return fmt.Errorf("decode lead metadata: %w", err)
		}
	}
	return nil
}

func nullableString(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	return &value.String
}

func nullableUUID(value sql.NullString) (uuid.UUID, bool) {
	if !value.Valid || value.String == "" {
		return uuid.UUID{}, false
	}
	parsed, err := uuid.Parse(value.String)
	if err != nil {
		return uuid.UUID{}, false
	}
	return parsed, true
}
