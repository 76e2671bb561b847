package entity

import (
	"time"

	"github.com/google/uuid"
)

// Lead source values accepted at the API boundary.
var LeadSources = []string{
	"website", "referral", "social", "email", "paid_ads",
	"organic", "partner", "event", "other",
}

// ValidSource reports whether the given source is part of the accepted enum.
func ValidSource(source string) bool {
	for _, s := range LeadSources {
		if s == source {
			return true
		}
	}
	return false
}

// Lead represents a sales prospect being tracked, enriched, and scored.
type Lead struct {
	ID             uuid.UUID      `json:"id"`
	Email          string         `json:"email"`
	FirstName      *string        `json:"first_name,omitempty"`
	LastName       *string        `json:"last_name,omitempty"`
	CompanyName    *string        `json:"company_name,omitempty"`
	JobTitle       *string        `json:"job_title,omitempty"`
	Phone          *string        `json:"phone,omitempty"`
	Source         string         `json:"source"`
	Status         string         `json:"status"`
	Tags           []string       `json:"tags"`
	Metadata       map[string]any `json:"metadata"`
	OrganizationID *uuid.UUID     `json:"organization_id,omitempty"`
	ContactID      *uuid.UUID     `json:"contact_id,omitempty"`
	DeletedAt      *time.Time     `json:"deleted_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Organization holds firmographic attributes joined onto a lead.
type Organization struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Industry         *string   `json:"industry,omitempty"`
	CompanySize      *string   `json:"company_size,omitempty"`
	AnnualRevenue    *float64  `json:"annual_revenue,omitempty"`
	DataQualityScore *float64  `json:"data_quality_score,omitempty"`
}

// Contact holds demographic attributes joined onto a lead.
type Contact struct {
	ID             uuid.UUID `json:"id"`
	JobTitle       *string   `json:"job_title,omitempty"`
	SeniorityLevel *string   `json:"seniority_level,omitempty"`
	Department     *string   `json:"department,omitempty"`
	EmailValidated bool      `json:"email_validated"`
}

// LeadProfile is the joined view the scoring engine consumes: the lead plus
// its organization, contact, and the engagement score of the latest snapshot.
type LeadProfile struct {
	Lead
	Organization           *Organization `json:"organization,omitempty"`
	Contact                *Contact      `json:"contact,omitempty"`
	CurrentEngagementScore *float64      `json:"current_engagement_score,omitempty"`
}

// LeadStats aggregates dashboard counters across the lead catalogue.
type LeadStats struct {
	TotalLeads     int      `json:"total_leads"`
	NewLeads       int      `json:"new_leads"`
	QualifiedLeads int      `json:"qualified_leads"`
	ConvertedLeads int      `json:"converted_leads"`
	AvgScore       *float64 `json:"avg_score,omitempty"`
	HotLeads       int      `json:"hot_leads"`
	WarmLeads      int      `json:"warm_leads"`
	ColdLeads      int      `json:"cold_leads"`
	ActiveSources  int      `json:"active_sources"`
}
