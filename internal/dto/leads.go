package dto

// CreateLeadRequest carries the payload for POST /leads.
type CreateLeadRequest struct {
	Email       string         `json:"email"`
	FirstName   *string        `json:"first_name,omitempty"`
	LastName    *string        `json:"last_name,omitempty"`
	CompanyName *string        `json:"company_name,omitempty"`
	JobTitle    *string        `json:"job_title,omitempty"`
	Phone       *string        `json:"phone,omitempty"`
	Source      string         `json:"source"`
	Tags        []string       `json:"tags,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// UpdateLeadRequest carries partial updates for PUT /leads/:id. Only the
// whitelisted fields below are applied.
type UpdateLeadRequest struct {
	FirstName   *string         `json:"first_name,omitempty"`
	LastName    *string         `json:"last_name,omitempty"`
	CompanyName *string         `json:"company_name,omitempty"`
	JobTitle    *string         `json:"job_title,omitempty"`
	Phone       *string         `json:"phone,omitempty"`
	Source      *string         `json:"source,omitempty"`
	Status      *string         `json:"status,omitempty"`
	Tags        *[]string       `json:"tags,omitempty"`
	Metadata    *map[string]any `json:"metadata,omitempty"`
}

// LeadListFilter contains query parameters for the lead listing endpoint.
type LeadListFilter struct {
	Status    string
	Source    string
	MinScore  *float64
	MaxScore  *float64
	Search    string
	SortBy    string
	SortOrder string
	Page      int
	PerPage   int
}

// Pagination describes the page window returned alongside list results.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}
