package dto

// WebhookLeadPayload is the lead body carried by lead.created webhooks.
type WebhookLeadPayload struct {
	Email       string         `json:"email"`
	FirstName   *string        `json:"first_name,omitempty"`
	LastName    *string        `json:"last_name,omitempty"`
	CompanyName *string        `json:"company_name,omitempty"`
	JobTitle    *string        `json:"job_title,omitempty"`
	Phone       *string        `json:"phone,omitempty"`
	Source      string         `json:"source,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// WebhookLeadCreatedRequest wraps the inbound lead.created payload.
type WebhookLeadCreatedRequest struct {
	Lead *WebhookLeadPayload `json:"lead"`
}

// WebhookLeadUpdatedRequest carries metadata merges for an existing lead.
type WebhookLeadUpdatedRequest struct {
	LeadID  string `json:"lead_id"`
	Updates struct {
		Metadata map[string]any `json:"metadata,omitempty"`
	} `json:"updates"`
}

// WebhookEngagementRequest records one engagement interaction for a lead.
type WebhookEngagementRequest struct {
	LeadID         string  `json:"lead_id"`
	EngagementType string  `json:"engagement_type"`
	Channel        string  `json:"channel"`
	Subject        *string `json:"subject,omitempty"`
	Content        *string `json:"content,omitempty"`
	Duration       int     `json:"duration,omitempty"`
	OccurredAt     string  `json:"occurred_at,omitempty"`
}

// WebhookFormSubmittedRequest maps a marketing form submission onto a lead.
type WebhookFormSubmittedRequest struct {
	FormID      string         `json:"form_id"`
	Email       string         `json:"email"`
	FirstName   *string        `json:"first_name,omitempty"`
	LastName    *string        `json:"last_name,omitempty"`
	CompanyName *string        `json:"company_name,omitempty"`
	Fields      map[string]any `json:"fields,omitempty"`
}

// WebhookBatchEvent is one entry in a batch webhook submission.
type WebhookBatchEvent struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

// WebhookBatchRequest carries multiple events in one call.
type WebhookBatchRequest struct {
	Events []WebhookBatchEvent `json:"events"`
}

// WebhookBatchItem reports the queueing outcome for one batch event.
type WebhookBatchItem struct {
	Type    string `json:"type"`
	Status  string `json:"status"`
	EventID string `json:"event_id,omitempty"`
	Error   string `json:"error,omitempty"`
}
