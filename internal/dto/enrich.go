package dto

// EnrichLeadRequest optionally names a preferred provider for POST /leads/:id/enrich.
type EnrichLeadRequest struct {
	Provider string `json:"provider,omitempty"`
}

// BulkEnrichRequest carries the payload for POST /leads/bulk/enrich.
type BulkEnrichRequest struct {
	LeadIDs  []string `json:"lead_ids"`
	Provider string   `json:"provider,omitempty"`
}

// BulkRescoreRequest carries the payload for POST /leads/bulk/rescore.
type BulkRescoreRequest struct {
	LeadIDs []string `json:"lead_ids"`
}

// BulkEnrichItem is one per-lead entry in a bulk enrichment response.
type BulkEnrichItem struct {
	LeadID   string         `json:"lead_id"`
	Enriched bool           `json:"enriched,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// BulkRescoreItem is one per-lead entry in a bulk rescore response.
type BulkRescoreItem struct {
	LeadID  string  `json:"lead_id"`
	Score   float64 `json:"score,omitempty"`
	Error   string  `json:"error,omitempty"`
	Success bool    `json:"success"`
}
