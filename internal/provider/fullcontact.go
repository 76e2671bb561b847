package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/config"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/entity"
)

const fullContactDefaultBaseURL = "https://api.fullcontact.com"

// FullContact resolves person identity through the person.enrich endpoint.
type FullContact struct {
	// BaseURL is overridable for tests.
	BaseURL string
	apiKey  string
	client  *http.Client
}

// NewFullContact builds a FullContact client from provider configuration.
func NewFullContact(cfg config.ProviderConfig) *FullContact {
	return &FullContact{
		BaseURL: fullContactDefaultBaseURL,
		apiKey:  cfg.APIKey,
		client:  newHTTPClient(cfg.Timeout),
	}
}

// Name implements Provider.
func (f *FullContact) Name() string { return "fullcontact" }

// Enrich posts the lead's email and flattens the social profile list into
// per-network fields.
func (f *FullContact) Enrich(ctx context.Context, lead *entity.Lead) entity.EnrichmentResult {
	body, err := json.Marshal(map[string]string{"email": lead.Email})
	if err != nil {
		return failedResult(f.Name(), err)
	}

	endpoint := f.BaseURL + "/v3/person.enrich"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return failedResult(f.Name(), err)
	}
	req.Header.Set("Authorization", "Bearer "+f.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return failedResult(f.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return failedResult(f.Name(), fmt.Errorf("fullcontact returned status %d", resp.StatusCode))
	}

	var payload struct {
		FullName       string `json:"fullName"`
		FirstName      string `json:"firstName"`
		LastName       string `json:"lastName"`
		Location       string `json:"location"`
		SocialProfiles []struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"socialProfiles"`
		Photos       []map[string]any `json:"photos"`
		Demographics map[string]any   `json:"demographics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return failedResult(f.Name(), fmt.Errorf("decode fullcontact response: %w", err))
	}

	socialHandle := func(network string) any {
		for _, profile := range payload.SocialProfiles {
			if profile.Type == network {
				return profile.Value
			}
		}
		return nil
	}

	return entity.EnrichmentResult{
		Success:  true,
		Provider: f.Name(),
		Data: map[string]any{
			"fullName":     payload.FullName,
			"firstName":    payload.FirstName,
			"lastName":     payload.LastName,
			"location":     payload.Location,
			"linkedin":     socialHandle("linkedin"),
			"twitter":      socialHandle("twitter"),
			"photos":       payload.Photos,
			"demographics": payload.Demographics,
		},
		CreditsUsed: 1,
	}
}
