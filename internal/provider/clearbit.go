package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/config"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/entity"
)

const clearbitDefaultBaseURL = "https://person.clearbit.com"

// Clearbit queries the combined person+company lookup endpoint.
type Clearbit struct {
	// BaseURL is overridable for tests.
	BaseURL string
	apiKey  string
	client  *http.Client
}

// NewClearbit builds a Clearbit client from provider configuration.
func NewClearbit(cfg config.ProviderConfig) *Clearbit {
	return &Clearbit{
		BaseURL: clearbitDefaultBaseURL,
		apiKey:  cfg.APIKey,
		client:  newHTTPClient(cfg.Timeout),
	}
}

// Name implements Provider.
func (c *Clearbit) Name() string { return "clearbit" }

// Enrich looks up the lead's email. A response without a person section is
// reported as a miss, not an error.
func (c *Clearbit) Enrich(ctx context.Context, lead *entity.Lead) entity.EnrichmentResult {
	endpoint := fmt.Sprintf("%s/v2/combined/find?email=%s", c.BaseURL, url.QueryEscape(lead.Email))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return failedResult(c.Name(), err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return failedResult(c.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return failedResult(c.Name(), fmt.Errorf("clearbit returned status %d", resp.StatusCode))
	}

	var payload struct {
		Person  map[string]any `json:"person"`
		Company map[string]any `json:"company"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return failedResult(c.Name(), fmt.Errorf("decode clearbit response: %w", err))
	}

	if payload.Person == nil {
		return entity.EnrichmentResult{Provider: c.Name(), Error: "No data found"}
	}

	person := map[string]any{}
	for _, key := range []string{"name", "email", "location", "linkedin", "twitter", "bio"} {
		if value, ok := payload.Person[key]; ok {
			person[key] = value
		}
	}

	return entity.EnrichmentResult{
		Success:  true,
		Provider: c.Name(),
		Data: map[string]any{
			"person":  person,
			"company": payload.Company,
		},
		CreditsUsed: 1,
	}
}

func failedResult(name string, err error) entity.EnrichmentResult {
	return entity.EnrichmentResult{Provider: name, Error: err.Error()}
}
