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

const hunterDefaultBaseURL = "https://api.hunter.io"

// Hunter verifies email deliverability through the email-verifier endpoint.
type Hunter struct {
	// BaseURL is overridable for tests.
	BaseURL string
	apiKey  string
	client  *http.Client
}

// NewHunter builds a Hunter client from provider configuration.
func NewHunter(cfg config.ProviderConfig) *Hunter {
	return &Hunter{
		BaseURL: hunterDefaultBaseURL,
		apiKey:  cfg.APIKey,
		client:  newHTTPClient(cfg.Timeout),
	}
}

// Name implements Provider.
func (h *Hunter) Name() string { return "hunter" }

// Enrich runs email verification and normalizes the verifier fields.
func (h *Hunter) Enrich(ctx context.Context, lead *entity.Lead) entity.EnrichmentResult {
	params := url.Values{}
	params.Set("email", lead.Email)
	params.Set("api_key", h.apiKey)

	endpoint := fmt.Sprintf("%s/v2/email-verifier?%s", h.BaseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return failedResult(h.Name(), err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return failedResult(h.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return failedResult(h.Name(), fmt.Errorf("hunter returned status %d", resp.StatusCode))
	}

	var payload struct {
		Data struct {
			Email      string  `json:"email"`
			Result     string  `json:"result"`
			Score      float64 `json:"score"`
			Regexp     bool    `json:"regexp"`
			Gibberish  bool    `json:"gibberish"`
			Disposable bool    `json:"disposable"`
			Webmail    bool    `json:"webmail"`
			MXRecords  bool    `json:"mx_records"`
			SMTPServer bool    `json:"smtp_server"`
			SMTPCheck  bool    `json:"smtp_check"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return failedResult(h.Name(), fmt.Errorf("decode hunter response: %w", err))
	}

	return entity.EnrichmentResult{
		Success:  true,
		Provider: h.Name(),
		Data: map[string]any{
			"email":       payload.Data.Email,
			"validity":    payload.Data.Result,
			"score":       payload.Data.Score,
			"regexp":      payload.Data.Regexp,
			"gibberish":   payload.Data.Gibberish,
			"disposable":  payload.Data.Disposable,
			"webmail":     payload.Data.Webmail,
			"mx_records":  payload.Data.MXRecords,
			"smtp_server": payload.Data.SMTPServer,
			"smtp_check":  payload.Data.SMTPCheck,
		},
		CreditsUsed: 1,
	}
}
