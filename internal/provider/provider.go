// Package provider implements the third-party enrichment provider clients and
// the ordered registry the orchestrator walks.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/config"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/entity"
)

// Provider is a single enrichment data source. Enrich never panics; transport
// and payload failures are reported through the result's Error field.
type Provider interface {
	Name() string
	Enrich(ctx context.Context, lead *entity.Lead) entity.EnrichmentResult
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// Registry holds the configured providers in registration order. Walk order is
// deterministic: it follows the configured provider order, not map iteration.
type Registry struct {
	ordered []Provider
	byName  map[string]Provider
}

// NewRegistry builds the registry from configuration, instantiating one client
// per enabled provider in the configured order.
func NewRegistry(cfg *config.Config) *Registry {
	registry := &Registry{byName: make(map[string]Provider)}
	for _, name := range cfg.ProviderOrder {
		pc, ok := cfg.Providers[name]
		if !ok || !pc.Enabled {
			continue
		}
		switch name {
		case "clearbit":
			registry.Register(NewClearbit(pc))
		case "hunter":
			registry.Register(NewHunter(pc))
		case "fullcontact":
			registry.Register(NewFullContact(pc))
		}
	}
	return registry
}

// Register appends a provider, replacing any prior entry with the same name
// while keeping its original position.
func (r *Registry) Register(p Provider) {
	if _, exists := r.byName[p.Name()]; !exists {
		r.ordered = append(r.ordered, p)
	} else {
		for i, existing := range r.ordered {
			if existing.Name() == p.Name() {
				r.ordered[i] = p
				break
			}
		}
	}
	r.byName[p.Name()] = p
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown enrichment provider %q", name)
	}
	return p, nil
}

// All returns the providers in registration order.
func (r *Registry) All() []Provider {
	out := make([]Provider, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Names returns the registered provider names in order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.ordered))
	for _, p := range r.ordered {
		names = append(names, p.Name())
	}
	return names
}
