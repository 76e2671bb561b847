package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"

	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/dto"
	"github.com/pouyakhodadust-eng/customer-data-enrichment/internal/entity"
)

var (
	emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}$`)
	idnaProfile  = idna.Lookup
)

const defaultPhoneRegion = "US"

// ErrValidation marks a payload rejection. Handlers translate it to a 400.
var ErrValidation = errors.New("validation failed")

// DNSResolver abstracts MX lookups to simplify testing.
type DNSResolver interface {
	LookupMX(ctx context.Context, domain string) ([]*net.MX, error)
}

// LeadValidator normalizes and checks inbound lead payloads before they hit
// the store.
type LeadValidator struct {
	DefaultRegion string
	dnsResolver   DNSResolver
	checkMX       bool
}

// LeadValidatorOption configures optional dependencies.
type LeadValidatorOption func(*LeadValidator)

// WithDNSResolver overrides the default DNS resolver.
func WithDNSResolver(resolver DNSResolver) LeadValidatorOption {
	return func(v *LeadValidator) {
		v.dnsResolver = resolver
	}
}

// WithMXCheck toggles MX record verification of email domains.
func WithMXCheck(enabled bool) LeadValidatorOption {
	return func(v *LeadValidator) {
		v.checkMX = enabled
	}
}

// NewLeadValidator builds a validator with sensible defaults. MX verification
// is off by default so lead capture works without outbound DNS.
func NewLeadValidator(defaultRegion string, opts ...LeadValidatorOption) *LeadValidator {
	region := strings.ToUpper(strings.TrimSpace(defaultRegion))
	if region == "" {
		region = defaultPhoneRegion
	}
	v := &LeadValidator{
		DefaultRegion: region,
		dnsResolver:   systemDNSResolver{},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ValidateCreate checks a create payload and returns the normalized lead.
func (v *LeadValidator) ValidateCreate(ctx context.Context, req dto.CreateLeadRequest) (*entity.Lead, error) {
	email, err := v.NormalizeEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	source := strings.ToLower(strings.TrimSpace(req.Source))
	if source == "" {
		source = "other"
	}
	if !entity.ValidSource(source) {
		return nil, fmt.Errorf("%w: unknown source %q", ErrValidation, req.Source)
	}

	lead := &entity.Lead{
		Email:       email,
		FirstName:   trimPtr(req.FirstName),
		LastName:    trimPtr(req.LastName),
		CompanyName: trimPtr(req.CompanyName),
		JobTitle:    trimPtr(req.JobTitle),
		Source:      source,
		Status:      "new",
		Tags:        req.Tags,
		Metadata:    req.Metadata,
	}

	if req.Phone != nil {
		normalized := v.NormalizePhone(*req.Phone)
		if normalized == "" {
			return nil, fmt.Errorf("%w: invalid phone number %q", ErrValidation, *req.Phone)
		}
		lead.Phone = &normalized
	}

	return lead, nil
}

// ValidateUpdate checks the mutable fields of an update payload in place.
func (v *LeadValidator) ValidateUpdate(req *dto.UpdateLeadRequest) error {
	if req.Source != nil {
		source := strings.ToLower(strings.TrimSpace(*req.Source))
		if !entity.ValidSource(source) {
			return fmt.Errorf("%w: unknown source %q", ErrValidation, *req.Source)
		}
		*req.Source = source
	}

	if req.Phone != nil && strings.TrimSpace(*req.Phone) != "" {
		normalized := v.NormalizePhone(*req.Phone)
		if normalized == "" {
			return fmt.Errorf("%w: invalid phone number %q", ErrValidation, *req.Phone)
		}
		*req.Phone = normalized
	}

	return nil
}

// NormalizeEmail lowercases, checks shape, punycodes the domain, and
// optionally verifies MX records.
func (v *LeadValidator) NormalizeEmail(ctx context.Context, raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrValidation)
	}
	if !emailPattern.MatchString(email) {
		return "", fmt.Errorf("%w: invalid email %q", ErrValidation, raw)
	}

	parts := strings.SplitN(email, "@", 2)
	domain := parts[1]
	if !isDomainValid(domain) {
		return "", fmt.Errorf("%w: invalid email domain %q", ErrValidation, domain)
	}
	asciiDomain, err := idnaProfile.ToASCII(domain)
	if err != nil || asciiDomain == "" {
		return "", fmt.Errorf("%w: invalid email domain %q", ErrValidation, domain)
	}

	if v.checkMX && !v.hasMXRecord(ctx, asciiDomain) {
		return "", fmt.Errorf("%w: email domain %q has no MX records", ErrValidation, domain)
	}

	return parts[0] + "@" + asciiDomain, nil
}

// NormalizePhone parses the number against the default region and renders it
// in E.164. An unparseable or impossible number yields an empty string.
func (v *LeadValidator) NormalizePhone(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	number, err := phonenumbers.Parse(raw, v.DefaultRegion)
	if err != nil {
		return ""
	}
	if !phonenumbers.IsPossibleNumber(number) || !phonenumbers.IsValidNumber(number) {
		return ""
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

func (v *LeadValidator) hasMXRecord(ctx context.Context, domain string) bool {
	if v.dnsResolver == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	records, err := v.dnsResolver.LookupMX(ctx, domain)
	return err == nil && len(records) > 0
}

func isDomainValid(domain string) bool {
	if strings.Count(domain, ".") == 0 {
		return false
	}
	parts := strings.Split(domain, ".")
	for _, part := range parts {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

type systemDNSResolver struct{}

func (systemDNSResolver) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	return net.DefaultResolver.LookupMX(ctx, domain)
}
