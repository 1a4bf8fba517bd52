package payment

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnknownProvider indicates no adapter is registered under a name.
var ErrUnknownProvider = errors.New("unknown payment provider")

// ErrMalformedWebhook indicates a callback payload could not be decoded.
var ErrMalformedWebhook = errors.New("malformed webhook payload")

// Intent is a payable reference created at a provider.
type Intent struct {
	ID          string
	ApprovalURL string
}

// Notification is a provider callback normalized to common fields. RawStatus
// keeps the provider's own vocabulary; Approved on the owning adapter decides
// what counts as settled.
type Notification struct {
	ExternalPaymentID string
	OrderRef          string
	RawStatus         string
}

// Provider is the capability contract a payment integration fulfills.
// Adding a provider means adding one implementation, nothing else.
type Provider interface {
	Name() string
	CreateIntent(ctx context.Context, orderRef string, amount int64, currency string) (*Intent, error)
	Verify(ctx context.Context, externalPaymentID string) (string, error)
	ParseWebhook(body []byte) (*Notification, error)
	Approved(rawStatus string) bool
}

// Registry resolves providers by name.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry indexes the given providers.
func NewRegistry(providers ...Provider) *Registry {
	index := make(map[string]Provider, len(providers))
	for _, p := range providers {
		index[p.Name()] = p
	}
	return &Registry{providers: index}
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (Provider, error) {
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownProvider)
	}
	return p, nil
}

// Names lists registered provider names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
