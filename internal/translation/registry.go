package translation

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"
	"time"
)

// DefaultProviderName is used when no provider is configured.
const DefaultProviderName = "google"

// Registry stores translation providers and resolves a default provider.
type Registry struct {
	providers       map[string]Provider
	defaultProvider string
}

func NewRegistry(defaultProvider string) *Registry {
	normalizedDefault := normalizeProviderName(defaultProvider)
	if normalizedDefault == "" {
		normalizedDefault = DefaultProviderName
	}

	return &Registry{
		providers:       make(map[string]Provider),
		defaultProvider: normalizedDefault,
	}
}

// RegistryOptions configures the built-in providers.
type RegistryOptions struct {
	DefaultProvider string
	GoogleEndpoint  string
	LocalEndpoint   string
	LocalModel      string
	RateLimit       float64
	Timeout         time.Duration
}

// NewRegistryFromOptions registers the google and local providers, each
// behind its own outbound rate limiter.
func NewRegistryFromOptions(opts RegistryOptions) *Registry {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	registry := NewRegistry(opts.DefaultProvider)
	_ = registry.Register(NewRateLimited(
		NewGoogleProvider(opts.GoogleEndpoint, &http.Client{Timeout: timeout}),
		opts.RateLimit,
	))
	_ = registry.Register(NewRateLimited(
		NewLocalProvider(opts.LocalEndpoint, opts.LocalModel, &http.Client{Timeout: timeout}),
		opts.RateLimit,
	))

	registry.ensureDefault()
	return registry
}

// ErrUnknownProvider is returned for a provider name nothing registered.
var ErrUnknownProvider = errors.New("translation provider is not registered")

// Register adds one provider, replacing any provider with the same name.
func (r *Registry) Register(provider Provider) error {
	switch {
	case r == nil:
		return errors.New("registry is nil")
	case provider == nil:
		return errors.New("provider is nil")
	}
	name := normalizeProviderName(provider.Name())
	if name == "" {
		return errors.New("provider name is required")
	}
	r.providers[name] = provider
	return nil
}

// Provider resolves name case-insensitively; empty selects the default.
func (r *Registry) Provider(name string) (Provider, error) {
	if r == nil || len(r.providers) == 0 {
		return nil, errors.New("no translation providers are registered")
	}
	key := normalizeProviderName(name)
	if key == "" {
		key = r.defaultProvider
	}
	if provider, ok := r.providers[key]; ok {
		return provider, nil
	}
	return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownProvider, key, strings.Join(r.ProviderNames(), ", "))
}

func (r *Registry) DefaultProvider() string {
	if r == nil {
		return ""
	}
	return r.defaultProvider
}

func (r *Registry) ProviderNames() []string {
	if r == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(r.providers))
}

// ensureDefault keeps the configured default when it exists, else google,
// else the first name alphabetically.
func (r *Registry) ensureDefault() {
	for _, candidate := range []string{r.defaultProvider, DefaultProviderName} {
		if _, ok := r.providers[candidate]; ok {
			r.defaultProvider = candidate
			return
		}
	}
	if names := r.ProviderNames(); len(names) > 0 {
		r.defaultProvider = names[0]
	}
}

func normalizeProviderName(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
