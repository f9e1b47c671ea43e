package translation

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// RateLimited bounds the request rate reaching a wrapped provider.
type RateLimited struct {
	next    Provider
	limiter *rate.Limiter
}

// NewRateLimited allows perSecond calls per second with a burst of one.
// A non-positive rate disables limiting.
func NewRateLimited(next Provider, perSecond float64) *RateLimited {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (p *RateLimited) Name() string {
	return p.next.Name()
}

func (p *RateLimited) SupportedLanguages() []string {
	return p.next.SupportedLanguages()
}

func (p *RateLimited) Translate(ctx context.Context, req TranslateRequest) (*TranslateResponse, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for %s rate limit: %w", p.next.Name(), err)
	}
	return p.next.Translate(ctx, req)
}

// ModelName exposes the wrapped provider's model when it has one.
func (p *RateLimited) ModelName() string {
	return modelNameFromProvider(p.next)
}
