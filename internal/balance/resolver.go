// Package balance determines a user's vendor-side credit balance when the
// internal ledger is not authoritative, e.g. during credential validation.
// The vendor exposes no stable, documented balance API, so resolution is an
// ordered chain of exploratory strategies; the chain must tolerate endpoint
// shapes changing without notice.
package balance

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// FallbackCredits is returned when every strategy fails. Availability is
// preferred over accuracy: a stale or assumed balance must never block
// credential validation.
const FallbackCredits float64 = 100

// DefaultResolveTimeout bounds one full run of the chain.
const DefaultResolveTimeout = 30 * time.Second

// Credentials identify a user against the vendor.
type Credentials struct {
	APIKey string
}

// Strategy resolves the balance one way. ok is false when the strategy
// cannot produce a number, in which case the next strategy in the chain
// runs. Strategies must be independently usable and testable.
type Strategy interface {
	Name() string
	TryResolve(ctx context.Context, creds Credentials) (float64, bool)
}

// Resolver runs an ordered strategy chain; the first success wins.
type Resolver struct {
	strategies []Strategy
	timeout    time.Duration
	logger     zerolog.Logger
}

// NewResolver creates a Resolver over the given strategies, tried in order.
func NewResolver(logger zerolog.Logger, strategies ...Strategy) *Resolver {
	return &Resolver{
		strategies: strategies,
		timeout:    DefaultResolveTimeout,
		logger:     logger,
	}
}

// WithTimeout overrides the per-resolution timeout budget.
func (r *Resolver) WithTimeout(d time.Duration) *Resolver {
	if d > 0 {
		r.timeout = d
	}
	return r
}

// Resolve returns the first balance any strategy produces, or
// FallbackCredits when the chain is exhausted. It never returns an error:
// total failure substitutes the fallback.
func (r *Resolver) Resolve(ctx context.Context, creds Credentials) float64 {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	for _, s := range r.strategies {
		if ctx.Err() != nil {
			break
		}
		credits, ok := s.TryResolve(ctx, creds)
		if !ok {
			r.logger.Debug().Str("strategy", s.Name()).Msg("balance: strategy yielded nothing")
			continue
		}
		r.logger.Info().Str("strategy", s.Name()).Float64("credits", credits).Msg("balance: resolved")
		return credits
	}

	r.logger.Warn().Float64("fallback", FallbackCredits).Msg("balance: all strategies failed, using fallback")
	return FallbackCredits
}
