package resolver

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const defaultTimeout = 15 * time.Second

// Strategy is one tier's attempt to satisfy a descriptor. Implementations
// must honor ctx cancellation and return a classified *Error on failure.
type Strategy interface {
	Name() string
	Resolve(ctx context.Context, d Descriptor) (*Result, error)
}

// Resolver executes a descriptor against the primary remote endpoint under a
// hard deadline and walks the fallback tiers in order on failure. The first
// tier to succeed wins; lower tiers are never consulted after a success.
type Resolver struct {
	primary   Strategy
	secondary Strategy
	synthetic Strategy
	timeout   time.Duration
	metrics   *Metrics
	logger    zerolog.Logger
}

// Option modifies a Resolver instance.
type Option func(*Resolver)

// WithTimeout overrides the primary-tier deadline.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Resolver) {
		r.timeout = timeout
	}
}

// WithLogger sets the resolver logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithMetrics enables tier outcome counters.
func WithMetrics(metrics *Metrics) Option {
	return func(r *Resolver) {
		r.metrics = metrics
	}
}

// New builds a Resolver over the three tier strategies, ordered primary,
// backing store, synthetic.
func New(primary, secondary, synthetic Strategy, options ...Option) (*Resolver, error) {
	if primary == nil {
		return nil, errors.New("[resolver.New] primary strategy is required")
	}
	if secondary == nil {
		return nil, errors.New("[resolver.New] secondary strategy is required")
	}
	if synthetic == nil {
		return nil, errors.New("[resolver.New] synthetic strategy is required")
	}

	r := &Resolver{
		primary:   primary,
		secondary: secondary,
		synthetic: synthetic,
		timeout:   defaultTimeout,
		logger:    zerolog.Nop(),
	}
	for _, opt := range options {
		opt(r)
	}
	return r, nil
}

// Execute resolves a descriptor through the tier chain.
//
// The primary call runs under a context deadline and is genuinely cancelled
// when it loses the race: a late answer can never overwrite a fallback
// result the caller already consumed. Action sub-paths and write-shaped
// descriptors that exhaust the durable tiers surface the classified error
// instead of a synthetic success.
func (r *Resolver) Execute(ctx context.Context, d Descriptor) (*Result, error) {
	primaryCtx, cancel := context.WithTimeout(ctx, r.timeout)
	res, primaryErr := r.primary.Resolve(primaryCtx, d)
	cancel()
	if primaryErr == nil {
		r.record(TierPrimary, outcomeSuccess)
		return res, nil
	}
	r.record(TierPrimary, outcomeFailure)
	r.logger.Debug().Err(primaryErr).Str("path", d.Path).Msg("primary tier failed")

	if d.Action != "" {
		// Action sub-paths have no backing-store or synthetic equivalent.
		return nil, primaryErr
	}
	r.countFallback()

	res, secondaryErr := r.secondary.Resolve(ctx, d)
	if secondaryErr == nil {
		r.record(TierBackingStore, outcomeSuccess)
		return res, nil
	}
	r.record(TierBackingStore, outcomeFailure)
	r.logger.Debug().Err(secondaryErr).Str("collection", d.Collection).Msg("backing-store tier failed")

	if !d.Method.ReadShaped() {
		return nil, wrapExhausted(secondaryErr, primaryErr)
	}
	r.countFallback()

	res, syntheticErr := r.synthetic.Resolve(ctx, d)
	if syntheticErr == nil {
		r.record(TierSynthetic, outcomeSuccess)
		return res, nil
	}
	r.record(TierSynthetic, outcomeFailure)

	return nil, wrapExhausted(syntheticErr, primaryErr)
}

// Timeout returns the primary-tier deadline in use.
func (r *Resolver) Timeout() time.Duration {
	return r.timeout
}

// wrapExhausted keeps the final tier's classification while retaining the
// primary failure in the chain for diagnostics.
func wrapExhausted(finalErr, primaryErr error) error {
	if finalErr == nil {
		return primaryErr
	}
	if primaryErr == nil || finalErr == primaryErr {
		return finalErr
	}
	return errors.Wrapf(finalErr, "all tiers exhausted (primary: %s)", primaryErr.Error())
}

func (r *Resolver) record(tier Tier, outcome string) {
	if r.metrics == nil {
		return
	}
	r.metrics.attempts.WithLabelValues(string(tier), outcome).Inc()
}

func (r *Resolver) countFallback() {
	if r.metrics == nil {
		return
	}
	r.metrics.fallbacks.Inc()
}
