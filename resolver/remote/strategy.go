package remote

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/docuvault/go-admin-core/resolver"
	"github.com/pkg/errors"
)

var _ resolver.Strategy = (*Strategy)(nil)

// Strategy adapts a Caller into the resolver's primary tier. Failures come
// back classified so the resolver can decide whether a fallback is allowed.
type Strategy struct {
	caller Caller
}

// NewStrategy wraps a Caller.
func NewStrategy(caller Caller) (*Strategy, error) {
	if caller == nil {
		return nil, errors.New("[remote.NewStrategy] caller is required")
	}
	return &Strategy{caller: caller}, nil
}

// Name implements resolver.Strategy.
func (s *Strategy) Name() string {
	return string(resolver.TierPrimary)
}

// Resolve sends the descriptor verbatim to the remote endpoint.
func (s *Strategy) Resolve(ctx context.Context, d resolver.Descriptor) (*resolver.Result, error) {
	resp, err := s.caller.Do(ctx, d.Verb, d.Path, d.Body, d.Token)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, resolver.NewTimeout(err)
		}
		return nil, resolver.NewTransport(err)
	}

	if resp.Status < 200 || resp.Status >= 300 {
		return nil, resolver.NewRemoteRejected(resp.Status, resp.Body)
	}

	result := &resolver.Result{
		Status:  resp.Status,
		Tier:    resolver.TierPrimary,
		Durable: true,
	}
	if resp.Status == http.StatusNoContent || len(resp.Body) == 0 {
		return result, nil
	}
	if !json.Valid(resp.Body) {
		return nil, resolver.NewTransport(errors.Errorf("unparseable payload for %s %s", d.Verb, d.Path))
	}
	result.Data = json.RawMessage(resp.Body)
	return result, nil
}
