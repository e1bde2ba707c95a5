package seed

import (
	"context"
	"net/http"

	"github.com/docuvault/go-admin-core/resolver"
	"github.com/pkg/errors"
)

var _ resolver.Strategy = (*Strategy)(nil)

// Strategy adapts the Provider into the resolver's last tier. It only
// answers read-shaped descriptors for known collections; everything else is
// a translation failure so the original error wins.
type Strategy struct {
	provider *Provider
}

// NewStrategy wraps a Provider.
func NewStrategy(provider *Provider) (*Strategy, error) {
	if provider == nil {
		return nil, errors.New("[seed.NewStrategy] provider is required")
	}
	return &Strategy{provider: provider}, nil
}

// Name implements resolver.Strategy.
func (s *Strategy) Name() string {
	return string(resolver.TierSynthetic)
}

// Resolve implements resolver.Strategy.
func (s *Strategy) Resolve(_ context.Context, d resolver.Descriptor) (*resolver.Result, error) {
	if !d.Method.ReadShaped() {
		return nil, resolver.NewTranslation(errors.Errorf("no synthetic equivalent for %q on %q", d.Method, d.Collection))
	}

	switch d.Method {
	case resolver.MethodList:
		records, err := s.provider.Seed(d.Collection)
		if err != nil {
			return nil, resolver.NewTranslation(err)
		}
		return syntheticResult(records), nil
	case resolver.MethodGet:
		record, err := s.provider.Get(d.Collection, d.ID)
		if errors.Is(err, ErrRecordNotFound) {
			return nil, resolver.NewNotFound(err)
		}
		if err != nil {
			return nil, resolver.NewTranslation(err)
		}
		return syntheticResult(record), nil
	default:
		return nil, resolver.NewTranslation(errors.Errorf("unsupported method %q", d.Method))
	}
}

func syntheticResult(data any) *resolver.Result {
	return &resolver.Result{
		Data:    data,
		Status:  http.StatusOK,
		Tier:    resolver.TierSynthetic,
		Durable: false,
	}
}
