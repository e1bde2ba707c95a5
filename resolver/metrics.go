package resolver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Metrics holds the resolver's tier outcome counters.
type Metrics struct {
	attempts  *prometheus.CounterVec
	fallbacks prometheus.Counter
}

// NewMetrics registers the resolver counters with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		attempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "resolver_tier_attempts_total",
			Help: "Resolver attempts per tier and outcome.",
		}, []string{"tier", "outcome"}),
		fallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "resolver_fallbacks_total",
			Help: "Number of times the resolver advanced to a lower tier.",
		}),
	}
}
