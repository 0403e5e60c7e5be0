package suggest

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"brd-tui/internal/brd"
)

// Outcome labels recorded per suggestion request.
const (
	outcomeOK          = "ok"
	outcomeUnavailable = "unavailable"
	outcomeTimeout     = "timeout"
)

// Metrics counts and times suggestion requests.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the gateway collectors and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "brd_suggest_requests_total",
			Help: "Suggestion requests by record kind and outcome.",
		}, []string{"kind", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "brd_suggest_duration_seconds",
			Help:    "Wall time of suggestion requests.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"kind"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.duration)
	}
	return m
}

func (m *Metrics) observe(k brd.Kind, started time.Time, err error) {
	if m == nil {
		return
	}
	outcome := outcomeOK
	switch {
	case errors.Is(err, ErrTimeout):
		outcome = outcomeTimeout
	case err != nil:
		outcome = outcomeUnavailable
	}
	m.requests.WithLabelValues(string(k), outcome).Inc()
	m.duration.WithLabelValues(string(k)).Observe(time.Since(started).Seconds())
}
