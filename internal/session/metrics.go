package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RegisterMetrics exposes the number of live sessions as a gauge read on
// every scrape.
func RegisterMetrics(reg prometheus.Registerer, m *Manager) prometheus.GaugeFunc {
	return promauto.With(reg).NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: "lostfound",
			Subsystem: "sessions",
			Name:      "active",
			Help:      "Number of sessions that have not expired or been revoked",
		},
		func() float64 {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			n, err := m.Active(ctx)
			if err != nil {
				slog.Warn("failed to count sessions", "error", err)
				return 0
			}
			return float64(n)
		},
	)
}
