package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// RegisterPgxPoolMetrics exposes pgx connection pool statistics as Prometheus gauges.
func RegisterPgxPoolMetrics(reg prometheus.Registerer, pool *pgxpool.Pool) error {
	gauges := []struct {
		name  string
		help  string
		value func(*pgxpool.Stat) float64
	}{
		{"pgxpool_acquired_conns", "Number of currently acquired connections in the pool", func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) }},
		{"pgxpool_max_conns", "Maximum number of connections in the pool", func(s *pgxpool.Stat) float64 { return float64(s.MaxConns()) }},
		{"pgxpool_total_conns", "Total number of connections in the pool", func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) }},
		{"pgxpool_idle_conns", "Number of idle connections in the pool", func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) }},
	}
	for _, g := range gauges {
		collector := prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: g.name, Help: g.help}, func() float64 {
			return g.value(pool.Stat())
		})
		if err := reg.Register(collector); err != nil {
			return err
		}
	}
	return nil
}

// RegisterGaugeFunc exposes an arbitrary value, such as a circuit breaker state, as a gauge.
func RegisterGaugeFunc(reg prometheus.Registerer, name, help string, fn func() float64) error {
	return reg.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{Name: name, Help: help}, fn))
}
