package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/rcrowley/go-metrics"
)

// logMetrics writes a snapshot of every registered metric on each tick
func logMetrics(ctx context.Context, registry metrics.Registry, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		registry.Each(func(name string, metric interface{}) {
			switch m := metric.(type) {
			case metrics.Counter:
				logger.Info("metric", "name", name, "count", m.Count())
			case metrics.Timer:
				t := m.Snapshot()
				logger.Info("metric",
					"name", name,
					"count", t.Count(),
					"mean", time.Duration(t.Mean()).String(),
					"p99", time.Duration(t.Percentile(0.99)).String())
			}
		})
	}
}
