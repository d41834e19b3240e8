package game

import "github.com/rcrowley/go-metrics"

const metricsPrefix = "coinflip.engine."

type engineMetrics struct {
	gamesCreated        metrics.Counter
	randomnessRequested metrics.Counter
	settlements         metrics.Counter
	settleNoops         metrics.Counter
	claimsPaid          metrics.Counter
	claimsRejected      metrics.Counter
	payoutVolume        metrics.Counter
	settleLatency       metrics.Timer
}

func newEngineMetrics(registry metrics.Registry) *engineMetrics {
	return &engineMetrics{
		gamesCreated:        metrics.GetOrRegisterCounter(metricsPrefix+"games_created", registry),
		randomnessRequested: metrics.GetOrRegisterCounter(metricsPrefix+"randomness_requested", registry),
		settlements:         metrics.GetOrRegisterCounter(metricsPrefix+"settlements", registry),
		settleNoops:         metrics.GetOrRegisterCounter(metricsPrefix+"settle_noops", registry),
		claimsPaid:          metrics.GetOrRegisterCounter(metricsPrefix+"claims_paid", registry),
		claimsRejected:      metrics.GetOrRegisterCounter(metricsPrefix+"claims_rejected", registry),
		payoutVolume:        metrics.GetOrRegisterCounter(metricsPrefix+"payout_volume", registry),
		settleLatency:       metrics.GetOrRegisterTimer(metricsPrefix+"settle_latency", registry),
	}
}
