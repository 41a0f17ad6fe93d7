// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package querycache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// Names
const (
	FetchCounter        = "cloudscan_cache_fetches_total"
	InvalidationCounter = "cloudscan_cache_invalidations_total"
	EntriesGauge        = "cloudscan_cache_entries"
)

// Labels
const (
	OutcomeLabel = "outcome"
)

// Label Values
const (
	SuccessOutcome = "success"
	FailureOutcome = "failure"
)

// ProvideMetrics returns the Metrics relevant to this package
func ProvideMetrics() fx.Option {
	return fx.Options(
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: FetchCounter,
				Help: "Counter for the fetches issued by the query cache and their outcomes.",
			},
			OutcomeLabel,
		),
		touchstone.Counter(
			prometheus.CounterOpts{
				Name: InvalidationCounter,
				Help: "Counter for the cache entries marked stale by invalidation.",
			},
		),
		touchstone.Gauge(
			prometheus.GaugeOpts{
				Name: EntriesGauge,
				Help: "Number of entries currently held by the query cache.",
			},
		),
	)
}

type Measures struct {
	fx.In
	Fetches       *prometheus.CounterVec `name:"cloudscan_cache_fetches_total"`
	Invalidations prometheus.Counter     `name:"cloudscan_cache_invalidations_total"`
	Entries       prometheus.Gauge       `name:"cloudscan_cache_entries"`
}
