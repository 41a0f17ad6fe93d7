// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// Names
const (
	EventCounter     = "cloudscan_realtime_events_total"
	ReconnectCounter = "cloudscan_realtime_reconnects_total"
	ConnectedGauge   = "cloudscan_realtime_connected"
)

// Labels
const (
	TypeLabel    = "type"
	OutcomeLabel = "outcome"
)

// Label Values
const (
	DeliveredOutcome    = "delivered"
	NoSubscriberOutcome = "no_subscriber"
	MalformedOutcome    = "malformed"
	UnknownType         = "unknown"
)

// ProvideMetrics returns the Metrics relevant to this package
func ProvideMetrics() fx.Option {
	return fx.Options(
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: EventCounter,
				Help: "Counter for the events received from the realtime server, by type and outcome.",
			},
			TypeLabel,
			OutcomeLabel,
		),
		touchstone.Counter(
			prometheus.CounterOpts{
				Name: ReconnectCounter,
				Help: "Counter for the reconnect attempts made to the realtime server.",
			},
		),
		touchstone.Gauge(
			prometheus.GaugeOpts{
				Name: ConnectedGauge,
				Help: "1 while the connection to the realtime server is open, 0 otherwise.",
			},
		),
	)
}

type Measures struct {
	fx.In
	Events     *prometheus.CounterVec `name:"cloudscan_realtime_events_total"`
	Reconnects prometheus.Counter     `name:"cloudscan_realtime_reconnects_total"`
	Connected  prometheus.Gauge       `name:"cloudscan_realtime_connected"`
}
