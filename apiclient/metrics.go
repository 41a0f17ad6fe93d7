// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package apiclient

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// Names
const (
	RequestCounter = "cloudscan_api_requests_total"
	RefreshCounter = "cloudscan_api_token_refreshes_total"
)

// Labels
const (
	MethodLabel  = "method"
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
				Name: RequestCounter,
				Help: "Counter for the requests sent to the scanning API, by HTTP method and outcome.",
			},
			MethodLabel,
			OutcomeLabel,
		),
		touchstone.CounterVec(
			prometheus.CounterOpts{
				Name: RefreshCounter,
				Help: "Counter for access token refresh attempts and their outcomes.",
			},
			OutcomeLabel,
		),
	)
}

type Measures struct {
	fx.In
	Requests  *prometheus.CounterVec `name:"cloudscan_api_requests_total"`
	Refreshes *prometheus.CounterVec `name:"cloudscan_api_token_refreshes_total"`
}
