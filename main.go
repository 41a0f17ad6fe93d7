// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/Cloud-scan/cloudscan-ui/notify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/xmidt-org/candlelight"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const (
	applicationName = "cloudscan-ui"
	apiBase         = "ui/v1"

	defaultAPIAddress  = "http://localhost:8080/api/v1"
	defaultRealtimeURL = "ws://localhost:9090"
)

var (
	GitCommit = "undefined"
	Version   = "undefined"
	BuildTime = "undefined"
)

func main() {
	v, logger, err := setup(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	app := fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		fx.Supply(logger, v),
		provideMetrics(),
		fx.Provide(
			unmarshalConfig,
			provideTracing,
			provideSession,
			provideCache,
			provideAPIClient,
			provideRealtime,
			provideQueries,
			provideDashboard,
			func(logger *zap.Logger) *notify.Center {
				return notify.NewCenter(logger)
			},
		),
		provideServers(),
		fx.Invoke(
			startRealtime,
			stopCache,
		),
	)

	switch err := app.Err(); {
	case errors.Is(err, pflag.ErrHelp):
		return
	case err == nil:
		app.Run()
	default:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func provideTracing(v *viper.Viper) (candlelight.Tracing, error) {
	var config candlelight.Config
	if err := v.UnmarshalKey("tracing", &config, decodeHooks()); err != nil {
		return candlelight.Tracing{}, err
	}
	config.ApplicationName = applicationName
	return candlelight.New(config)
}
