// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/Cloud-scan/cloudscan-ui/dashboard"
	"github.com/gorilla/mux"
	"github.com/justinas/alice"
	"github.com/xmidt-org/candlelight"
	"github.com/xmidt-org/httpaux"
	"github.com/xmidt-org/httpaux/recovery"
	"github.com/xmidt-org/touchstone/touchhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type PrimaryRouterIn struct {
	fx.In
	Config         Config
	Logger         *zap.Logger
	PrimaryMetrics touchhttp.ServerInstrumenter `name:"servers.primary.metrics"`
	Tracing        candlelight.Tracing
	Dashboard      *dashboard.Dashboard
}

type HealthRouterIn struct {
	fx.In
	Config        Config
	HealthMetrics touchhttp.ServerInstrumenter `name:"servers.health.metrics"`
	Path          HealthPath
}

type MetricsRouterIn struct {
	fx.In
	Config  Config
	Handler touchhttp.Handler
	Path    MetricsPath
}

func provideServers() fx.Option {
	return fx.Invoke(
		func(lc fx.Lifecycle, logger *zap.Logger, in PrimaryRouterIn) {
			bind(lc, logger, "primary", in.Config.Servers.Primary, primaryHandler(in))
		},
		func(lc fx.Lifecycle, logger *zap.Logger, in HealthRouterIn) {
			r := mux.NewRouter()
			r.Handle(string(in.Path), httpaux.ConstantHandler{
				StatusCode: http.StatusOK,
			}).Methods(http.MethodGet)
			bind(lc, logger, "health", in.Config.Servers.Health, in.HealthMetrics.Then(r))
		},
		func(lc fx.Lifecycle, logger *zap.Logger, in MetricsRouterIn) {
			r := mux.NewRouter()
			r.Handle(string(in.Path), in.Handler).Methods(http.MethodGet)
			bind(lc, logger, "metrics", in.Config.Servers.Metrics, r)
		},
	)
}

func primaryHandler(in PrimaryRouterIn) http.Handler {
	router := mux.NewRouter()
	router.Use(recovery.Middleware(recovery.WithStatusCode(555)))

	options := []otelmux.Option{
		otelmux.WithTracerProvider(in.Tracing.TracerProvider()),
		otelmux.WithPropagators(in.Tracing.Propagator()),
	}
	router.Use(otelmux.Middleware("server_primary", options...),
		candlelight.EchoFirstTraceNodeInfo(in.Tracing, false))

	api := router.PathPrefix(fmt.Sprintf("/%s", apiBase)).Subrouter()
	in.Dashboard.Routes(api)

	chain := alice.New(SetLogger(in.Logger))
	return in.PrimaryMetrics.Then(chain.Then(router))
}

// bind runs an http.Server for handler for the lifetime of the application.
func bind(lc fx.Lifecycle, logger *zap.Logger, name string, config ServerConfig, handler http.Handler) {
	server := &http.Server{
		Addr:    config.Address,
		Handler: handler,
	}
	logger = logger.With(zap.String("server", name))

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var lcfg net.ListenConfig
			l, err := lcfg.Listen(ctx, "tcp", server.Addr)
			if err != nil {
				return fmt.Errorf("failed to listen for server %s: %w", name, err)
			}
			logger.Info("server listening", zap.Stringer("address", l.Addr()))
			go func() {
				if err := server.Serve(l); !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server exited", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: server.Shutdown,
	})
}
