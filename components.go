// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"

	"github.com/Cloud-scan/cloudscan-ui/apiclient"
	"github.com/Cloud-scan/cloudscan-ui/dashboard"
	"github.com/Cloud-scan/cloudscan-ui/notify"
	"github.com/Cloud-scan/cloudscan-ui/queries"
	"github.com/Cloud-scan/cloudscan-ui/querycache"
	"github.com/Cloud-scan/cloudscan-ui/realtime"
	"github.com/Cloud-scan/cloudscan-ui/session"
	"github.com/xmidt-org/sallust"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func provideCache(config Config, logger *zap.Logger, m querycache.Measures) (*querycache.Cache, error) {
	return querycache.New(querycache.Config{
		GCTime: config.Cache.GCTime,
		Logger: logger.Named("querycache"),
	}, &m)
}

type APIClientIn struct {
	fx.In
	Config        Config
	Logger        *zap.Logger
	Session       *session.Store
	Cache         *querycache.Cache
	Notifications *notify.Center
	Measures      apiclient.Measures
}

func provideAPIClient(in APIClientIn) (*apiclient.Client, error) {
	logger := in.Logger.Named("apiclient")
	expired := func() {
		in.Cache.Clear()
		_, err := in.Notifications.Add(notify.Notification{
			Level:   notify.LevelWarning,
			Title:   "Session expired",
			Message: "Please log in again.",
		})
		if err != nil {
			logger.Error("failed to raise session notification", zap.Error(err))
		}
	}

	return apiclient.NewClient(apiclient.ClientConfig{
		Address:          in.Config.API.Address,
		Timeout:          in.Config.API.Timeout,
		Session:          in.Session,
		OnSessionExpired: expired,
		Logger:           logger,
	}, sallust.Get, &in.Measures)
}

func provideRealtime(config Config, sess *session.Store, logger *zap.Logger, m realtime.Measures) (*realtime.Client, error) {
	transport, err := realtime.NewWebsocketTransport(config.Realtime.URL, config.Realtime.Origin, sess)
	if err != nil {
		return nil, err
	}
	return realtime.NewClient(realtime.ClientConfig{
		Transport:            transport,
		MaxReconnectAttempts: config.Realtime.MaxReconnectAttempts,
		ReconnectDelay:       config.Realtime.ReconnectDelay,
		Logger:               logger.Named("realtime"),
	}, &m)
}

func provideQueries(config Config, client *apiclient.Client, cache *querycache.Cache, logger *zap.Logger) (*queries.Queries, error) {
	return queries.New(queries.Config{
		ScanPollInterval: config.Cache.ScanPollInterval,
		Logger:           logger.Named("queries"),
	}, client, cache)
}

func provideDashboard(config Config, q *queries.Queries, rt *realtime.Client, notes *notify.Center, sess *session.Store, logger *zap.Logger) (*dashboard.Dashboard, error) {
	return dashboard.New(dashboard.Config{
		EventBuffer: config.Dashboard.EventBuffer,
		Logger:      logger.Named("dashboard"),
	}, q, rt, notes, sess)
}

func startRealtime(lc fx.Lifecycle, c *realtime.Client) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return c.Connect()
		},
		OnStop: c.Shutdown,
	})
}

func stopCache(lc fx.Lifecycle, c *querycache.Cache) {
	lc.Append(fx.StopHook(c.Close))
}
