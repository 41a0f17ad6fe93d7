// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"time"

	"github.com/spf13/viper"
	"github.com/xmidt-org/touchstone"
	"go.uber.org/fx"
)

// Config is the application configuration read from the configuration file,
// with the API and realtime endpoints overridable from the environment.
type Config struct {
	API       APIConfig
	Realtime  RealtimeConfig
	Cache     CacheConfig
	Session   SessionConfig
	Dashboard DashboardConfig
	Servers   ServersConfig
}

type APIConfig struct {
	Address string
	Timeout time.Duration
}

type RealtimeConfig struct {
	URL                  string
	Origin               string
	MaxReconnectAttempts int
	ReconnectDelay       time.Duration
}

type CacheConfig struct {
	GCTime           time.Duration
	ScanPollInterval time.Duration
}

type SessionConfig struct {
	// File persists the session across restarts when set.
	File string
}

type DashboardConfig struct {
	EventBuffer int
}

type ServerConfig struct {
	Address string
}

type ServersConfig struct {
	Primary ServerConfig
	Metrics ServerConfig
	Health  ServerConfig
}

// HealthPath and MetricsPath are the routes of the health and metrics
// servers.
type (
	HealthPath  string
	MetricsPath string
)

type ConfigOut struct {
	fx.Out
	Config      Config
	Touchstone  touchstone.Config
	HealthPath  HealthPath
	MetricsPath MetricsPath
}

func unmarshalConfig(v *viper.Viper) (ConfigOut, error) {
	var out ConfigOut
	if err := v.Unmarshal(&out.Config, decodeHooks()); err != nil {
		return ConfigOut{}, err
	}
	if err := v.UnmarshalKey("prometheus", &out.Touchstone, decodeHooks()); err != nil {
		return ConfigOut{}, err
	}

	out.HealthPath = HealthPath(v.GetString("health.path"))
	if out.HealthPath == "" {
		out.HealthPath = "/health"
	}
	out.MetricsPath = MetricsPath(v.GetString("prometheus.path"))
	if out.MetricsPath == "" {
		out.MetricsPath = "/metrics"
	}
	return out, nil
}
