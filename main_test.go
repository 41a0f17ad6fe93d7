// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestUnmarshalConfigDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	out, err := unmarshalConfig(v)
	require.NoError(t, err)
	assert.Equal(t, defaultAPIAddress, out.Config.API.Address)
	assert.Equal(t, defaultRealtimeURL, out.Config.Realtime.URL)
	assert.Equal(t, ":8090", out.Config.Servers.Primary.Address)
	assert.Equal(t, HealthPath("/health"), out.HealthPath)
	assert.Equal(t, MetricsPath("/metrics"), out.MetricsPath)
}

func TestUnmarshalConfig(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
realtime:
  url: "wss://realtime.example.com"
  maxReconnectAttempts: -1
  reconnectDelay: "250ms"
cache:
  gcTime: "1m"
health:
  path: "/ready"
`)))

	out, err := unmarshalConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "wss://realtime.example.com", out.Config.Realtime.URL)
	assert.Equal(t, -1, out.Config.Realtime.MaxReconnectAttempts)
	assert.Equal(t, 250*time.Millisecond, out.Config.Realtime.ReconnectDelay)
	assert.Equal(t, time.Minute, out.Config.Cache.GCTime)
	assert.Equal(t, HealthPath("/ready"), out.HealthPath)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("CLOUDSCAN_API_URL", "https://api.example.com/api/v1")
	t.Setenv("CLOUDSCAN_WS_URL", "")

	v := viper.New()
	setDefaults(v)
	require.NoError(t, applyEnv(v))
	assert.Equal(t, "https://api.example.com/api/v1", v.GetString("api.address"))
	assert.Equal(t, defaultRealtimeURL, v.GetString("realtime.url"))
}

func TestSetLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	var called bool
	handler := SetLogger(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		sallust.Get(r.Context()).Info("handled")
	}))

	r := httptest.NewRequest(http.MethodGet, "/ui/v1/scans", nil)
	r.Header.Set("Authorization", "Bearer secret-token")
	handler.ServeHTTP(httptest.NewRecorder(), r)

	require.True(t, called)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	fields := entry.ContextMap()
	assert.Equal(t, "/ui/v1/scans", fields["requestURL"])
	assert.Equal(t, http.MethodGet, fields["method"])

	header, ok := fields["requestHeaders"].(http.Header)
	require.True(t, ok)
	assert.Empty(t, header.Get("Authorization"))
	assert.Equal(t, "Bearer", header.Get("Authorization-Type"))
}
