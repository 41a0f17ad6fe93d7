// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package dashboard serves the JSON and websocket surface consumed by the
// browser front end. Reads go through the query cache, mutations invalidate
// it and raise a notification when they fail, and live scan events are
// relayed from the realtime client.
package dashboard

import (
	"errors"

	"github.com/Cloud-scan/cloudscan-ui/model"
	"github.com/Cloud-scan/cloudscan-ui/notify"
	"github.com/Cloud-scan/cloudscan-ui/queries"
	"github.com/Cloud-scan/cloudscan-ui/realtime"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

var (
	ErrNilQueries       = errors.New("queries cannot be nil")
	ErrNilSubscriber    = errors.New("realtime subscriber cannot be nil")
	ErrNilNotifications = errors.New("notification center cannot be nil")
	ErrNilSession       = errors.New("session cannot be nil")
)

const DefaultEventBuffer = 64

// Subscriber is the part of the realtime client the dashboard uses.
type Subscriber interface {
	Subscribe(scanID string, h realtime.Handler) (func(), error)
	IsConnected() bool
	State() realtime.State
}

// Session reports who is logged in.
type Session interface {
	Authenticated() bool
	User() (model.User, bool)
}

// Config contains config data for the dashboard surface.
type Config struct {
	// EventBuffer is how many realtime events are queued per websocket
	// before new ones are dropped.
	// (Optional). Defaults to 64.
	EventBuffer int

	// Logger to be used by the dashboard.
	// (Optional). By default a no op logger will be used.
	Logger *zap.Logger
}

type Dashboard struct {
	queries       *queries.Queries
	realtime      Subscriber
	notifications *notify.Center
	session       Session
	logger        *zap.Logger
	eventBuffer   int
}

func New(config Config, q *queries.Queries, rt Subscriber, notes *notify.Center, s Session) (*Dashboard, error) {
	switch {
	case q == nil:
		return nil, ErrNilQueries
	case rt == nil:
		return nil, ErrNilSubscriber
	case notes == nil:
		return nil, ErrNilNotifications
	case s == nil:
		return nil, ErrNilSession
	}
	if config.EventBuffer <= 0 {
		config.EventBuffer = DefaultEventBuffer
	}
	if config.Logger == nil {
		config.Logger = sallust.Default()
	}

	return &Dashboard{
		queries:       q,
		realtime:      rt,
		notifications: notes,
		session:       s,
		logger:        config.Logger,
		eventBuffer:   config.EventBuffer,
	}, nil
}
