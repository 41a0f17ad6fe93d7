// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package realtime keeps a single connection to the realtime event server and
// routes the events it pushes to the subscribers of each scan.
//
// The client is a small state machine:
//
//	Disconnected -> Connecting -> Open -> Connecting (retry) ... -> Disconnected
//
// A dropped or failed connection is retried after a fixed delay, up to a
// maximum number of consecutive attempts, after which the client stays
// Disconnected for good. Disconnect moves the client to the terminal Closed
// state. Subscriptions outlive reconnects: every scan with at least one
// subscriber is announced again each time the connection opens.
package realtime

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

var (
	ErrNilMeasures     = errors.New("measures cannot be nil")
	ErrNilTransport    = errors.New("transport cannot be nil")
	ErrClientStarted   = errors.New("realtime client was already started")
	ErrClientClosed    = errors.New("realtime client has been disconnected")
	ErrEmptyScanID     = errors.New("scan ID is required")
	ErrNilEventHandler = errors.New("event handler is required")
)

const (
	DefaultMaxReconnectAttempts = 5
	DefaultReconnectDelay       = 3 * time.Second
)

// State is the connection state of a Client.
type State int32

const (
	// Disconnected is the state before Connect and after reconnecting gave up.
	Disconnected State = iota
	Connecting
	Open
	// Closed is terminal and entered by Disconnect.
	Closed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Open:
		return "open"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// ClientConfig contains config data for the realtime client.
type ClientConfig struct {
	// Transport opens connections to the realtime server.
	Transport Transport

	// MaxReconnectAttempts is how many consecutive reconnects are attempted
	// after the connection drops or fails to open. Opening the connection
	// resets the count.
	// (Optional). Defaults to 5. A negative value disables reconnecting.
	MaxReconnectAttempts int

	// ReconnectDelay is the fixed wait before each reconnect.
	// (Optional). Defaults to 3 seconds.
	ReconnectDelay time.Duration

	// Logger to be used by the client.
	// (Optional). By default a no op logger will be used.
	Logger *zap.Logger
}

// Client multiplexes per-scan subscriptions over one transport connection.
type Client struct {
	transport   Transport
	logger      *zap.Logger
	measures    *Measures
	maxAttempts int
	delay       time.Duration

	// lock guards everything below. Subscription changes and the control
	// messages they cause happen under it as one step.
	lock     sync.Mutex
	state    State
	conn     Conn
	subs     map[string]map[uint64]Handler
	nextID   uint64
	attempts int
	started  bool

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewClient(config ClientConfig, measures *Measures) (*Client, error) {
	if measures == nil {
		return nil, ErrNilMeasures
	}
	err := validateConfig(&config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		transport:   config.Transport,
		logger:      config.Logger,
		measures:    measures,
		maxAttempts: config.MaxReconnectAttempts,
		delay:       config.ReconnectDelay,
		state:       Disconnected,
		subs:        make(map[string]map[uint64]Handler),
		ctx:         ctx,
		cancel:      cancel,
		done:        make(chan struct{}),
	}, nil
}

// Connect starts the connection loop in the background. It may only be
// called once.
func (c *Client) Connect() error {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.state == Closed {
		return ErrClientClosed
	}
	if c.started {
		c.logger.Error("Connect called on a client that was already started", zap.Error(ErrClientStarted))
		return ErrClientStarted
	}
	c.started = true
	c.state = Connecting
	go c.run()
	return nil
}

// Subscribe registers h for the events of scanID and returns the function
// that removes it. The first subscriber of a scan makes the client send a
// subscribe message, right away when the connection is open or else as soon
// as it opens. Removing the last subscriber sends an unsubscribe message.
// Calling the returned function more than once has no effect.
func (c *Client) Subscribe(scanID string, h Handler) (func(), error) {
	if scanID == "" {
		return nil, ErrEmptyScanID
	}
	if h == nil {
		return nil, ErrNilEventHandler
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	if c.state == Closed {
		return nil, ErrClientClosed
	}

	c.nextID++
	id := c.nextID
	handlers, ok := c.subs[scanID]
	if !ok {
		handlers = make(map[uint64]Handler)
		c.subs[scanID] = handlers
	}
	handlers[id] = h
	if !ok {
		c.sendLocked(controlMessage{Type: controlSubscribe, ScanID: scanID})
	}

	var once sync.Once
	return func() {
		once.Do(func() { c.unsubscribe(scanID, id) })
	}, nil
}

func (c *Client) unsubscribe(scanID string, id uint64) {
	c.lock.Lock()
	defer c.lock.Unlock()

	handlers, ok := c.subs[scanID]
	if !ok {
		return
	}
	if _, ok := handlers[id]; !ok {
		return
	}
	delete(handlers, id)
	if len(handlers) > 0 {
		return
	}
	delete(c.subs, scanID)
	c.sendLocked(controlMessage{Type: controlUnsubscribe, ScanID: scanID})
}

// IsConnected reports whether the connection is currently open.
func (c *Client) IsConnected() bool {
	return c.State() == Open
}

func (c *Client) State() State {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.state
}

// Subscriptions returns the scan IDs that currently have subscribers.
func (c *Client) Subscriptions() []string {
	c.lock.Lock()
	defer c.lock.Unlock()
	ids := make([]string, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Disconnect closes the connection, drops every subscription and stops
// reconnecting. The client cannot be used afterwards. It does not wait for
// the connection loop to exit; use Shutdown for that.
func (c *Client) Disconnect() {
	c.lock.Lock()
	if c.state == Closed {
		c.lock.Unlock()
		return
	}
	c.state = Closed
	c.subs = make(map[string]map[uint64]Handler)
	conn := c.conn
	c.conn = nil
	started := c.started
	c.lock.Unlock()

	c.cancel()
	if conn != nil {
		if err := conn.Close(); err != nil {
			c.logger.Debug("error closing realtime connection", zap.Error(err))
		}
	}
	c.measures.Connected.Set(0)
	if !started {
		close(c.done)
	}
	c.logger.Info("realtime client disconnected")
}

// Shutdown disconnects and waits for the connection loop to exit or for ctx
// to be done.
func (c *Client) Shutdown(ctx context.Context) error {
	c.Disconnect()
	select {
	case <-c.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) run() {
	defer close(c.done)

	policy := c.retryPolicy()
	for {
		conn, err := c.transport.Dial(c.ctx)
		if err == nil {
			if !c.opened(conn) {
				_ = conn.Close()
				return
			}
			policy.Reset()
			err = c.readLoop(conn)
			c.dropped(conn)
		}
		if c.ctx.Err() != nil {
			return
		}

		wait := policy.NextBackOff()
		if wait == backoff.Stop {
			c.giveUp(err)
			return
		}

		c.lock.Lock()
		c.attempts++
		attempt := c.attempts
		c.lock.Unlock()
		c.measures.Reconnects.Inc()
		c.logger.Warn("realtime connection lost, reconnecting",
			zap.Int("attempt", attempt), zap.Int("maxAttempts", c.maxAttempts),
			zap.Duration("delay", wait), zap.Error(err))

		timer := time.NewTimer(wait)
		select {
		case <-c.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// retryPolicy waits the same delay before every reconnect and stops after
// maxAttempts of them.
func (c *Client) retryPolicy() backoff.BackOff {
	if c.maxAttempts <= 0 {
		return &backoff.StopBackOff{}
	}
	return backoff.WithMaxRetries(backoff.NewConstantBackOff(c.delay), uint64(c.maxAttempts))
}

// opened moves the client to Open and announces every held subscription on
// the new connection. It returns false when the client was closed while
// dialing.
func (c *Client) opened(conn Conn) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.state == Closed {
		return false
	}
	c.conn = conn
	c.state = Open
	c.attempts = 0
	c.measures.Connected.Set(1)
	c.logger.Info("realtime connection open", zap.Int("subscriptions", len(c.subs)))

	ids := make([]string, 0, len(c.subs))
	for id := range c.subs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		c.sendLocked(controlMessage{Type: controlSubscribe, ScanID: id})
	}
	return true
}

func (c *Client) dropped(conn Conn) {
	c.lock.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	if c.state == Open {
		c.state = Connecting
	}
	c.lock.Unlock()

	c.measures.Connected.Set(0)
	_ = conn.Close()
}

func (c *Client) giveUp(err error) {
	c.lock.Lock()
	if c.state != Closed {
		c.state = Disconnected
	}
	c.lock.Unlock()

	c.measures.Connected.Set(0)
	c.logger.Error("giving up on the realtime connection",
		zap.Int("maxAttempts", c.maxAttempts), zap.Error(err))
}

func (c *Client) readLoop(conn Conn) error {
	for {
		data, err := conn.Receive()
		if err != nil {
			return err
		}
		c.dispatch(data)
	}
}

// dispatch delivers one inbound payload to the subscribers of its scan.
// Subscribers are called in the order they subscribed.
func (c *Client) dispatch(data []byte) {
	event, err := ParseEvent(data)
	if err != nil {
		c.measures.Events.With(prometheus.Labels{
			TypeLabel: UnknownType, OutcomeLabel: MalformedOutcome,
		}).Inc()
		c.logger.Warn("discarding malformed realtime payload", zap.Error(err))
		return
	}

	c.lock.Lock()
	handlers := c.subs[event.ScanID]
	ids := make([]uint64, 0, len(handlers))
	for id := range handlers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	snapshot := make([]Handler, 0, len(ids))
	for _, id := range ids {
		snapshot = append(snapshot, handlers[id])
	}
	c.lock.Unlock()

	outcome := DeliveredOutcome
	if len(snapshot) == 0 {
		outcome = NoSubscriberOutcome
	}
	c.measures.Events.With(prometheus.Labels{
		TypeLabel: string(event.Type), OutcomeLabel: outcome,
	}).Inc()

	for _, h := range snapshot {
		h(event)
	}
}

// sendLocked writes a control message when the connection is open and drops
// it otherwise. c.lock must be held.
func (c *Client) sendLocked(msg controlMessage) {
	if c.state != Open || c.conn == nil {
		c.logger.Debug("connection not open, deferring control message",
			zap.String("type", string(msg.Type)), zap.String("scanID", msg.ScanID))
		return
	}
	if err := c.conn.Send(msg); err != nil {
		c.logger.Warn("failed to send control message",
			zap.String("type", string(msg.Type)), zap.String("scanID", msg.ScanID), zap.Error(err))
	}
}

func validateConfig(config *ClientConfig) error {
	if config.Transport == nil {
		return ErrNilTransport
	}
	if config.MaxReconnectAttempts == 0 {
		config.MaxReconnectAttempts = DefaultMaxReconnectAttempts
	}
	if config.ReconnectDelay <= 0 {
		config.ReconnectDelay = DefaultReconnectDelay
	}
	if config.Logger == nil {
		config.Logger = sallust.Default()
	}
	return nil
}
