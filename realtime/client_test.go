// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func newTestMeasures() *Measures {
	return &Measures{
		Events: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "testEventCounter", Help: "testEventCounter"},
			[]string{TypeLabel, OutcomeLabel},
		),
		Reconnects: prometheus.NewCounter(prometheus.CounterOpts{Name: "testReconnectCounter", Help: "testReconnectCounter"}),
		Connected:  prometheus.NewGauge(prometheus.GaugeOpts{Name: "testConnectedGauge", Help: "testConnectedGauge"}),
	}
}

type fakeConn struct {
	lock      sync.Mutex
	sent      []controlMessage
	incoming  chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		incoming: make(chan []byte, 16),
		closed:   make(chan struct{}),
	}
}

func (f *fakeConn) Send(v any) error {
	msg, ok := v.(controlMessage)
	if !ok {
		return errors.New("unexpected message")
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeConn) Receive() ([]byte, error) {
	select {
	case data := <-f.incoming:
		return data, nil
	case <-f.closed:
		return nil, io.EOF
	}
}

func (f *fakeConn) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeConn) isClosed() bool {
	select {
	case <-f.closed:
		return true
	default:
		return false
	}
}

func (f *fakeConn) messages() []controlMessage {
	f.lock.Lock()
	defer f.lock.Unlock()
	return append([]controlMessage(nil), f.sent...)
}

func (f *fakeConn) push(t *testing.T, v any) {
	data, ok := v.([]byte)
	if !ok {
		var err error
		data, err = json.Marshal(v)
		require.NoError(t, err)
	}
	f.incoming <- data
}

type fakeTransport struct {
	lock    sync.Mutex
	dials   int
	conns   []*fakeConn
	dialErr func(n int) error
}

func (f *fakeTransport) Dial(context.Context) (Conn, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.dials++
	if f.dialErr != nil {
		if err := f.dialErr(f.dials); err != nil {
			return nil, err
		}
	}
	conn := newFakeConn()
	f.conns = append(f.conns, conn)
	return conn, nil
}

func (f *fakeTransport) dialCount() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.dials
}

func (f *fakeTransport) conn(i int) *fakeConn {
	f.lock.Lock()
	defer f.lock.Unlock()
	if i >= len(f.conns) {
		return nil
	}
	return f.conns[i]
}

func newTestClient(t *testing.T, transport Transport, maxAttempts int) *Client {
	c, err := NewClient(ClientConfig{
		Transport:            transport,
		MaxReconnectAttempts: maxAttempts,
		ReconnectDelay:       10 * time.Millisecond,
	}, newTestMeasures())
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), waitFor)
		defer cancel()
		assert.NoError(t, c.Shutdown(ctx))
	})
	return c
}

func subscribe(t *testing.T, c *Client, scanID string, h Handler) func() {
	if h == nil {
		h = func(Event) {}
	}
	cancel, err := c.Subscribe(scanID, h)
	require.NoError(t, err)
	return cancel
}

func connectAndWait(t *testing.T, c *Client) {
	require.NoError(t, c.Connect())
	require.Eventually(t, c.IsConnected, waitFor, tick)
}

func sub(id string) controlMessage   { return controlMessage{Type: controlSubscribe, ScanID: id} }
func unsub(id string) controlMessage { return controlMessage{Type: controlUnsubscribe, ScanID: id} }

func TestNewClient(t *testing.T) {
	_, err := NewClient(ClientConfig{Transport: &fakeTransport{}}, nil)
	assert.ErrorIs(t, err, ErrNilMeasures)

	_, err = NewClient(ClientConfig{}, newTestMeasures())
	assert.ErrorIs(t, err, ErrNilTransport)

	c, err := NewClient(ClientConfig{Transport: &fakeTransport{}}, newTestMeasures())
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxReconnectAttempts, c.maxAttempts)
	assert.Equal(t, DefaultReconnectDelay, c.delay)
	assert.Equal(t, Disconnected, c.State())
	assert.False(t, c.IsConnected())
}

func TestSubscribeSendsOnePerScan(t *testing.T) {
	assert := assert.New(t)
	transport := &fakeTransport{}
	c := newTestClient(t, transport, 0)
	connectAndWait(t, c)

	first := subscribe(t, c, "abc", nil)
	second := subscribe(t, c, "abc", nil)
	other := subscribe(t, c, "def", nil)

	conn := transport.conn(0)
	assert.Equal([]controlMessage{sub("abc"), sub("def")}, conn.messages())

	first()
	first()
	assert.Equal([]controlMessage{sub("abc"), sub("def")}, conn.messages())

	second()
	second()
	other()
	assert.Equal([]controlMessage{sub("abc"), sub("def"), unsub("abc"), unsub("def")}, conn.messages())
	assert.Empty(c.Subscriptions())

	again := subscribe(t, c, "abc", nil)
	defer again()
	assert.Equal(sub("abc"), conn.messages()[4])
}

func TestSubscribeBeforeOpen(t *testing.T) {
	transport := &fakeTransport{}
	c := newTestClient(t, transport, 0)

	keep := subscribe(t, c, "abc", nil)
	defer keep()
	gone := subscribe(t, c, "def", nil)
	gone()
	assert.Equal(t, []string{"abc"}, c.Subscriptions())

	connectAndWait(t, c)
	assert.Equal(t, []controlMessage{sub("abc")}, transport.conn(0).messages())
}

func TestResubscribeAfterReconnect(t *testing.T) {
	assert := assert.New(t)
	transport := &fakeTransport{}
	c := newTestClient(t, transport, 0)
	connectAndWait(t, c)

	subscribe(t, c, "b", nil)
	subscribe(t, c, "a", nil)
	dropped := subscribe(t, c, "c", nil)
	dropped()

	first := transport.conn(0)
	first.Close()

	require.Eventually(t, func() bool {
		return transport.dialCount() == 2 && c.IsConnected()
	}, waitFor, tick)

	assert.Equal([]controlMessage{sub("a"), sub("b")}, transport.conn(1).messages())
	assert.Equal([]controlMessage{sub("b"), sub("a"), sub("c"), unsub("c")}, first.messages())
}

func TestGivesUpAfterMaxAttempts(t *testing.T) {
	transport := &fakeTransport{
		dialErr: func(int) error { return errors.New("connection refused") },
	}
	c := newTestClient(t, transport, 3)
	require.NoError(t, c.Connect())

	require.Eventually(t, func() bool { return c.State() == Disconnected }, waitFor, tick)
	assert.Equal(t, 4, transport.dialCount())

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 4, transport.dialCount())
	assert.False(t, c.IsConnected())

	_, err := c.Subscribe("abc", func(Event) {})
	assert.NoError(t, err)
}

func TestAttemptsResetOnOpen(t *testing.T) {
	transport := &fakeTransport{
		dialErr: func(n int) error {
			switch n {
			case 1, 2, 4:
				return errors.New("connection refused")
			}
			return nil
		},
	}
	c := newTestClient(t, transport, 2)
	require.NoError(t, c.Connect())

	require.Eventually(t, func() bool { return transport.conn(0) != nil && c.IsConnected() }, waitFor, tick)
	assert.Equal(t, 3, transport.dialCount())

	transport.conn(0).Close()
	require.Eventually(t, func() bool { return transport.conn(1) != nil && c.IsConnected() }, waitFor, tick)
	assert.Equal(t, 5, transport.dialCount())
}

func TestNoReconnectWhenDisabled(t *testing.T) {
	transport := &fakeTransport{}
	c := newTestClient(t, transport, -1)
	connectAndWait(t, c)

	transport.conn(0).Close()
	require.Eventually(t, func() bool { return c.State() == Disconnected }, waitFor, tick)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, transport.dialCount())
}

func TestDispatch(t *testing.T) {
	assert := assert.New(t)
	transport := &fakeTransport{}
	c := newTestClient(t, transport, 0)
	connectAndWait(t, c)

	var (
		lock     sync.Mutex
		received = map[string][]Event{}
	)
	record := func(name string) Handler {
		return func(e Event) {
			lock.Lock()
			defer lock.Unlock()
			received[name] = append(received[name], e)
		}
	}
	count := func(name string) int {
		lock.Lock()
		defer lock.Unlock()
		return len(received[name])
	}

	subscribe(t, c, "abc", record("abc-1"))
	subscribe(t, c, "abc", record("abc-2"))
	subscribe(t, c, "xyz", record("xyz"))

	conn := transport.conn(0)
	conn.push(t, []byte("{not json"))
	conn.push(t, map[string]any{"type": "chat", "scanId": "abc"})
	conn.push(t, map[string]any{"type": "log", "scanId": ""})
	conn.push(t, map[string]any{"type": "log", "scanId": "nobody"})
	conn.push(t, map[string]any{
		"type":      "log",
		"scanId":    "abc",
		"data":      map[string]any{"level": "info", "message": "cloning repository", "timestamp": "2026-01-02T03:04:05Z"},
		"timestamp": "2026-01-02T03:04:05Z",
	})

	require.Eventually(t, func() bool { return count("abc-1") == 1 && count("abc-2") == 1 }, waitFor, tick)
	assert.Zero(count("xyz"))
	assert.True(c.IsConnected())

	lock.Lock()
	e := received["abc-1"][0]
	lock.Unlock()
	assert.Equal(EventLog, e.Type)
	assert.Equal("abc", e.ScanID)
	assert.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), e.Timestamp.UTC())
	l, err := e.Log()
	require.NoError(t, err)
	assert.Equal("cloning repository", l.Message)
	_, err = e.Progress()
	assert.ErrorIs(err, ErrWrongEventType)
}

func TestDispatchOrder(t *testing.T) {
	transport := &fakeTransport{}
	c := newTestClient(t, transport, 0)
	connectAndWait(t, c)

	got := make(chan int, 10)
	subscribe(t, c, "abc", func(e Event) {
		p, err := e.Progress()
		if err == nil {
			got <- p.Progress
		}
	})

	conn := transport.conn(0)
	for i := 1; i <= 5; i++ {
		conn.push(t, map[string]any{
			"type":   "progress",
			"scanId": "abc",
			"data":   map[string]any{"status": "RUNNING", "progress": i * 20},
		})
	}

	for i := 1; i <= 5; i++ {
		select {
		case p := <-got:
			assert.Equal(t, i*20, p)
		case <-time.After(waitFor):
			t.Fatal("timed out waiting for progress event")
		}
	}
}

func TestDisconnectIsTerminal(t *testing.T) {
	assert := assert.New(t)
	transport := &fakeTransport{}
	c := newTestClient(t, transport, 0)
	connectAndWait(t, c)
	subscribe(t, c, "abc", nil)

	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	require.NoError(t, c.Shutdown(ctx))

	assert.Equal(Closed, c.State())
	assert.False(c.IsConnected())
	assert.True(transport.conn(0).isClosed())
	assert.Empty(c.Subscriptions())

	_, err := c.Subscribe("abc", func(Event) {})
	assert.ErrorIs(err, ErrClientClosed)
	assert.ErrorIs(c.Connect(), ErrClientClosed)

	time.Sleep(30 * time.Millisecond)
	assert.Equal(1, transport.dialCount())
	c.Disconnect()
}

func TestShutdownWithoutConnect(t *testing.T) {
	c := newTestClient(t, &fakeTransport{}, 0)
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	assert.NoError(t, c.Shutdown(ctx))
	assert.Equal(t, Closed, c.State())
}

func TestConnectTwice(t *testing.T) {
	c := newTestClient(t, &fakeTransport{}, 0)
	require.NoError(t, c.Connect())
	assert.ErrorIs(t, c.Connect(), ErrClientStarted)
}

func TestSubscribeValidation(t *testing.T) {
	c := newTestClient(t, &fakeTransport{}, 0)
	_, err := c.Subscribe("", func(Event) {})
	assert.ErrorIs(t, err, ErrEmptyScanID)
	_, err = c.Subscribe("abc", nil)
	assert.ErrorIs(t, err, ErrNilEventHandler)
}
