// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package querycache caches the results of asynchronous queries by key.
//
// Cached values are served immediately even when stale while a background
// fetch refreshes them. Concurrent requests for one key share a single
// fetch. Mutations invalidate keys by prefix, and entries with mounted
// observers refetch right away and may poll on an interval chosen from their
// current value. Entries nobody observes are dropped after GCTime.
package querycache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var (
	ErrNilMeasures  = errors.New("measures cannot be nil")
	ErrNilFetchFunc = errors.New("fetch function is required")
	ErrCacheClosed  = errors.New("cache has been closed")
)

const DefaultGCTime = 5 * time.Minute

// Status is the fetch status of an entry.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// FetchFunc loads the value of a key. The context is canceled when the
// cache is closed.
type FetchFunc func(ctx context.Context) (any, error)

// Listener receives every update of an observed entry.
type Listener func(Result)

// Options tune a query. They are stored with the entry and the latest
// caller's options win.
type Options struct {
	// StaleTime is how long a value stays fresh. Zero means values are stale
	// as soon as they are stored.
	StaleTime time.Duration

	// RefetchInterval, when set, returns how long to wait before fetching an
	// observed entry again given its current value. A zero duration stops
	// polling.
	RefetchInterval func(data any) time.Duration

	// GCTime is how long an entry nobody observes is kept.
	// (Optional). Defaults to the cache's GCTime.
	GCTime time.Duration
}

// Result is a snapshot of an entry.
type Result struct {
	Data       any
	Status     Status
	Err        error
	UpdatedAt  time.Time
	IsStale    bool
	IsFetching bool
}

// MutateOptions declare the side effects of a mutation on the cache.
type MutateOptions struct {
	// OnSuccess returns the keys, or key prefixes, made stale by the
	// mutation.
	OnSuccess func(result any) []Key

	// OnError is called with the mutation error.
	OnError func(err error)
}

// Config contains config data for the cache.
type Config struct {
	// GCTime is how long entries nobody observes are kept.
	// (Optional). Defaults to 5 minutes.
	GCTime time.Duration

	// Logger to be used by the cache.
	// (Optional). By default a no op logger will be used.
	Logger *zap.Logger
}

type entry struct {
	key   Key
	parts []string
	hash  string

	data      any
	hasData   bool
	status    Status
	err       error
	updatedAt time.Time

	// invalidated is cleared only by a fetch that started after the last
	// invalidation, which generation tracks.
	invalidated bool
	generation  uint64
	fetching    bool

	fetch FetchFunc
	opts  Options

	observers map[uint64]Listener
	pollTimer *time.Timer
	gcTimer   *time.Timer
}

// Cache is safe for concurrent use.
type Cache struct {
	group    singleflight.Group
	logger   *zap.Logger
	measures *Measures
	gcTime   time.Duration
	now      func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	lock       sync.Mutex
	entries    map[string]*entry
	observerID uint64
	closed     bool
}

func New(config Config, measures *Measures) (*Cache, error) {
	if measures == nil {
		return nil, ErrNilMeasures
	}
	if config.GCTime <= 0 {
		config.GCTime = DefaultGCTime
	}
	if config.Logger == nil {
		config.Logger = sallust.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Cache{
		logger:   config.Logger,
		measures: measures,
		gcTime:   config.GCTime,
		now:      time.Now,
		ctx:      ctx,
		cancel:   cancel,
		entries:  make(map[string]*entry),
	}, nil
}

// Query returns what the cache holds for key without waiting. When the entry
// is absent, stale or invalidated a background fetch is started unless one
// is already in flight.
func (c *Cache) Query(key Key, fetch FetchFunc, opts Options) Result {
	if fetch == nil {
		return Result{Status: StatusError, Err: ErrNilFetchFunc}
	}

	c.lock.Lock()
	if c.closed {
		c.lock.Unlock()
		return Result{Status: StatusError, Err: ErrCacheClosed}
	}
	e, err := c.entryLocked(key, fetch, opts)
	if err != nil {
		c.lock.Unlock()
		return Result{Status: StatusError, Err: err}
	}
	start := c.needsFetchLocked(e)
	if start {
		c.beginFetchLocked(e)
	}
	result := c.resultLocked(e)
	listeners := observersOf(e)
	c.lock.Unlock()

	if start {
		notify(listeners, result)
		c.startFetch(e.hash, fetch)
	}
	return result
}

// Fetch returns fresh data for key, waiting for a fetch when the cached value
// is absent, stale or invalidated. A fetch already in flight is joined.
func (c *Cache) Fetch(ctx context.Context, key Key, fetch FetchFunc, opts Options) (any, error) {
	if fetch == nil {
		return nil, ErrNilFetchFunc
	}

	c.lock.Lock()
	if c.closed {
		c.lock.Unlock()
		return nil, ErrCacheClosed
	}
	e, err := c.entryLocked(key, fetch, opts)
	if err != nil {
		c.lock.Unlock()
		return nil, err
	}
	if !c.needsFetchLocked(e) && !e.fetching {
		data := e.data
		c.lock.Unlock()
		return data, nil
	}
	started := !e.fetching
	if started {
		c.beginFetchLocked(e)
	}
	result := c.resultLocked(e)
	listeners := observersOf(e)
	c.lock.Unlock()

	if started {
		notify(listeners, result)
	}
	ch := c.startFetchCh(e.hash, fetch)
	select {
	case r := <-ch:
		return r.Val, r.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Observe mounts a consumer on key. The listener is called with the current
// state right away and then on every update. While at least one consumer is
// mounted the entry is not collected, invalidation refetches it immediately
// and RefetchInterval polling runs. The returned function unmounts the
// consumer.
func (c *Cache) Observe(key Key, fetch FetchFunc, opts Options, listener Listener) (func(), error) {
	if fetch == nil {
		return nil, ErrNilFetchFunc
	}

	c.lock.Lock()
	if c.closed {
		c.lock.Unlock()
		return nil, ErrCacheClosed
	}
	e, err := c.entryLocked(key, fetch, opts)
	if err != nil {
		c.lock.Unlock()
		return nil, err
	}
	c.observerID++
	id := c.observerID
	if listener == nil {
		listener = func(Result) {}
	}
	e.observers[id] = listener
	stopTimer(&e.gcTimer)

	start := c.needsFetchLocked(e)
	if start {
		c.beginFetchLocked(e)
	} else {
		c.schedulePollLocked(e)
	}
	result := c.resultLocked(e)
	listeners := observersOf(e)
	c.lock.Unlock()

	if start {
		notify(listeners, result)
		c.startFetch(e.hash, fetch)
	} else {
		listener(result)
	}

	var once sync.Once
	return func() {
		once.Do(func() { c.unobserve(e, id) })
	}, nil
}

func (c *Cache) unobserve(e *entry, id uint64) {
	c.lock.Lock()
	defer c.lock.Unlock()

	delete(e.observers, id)
	if len(e.observers) > 0 {
		return
	}
	stopTimer(&e.pollTimer)
	if c.entries[e.hash] == e {
		c.scheduleGCLocked(e)
	}
}

// Mutate runs a side-effecting request. On success the keys returned by
// opts.OnSuccess are invalidated.
func (c *Cache) Mutate(ctx context.Context, fn func(context.Context) (any, error), opts MutateOptions) (any, error) {
	if fn == nil {
		return nil, ErrNilFetchFunc
	}
	result, err := fn(ctx)
	if err != nil {
		if opts.OnError != nil {
			opts.OnError(err)
		}
		return nil, err
	}
	if opts.OnSuccess != nil {
		if keys := opts.OnSuccess(result); len(keys) > 0 {
			c.Invalidate(keys...)
		}
	}
	return result, nil
}

// Invalidate marks every entry whose key starts with one of the given keys
// as stale. Observed entries are refetched. It returns the number of entries
// invalidated.
func (c *Cache) Invalidate(keys ...Key) int {
	prefixes := c.prefixes(keys)
	if len(prefixes) == 0 {
		return 0
	}

	c.lock.Lock()
	var refetch []*entry
	count := 0
	for _, e := range c.entries {
		if !matchesAny(e.parts, prefixes) {
			continue
		}
		count++
		e.invalidated = true
		e.generation++
		if len(e.observers) > 0 {
			refetch = append(refetch, e)
		}
	}
	c.lock.Unlock()

	if count > 0 {
		c.measures.Invalidations.Add(float64(count))
		c.logger.Debug("invalidated cache entries", zap.Int("count", count))
	}
	for _, e := range refetch {
		c.refetch(e)
	}
	return count
}

// Refetch fetches every entry matching one of the given key prefixes now and
// waits for all of them. Errors are aggregated.
func (c *Cache) Refetch(ctx context.Context, keys ...Key) error {
	prefixes := c.prefixes(keys)

	var waits []<-chan singleflight.Result

	c.lock.Lock()
	var notices []func()
	for _, e := range c.entries {
		if e.fetch == nil || !matchesAny(e.parts, prefixes) {
			continue
		}
		if !e.fetching {
			c.beginFetchLocked(e)
			result, listeners := c.resultLocked(e), observersOf(e)
			notices = append(notices, func() { notify(listeners, result) })
		}
		waits = append(waits, c.startFetchCh(e.hash, e.fetch))
	}
	c.lock.Unlock()

	for _, n := range notices {
		n()
	}

	var errs *multierror.Error
	for _, ch := range waits {
		select {
		case r := <-ch:
			if r.Err != nil {
				errs = multierror.Append(errs, r.Err)
			}
		case <-ctx.Done():
			return multierror.Append(errs, ctx.Err()).ErrorOrNil()
		}
	}
	return errs.ErrorOrNil()
}

// SetData stores data for key as a successful fetch would.
func (c *Cache) SetData(key Key, data any) error {
	c.lock.Lock()
	e, err := c.entryLocked(key, nil, Options{})
	if err != nil {
		c.lock.Unlock()
		return err
	}
	c.storeLocked(e, data)
	e.invalidated = false
	result := c.resultLocked(e)
	listeners := observersOf(e)
	c.lock.Unlock()

	notify(listeners, result)
	return nil
}

// Get returns the state of key without fetching.
func (c *Cache) Get(key Key) (Result, bool) {
	parts, err := key.parts()
	if err != nil {
		return Result{}, false
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	e, ok := c.entries[hashParts(parts)]
	if !ok {
		return Result{}, false
	}
	return c.resultLocked(e), true
}

// Remove drops every entry matching one of the given key prefixes.
func (c *Cache) Remove(keys ...Key) int {
	prefixes := c.prefixes(keys)
	c.lock.Lock()
	defer c.lock.Unlock()

	count := 0
	for hash, e := range c.entries {
		if matchesAny(e.parts, prefixes) {
			c.dropLocked(hash, e)
			count++
		}
	}
	return count
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.lock.Lock()
	defer c.lock.Unlock()
	for hash, e := range c.entries {
		c.dropLocked(hash, e)
	}
	c.logger.Debug("cleared query cache")
}

// Len returns the number of entries held.
func (c *Cache) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.entries)
}

// Close drops every entry and cancels fetches in flight.
func (c *Cache) Close() {
	c.lock.Lock()
	c.closed = true
	c.lock.Unlock()

	c.Clear()
	c.cancel()
}

func (c *Cache) prefixes(keys []Key) [][]string {
	prefixes := make([][]string, 0, len(keys))
	for _, k := range keys {
		parts, err := k.parts()
		if err != nil {
			c.logger.Warn("ignoring invalid cache key", zap.Stringer("key", k), zap.Error(err))
			continue
		}
		prefixes = append(prefixes, parts)
	}
	return prefixes
}

// entryLocked finds or creates the entry of key and records the latest fetch
// function and options.
func (c *Cache) entryLocked(key Key, fetch FetchFunc, opts Options) (*entry, error) {
	parts, err := key.parts()
	if err != nil {
		return nil, err
	}
	hash := hashParts(parts)
	e, ok := c.entries[hash]
	if !ok {
		e = &entry{
			key:       append(Key(nil), key...),
			parts:     parts,
			hash:      hash,
			status:    StatusIdle,
			observers: make(map[uint64]Listener),
		}
		c.entries[hash] = e
		c.measures.Entries.Set(float64(len(c.entries)))
	}
	if fetch != nil {
		e.fetch = fetch
		e.opts = opts
	}
	if len(e.observers) == 0 {
		c.scheduleGCLocked(e)
	}
	return e, nil
}

func (c *Cache) needsFetchLocked(e *entry) bool {
	if e.fetching || c.closed {
		return false
	}
	return e.invalidated || !e.hasData || c.staleLocked(e)
}

func (c *Cache) staleLocked(e *entry) bool {
	if !e.hasData || e.invalidated {
		return true
	}
	return c.now().Sub(e.updatedAt) >= e.opts.StaleTime
}

func (c *Cache) beginFetchLocked(e *entry) {
	e.fetching = true
	if !e.hasData {
		e.status = StatusLoading
	}
}

func (c *Cache) startFetch(hash string, fetch FetchFunc) {
	c.startFetchCh(hash, fetch)
}

// startFetchCh starts the fetch of an entry or joins the one in flight.
func (c *Cache) startFetchCh(hash string, fetch FetchFunc) <-chan singleflight.Result {
	return c.group.DoChan(hash, func() (any, error) {
		c.lock.Lock()
		var generation uint64
		if e, ok := c.entries[hash]; ok {
			generation = e.generation
		}
		c.lock.Unlock()

		data, err := fetch(c.ctx)
		c.complete(hash, generation, data, err)
		return data, err
	})
}

func (c *Cache) complete(hash string, generation uint64, data any, err error) {
	outcome := SuccessOutcome
	if err != nil {
		outcome = FailureOutcome
	}
	c.measures.Fetches.With(prometheus.Labels{OutcomeLabel: outcome}).Inc()

	c.lock.Lock()
	// Release the key before the entry stops fetching, so that a fetch started
	// from here on is a new request rather than joining this finished one.
	c.group.Forget(hash)
	e, ok := c.entries[hash]
	if !ok {
		c.lock.Unlock()
		return
	}
	e.fetching = false
	if err != nil {
		e.status = StatusError
		e.err = err
		c.logger.Warn("cache fetch failed", zap.Stringer("key", e.key), zap.Error(err))
	} else {
		c.storeLocked(e, data)
		if e.generation == generation {
			e.invalidated = false
		}
	}

	again := err == nil && e.invalidated && len(e.observers) > 0 && !c.closed
	if !again {
		c.schedulePollLocked(e)
	}
	if len(e.observers) == 0 {
		c.scheduleGCLocked(e)
	}
	result := c.resultLocked(e)
	listeners := observersOf(e)
	c.lock.Unlock()

	notify(listeners, result)

	if again {
		// The entry was invalidated while this fetch was in flight.
		go c.refetch(e)
	}
}

// refetch starts a fetch for an observed entry.
func (c *Cache) refetch(e *entry) {
	c.lock.Lock()
	if c.closed || c.entries[e.hash] != e || len(e.observers) == 0 || e.fetch == nil {
		c.lock.Unlock()
		return
	}
	started := !e.fetching
	if started {
		c.beginFetchLocked(e)
	}
	fetch := e.fetch
	result := c.resultLocked(e)
	listeners := observersOf(e)
	c.lock.Unlock()

	if started {
		notify(listeners, result)
	}
	c.startFetch(e.hash, fetch)
}

func (c *Cache) storeLocked(e *entry, data any) {
	e.data = data
	e.hasData = true
	e.status = StatusSuccess
	e.err = nil
	e.updatedAt = c.now()
}

// schedulePollLocked arms the refetch interval of an observed entry.
func (c *Cache) schedulePollLocked(e *entry) {
	stopTimer(&e.pollTimer)
	if len(e.observers) == 0 || !e.hasData || e.fetching || e.opts.RefetchInterval == nil || c.closed {
		return
	}
	interval := e.opts.RefetchInterval(e.data)
	if interval <= 0 {
		return
	}
	e.pollTimer = time.AfterFunc(interval, func() { c.refetch(e) })
}

func (c *Cache) scheduleGCLocked(e *entry) {
	stopTimer(&e.gcTimer)
	gcTime := e.opts.GCTime
	if gcTime <= 0 {
		gcTime = c.gcTime
	}
	e.gcTimer = time.AfterFunc(gcTime, func() { c.collect(e) })
}

func (c *Cache) collect(e *entry) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.entries[e.hash] != e || len(e.observers) > 0 {
		return
	}
	if e.fetching {
		c.scheduleGCLocked(e)
		return
	}
	c.dropLocked(e.hash, e)
	c.logger.Debug("collected unused cache entry", zap.Stringer("key", e.key))
}

func (c *Cache) dropLocked(hash string, e *entry) {
	stopTimer(&e.pollTimer)
	stopTimer(&e.gcTimer)
	delete(c.entries, hash)
	c.measures.Entries.Set(float64(len(c.entries)))
}

func (c *Cache) resultLocked(e *entry) Result {
	return Result{
		Data:       e.data,
		Status:     e.status,
		Err:        e.err,
		UpdatedAt:  e.updatedAt,
		IsStale:    c.staleLocked(e),
		IsFetching: e.fetching,
	}
}

func observersOf(e *entry) []Listener {
	listeners := make([]Listener, 0, len(e.observers))
	for _, l := range e.observers {
		listeners = append(listeners, l)
	}
	return listeners
}

func notify(listeners []Listener, r Result) {
	for _, l := range listeners {
		l(r)
	}
}

func matchesAny(parts []string, prefixes [][]string) bool {
	for _, p := range prefixes {
		if hasPrefix(parts, p) {
			return true
		}
	}
	return false
}

func stopTimer(t **time.Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}

// Data returns the value held by r as a T.
func Data[T any](r Result) (T, bool) {
	v, ok := r.Data.(T)
	return v, ok
}

// Func adapts a typed fetch function.
func Func[T any](f func(context.Context) (T, error)) FetchFunc {
	return func(ctx context.Context) (any, error) {
		return f(ctx)
	}
}
