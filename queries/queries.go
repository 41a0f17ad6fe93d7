// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package queries binds the scanning API to the query cache. It owns the
// cache keys of every resource, how long each stays fresh, which resources
// poll, and which keys each mutation makes stale.
package queries

import (
	"context"
	"errors"
	"time"

	"github.com/Cloud-scan/cloudscan-ui/model"
	"github.com/Cloud-scan/cloudscan-ui/querycache"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

var (
	ErrNilAPI   = errors.New("API client cannot be nil")
	ErrNilCache = errors.New("query cache cannot be nil")
)

const DefaultScanPollInterval = 5 * time.Second

// API is the part of the scanning API the queries are built on.
type API interface {
	Signup(context.Context, model.SignupRequest) (model.AuthResponse, error)
	Login(context.Context, model.LoginRequest) (model.AuthResponse, error)
	Logout(context.Context) error
	CurrentUser(context.Context) (model.User, error)
	UpdateProfile(context.Context, model.UpdateUserRequest) (model.User, error)

	ListScans(context.Context, model.ListScansParams) (model.ListResponse[model.Scan], error)
	GetScan(ctx context.Context, id string) (model.Scan, error)
	CreateScan(context.Context, model.CreateScanRequest) (model.Scan, error)
	CancelScan(ctx context.Context, id string) error
	ScanSummary(context.Context) (model.ScanSummary, error)
	RecentScans(ctx context.Context, limit int) ([]model.Scan, error)
	ProjectScans(ctx context.Context, projectID string, limit int) ([]model.Scan, error)

	ListFindings(ctx context.Context, scanID string, filters model.FindingFilters) (model.ListResponse[model.Finding], error)
	GetFinding(ctx context.Context, scanID, findingID string) (model.Finding, error)
	FindingStats(ctx context.Context, scanID string) (model.FindingStats, error)

	ListProjects(context.Context) ([]model.Project, error)
	GetProject(ctx context.Context, id string) (model.Project, error)
	CreateProject(context.Context, model.CreateProjectRequest) (model.Project, error)
	UpdateProject(ctx context.Context, id string, req model.UpdateProjectRequest) (model.Project, error)
	DeleteProject(ctx context.Context, id string) error
	ProjectStats(ctx context.Context, id string) (model.ProjectStats, error)

	ListOrganizations(context.Context) ([]model.Organization, error)
	GetOrganization(ctx context.Context, id string) (model.Organization, error)
	UpdateOrganization(ctx context.Context, id string, req model.UpdateOrganizationRequest) (model.Organization, error)
	ListMembers(ctx context.Context, orgID string) ([]model.OrganizationMember, error)
	AddMember(ctx context.Context, orgID string, req model.AddMemberRequest) (model.OrganizationMember, error)
	RemoveMember(ctx context.Context, orgID, userID string) error
	UpdateMemberRole(ctx context.Context, orgID, userID string, req model.UpdateMemberRoleRequest) (model.OrganizationMember, error)

	ListArtifacts(ctx context.Context, scanID string) ([]model.Artifact, error)
	Upload(ctx context.Context, scanID string, artifactType model.ArtifactType, filename, contentType string, body []byte) (string, error)
	DeleteArtifact(ctx context.Context, artifactID string) error
}

// Config contains config data for the query catalogue.
type Config struct {
	// ScanPollInterval is how often an observed scan is refetched while it
	// is queued or running.
	// (Optional). Defaults to 5 seconds.
	ScanPollInterval time.Duration

	// Logger to be used by the catalogue.
	// (Optional). By default a no op logger will be used.
	Logger *zap.Logger
}

// Queries is the catalogue of cached queries and mutations.
type Queries struct {
	api          API
	cache        *querycache.Cache
	logger       *zap.Logger
	pollInterval time.Duration
}

func New(config Config, api API, cache *querycache.Cache) (*Queries, error) {
	if api == nil {
		return nil, ErrNilAPI
	}
	if cache == nil {
		return nil, ErrNilCache
	}
	if config.ScanPollInterval <= 0 {
		config.ScanPollInterval = DefaultScanPollInterval
	}
	if config.Logger == nil {
		config.Logger = sallust.Default()
	}

	return &Queries{
		api:          api,
		cache:        cache,
		logger:       config.Logger,
		pollInterval: config.ScanPollInterval,
	}, nil
}

// Cache returns the cache backing the catalogue.
func (q *Queries) Cache() *querycache.Cache {
	return q.cache
}

// Query is a typed handle on one cache entry.
type Query[T any] struct {
	Key     querycache.Key
	Options querycache.Options

	fetch querycache.FetchFunc
	cache *querycache.Cache
}

func newQuery[T any](q *Queries, key querycache.Key, opts querycache.Options, fetch func(context.Context) (T, error)) Query[T] {
	return Query[T]{
		Key:     key,
		Options: opts,
		fetch:   querycache.Func(fetch),
		cache:   q.cache,
	}
}

// Get returns fresh data, waiting for a fetch when the cached value is
// missing or stale.
func (q Query[T]) Get(ctx context.Context) (T, error) {
	v, err := q.cache.Fetch(ctx, q.Key, q.fetch, q.Options)
	if err != nil {
		var zero T
		return zero, err
	}
	data, _ := v.(T)
	return data, nil
}

// Peek returns whatever is cached right away and revalidates in the
// background when needed.
func (q Query[T]) Peek() (T, querycache.Result) {
	r := q.cache.Query(q.Key, q.fetch, q.Options)
	data, _ := querycache.Data[T](r)
	return data, r
}

// Read serves cached data right away, revalidating it in the background
// when stale, and waits for a fetch only when nothing usable is cached.
func (q Query[T]) Read(ctx context.Context) (T, error) {
	if r, ok := q.cache.Get(q.Key); ok && r.Status == querycache.StatusSuccess {
		data, _ := q.Peek()
		return data, nil
	}
	return q.Get(ctx)
}

// Observe mounts a consumer on the entry. See querycache.Cache.Observe.
func (q Query[T]) Observe(listener func(T, querycache.Result)) (func(), error) {
	return q.cache.Observe(q.Key, q.fetch, q.Options, func(r querycache.Result) {
		if listener == nil {
			return
		}
		data, _ := querycache.Data[T](r)
		listener(data, r)
	})
}

// mutate runs fn and invalidates the keys returned by invalidate on success.
func mutate[T any](ctx context.Context, q *Queries, name string, fn func(context.Context) (T, error), invalidate func(T) []querycache.Key) (T, error) {
	v, err := q.cache.Mutate(ctx, func(ctx context.Context) (any, error) {
		return fn(ctx)
	}, querycache.MutateOptions{
		OnSuccess: func(result any) []querycache.Key {
			if invalidate == nil {
				return nil
			}
			data, _ := result.(T)
			return invalidate(data)
		},
		OnError: func(err error) {
			q.logger.Debug("mutation failed", zap.String("mutation", name), zap.Error(err))
		},
	})
	if err != nil {
		var zero T
		return zero, err
	}
	data, _ := v.(T)
	return data, nil
}

// exec adapts a mutation without a result.
func exec(fn func(context.Context) error) func(context.Context) (struct{}, error) {
	return func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	}
}

func keys(k ...querycache.Key) func(struct{}) []querycache.Key {
	return func(struct{}) []querycache.Key { return k }
}
