// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package queries

import (
	"context"
	"time"

	"github.com/Cloud-scan/cloudscan-ui/model"
	"github.com/Cloud-scan/cloudscan-ui/querycache"
)

func (q *Queries) Scans(params model.ListScansParams) Query[model.ListResponse[model.Scan]] {
	return newQuery(q, ScanListKey(params), querycache.Options{StaleTime: scanListStaleTime},
		func(ctx context.Context) (model.ListResponse[model.Scan], error) {
			return q.api.ListScans(ctx, params)
		})
}

// Scan is refetched every poll interval while it is observed and still
// queued or running.
func (q *Queries) Scan(id string) Query[model.Scan] {
	return newQuery(q, ScanKey(id), querycache.Options{RefetchInterval: q.pollActiveScan},
		func(ctx context.Context) (model.Scan, error) {
			return q.api.GetScan(ctx, id)
		})
}

func (q *Queries) pollActiveScan(data any) time.Duration {
	if scan, ok := data.(model.Scan); ok && scan.Status.IsActive() {
		return q.pollInterval
	}
	return 0
}

func (q *Queries) RecentScans(limit int) Query[[]model.Scan] {
	return newQuery(q, RecentScansKey(limit), querycache.Options{StaleTime: scanListStaleTime},
		func(ctx context.Context) ([]model.Scan, error) {
			return q.api.RecentScans(ctx, limit)
		})
}

func (q *Queries) ProjectScans(projectID string, limit int) Query[[]model.Scan] {
	return newQuery(q, ProjectScansKey(projectID, limit), querycache.Options{StaleTime: scanListStaleTime},
		func(ctx context.Context) ([]model.Scan, error) {
			return q.api.ProjectScans(ctx, projectID, limit)
		})
}

func (q *Queries) ScanSummary() Query[model.ScanSummary] {
	return newQuery(q, ScanSummaryKey(), querycache.Options{StaleTime: scanSummaryStaleTime},
		q.api.ScanSummary)
}

// CreateScan launches a scan. Scan listings and projects, whose scan counts
// change, become stale.
func (q *Queries) CreateScan(ctx context.Context, req model.CreateScanRequest) (model.Scan, error) {
	return mutate(ctx, q, "createScan",
		func(ctx context.Context) (model.Scan, error) {
			return q.api.CreateScan(ctx, req)
		},
		func(model.Scan) []querycache.Key {
			return []querycache.Key{AllScansKey(), ProjectsKey()}
		})
}

func (q *Queries) CancelScan(ctx context.Context, id string) error {
	_, err := mutate(ctx, q, "cancelScan",
		exec(func(ctx context.Context) error { return q.api.CancelScan(ctx, id) }),
		keys(AllScansKey(), ScanKey(id)))
	return err
}
