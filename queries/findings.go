// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package queries

import (
	"context"

	"github.com/Cloud-scan/cloudscan-ui/model"
	"github.com/Cloud-scan/cloudscan-ui/querycache"
)

func (q *Queries) Findings(scanID string, filters model.FindingFilters) Query[model.ListResponse[model.Finding]] {
	return newQuery(q, FindingListKey(scanID, filters), querycache.Options{StaleTime: findingListStaleTime},
		func(ctx context.Context) (model.ListResponse[model.Finding], error) {
			return q.api.ListFindings(ctx, scanID, filters)
		})
}

func (q *Queries) Finding(scanID, findingID string) Query[model.Finding] {
	return newQuery(q, FindingKey(scanID, findingID), querycache.Options{StaleTime: findingStaleTime},
		func(ctx context.Context) (model.Finding, error) {
			return q.api.GetFinding(ctx, scanID, findingID)
		})
}

func (q *Queries) FindingStats(scanID string) Query[model.FindingStats] {
	return newQuery(q, FindingStatsKey(scanID), querycache.Options{StaleTime: findingListStaleTime},
		func(ctx context.Context) (model.FindingStats, error) {
			return q.api.FindingStats(ctx, scanID)
		})
}

func (q *Queries) Artifacts(scanID string) Query[[]model.Artifact] {
	return newQuery(q, ArtifactsKey(scanID), querycache.Options{StaleTime: artifactStaleTime},
		func(ctx context.Context) ([]model.Artifact, error) {
			return q.api.ListArtifacts(ctx, scanID)
		})
}

// Upload stores a file for a scan and returns the new artifact ID.
func (q *Queries) Upload(ctx context.Context, scanID string, artifactType model.ArtifactType, filename, contentType string, body []byte) (string, error) {
	return mutate(ctx, q, "uploadArtifact",
		func(ctx context.Context) (string, error) {
			return q.api.Upload(ctx, scanID, artifactType, filename, contentType, body)
		},
		func(string) []querycache.Key {
			return []querycache.Key{ArtifactsKey(scanID)}
		})
}

func (q *Queries) DeleteArtifact(ctx context.Context, scanID, artifactID string) error {
	_, err := mutate(ctx, q, "deleteArtifact",
		exec(func(ctx context.Context) error { return q.api.DeleteArtifact(ctx, artifactID) }),
		keys(ArtifactsKey(scanID)))
	return err
}
