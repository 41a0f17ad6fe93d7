// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package queries

import (
	"context"

	"github.com/Cloud-scan/cloudscan-ui/model"
	"github.com/Cloud-scan/cloudscan-ui/querycache"
)

func (q *Queries) Projects() Query[[]model.Project] {
	return newQuery(q, ProjectsKey(), querycache.Options{StaleTime: projectStaleTime}, q.api.ListProjects)
}

func (q *Queries) Project(id string) Query[model.Project] {
	return newQuery(q, ProjectKey(id), querycache.Options{StaleTime: projectStaleTime},
		func(ctx context.Context) (model.Project, error) {
			return q.api.GetProject(ctx, id)
		})
}

func (q *Queries) ProjectStats(id string) Query[model.ProjectStats] {
	return newQuery(q, ProjectStatsKey(id), querycache.Options{StaleTime: projectStatsStaleTime},
		func(ctx context.Context) (model.ProjectStats, error) {
			return q.api.ProjectStats(ctx, id)
		})
}

func (q *Queries) CreateProject(ctx context.Context, req model.CreateProjectRequest) (model.Project, error) {
	return mutate(ctx, q, "createProject",
		func(ctx context.Context) (model.Project, error) {
			return q.api.CreateProject(ctx, req)
		},
		projectsChanged[model.Project])
}

func (q *Queries) UpdateProject(ctx context.Context, id string, req model.UpdateProjectRequest) (model.Project, error) {
	return mutate(ctx, q, "updateProject",
		func(ctx context.Context) (model.Project, error) {
			return q.api.UpdateProject(ctx, id, req)
		},
		projectsChanged[model.Project])
}

func (q *Queries) DeleteProject(ctx context.Context, id string) error {
	_, err := mutate(ctx, q, "deleteProject",
		exec(func(ctx context.Context) error { return q.api.DeleteProject(ctx, id) }),
		projectsChanged[struct{}])
	return err
}

func projectsChanged[T any](T) []querycache.Key {
	return []querycache.Key{ProjectsKey()}
}
