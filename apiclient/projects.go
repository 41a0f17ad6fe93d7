// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package apiclient

import (
	"context"
	"net/http"

	"github.com/Cloud-scan/cloudscan-ui/model"
)

type projectList struct {
	Projects []model.Project `json:"projects"`
}

func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	list, err := do[projectList](ctx, c, request{method: http.MethodGet, path: "/projects"})
	if err != nil {
		return nil, err
	}
	return list.Projects, nil
}

func (c *Client) GetProject(ctx context.Context, id string) (model.Project, error) {
	path, err := resourcePath("projects", id)
	if err != nil {
		return model.Project{}, err
	}
	return do[model.Project](ctx, c, request{method: http.MethodGet, path: path})
}

func (c *Client) CreateProject(ctx context.Context, req model.CreateProjectRequest) (model.Project, error) {
	if err := validateRequest(req); err != nil {
		return model.Project{}, err
	}
	return do[model.Project](ctx, c, request{method: http.MethodPost, path: "/projects", body: req})
}

func (c *Client) UpdateProject(ctx context.Context, id string, req model.UpdateProjectRequest) (model.Project, error) {
	path, err := resourcePath("projects", id)
	if err != nil {
		return model.Project{}, err
	}
	if err := validateRequest(req); err != nil {
		return model.Project{}, err
	}
	return do[model.Project](ctx, c, request{method: http.MethodPut, path: path, body: req})
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	path, err := resourcePath("projects", id)
	if err != nil {
		return err
	}
	return c.send(ctx, request{method: http.MethodDelete, path: path})
}

func (c *Client) ProjectStats(ctx context.Context, id string) (model.ProjectStats, error) {
	path, err := resourcePath("projects", id, "stats")
	if err != nil {
		return model.ProjectStats{}, err
	}
	return do[model.ProjectStats](ctx, c, request{method: http.MethodGet, path: path})
}
