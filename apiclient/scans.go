// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package apiclient

import (
	"context"
	"net/http"

	"github.com/Cloud-scan/cloudscan-ui/model"
)

// DefaultRecentLimit is the number of scans returned by RecentScans and
// ProjectScans when no limit is given.
const DefaultRecentLimit = 10

func (c *Client) ListScans(ctx context.Context, params model.ListScansParams) (model.ListResponse[model.Scan], error) {
	q, err := queryParams(map[string]any{
		"project_id": params.ProjectID,
		"status":     string(params.Status),
		"page_size":  params.PageSize,
		"page_token": params.PageToken,
	})
	if err != nil {
		return model.ListResponse[model.Scan]{}, &APIError{Message: err.Error(), Err: ErrValidation}
	}
	return do[model.ListResponse[model.Scan]](ctx, c, request{method: http.MethodGet, path: "/scans", query: q})
}

func (c *Client) GetScan(ctx context.Context, id string) (model.Scan, error) {
	path, err := resourcePath("scans", id)
	if err != nil {
		return model.Scan{}, err
	}
	return do[model.Scan](ctx, c, request{method: http.MethodGet, path: path})
}

func (c *Client) CreateScan(ctx context.Context, req model.CreateScanRequest) (model.Scan, error) {
	if err := validateRequest(req); err != nil {
		return model.Scan{}, err
	}
	return do[model.Scan](ctx, c, request{method: http.MethodPost, path: "/scans", body: req})
}

func (c *Client) CancelScan(ctx context.Context, id string) error {
	path, err := resourcePath("scans", id, "cancel")
	if err != nil {
		return err
	}
	return c.send(ctx, request{method: http.MethodPut, path: path})
}

func (c *Client) ScanSummary(ctx context.Context) (model.ScanSummary, error) {
	return do[model.ScanSummary](ctx, c, request{method: http.MethodGet, path: "/scans/summary"})
}

// RecentScans returns the latest scans across all projects.
func (c *Client) RecentScans(ctx context.Context, limit int) ([]model.Scan, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	list, err := c.ListScans(ctx, model.ListScansParams{PageSize: limit})
	if err != nil {
		return nil, err
	}
	return list.Data, nil
}

// ProjectScans returns the latest scans of one project.
func (c *Client) ProjectScans(ctx context.Context, projectID string, limit int) ([]model.Scan, error) {
	if projectID == "" {
		return nil, &APIError{Message: "Project ID is required", Err: ErrValidation}
	}
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	list, err := c.ListScans(ctx, model.ListScansParams{ProjectID: projectID, PageSize: limit})
	if err != nil {
		return nil, err
	}
	return list.Data, nil
}
