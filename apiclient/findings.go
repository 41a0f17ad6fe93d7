// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package apiclient

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"

	"github.com/Cloud-scan/cloudscan-ui/model"
)

func (c *Client) ListFindings(ctx context.Context, scanID string, filters model.FindingFilters) (model.ListResponse[model.Finding], error) {
	path, err := resourcePath("scans", scanID, "findings")
	if err != nil {
		return model.ListResponse[model.Finding]{}, err
	}
	q, err := queryParams(map[string]any{
		"scan_type":  string(filters.ScanType),
		"severity":   string(filters.Severity),
		"search":     filters.Search,
		"page_size":  filters.PageSize,
		"page_token": filters.PageToken,
	})
	if err != nil {
		return model.ListResponse[model.Finding]{}, &APIError{Message: err.Error(), Err: ErrValidation}
	}
	return do[model.ListResponse[model.Finding]](ctx, c, request{method: http.MethodGet, path: path, query: q})
}

func (c *Client) GetFinding(ctx context.Context, scanID, findingID string) (model.Finding, error) {
	path, err := resourcePath("scans", scanID, "findings", findingID)
	if err != nil {
		return model.Finding{}, err
	}
	return do[model.Finding](ctx, c, request{method: http.MethodGet, path: path})
}

func (c *Client) FindingStats(ctx context.Context, scanID string) (model.FindingStats, error) {
	path, err := resourcePath("scans", scanID, "findings", "stats")
	if err != nil {
		return model.FindingStats{}, err
	}
	return do[model.FindingStats](ctx, c, request{method: http.MethodGet, path: path})
}

// ExportFindings downloads every finding of a scan in the given format. The
// body is returned as is.
func (c *Client) ExportFindings(ctx context.Context, scanID string, format model.ExportFormat) (model.Export, error) {
	if !format.Valid() {
		return model.Export{}, &APIError{
			Message: fmt.Sprintf("Unsupported export format %q", format),
			Details: map[string][]string{"format": {"must be one of: json csv pdf"}},
			Err:     ErrValidation,
		}
	}
	path, err := resourcePath("scans", scanID, "findings", "export")
	if err != nil {
		return model.Export{}, err
	}

	req := request{
		method: http.MethodGet,
		path:   path,
		query:  url.Values{"format": {string(format)}},
		accept: "*/*",
	}
	resp, err := c.execute(ctx, req)
	if err != nil {
		return model.Export{}, err
	}
	if resp.Code != http.StatusOK {
		return model.Export{}, c.statusError(ctx, req, resp)
	}

	export := model.Export{
		Filename:    fmt.Sprintf("findings-%s.%s", scanID, format),
		ContentType: resp.Header.Get("Content-Type"),
		Body:        resp.Body,
	}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil && params["filename"] != "" {
		export.Filename = params["filename"]
	}
	return export, nil
}
