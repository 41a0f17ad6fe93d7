// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/Cloud-scan/cloudscan-ui/model"
	"go.uber.org/zap"
)

const (
	defaultUploadExpiryHours   = 24
	defaultDownloadExpiryHours = 1
)

// RequestUpload registers an artifact and returns the presigned URL its
// bytes must be sent to.
func (c *Client) RequestUpload(ctx context.Context, req model.UploadArtifactRequest) (model.UploadResponse, error) {
	if err := validateRequest(req); err != nil {
		return model.UploadResponse{}, err
	}
	return do[model.UploadResponse](ctx, c, request{method: http.MethodPost, path: "/storage/upload", body: req})
}

// UploadFile sends the raw bytes to a presigned URL. The URL carries its own
// authorization so no bearer token is attached.
func (c *Client) UploadFile(ctx context.Context, uploadURL, contentType string, headers map[string]string, body []byte) error {
	r, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(body))
	if err != nil {
		return &APIError{Message: defaultErrorMessage, Err: fmt.Errorf(errWrappedFmt, errNewRequestFailure, err.Error())}
	}
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	for k, v := range headers {
		r.Header.Set(k, v)
	}

	resp, err := c.client.Do(r)
	if err != nil {
		c.measure(http.MethodPut, FailureOutcome)
		c.log(ctx).Error("failed to upload artifact", zap.Error(err))
		return newTransportError(err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.measure(http.MethodPut, FailureOutcome)
		c.log(ctx).Error("storage rejected the artifact upload", zap.Int("code", resp.StatusCode))
		return newStatusError(response{Code: resp.StatusCode, Body: data, Header: resp.Header})
	}
	c.measure(http.MethodPut, SuccessOutcome)
	return nil
}

// Upload registers an artifact for a scan and sends its content, returning
// the artifact ID.
func (c *Client) Upload(ctx context.Context, scanID string, artifactType model.ArtifactType, filename, contentType string, body []byte) (string, error) {
	up, err := c.RequestUpload(ctx, model.UploadArtifactRequest{
		ScanID:         scanID,
		Type:           artifactType,
		Filename:       filename,
		ContentType:    contentType,
		SizeBytes:      int64(len(body)),
		ExpiresInHours: defaultUploadExpiryHours,
	})
	if err != nil {
		return "", err
	}
	if err := c.UploadFile(ctx, up.UploadURL, contentType, up.UploadHeaders, body); err != nil {
		return "", err
	}
	return up.ArtifactID, nil
}

// DownloadURL returns a presigned URL for the artifact, valid for the given
// number of hours (one hour when zero).
func (c *Client) DownloadURL(ctx context.Context, artifactID string, expiresInHours int) (model.DownloadResponse, error) {
	path, err := resourcePath("storage", "download", artifactID)
	if err != nil {
		return model.DownloadResponse{}, err
	}
	if expiresInHours <= 0 {
		expiresInHours = defaultDownloadExpiryHours
	}
	q, err := queryParams(map[string]any{"expires_in_hours": expiresInHours})
	if err != nil {
		return model.DownloadResponse{}, &APIError{Message: err.Error(), Err: ErrValidation}
	}
	return do[model.DownloadResponse](ctx, c, request{method: http.MethodGet, path: path, query: q})
}

func (c *Client) DeleteArtifact(ctx context.Context, artifactID string) error {
	path, err := resourcePath("storage", artifactID)
	if err != nil {
		return err
	}
	return c.send(ctx, request{method: http.MethodDelete, path: path})
}

func (c *Client) ListArtifacts(ctx context.Context, scanID string) ([]model.Artifact, error) {
	if scanID == "" {
		return nil, &APIError{Message: "Scan ID is required", Err: ErrValidation}
	}
	q, err := queryParams(map[string]any{"scan_id": scanID})
	if err != nil {
		return nil, &APIError{Message: err.Error(), Err: ErrValidation}
	}
	list, err := do[model.ListResponse[model.Artifact]](ctx, c, request{method: http.MethodGet, path: "/storage/artifacts", query: q})
	if err != nil {
		return nil, err
	}
	return list.Data, nil
}
