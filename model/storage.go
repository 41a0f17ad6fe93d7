// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package model

import "time"

// ArtifactType classifies a stored artifact.
type ArtifactType string

const (
	ArtifactSourceCode  ArtifactType = "SOURCE_CODE"
	ArtifactScanResults ArtifactType = "SCAN_RESULTS"
	ArtifactReport      ArtifactType = "REPORT"
	ArtifactLog         ArtifactType = "LOG"
)

// Artifact is a file held by the storage service on behalf of a scan.
type Artifact struct {
	ID             string       `json:"id"`
	ScanID         string       `json:"scan_id"`
	OrganizationID string       `json:"organization_id"`
	Type           ArtifactType `json:"type"`
	Filename       string       `json:"filename"`
	SizeBytes      int64        `json:"size_bytes"`
	ContentType    string       `json:"content_type,omitempty"`
	StoragePath    string       `json:"storage_path"`
	CreatedAt      time.Time    `json:"created_at"`
	ExpiresAt      *time.Time   `json:"expires_at,omitempty"`
}

type UploadArtifactRequest struct {
	ScanID         string       `json:"scan_id"`
	Type           ArtifactType `json:"type" validate:"required,oneof=SOURCE_CODE SCAN_RESULTS REPORT LOG"`
	Filename       string       `json:"filename" validate:"required"`
	ContentType    string       `json:"content_type" validate:"required"`
	SizeBytes      int64        `json:"size_bytes" validate:"gt=0"`
	ExpiresInHours int          `json:"expires_in_hours,omitempty" validate:"gte=0"`
}

// UploadResponse carries the presigned URL the file bytes must be PUT to.
type UploadResponse struct {
	ArtifactID    string            `json:"artifact_id"`
	UploadURL     string            `json:"upload_url"`
	UploadHeaders map[string]string `json:"upload_headers,omitempty"`
}

type DownloadResponse struct {
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}
