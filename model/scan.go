// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package model

import "time"

// ScanStatus is the lifecycle state of a scan as reported by the API.
type ScanStatus string

const (
	ScanQueued    ScanStatus = "QUEUED"
	ScanRunning   ScanStatus = "RUNNING"
	ScanCompleted ScanStatus = "COMPLETED"
	ScanFailed    ScanStatus = "FAILED"
	ScanCancelled ScanStatus = "CANCELLED"
)

// IsActive returns true while the scan is still queued or running.
func (s ScanStatus) IsActive() bool {
	return s == ScanQueued || s == ScanRunning
}

// IsTerminal returns true once the scan can no longer change status.
func (s ScanStatus) IsTerminal() bool {
	return s == ScanCompleted || s == ScanFailed || s == ScanCancelled
}

// ScanType identifies one of the analyses a scan can run.
type ScanType string

const (
	// ScanTypeSAST is static application security testing.
	ScanTypeSAST ScanType = "SAST"
	// ScanTypeSCA is software composition (dependency) analysis.
	ScanTypeSCA ScanType = "SCA"
	// ScanTypeSecrets is secret detection.
	ScanTypeSecrets ScanType = "SECRETS"
	// ScanTypeLicense is license compliance.
	ScanTypeLicense ScanType = "LICENSE"
)

// Scan is one execution of one or more analyses against a project's source.
type Scan struct {
	ID                 string         `json:"id"`
	OrganizationID     string         `json:"organization_id"`
	ProjectID          string         `json:"project_id"`
	Status             ScanStatus     `json:"status"`
	ScanTypes          []ScanType     `json:"scan_types"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	CompletedAt        *time.Time     `json:"completed_at,omitempty"`
	GitURL             string         `json:"git_url,omitempty"`
	GitBranch          string         `json:"git_branch,omitempty"`
	GitCommit          string         `json:"git_commit,omitempty"`
	TotalFindings      int            `json:"total_findings"`
	FindingsBySeverity map[string]int `json:"findings_by_severity,omitempty"`
	ErrorMessage       string         `json:"error_message,omitempty"`
}

// CreateScanRequest is the payload used to launch a scan.
type CreateScanRequest struct {
	ProjectID string     `json:"project_id" validate:"required"`
	ScanTypes []ScanType `json:"scan_types" validate:"required,min=1,dive,oneof=SAST SCA SECRETS LICENSE"`
	GitURL    string     `json:"git_url,omitempty" validate:"omitempty,url"`
	GitBranch string     `json:"git_branch,omitempty"`
	GitCommit string     `json:"git_commit,omitempty"`

	// SourceArtifactID references previously uploaded source code.
	// (Optional) Either GitURL or SourceArtifactID is normally set.
	SourceArtifactID string `json:"source_artifact_id,omitempty"`
}

// ListScansParams filters a scan listing. Zero values are omitted from the query.
type ListScansParams struct {
	ProjectID string     `json:"project_id,omitempty"`
	Status    ScanStatus `json:"status,omitempty"`
	PageSize  int        `json:"page_size,omitempty"`
	PageToken string     `json:"page_token,omitempty"`
}

// ScanProgress is the payload of a realtime progress event.
type ScanProgress struct {
	ScanID      string     `json:"scanId"`
	Status      ScanStatus `json:"status"`
	Progress    int        `json:"progress"`
	CurrentStep string     `json:"currentStep,omitempty"`
	Message     string     `json:"message,omitempty"`
}

// ScanLog is the payload of a realtime log event.
type ScanLog struct {
	Timestamp string   `json:"timestamp"`
	Level     string   `json:"level"`
	Message   string   `json:"message"`
	ScanType  ScanType `json:"scanType,omitempty"`
}

// ScanStatusUpdate is the payload of a realtime status event.
type ScanStatusUpdate struct {
	Status ScanStatus `json:"status"`
}

// ScanSummary aggregates scan activity for the dashboard landing page.
type ScanSummary struct {
	TotalScans     int `json:"total_scans"`
	ActiveScans    int `json:"active_scans"`
	CompletedToday int `json:"completed_today"`

	// AverageDuration is expressed in seconds.
	AverageDuration float64 `json:"average_duration"`
}
