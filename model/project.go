// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package model

import "time"

// Project is a source repository registered for scanning.
type Project struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	GitURL         string     `json:"git_url,omitempty"`
	GitBranch      string     `json:"git_branch,omitempty"`
	IsActive       bool       `json:"is_active"`
	ScanCount      int        `json:"scan_count"`
	LastScanAt     *time.Time `json:"last_scan_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description,omitempty"`
	GitURL      string `json:"git_url,omitempty" validate:"omitempty,url"`
	GitBranch   string `json:"git_branch,omitempty"`
}

// UpdateProjectRequest only sends the fields that are set.
type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description,omitempty"`
	GitURL      *string `json:"git_url,omitempty" validate:"omitempty,url"`
	GitBranch   *string `json:"git_branch,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type ProjectStats struct {
	TotalScans       int `json:"total_scans"`
	ActiveScans      int `json:"active_scans"`
	CompletedScans   int `json:"completed_scans"`
	FailedScans      int `json:"failed_scans"`
	TotalFindings    int `json:"total_findings"`
	CriticalFindings int `json:"critical_findings"`
	HighFindings     int `json:"high_findings"`
}
