// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package model

import "time"

// Severity ranks a finding.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityInfo     Severity = "INFO"
)

// Finding is a single issue reported by a scan.
type Finding struct {
	ID          string    `json:"id"`
	ScanID      string    `json:"scan_id"`
	ScanType    ScanType  `json:"scan_type"`
	Severity    Severity  `json:"severity"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	FilePath    string    `json:"file_path,omitempty"`
	LineNumber  int       `json:"line_number,omitempty"`
	CodeSnippet string    `json:"code_snippet,omitempty"`
	CVEID       string    `json:"cve_id,omitempty"`
	CWEID       string    `json:"cwe_id,omitempty"`
	References  []string  `json:"references,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// FindingFilters narrows a finding listing.
type FindingFilters struct {
	ScanType  ScanType `json:"scan_type,omitempty"`
	Severity  Severity `json:"severity,omitempty"`
	Search    string   `json:"search,omitempty"`
	PageSize  int      `json:"page_size,omitempty"`
	PageToken string   `json:"page_token,omitempty"`
}

// FindingStats counts findings of a scan.
type FindingStats struct {
	Total      int              `json:"total"`
	BySeverity map[Severity]int `json:"by_severity"`
	ByScanType map[ScanType]int `json:"by_scan_type"`
}

// ExportFormat is one of the formats findings can be exported to.
type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
	ExportPDF  ExportFormat = "pdf"
)

// Valid reports whether f is a supported export format.
func (f ExportFormat) Valid() bool {
	switch f {
	case ExportJSON, ExportCSV, ExportPDF:
		return true
	}
	return false
}

// Export is a binary findings export.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}
