// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// Package model holds the wire types exchanged with the scanning API.
package model

// ListResponse is the envelope of paginated listings.
type ListResponse[T any] struct {
	// Data is the current page.
	Data []T `json:"data"`

	// NextPageToken is empty on the last page.
	NextPageToken string `json:"next_page_token,omitempty"`

	// TotalCount is the number of items across all pages.
	TotalCount int `json:"total_count"`
}

// ErrorBody is the error payload returned by the API.
type ErrorBody struct {
	Message string              `json:"message"`
	Code    string              `json:"code,omitempty"`
	Details map[string][]string `json:"details,omitempty"`
}
