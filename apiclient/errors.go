// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/Cloud-scan/cloudscan-ui/model"
)

// Errors that can be returned by this package. Most of them reach callers
// wrapped in an *APIError, so errors.Is() should be used to check for them.
var (
	ErrValidation     = errors.New("request failed validation")
	ErrUnauthorized   = errors.New("request was not authorized")
	ErrForbidden      = errors.New("request was forbidden")
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource conflict")
	ErrRateLimited    = errors.New("rate limit exceeded")
	ErrServer         = errors.New("server failed to process the request")
	ErrTimeout        = errors.New("request timed out")
	ErrNetwork        = errors.New("network error")
	ErrSessionExpired = errors.New("session expired, sign in again")
)

var errNonSuccessResponse = errors.New("API responded with a non-success status code")

const (
	defaultErrorMessage = "An unexpected error occurred"
	rateLimitMessage    = "Rate limit exceeded. Please try again later."
)

// APIError is the uniform shape every failure is normalized into before it
// reaches a caller.
type APIError struct {
	// Message is human readable and safe to show to a user.
	Message string

	// Code is the machine readable error code sent by the server, if any.
	Code string

	// Details maps request fields to the problems found with them.
	Details map[string][]string

	// StatusCode is zero when no response was received.
	StatusCode int

	Err error
}

func (e *APIError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("%v: %s", e.Err, e.Message)
	}
	return fmt.Sprintf("%v: %s (status %d)", e.Err, e.Message, e.StatusCode)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// AsAPIError returns the *APIError inside err, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// translateNonSuccessStatusCode returns a specific error for known status
// codes.
func translateNonSuccessStatusCode(code int) error {
	switch {
	case code == http.StatusBadRequest, code == http.StatusUnprocessableEntity:
		return ErrValidation
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	case code == http.StatusForbidden:
		return ErrForbidden
	case code == http.StatusNotFound:
		return ErrNotFound
	case code == http.StatusConflict:
		return ErrConflict
	case code == http.StatusTooManyRequests:
		return ErrRateLimited
	case code >= http.StatusInternalServerError:
		return ErrServer
	default:
		return errNonSuccessResponse
	}
}

func newStatusError(resp response) *APIError {
	apiErr := &APIError{
		StatusCode: resp.Code,
		Err:        translateNonSuccessStatusCode(resp.Code),
	}

	var body model.ErrorBody
	if len(resp.Body) > 0 && json.Unmarshal(resp.Body, &body) == nil {
		apiErr.Message = body.Message
		apiErr.Code = body.Code
		apiErr.Details = body.Details
	}

	if apiErr.Message == "" {
		if resp.Code == http.StatusTooManyRequests {
			apiErr.Message = rateLimitMessage
		} else if text := http.StatusText(resp.Code); text != "" {
			apiErr.Message = text
		} else {
			apiErr.Message = defaultErrorMessage
		}
	}
	return apiErr
}

// newTransportError normalizes failures that happened before any response
// was received.
func newTransportError(err error) *APIError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &APIError{Message: "The request timed out", Err: ErrTimeout}
	}
	msg := err.Error()
	if msg == "" {
		msg = defaultErrorMessage
	}
	return &APIError{Message: msg, Err: ErrNetwork}
}
