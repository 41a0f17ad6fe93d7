// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Cloud-scan/cloudscan-ui/apiclient"
	"github.com/Cloud-scan/cloudscan-ui/model"
	"github.com/Cloud-scan/cloudscan-ui/querycache"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

// ErrCasting indicates there was a middleware wiring mistake with the go-kit
// style encoders.
var ErrCasting = errors.New("casting error due to middleware wiring mistake")

type BadRequestErr struct {
	Message string
}

func (bre BadRequestErr) Error() string {
	return bre.Message
}

func (bre BadRequestErr) StatusCode() int {
	return http.StatusBadRequest
}

type NotFoundErr struct {
	Message string
}

func (nfe NotFoundErr) Error() string {
	return nfe.Message
}

func (nfe NotFoundErr) StatusCode() int {
	return http.StatusNotFound
}

func encodeError(ctx context.Context, err error, w http.ResponseWriter) {
	code, body := describeError(err)
	if code >= http.StatusInternalServerError {
		sallust.Get(ctx).Error("dashboard request failed", zap.Int("code", code), zap.Error(err))
	}

	if headerer, ok := err.(kithttp.Headerer); ok {
		for k, values := range headerer.Headers() {
			for _, v := range values {
				w.Header().Add(k, v)
			}
		}
	}
	w.Header().Set("Content-Type", jsonContentType)
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

// describeError picks the status code and payload returned for err. The
// payload has the shape of the scanning API's errors.
func describeError(err error) (int, model.ErrorBody) {
	if apiErr, ok := apiclient.AsAPIError(err); ok {
		body := model.ErrorBody{Message: apiErr.Message, Code: apiErr.Code, Details: apiErr.Details}
		if apiErr.StatusCode != 0 {
			return apiErr.StatusCode, body
		}
		switch {
		case errors.Is(err, apiclient.ErrValidation):
			return http.StatusBadRequest, body
		case errors.Is(err, apiclient.ErrSessionExpired):
			return http.StatusUnauthorized, body
		case errors.Is(err, apiclient.ErrTimeout):
			return http.StatusGatewayTimeout, body
		default:
			return http.StatusBadGateway, body
		}
	}

	if errors.Is(err, querycache.ErrCacheClosed) {
		return http.StatusServiceUnavailable, model.ErrorBody{Message: err.Error()}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, model.ErrorBody{Message: err.Error()}
	}

	var sc kithttp.StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode(), model.ErrorBody{Message: err.Error()}
	}
	return http.StatusInternalServerError, model.ErrorBody{Message: err.Error()}
}
