// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/Cloud-scan/cloudscan-ui/model"
	"github.com/go-kit/kit/endpoint"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/spf13/cast"
)

// request URL path keys
const (
	idVarKey        = "id"
	findingIDVarKey = "findingID"
)

// query parameter keys
const (
	projectIDParam = "project_id"
	statusParam    = "status"
	pageSizeParam  = "page_size"
	pageTokenParam = "page_token"
	scanTypeParam  = "scan_type"
	severityParam  = "severity"
	searchParam    = "search"
	limitParam     = "limit"
)

const (
	idVarMissingMsg = "{id} URL path parameter missing"
	jsonContentType = "application/json"

	// maxBodyBytes bounds the JSON bodies accepted from the front end.
	maxBodyBytes = 1 << 20
)

func newServer(e endpoint.Endpoint, dec kithttp.DecodeRequestFunc) http.Handler {
	return kithttp.NewServer(
		e,
		dec,
		encodeResponse,
		kithttp.ServerErrorEncoder(encodeError),
	)
}

func decodeNothing(context.Context, *http.Request) (interface{}, error) {
	return nil, nil
}

func decodeIDRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, err := pathVar(r, idVarKey)
	if err != nil {
		return nil, err
	}
	return &idRequest{id: id}, nil
}

func decodeLimitRequest(_ context.Context, r *http.Request) (interface{}, error) {
	limit, err := intParam(r, limitParam)
	if err != nil {
		return nil, err
	}
	// Routes without an {id} leave it empty.
	return &limitRequest{id: mux.Vars(r)[idVarKey], limit: limit}, nil
}

func decodeListScansRequest(_ context.Context, r *http.Request) (interface{}, error) {
	pageSize, err := intParam(r, pageSizeParam)
	if err != nil {
		return nil, err
	}
	q := r.URL.Query()
	return &model.ListScansParams{
		ProjectID: q.Get(projectIDParam),
		Status:    model.ScanStatus(q.Get(statusParam)),
		PageSize:  pageSize,
		PageToken: q.Get(pageTokenParam),
	}, nil
}

func decodeFindingsRequest(_ context.Context, r *http.Request) (interface{}, error) {
	scanID, err := pathVar(r, idVarKey)
	if err != nil {
		return nil, err
	}
	pageSize, err := intParam(r, pageSizeParam)
	if err != nil {
		return nil, err
	}
	q := r.URL.Query()
	return &findingsRequest{
		scanID: scanID,
		filters: model.FindingFilters{
			ScanType:  model.ScanType(q.Get(scanTypeParam)),
			Severity:  model.Severity(q.Get(severityParam)),
			Search:    q.Get(searchParam),
			PageSize:  pageSize,
			PageToken: q.Get(pageTokenParam),
		},
	}, nil
}

func decodeFindingRequest(_ context.Context, r *http.Request) (interface{}, error) {
	scanID, err := pathVar(r, idVarKey)
	if err != nil {
		return nil, err
	}
	findingID, err := pathVar(r, findingIDVarKey)
	if err != nil {
		return nil, err
	}
	return &findingRequest{scanID: scanID, findingID: findingID}, nil
}

// decodeBody returns a decoder for JSON bodies of type T.
func decodeBody[T any]() kithttp.DecodeRequestFunc {
	return func(_ context.Context, r *http.Request) (interface{}, error) {
		var v T
		if err := readJSON(r, &v); err != nil {
			return nil, err
		}
		return &v, nil
	}
}

func decodeUpdateProjectRequest(_ context.Context, r *http.Request) (interface{}, error) {
	id, err := pathVar(r, idVarKey)
	if err != nil {
		return nil, err
	}
	var update model.UpdateProjectRequest
	if err := readJSON(r, &update); err != nil {
		return nil, err
	}
	return &updateProjectRequest{id: id, update: update}, nil
}

func readJSON(r *http.Request, v any) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return BadRequestErr{Message: "failed to read body"}
	}
	if len(data) == 0 {
		return BadRequestErr{Message: "request body is required"}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return BadRequestErr{Message: "failed to unmarshal json"}
	}
	return nil
}

func pathVar(r *http.Request, key string) (string, error) {
	v, ok := mux.Vars(r)[key]
	if !ok || v == "" {
		if key == idVarKey {
			return "", BadRequestErr{Message: idVarMissingMsg}
		}
		return "", BadRequestErr{Message: fmt.Sprintf("{%s} URL path parameter missing", key)}
	}
	return v, nil
}

// intParam returns zero when the parameter is absent.
func intParam(r *http.Request, key string) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := cast.ToIntE(raw)
	if err != nil || v < 0 {
		return 0, BadRequestErr{Message: fmt.Sprintf("%s must be a non-negative integer", key)}
	}
	return v, nil
}

func encodeResponse(_ context.Context, rw http.ResponseWriter, response interface{}) error {
	code := http.StatusOK
	if c, ok := response.(created); ok {
		code = http.StatusCreated
		response = c.value
	}
	if response == nil {
		rw.WriteHeader(http.StatusNoContent)
		return nil
	}

	data, err := json.Marshal(response)
	if err != nil {
		return err
	}
	rw.Header().Set("Content-Type", jsonContentType)
	rw.WriteHeader(code)
	_, err = rw.Write(data)
	return err
}
