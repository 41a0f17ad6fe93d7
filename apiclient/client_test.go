// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Cloud-scan/cloudscan-ui/model"
	"github.com/Cloud-scan/cloudscan-ui/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMeasures() *Measures {
	return &Measures{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "testRequestCounter", Help: "testRequestCounter"},
			[]string{MethodLabel, OutcomeLabel},
		),
		Refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "testRefreshCounter", Help: "testRefreshCounter"},
			[]string{OutcomeLabel},
		),
	}
}

func newTestSession(t *testing.T, access, refresh string) *session.Store {
	s, err := session.NewStore(nil, nil)
	require.NoError(t, err)
	if access != "" {
		require.NoError(t, s.Set(model.AuthResponse{AccessToken: access, RefreshToken: refresh}))
	}
	return s
}

func newTestClient(t *testing.T, address string, s *session.Store, onExpired func()) *Client {
	c, err := NewClient(ClientConfig{
		Address:          address,
		Session:          s,
		OnSessionExpired: onExpired,
	}, nil, newTestMeasures())
	require.NoError(t, err)
	return c
}

func writeJSON(rw http.ResponseWriter, code int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(code)
	_ = json.NewEncoder(rw).Encode(v)
}

func TestNewClient(t *testing.T) {
	t.Run("nil measures", func(t *testing.T) {
		_, err := NewClient(ClientConfig{}, nil, nil)
		assert.ErrorIs(t, err, ErrNilMeasures)
	})

	t.Run("bad address", func(t *testing.T) {
		_, err := NewClient(ClientConfig{Address: "::not a url"}, nil, newTestMeasures())
		assert.Error(t, err)
	})

	t.Run("defaults", func(t *testing.T) {
		assert := assert.New(t)
		c, err := NewClient(ClientConfig{}, nil, newTestMeasures())
		require.NoError(t, err)
		assert.Equal(DefaultAddress, c.baseURL)
		assert.Equal(DefaultTimeout, c.client.Timeout)
		assert.NotNil(c.Session())
		assert.NotNil(c.logger)
	})
}

func TestBearerHeader(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		writeJSON(rw, http.StatusOK, model.ScanSummary{TotalScans: 3})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, newTestSession(t, "token", "refresh"), nil)
	summary, err := c.ScanSummary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalScans)
	assert.Equal(t, "Bearer token", got)
}

func TestRefreshOnUnauthorized(t *testing.T) {
	var refreshes int32
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/refresh":
			atomic.AddInt32(&refreshes, 1)
			var req model.RefreshTokenRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken != "refresh" {
				writeJSON(rw, http.StatusUnauthorized, model.ErrorBody{Message: "bad refresh token"})
				return
			}
			writeJSON(rw, http.StatusOK, model.AuthResponse{AccessToken: "fresh"})
		case "/scans/abc":
			if r.Header.Get("Authorization") != "Bearer fresh" {
				writeJSON(rw, http.StatusUnauthorized, model.ErrorBody{Message: "token expired"})
				return
			}
			writeJSON(rw, http.StatusOK, model.Scan{ID: "abc", Status: model.ScanRunning})
		default:
			rw.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	s := newTestSession(t, "stale", "refresh")
	expired := false
	c := newTestClient(t, server.URL, s, func() { expired = true })

	scan, err := c.GetScan(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", scan.ID)
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshes))
	assert.Equal(t, "fresh", s.AccessToken())
	assert.Equal(t, "refresh", s.RefreshToken())
	assert.False(t, expired)
}

func TestRefreshOnlyOnce(t *testing.T) {
	var refreshes, calls int32
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			atomic.AddInt32(&refreshes, 1)
			writeJSON(rw, http.StatusOK, model.AuthResponse{AccessToken: "fresh"})
			return
		}
		atomic.AddInt32(&calls, 1)
		writeJSON(rw, http.StatusUnauthorized, model.ErrorBody{Message: "nope"})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, newTestSession(t, "stale", "refresh"), nil)
	_, err := c.ListProjects(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshes))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestRefreshFailureExpiresSession(t *testing.T) {
	tcs := []struct {
		desc    string
		refresh string
	}{
		{desc: "refresh rejected", refresh: "refresh"},
		{desc: "no refresh token"},
	}

	for _, tc := range tcs {
		t.Run(tc.desc, func(t *testing.T) {
			assert := assert.New(t)
			server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
				writeJSON(rw, http.StatusUnauthorized, model.ErrorBody{Message: "expired"})
			}))
			defer server.Close()

			s := newTestSession(t, "stale", tc.refresh)
			var expired int
			c := newTestClient(t, server.URL, s, func() { expired++ })

			_, err := c.GetProject(context.Background(), "p1")
			assert.ErrorIs(err, ErrSessionExpired)
			apiErr, ok := AsAPIError(err)
			require.True(t, ok)
			assert.Equal(http.StatusUnauthorized, apiErr.StatusCode)
			assert.Equal(1, expired)
			assert.False(s.Authenticated())
			assert.Empty(s.RefreshToken())
		})
	}
}

func TestConcurrentUnauthorizedRefreshesOnce(t *testing.T) {
	var refreshes int32
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			atomic.AddInt32(&refreshes, 1)
			time.Sleep(20 * time.Millisecond)
			writeJSON(rw, http.StatusOK, model.AuthResponse{AccessToken: "fresh"})
			return
		}
		if r.Header.Get("Authorization") != "Bearer fresh" {
			writeJSON(rw, http.StatusUnauthorized, model.ErrorBody{Message: "expired"})
			return
		}
		writeJSON(rw, http.StatusOK, model.ProjectStats{TotalScans: 1})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, newTestSession(t, "stale", "refresh"), nil)

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.ProjectStats(context.Background(), "p1")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshes))
}

func TestStatusErrors(t *testing.T) {
	tcs := []struct {
		desc            string
		code            int
		body            any
		expectedErr     error
		expectedMessage string
		expectedDetails map[string][]string
	}{
		{
			desc:            "rate limited",
			code:            http.StatusTooManyRequests,
			expectedErr:     ErrRateLimited,
			expectedMessage: rateLimitMessage,
		},
		{
			desc: "validation",
			code: http.StatusUnprocessableEntity,
			body: model.ErrorBody{
				Message: "invalid scan",
				Code:    "INVALID_ARGUMENT",
				Details: map[string][]string{"scan_types": {"is required"}},
			},
			expectedErr:     ErrValidation,
			expectedMessage: "invalid scan",
			expectedDetails: map[string][]string{"scan_types": {"is required"}},
		},
		{
			desc:            "not found",
			code:            http.StatusNotFound,
			expectedErr:     ErrNotFound,
			expectedMessage: "Not Found",
		},
		{
			desc:            "forbidden",
			code:            http.StatusForbidden,
			body:            model.ErrorBody{Message: "admins only"},
			expectedErr:     ErrForbidden,
			expectedMessage: "admins only",
		},
		{
			desc:            "server error",
			code:            http.StatusBadGateway,
			expectedErr:     ErrServer,
			expectedMessage: "Bad Gateway",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.desc, func(t *testing.T) {
			assert := assert.New(t)
			server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
				if tc.body == nil {
					rw.WriteHeader(tc.code)
					return
				}
				writeJSON(rw, tc.code, tc.body)
			}))
			defer server.Close()

			c := newTestClient(t, server.URL, newTestSession(t, "token", "refresh"), nil)
			_, err := c.CreateScan(context.Background(), model.CreateScanRequest{
				ProjectID: "p1",
				ScanTypes: []model.ScanType{model.ScanTypeSAST},
			})
			assert.ErrorIs(err, tc.expectedErr)
			apiErr, ok := AsAPIError(err)
			require.True(t, ok)
			assert.Equal(tc.code, apiErr.StatusCode)
			assert.Equal(tc.expectedMessage, apiErr.Message)
			assert.Equal(tc.expectedDetails, apiErr.Details)
		})
	}
}

func TestRequestValidation(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()
	c := newTestClient(t, server.URL, newTestSession(t, "token", "refresh"), nil)

	tcs := []struct {
		desc   string
		call   func() error
		fields []string
	}{
		{
			desc: "project without name",
			call: func() error {
				_, err := c.CreateProject(context.Background(), model.CreateProjectRequest{GitURL: "not a url"})
				return err
			},
			fields: []string{"name", "git_url"},
		},
		{
			desc: "scan with unknown type",
			call: func() error {
				_, err := c.CreateScan(context.Background(), model.CreateScanRequest{
					ProjectID: "p1",
					ScanTypes: []model.ScanType{"FUZZ"},
				})
				return err
			},
			fields: []string{"scan_types[0]"},
		},
		{
			desc: "login without password",
			call: func() error {
				_, err := c.Login(context.Background(), model.LoginRequest{Email: "a@b.c"})
				return err
			},
			fields: []string{"password"},
		},
		{
			desc: "missing identifier",
			call: func() error {
				_, err := c.GetScan(context.Background(), "")
				return err
			},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.desc, func(t *testing.T) {
			err := tc.call()
			assert.ErrorIs(t, err, ErrValidation)
			apiErr, ok := AsAPIError(err)
			require.True(t, ok)
			for _, f := range tc.fields {
				assert.Contains(t, apiErr.Details, f)
			}
		})
	}
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	c, err := NewClient(ClientConfig{
		Address: server.URL,
		Timeout: 50 * time.Millisecond,
	}, nil, newTestMeasures())
	require.NoError(t, err)

	_, err = c.ScanSummary(context.Background())
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestLoginStoresSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		var req model.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "hunter22" {
			writeJSON(rw, http.StatusUnauthorized, model.ErrorBody{Message: "invalid credentials"})
			return
		}
		writeJSON(rw, http.StatusOK, model.AuthResponse{
			User:         model.User{ID: "u1", Email: req.Email},
			AccessToken:  "access",
			RefreshToken: "refresh",
			ExpiresIn:    3600,
		})
	}))
	defer server.Close()

	s := newTestSession(t, "", "")
	expired := false
	c := newTestClient(t, server.URL, s, func() { expired = true })

	_, err := c.Login(context.Background(), model.LoginRequest{Email: "a@b.c", Password: "wrong"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, expired)
	assert.False(t, s.Authenticated())

	auth, err := c.Login(context.Background(), model.LoginRequest{Email: "a@b.c", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, "access", auth.AccessToken)
	assert.Equal(t, "access", s.AccessToken())
	user, ok := s.User()
	require.True(t, ok)
	assert.Equal(t, "u1", user.ID)
}

func TestLogoutAlwaysClears(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	s := newTestSession(t, "access", "refresh")
	c := newTestClient(t, server.URL, s, nil)

	err := c.Logout(context.Background())
	assert.ErrorIs(t, err, ErrServer)
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.RefreshToken())
}

func TestListScansQuery(t *testing.T) {
	var query map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		writeJSON(rw, http.StatusOK, model.ListResponse[model.Scan]{
			Data:       []model.Scan{{ID: "s1"}},
			TotalCount: 1,
		})
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, newTestSession(t, "token", ""), nil)
	list, err := c.ListScans(context.Background(), model.ListScansParams{
		ProjectID: "p1",
		Status:    model.ScanRunning,
	})
	require.NoError(t, err)
	assert.Len(t, list.Data, 1)
	assert.Equal(t, map[string][]string{
		"project_id": {"p1"},
		"status":     {"RUNNING"},
	}, query)

	scans, err := c.RecentScans(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, scans, 1)
	assert.Equal(t, map[string][]string{"page_size": {"10"}}, query)
}

func TestUpload(t *testing.T) {
	assert := assert.New(t)
	content := []byte("package main\n")

	var (
		uploadedAuth   string
		uploadedMeta   string
		uploadedType   string
		uploadedBody   []byte
		requestedBytes int64
	)
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/storage/upload", func(rw http.ResponseWriter, r *http.Request) {
		var req model.UploadArtifactRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		requestedBytes = req.SizeBytes
		writeJSON(rw, http.StatusOK, model.UploadResponse{
			ArtifactID:    "art-1",
			UploadURL:     server.URL + "/bucket/art-1?signature=xyz",
			UploadHeaders: map[string]string{"X-Amz-Meta-Scan": "s1"},
		})
	})
	mux.HandleFunc("/bucket/art-1", func(rw http.ResponseWriter, r *http.Request) {
		uploadedAuth = r.Header.Get("Authorization")
		uploadedMeta = r.Header.Get("X-Amz-Meta-Scan")
		uploadedType = r.Header.Get("Content-Type")
		uploadedBody, _ = io.ReadAll(r.Body)
		rw.WriteHeader(http.StatusOK)
	})

	c := newTestClient(t, server.URL, newTestSession(t, "token", ""), nil)
	id, err := c.Upload(context.Background(), "s1", model.ArtifactSourceCode, "main.go", "text/x-go", content)
	require.NoError(t, err)
	assert.Equal("art-1", id)
	assert.Equal(int64(len(content)), requestedBytes)
	assert.Empty(uploadedAuth)
	assert.Equal("s1", uploadedMeta)
	assert.Equal("text/x-go", uploadedType)
	assert.Equal(content, uploadedBody)
}

func TestExportFindings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") != "csv" {
			rw.WriteHeader(http.StatusBadRequest)
			return
		}
		rw.Header().Set("Content-Type", "text/csv")
		rw.Header().Set("Content-Disposition", `attachment; filename="scan-s1.csv"`)
		_, _ = rw.Write([]byte("id,severity\nf1,HIGH\n"))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL, newTestSession(t, "token", ""), nil)

	export, err := c.ExportFindings(context.Background(), "s1", model.ExportCSV)
	require.NoError(t, err)
	assert.Equal(t, "scan-s1.csv", export.Filename)
	assert.Equal(t, "text/csv", export.ContentType)
	assert.Equal(t, "id,severity\nf1,HIGH\n", string(export.Body))

	_, err = c.ExportFindings(context.Background(), "s1", model.ExportFormat("xml"))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = c.ExportFindings(context.Background(), "s1", model.ExportPDF)
	assert.ErrorIs(t, err, ErrValidation)
}
