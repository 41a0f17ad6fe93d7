// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"net/http"
	"strings"

	"emperror.dev/emperror"
	"github.com/Cloud-scan/cloudscan-ui/session"
	"github.com/justinas/alice"
	"github.com/xmidt-org/sallust"
	"go.uber.org/zap"
)

func provideSession(config Config, logger *zap.Logger) (*session.Store, error) {
	var backend session.Backend = session.NewMemoryBackend()
	if config.Session.File != "" {
		backend = session.NewFileBackend(config.Session.File)
	}

	s, err := session.NewStore(backend, logger.Named("session"))
	if err != nil {
		return nil, emperror.Wrap(err, "failed to create session store")
	}
	return s, nil
}

// SetLogger attaches a request scoped logger to the context of every request.
// Credentials are replaced by their scheme.
func SetLogger(logger *zap.Logger) alice.Constructor {
	return func(delegate http.Handler) http.Handler {
		return http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				logHeader := r.Header.Clone()
				if str := logHeader.Get("Authorization"); str != "" {
					logHeader.Del("Authorization")
					logHeader.Set("Authorization-Type", strings.Split(str, " ")[0])
				}
				if logHeader.Get("Cookie") != "" {
					logHeader.Set("Cookie", "<redacted>")
				}

				l := logger.With(
					zap.Any("requestHeaders", logHeader),
					zap.String("requestURL", r.URL.EscapedPath()),
					zap.String("method", r.Method),
				)
				delegate.ServeHTTP(w, r.WithContext(sallust.With(r.Context(), l)))
			})
	}
}
