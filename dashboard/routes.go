// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"net/http"

	"github.com/Cloud-scan/cloudscan-ui/model"
	"github.com/go-kit/kit/endpoint"
	"github.com/gorilla/mux"
)

// Routes mounts the dashboard surface on r. Callers usually pass a
// subrouter rooted at the API base.
func (d *Dashboard) Routes(r *mux.Router) {
	mutation := func(title string, e endpoint.Endpoint) endpoint.Endpoint {
		return notifyOnError(d.notifications, d.logger, title)(e)
	}

	r.Handle("/scans", newServer(d.listScansEndpoint(), decodeListScansRequest)).Methods(http.MethodGet)
	r.Handle("/scans", newServer(mutation("Failed to start scan", d.createScanEndpoint()), decodeBody[model.CreateScanRequest]())).Methods(http.MethodPost)
	r.Handle("/scans/summary", newServer(d.scanSummaryEndpoint(), decodeNothing)).Methods(http.MethodGet)
	r.Handle("/scans/recent", newServer(d.recentScansEndpoint(), decodeLimitRequest)).Methods(http.MethodGet)
	r.Handle("/scans/{id}", newServer(d.getScanEndpoint(), decodeIDRequest)).Methods(http.MethodGet)
	r.Handle("/scans/{id}/cancel", newServer(mutation("Failed to cancel scan", d.cancelScanEndpoint()), decodeIDRequest)).Methods(http.MethodPut)
	r.Handle("/scans/{id}/events", d.eventsHandler()).Methods(http.MethodGet)
	r.Handle("/scans/{id}/findings", newServer(d.listFindingsEndpoint(), decodeFindingsRequest)).Methods(http.MethodGet)
	r.Handle("/scans/{id}/findings/stats", newServer(d.findingStatsEndpoint(), decodeIDRequest)).Methods(http.MethodGet)
	r.Handle("/scans/{id}/findings/{findingID}", newServer(d.getFindingEndpoint(), decodeFindingRequest)).Methods(http.MethodGet)

	r.Handle("/projects", newServer(d.listProjectsEndpoint(), decodeNothing)).Methods(http.MethodGet)
	r.Handle("/projects", newServer(mutation("Failed to create project", d.createProjectEndpoint()), decodeBody[model.CreateProjectRequest]())).Methods(http.MethodPost)
	r.Handle("/projects/{id}", newServer(d.getProjectEndpoint(), decodeIDRequest)).Methods(http.MethodGet)
	r.Handle("/projects/{id}", newServer(mutation("Failed to update project", d.updateProjectEndpoint()), decodeUpdateProjectRequest)).Methods(http.MethodPut)
	r.Handle("/projects/{id}", newServer(mutation("Failed to delete project", d.deleteProjectEndpoint()), decodeIDRequest)).Methods(http.MethodDelete)
	r.Handle("/projects/{id}/stats", newServer(d.projectStatsEndpoint(), decodeIDRequest)).Methods(http.MethodGet)
	r.Handle("/projects/{id}/scans", newServer(d.projectScansEndpoint(), decodeLimitRequest)).Methods(http.MethodGet)

	r.Handle("/auth/login", newServer(mutation("Login failed", d.loginEndpoint()), decodeBody[model.LoginRequest]())).Methods(http.MethodPost)
	r.Handle("/auth/logout", newServer(d.logoutEndpoint(), decodeNothing)).Methods(http.MethodPost)
	r.Handle("/auth/me", newServer(d.currentUserEndpoint(), decodeNothing)).Methods(http.MethodGet)

	r.Handle("/status", newServer(d.statusEndpoint(), decodeNothing)).Methods(http.MethodGet)
	r.Handle("/notifications", newServer(d.listNotificationsEndpoint(), decodeNothing)).Methods(http.MethodGet)
	r.Handle("/notifications/{id}", newServer(d.removeNotificationEndpoint(), decodeIDRequest)).Methods(http.MethodDelete)
}
