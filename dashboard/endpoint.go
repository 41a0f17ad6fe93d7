// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package dashboard

import (
	"context"

	"github.com/Cloud-scan/cloudscan-ui/model"
	"github.com/Cloud-scan/cloudscan-ui/notify"
	"github.com/go-kit/kit/endpoint"
	"go.uber.org/zap"
)

type idRequest struct {
	id string
}

type limitRequest struct {
	id    string
	limit int
}

type findingsRequest struct {
	scanID  string
	filters model.FindingFilters
}

type findingRequest struct {
	scanID    string
	findingID string
}

type updateProjectRequest struct {
	id     string
	update model.UpdateProjectRequest
}

// created marks responses encoded with 201 Created.
type created struct {
	value any
}

type statusResponse struct {
	Realtime      realtimeStatus `json:"realtime"`
	Authenticated bool           `json:"authenticated"`
	User          *model.User    `json:"user,omitempty"`
}

type realtimeStatus struct {
	Connected bool   `json:"connected"`
	State     string `json:"state"`
}

func (d *Dashboard) listScansEndpoint() endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		params, ok := request.(*model.ListScansParams)
		if !ok {
			return nil, ErrCasting
		}
		return d.queries.Scans(*params).Read(ctx)
	}
}

func (d *Dashboard) scanSummaryEndpoint() endpoint.Endpoint {
	return func(ctx context.Context, _ interface{}) (interface{}, error) {
		return d.queries.ScanSummary().Read(ctx)
	}
}

func (d *Dashboard) recentScansEndpoint() endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		r, ok := request.(*limitRequest)
		if !ok {
			return nil, ErrCasting
		}
		return d.queries.RecentScans(r.limit).Read(ctx)
	}
}

func (d *Dashboard) getScanEndpoint() endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		r, ok := request.(*idRequest)
		if !ok {
			return nil, ErrCasting
		}
		return d.queries.Scan(r.id).Read(ctx)
	}
}

func (d *Dashboard) createScanEndpoint() endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		r, ok := request.(*model.CreateScanRequest)
		if !ok {
			return nil, ErrCasting
		}
		scan, err := d.queries.CreateScan(ctx, *r)
		if err != nil {
			return nil, err
		}
		return created{value: scan}, nil
	}
}

func (d *Dashboard) cancelScanEndpoint() endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		r, ok := request.(*idRequest)
		if !ok {
			return nil, ErrCasting
		}
		return nil, d.queries.CancelScan(ctx, r.id)
	}
}

func (d *Dashboard) listFindingsEndpoint() endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		r, ok := request.(*findingsRequest)
		if !ok {
			return nil, ErrCasting
		}
		return d.queries.Findings(r.scanID, r.filters).Read(ctx)
	}
}

func (d *Dashboard) findingStatsEndpoint() endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		r, ok := request.(*idRequest)
		if !ok {
			return nil, ErrCasting
		}
		return d.queries.FindingStats(r.id).Read(ctx)
	}
}

func (d *Dashboard) getFindingEndpoint() endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		r, ok := request.(*findingRequest)
		if !ok {
			return nil, ErrCasting
		}
		return d.queries.Finding(r.scanID, r.findingID).Read(ctx)
	}
}

func (d *Dashboard) listProjectsEndpoint() endpoint.Endpoint {
	return func(ctx context.Context, _ interface{}) (interface{}, error) {
		return d.queries.Projects().Read(ctx)
	}
}

func (d *Dashboard) getProjectEndpoint() endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		r, ok := request.(*idRequest)
		if !ok {
			return nil, ErrCasting
		}
		return d.queries.Project(r.id).Read(ctx)
	}
}

func (d *Dashboard) projectStatsEndpoint() endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		r, ok := request.(*idRequest)
		if !ok {
			return nil, ErrCasting
		}
		return d.queries.ProjectStats(r.id).Read(ctx)
	}
}

func (d *Dashboard) projectScansEndpoint() endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		r, ok := request.(*limitRequest)
		if !ok {
			return nil, ErrCasting
		}
		return d.queries.ProjectScans(r.id, r.limit).Read(ctx)
	}
}

func (d *Dashboard) createProjectEndpoint() endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		r, ok := request.(*model.CreateProjectRequest)
		if !ok {
			return nil, ErrCasting
		}
		project, err := d.queries.CreateProject(ctx, *r)
		if err != nil {
			return nil, err
		}
		return created{value: project}, nil
	}
}

func (d *Dashboard) updateProjectEndpoint() endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		r, ok := request.(*updateProjectRequest)
		if !ok {
			return nil, ErrCasting
		}
		return d.queries.UpdateProject(ctx, r.id, r.update)
	}
}

func (d *Dashboard) deleteProjectEndpoint() endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		r, ok := request.(*idRequest)
		if !ok {
			return nil, ErrCasting
		}
		return nil, d.queries.DeleteProject(ctx, r.id)
	}
}

func (d *Dashboard) loginEndpoint() endpoint.Endpoint {
	return func(ctx context.Context, request interface{}) (interface{}, error) {
		r, ok := request.(*model.LoginRequest)
		if !ok {
			return nil, ErrCasting
		}
		auth, err := d.queries.Login(ctx, *r)
		if err != nil {
			return nil, err
		}
		// Tokens stay in this process.
		return auth.User, nil
	}
}

func (d *Dashboard) logoutEndpoint() endpoint.Endpoint {
	return func(ctx context.Context, _ interface{}) (interface{}, error) {
		err := d.queries.Logout(ctx)
		d.notifications.Clear()
		return nil, err
	}
}

func (d *Dashboard) currentUserEndpoint() endpoint.Endpoint {
	return func(ctx context.Context, _ interface{}) (interface{}, error) {
		return d.queries.CurrentUser().Read(ctx)
	}
}

func (d *Dashboard) statusEndpoint() endpoint.Endpoint {
	return func(context.Context, interface{}) (interface{}, error) {
		resp := statusResponse{
			Realtime: realtimeStatus{
				Connected: d.realtime.IsConnected(),
				State:     d.realtime.State().String(),
			},
			Authenticated: d.session.Authenticated(),
		}
		if user, ok := d.session.User(); ok {
			resp.User = &user
		}
		return resp, nil
	}
}

func (d *Dashboard) listNotificationsEndpoint() endpoint.Endpoint {
	return func(context.Context, interface{}) (interface{}, error) {
		return d.notifications.List(), nil
	}
}

func (d *Dashboard) removeNotificationEndpoint() endpoint.Endpoint {
	return func(_ context.Context, request interface{}) (interface{}, error) {
		r, ok := request.(*idRequest)
		if !ok {
			return nil, ErrCasting
		}
		if !d.notifications.Remove(r.id) {
			return nil, NotFoundErr{Message: "notification not found"}
		}
		return nil, nil
	}
}

// notifyOnError raises a notification for every failed mutation. The
// cached data it would have changed is left untouched.
func notifyOnError(center *notify.Center, logger *zap.Logger, title string) endpoint.Middleware {
	return func(next endpoint.Endpoint) endpoint.Endpoint {
		return func(ctx context.Context, request interface{}) (interface{}, error) {
			resp, err := next(ctx, request)
			if err != nil {
				if _, notifyErr := center.FromError(title, err); notifyErr != nil {
					logger.Warn("failed to raise notification", zap.String("title", title), zap.Error(notifyErr))
				}
			}
			return resp, err
		}
	}
}
