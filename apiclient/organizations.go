// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package apiclient

import (
	"context"
	"net/http"

	"github.com/Cloud-scan/cloudscan-ui/model"
)

func (c *Client) ListOrganizations(ctx context.Context) ([]model.Organization, error) {
	list, err := do[model.ListResponse[model.Organization]](ctx, c, request{method: http.MethodGet, path: "/organizations"})
	if err != nil {
		return nil, err
	}
	return list.Data, nil
}

func (c *Client) GetOrganization(ctx context.Context, id string) (model.Organization, error) {
	path, err := resourcePath("organizations", id)
	if err != nil {
		return model.Organization{}, err
	}
	return do[model.Organization](ctx, c, request{method: http.MethodGet, path: path})
}

func (c *Client) UpdateOrganization(ctx context.Context, id string, req model.UpdateOrganizationRequest) (model.Organization, error) {
	path, err := resourcePath("organizations", id)
	if err != nil {
		return model.Organization{}, err
	}
	if err := validateRequest(req); err != nil {
		return model.Organization{}, err
	}
	return do[model.Organization](ctx, c, request{method: http.MethodPut, path: path, body: req})
}

func (c *Client) ListMembers(ctx context.Context, orgID string) ([]model.OrganizationMember, error) {
	path, err := resourcePath("organizations", orgID, "members")
	if err != nil {
		return nil, err
	}
	list, err := do[model.ListResponse[model.OrganizationMember]](ctx, c, request{method: http.MethodGet, path: path})
	if err != nil {
		return nil, err
	}
	return list.Data, nil
}

func (c *Client) AddMember(ctx context.Context, orgID string, req model.AddMemberRequest) (model.OrganizationMember, error) {
	path, err := resourcePath("organizations", orgID, "members")
	if err != nil {
		return model.OrganizationMember{}, err
	}
	if err := validateRequest(req); err != nil {
		return model.OrganizationMember{}, err
	}
	return do[model.OrganizationMember](ctx, c, request{method: http.MethodPost, path: path, body: req})
}

func (c *Client) RemoveMember(ctx context.Context, orgID, userID string) error {
	path, err := resourcePath("organizations", orgID, "members", userID)
	if err != nil {
		return err
	}
	return c.send(ctx, request{method: http.MethodDelete, path: path})
}

func (c *Client) UpdateMemberRole(ctx context.Context, orgID, userID string, req model.UpdateMemberRoleRequest) (model.OrganizationMember, error) {
	path, err := resourcePath("organizations", orgID, "members", userID)
	if err != nil {
		return model.OrganizationMember{}, err
	}
	if err := validateRequest(req); err != nil {
		return model.OrganizationMember{}, err
	}
	return do[model.OrganizationMember](ctx, c, request{method: http.MethodPut, path: path, body: req})
}
