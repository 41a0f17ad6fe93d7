// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package queries

import (
	"context"

	"github.com/Cloud-scan/cloudscan-ui/model"
	"github.com/Cloud-scan/cloudscan-ui/querycache"
	"go.uber.org/zap"
)

func (q *Queries) CurrentUser() Query[model.User] {
	return newQuery(q, CurrentUserKey(), querycache.Options{StaleTime: currentUserStaleTime}, q.api.CurrentUser)
}

func (q *Queries) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	return mutate(ctx, q, "login",
		func(ctx context.Context) (model.AuthResponse, error) {
			return q.api.Login(ctx, req)
		},
		userChanged)
}

func (q *Queries) Signup(ctx context.Context, req model.SignupRequest) (model.AuthResponse, error) {
	return mutate(ctx, q, "signup",
		func(ctx context.Context) (model.AuthResponse, error) {
			return q.api.Signup(ctx, req)
		},
		userChanged)
}

func userChanged(model.AuthResponse) []querycache.Key {
	return []querycache.Key{CurrentUserKey()}
}

// Logout ends the session and drops everything cached for the user, even
// when the API call fails.
func (q *Queries) Logout(ctx context.Context) error {
	err := q.api.Logout(ctx)
	q.cache.Clear()
	return err
}

// UpdateProfile writes the returned user straight into the cache.
func (q *Queries) UpdateProfile(ctx context.Context, req model.UpdateUserRequest) (model.User, error) {
	user, err := mutate(ctx, q, "updateProfile",
		func(ctx context.Context) (model.User, error) {
			return q.api.UpdateProfile(ctx, req)
		}, nil)
	if err != nil {
		return model.User{}, err
	}
	if err := q.cache.SetData(CurrentUserKey(), user); err != nil {
		q.logger.Warn("failed to cache updated profile", zap.Error(err))
	}
	return user, nil
}

func (q *Queries) Organizations() Query[[]model.Organization] {
	return newQuery(q, OrganizationsKey(), querycache.Options{StaleTime: organizationStaleTime}, q.api.ListOrganizations)
}

func (q *Queries) Organization(id string) Query[model.Organization] {
	return newQuery(q, OrganizationKey(id), querycache.Options{StaleTime: organizationStaleTime},
		func(ctx context.Context) (model.Organization, error) {
			return q.api.GetOrganization(ctx, id)
		})
}

func (q *Queries) Members(orgID string) Query[[]model.OrganizationMember] {
	return newQuery(q, MembersKey(orgID), querycache.Options{StaleTime: memberStaleTime},
		func(ctx context.Context) ([]model.OrganizationMember, error) {
			return q.api.ListMembers(ctx, orgID)
		})
}

func (q *Queries) UpdateOrganization(ctx context.Context, id string, req model.UpdateOrganizationRequest) (model.Organization, error) {
	return mutate(ctx, q, "updateOrganization",
		func(ctx context.Context) (model.Organization, error) {
			return q.api.UpdateOrganization(ctx, id, req)
		},
		func(model.Organization) []querycache.Key {
			return []querycache.Key{OrganizationsKey()}
		})
}

func (q *Queries) AddMember(ctx context.Context, orgID string, req model.AddMemberRequest) (model.OrganizationMember, error) {
	return mutate(ctx, q, "addMember",
		func(ctx context.Context) (model.OrganizationMember, error) {
			return q.api.AddMember(ctx, orgID, req)
		},
		membersChanged(orgID))
}

func (q *Queries) UpdateMemberRole(ctx context.Context, orgID, userID string, req model.UpdateMemberRoleRequest) (model.OrganizationMember, error) {
	return mutate(ctx, q, "updateMemberRole",
		func(ctx context.Context) (model.OrganizationMember, error) {
			return q.api.UpdateMemberRole(ctx, orgID, userID, req)
		},
		membersChanged(orgID))
}

func (q *Queries) RemoveMember(ctx context.Context, orgID, userID string) error {
	_, err := mutate(ctx, q, "removeMember",
		exec(func(ctx context.Context) error { return q.api.RemoveMember(ctx, orgID, userID) }),
		keys(MembersKey(orgID)))
	return err
}

func membersChanged(orgID string) func(model.OrganizationMember) []querycache.Key {
	return func(model.OrganizationMember) []querycache.Key {
		return []querycache.Key{MembersKey(orgID)}
	}
}
