// SPDX-FileCopyrightText: 2026 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

package apiclient

import (
	"context"
	"net/http"

	"github.com/Cloud-scan/cloudscan-ui/model"
	"go.uber.org/zap"
)

// Signup creates a user and its organization, then stores the returned
// credentials.
func (c *Client) Signup(ctx context.Context, req model.SignupRequest) (model.AuthResponse, error) {
	return c.authenticate(ctx, "/auth/signup", req)
}

// Login stores the credentials returned for the given email and password.
func (c *Client) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	return c.authenticate(ctx, "/auth/login", req)
}

func (c *Client) authenticate(ctx context.Context, path string, payload any) (model.AuthResponse, error) {
	if err := validateRequest(payload); err != nil {
		return model.AuthResponse{}, err
	}

	auth, err := do[model.AuthResponse](ctx, c, request{
		method:    http.MethodPost,
		path:      path,
		body:      payload,
		noRefresh: true,
	})
	if err != nil {
		return model.AuthResponse{}, err
	}
	if err := c.session.Set(auth); err != nil {
		return model.AuthResponse{}, &APIError{Message: "Failed to store credentials", Err: err}
	}
	return auth, nil
}

// Logout tells the API the session is over. The local credentials are
// cleared even when the request fails.
func (c *Client) Logout(ctx context.Context) error {
	err := c.send(ctx, request{
		method:    http.MethodPost,
		path:      "/auth/logout",
		noRefresh: true,
	})
	if clearErr := c.session.Clear(); clearErr != nil {
		c.log(ctx).Error("failed to clear session on logout", zap.Error(clearErr))
	}
	return err
}

// Refresh exchanges the stored refresh token for new credentials.
func (c *Client) Refresh(ctx context.Context) (model.AuthResponse, error) {
	req := model.RefreshTokenRequest{RefreshToken: c.session.RefreshToken()}
	if err := validateRequest(req); err != nil {
		return model.AuthResponse{}, err
	}

	auth, err := do[model.AuthResponse](ctx, c, request{
		method:    http.MethodPost,
		path:      "/auth/refresh",
		body:      req,
		noRefresh: true,
	})
	if err != nil {
		return model.AuthResponse{}, err
	}
	if err := c.session.Set(auth); err != nil {
		return model.AuthResponse{}, &APIError{Message: "Failed to store credentials", Err: err}
	}
	return auth, nil
}

// CurrentUser fetches the signed-in user and caches it in the session.
func (c *Client) CurrentUser(ctx context.Context) (model.User, error) {
	user, err := do[model.User](ctx, c, request{method: http.MethodGet, path: "/auth/me"})
	if err != nil {
		return model.User{}, err
	}
	c.rememberUser(ctx, user)
	return user, nil
}

func (c *Client) UpdateProfile(ctx context.Context, req model.UpdateUserRequest) (model.User, error) {
	if err := validateRequest(req); err != nil {
		return model.User{}, err
	}
	user, err := do[model.User](ctx, c, request{method: http.MethodPut, path: "/auth/me", body: req})
	if err != nil {
		return model.User{}, err
	}
	c.rememberUser(ctx, user)
	return user, nil
}

func (c *Client) ChangePassword(ctx context.Context, req model.PasswordChangeRequest) error {
	if err := validateRequest(req); err != nil {
		return err
	}
	return c.send(ctx, request{method: http.MethodPost, path: "/auth/change-password", body: req})
}

func (c *Client) rememberUser(ctx context.Context, user model.User) {
	if err := c.session.SetUser(user); err != nil {
		c.log(ctx).Warn("failed to store current user", zap.Error(err))
	}
}
