package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// Login authenticates with form-encoded credentials and persists the
// returned access token and, when present, the user record verbatim.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var raw json.RawMessage
	err := c.do(ctx, http.MethodPost, "/auth/login", func(r *resty.Request) {
		r.SetFormData(map[string]string{
			"username": username,
			"password": password,
		})
	}, &raw)
	if err != nil {
		return nil, err
	}

	var loginResp LoginResponse
	if err := json.Unmarshal(raw, &loginResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if loginResp.AccessToken == "" {
		return nil, errors.New("login response carried no access_token")
	}

	var withUser struct {
		User json.RawMessage `json:"user"`
	}
	_ = json.Unmarshal(raw, &withUser)

	if err := c.session.Save(loginResp.AccessToken, nil); err != nil {
		return nil, fmt.Errorf("failed to save authentication token: %w", err)
	}
	if len(withUser.User) > 0 && string(withUser.User) != "null" {
		if err := c.session.SaveRawUser(withUser.User); err != nil {
			return nil, fmt.Errorf("failed to save user: %w", err)
		}
	}

	return &loginResp, nil
}

// Logout forgets the local session. No request is sent.
func (c *Client) Logout() error {
	return c.session.Clear()
}

// Register creates a regular user account
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	if err := c.validateRequest(req); err != nil {
		return nil, err
	}

	var resp RegisterResponse
	if err := c.post(ctx, "/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetCurrentUser returns the user the stored token belongs to
func (c *Client) GetCurrentUser(ctx context.Context) (*CurrentUserResponse, error) {
	var resp CurrentUserResponse
	if err := c.get(ctx, "/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ChangePassword changes the logged in user's own password.
// A wrong old password is answered with HTTP 400 and keeps the session.
func (c *Client) ChangePassword(ctx context.Context, oldPassword, newPassword string) (*StatusResponse, error) {
	req := PasswordChangeRequest{OldPassword: oldPassword, NewPassword: newPassword}
	if err := c.validateRequest(req); err != nil {
		return nil, err
	}

	var resp StatusResponse
	if err := c.put(ctx, "/auth/password", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
