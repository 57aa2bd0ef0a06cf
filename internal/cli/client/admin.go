package client

import (
	"context"
	"fmt"
)

// ListUsers returns every user account (admin only)
func (c *Client) ListUsers(ctx context.Context) (*Envelope[[]UserRecord], error) {
	var resp Envelope[[]UserRecord]
	if err := c.get(ctx, "/admin/users", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateUser creates an account with the given role (admin only)
func (c *Client) CreateUser(ctx context.Context, req CreateUserRequest) (*Envelope[UserRecord], error) {
	if err := c.validateRequest(req); err != nil {
		return nil, err
	}

	var resp Envelope[UserRecord]
	if err := c.post(ctx, "/admin/users", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateUser changes a user's role or active flag (admin only)
func (c *Client) UpdateUser(ctx context.Context, id int64, req UpdateUserRequest) (*Envelope[UserRecord], error) {
	if err := c.validateRequest(req); err != nil {
		return nil, err
	}

	var resp Envelope[UserRecord]
	if err := c.put(ctx, fmt.Sprintf("/admin/users/%d", id), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResetPassword sets a new password for a user (admin only)
func (c *Client) ResetPassword(ctx context.Context, id int64, newPassword string) (*StatusResponse, error) {
	req := ResetPasswordRequest{NewPassword: newPassword}
	if err := c.validateRequest(req); err != nil {
		return nil, err
	}

	var resp StatusResponse
	if err := c.post(ctx, fmt.Sprintf("/admin/users/%d/reset-password", id), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
