package client

import "context"

// GetConfig returns the backend configuration
func (c *Client) GetConfig(ctx context.Context) (*Envelope[SystemConfig], error) {
	var resp Envelope[SystemConfig]
	if err := c.get(ctx, "/config", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateConfig replaces the backend configuration
func (c *Client) UpdateConfig(ctx context.Context, cfg SystemConfig) (*StatusResponse, error) {
	if err := c.validateRequest(cfg); err != nil {
		return nil, err
	}

	var resp StatusResponse
	if err := c.put(ctx, "/config", cfg, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ReloadConfig makes the backend re-read its configuration
func (c *Client) ReloadConfig(ctx context.Context) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.post(ctx, "/config/reload", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestPush sends a test message through the configured push channels
func (c *Client) TestPush(ctx context.Context) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.post(ctx, "/config/test-push", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ClearDatabase wipes papers, runs and scores on the backend
func (c *Client) ClearDatabase(ctx context.Context) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.post(ctx, "/config/clear-database", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
