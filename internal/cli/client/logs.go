package client

import (
	"context"
	"strconv"

	"github.com/go-resty/resty/v2"
)

// GetLogs returns recent backend log entries
func (c *Client) GetLogs(ctx context.Context, query LogQuery) (*Envelope[[]LogEntry], error) {
	if err := c.validateRequest(query); err != nil {
		return nil, err
	}

	var resp Envelope[[]LogEntry]
	err := c.get(ctx, "/logs", func(r *resty.Request) {
		if query.Level != "" {
			r.SetQueryParam("level", query.Level)
		}
		if query.Search != "" {
			r.SetQueryParam("search", query.Search)
		}
		if query.Limit > 0 {
			r.SetQueryParam("limit", strconv.Itoa(query.Limit))
		}
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListLogFiles lists the backend's log files, most recently modified first
func (c *Client) ListLogFiles(ctx context.Context) (*Envelope[[]LogFile], error) {
	var resp Envelope[[]LogFile]
	if err := c.get(ctx, "/logs/files", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
