package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-resty/resty/v2"
)

// DefaultRunLimit is the run history size requested when none is given
const DefaultRunLimit = 10

// ListRuns returns the most recent runs, newest first
func (c *Client) ListRuns(ctx context.Context, limit int) (*Envelope[[]Run], error) {
	if limit <= 0 {
		limit = DefaultRunLimit
	}

	var resp Envelope[[]Run]
	err := c.get(ctx, "/runs", func(r *resty.Request) {
		r.SetQueryParam("limit", strconv.Itoa(limit))
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetRunScores returns the scored papers of one run
func (c *Client) GetRunScores(ctx context.Context, runID string) (*Envelope[[]PaperScore], error) {
	var resp Envelope[[]PaperScore]
	if err := c.get(ctx, "/runs/"+url.PathEscape(runID)+"/scores", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TriggerRun starts a push run in the background on the server
func (c *Client) TriggerRun(ctx context.Context, params TriggerRunParams) (*TriggerRunResponse, error) {
	if err := c.validateRequest(params); err != nil {
		return nil, err
	}

	var resp TriggerRunResponse
	err := c.do(ctx, http.MethodPost, "/run", func(r *resty.Request) {
		if params.WindowDays != nil {
			r.SetQueryParam("window_days", strconv.Itoa(*params.WindowDays))
		}
		if params.TopK != nil {
			r.SetQueryParam("top_k", strconv.Itoa(*params.TopK))
		}
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetRunStatus reports whether a run is in progress
func (c *Client) GetRunStatus(ctx context.Context) (*RunStatus, error) {
	var resp RunStatus
	if err := c.get(ctx, "/run/status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestSources asks the server to probe every paper source
func (c *Client) TestSources(ctx context.Context) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.post(ctx, "/test-sources", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
