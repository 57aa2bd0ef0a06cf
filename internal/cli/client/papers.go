package client

import (
	"context"
	"net/url"
	"strconv"

	"github.com/go-resty/resty/v2"
)

func (q PaperQuery) values() url.Values {
	params := url.Values{}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		params.Set("page_size", strconv.Itoa(q.PageSize))
	}
	if q.Search != "" {
		params.Set("search", q.Search)
	}
	if q.Source != "" {
		params.Set("source", q.Source)
	}
	if q.MinScore != nil {
		params.Set("min_score", strconv.FormatFloat(*q.MinScore, 'f', -1, 64))
	}
	return params
}

// ListPapers returns one page of stored papers
func (c *Client) ListPapers(ctx context.Context, query PaperQuery) (*Envelope[PaperPage], error) {
	if err := c.validateRequest(query); err != nil {
		return nil, err
	}

	var resp Envelope[PaperPage]
	err := c.get(ctx, "/papers", func(r *resty.Request) {
		r.SetQueryParamsFromValues(query.values())
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetPaper fetches a single paper by ID
func (c *Client) GetPaper(ctx context.Context, id string) (*Envelope[Paper], error) {
	var resp Envelope[Paper]
	if err := c.get(ctx, "/papers/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeletePaper removes a paper and its scores and pushes
func (c *Client) DeletePaper(ctx context.Context, id string) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.delete(ctx, "/papers/"+url.PathEscape(id), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
