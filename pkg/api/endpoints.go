package api

import (
	"context"
	"net/http"
)

// Search runs GET endpoint?rawQuery. rawQuery must already be encoded; the
// caller owns parameter order.
func (c *Client) Search(ctx context.Context, endpoint, rawQuery, token string) (*SearchResponse, error) {
	var resp SearchResponse
	res, err := c.do(ctx, call{
		method:      http.MethodGet,
		path:        endpoint,
		rawQuery:    rawQuery,
		token:       token,
		requireBody: true,
	}, &resp)
	resp.Header = res.header
	if err != nil {
		return &resp, err
	}
	return &resp, nil
}

// RateLimit runs GET /rate_limit.
func (c *Client) RateLimit(ctx context.Context, token string) (*RateLimitResponse, error) {
	var resp RateLimitResponse
	if _, err := c.do(ctx, call{
		method:      http.MethodGet,
		path:        PathRateLimit,
		token:       token,
		requireBody: true,
	}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SaveSearch runs POST /save_search. A 2xx response may still carry a
// duplicate notice in its message; callers inspect it.
func (c *Client) SaveSearch(ctx context.Context, token string, req SaveSearchRequest) (*MessageResponse, error) {
	if req.Results == nil {
		req.Results = []URLRef{}
	}
	return c.postMessage(ctx, PathSaveSearch, token, req)
}

// SaveRecentSearch runs POST /recent_search.
func (c *Client) SaveRecentSearch(ctx context.Context, token string, req RecentSearchRequest) (*MessageResponse, error) {
	return c.postMessage(ctx, PathRecentSearch, token, req)
}

func (c *Client) postMessage(ctx context.Context, path, token string, body any) (*MessageResponse, error) {
	var resp MessageResponse
	res, err := c.do(ctx, call{
		method: http.MethodPost,
		path:   path,
		token:  token,
		body:   body,
	}, &resp)
	resp.StatusCode = res.status
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// RecentSearches runs GET /recent_searches.
func (c *Client) RecentSearches(ctx context.Context, token string) ([]RecentSearchResponse, error) {
	var resp []RecentSearchResponse
	if _, err := c.do(ctx, call{
		method: http.MethodGet,
		path:   PathRecentSearches,
		token:  token,
	}, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// DeleteRecentSearch runs DELETE /recent_searches/{id}.
func (c *Client) DeleteRecentSearch(ctx context.Context, token string, id int64) error {
	_, err := c.do(ctx, call{
		method: http.MethodDelete,
		path:   recentSearchPath(id),
		token:  token,
	}, nil)
	return err
}
