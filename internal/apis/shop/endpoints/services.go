package endpoints

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"shopfront/internal/apis/shop/responses"
)

type ServiceQuery struct {
	Category   string
	Limit      int
	ActiveOnly bool
}

func (q ServiceQuery) encode() string {
	v := url.Values{}
	if q.ActiveOnly {
		v.Set("isActive", "true")
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	return v.Encode()
}

func (c *Client) ListServices(ctx context.Context, q ServiceQuery) ([]responses.Service, error) {
	path := "/api/services"
	if qs := q.encode(); qs != "" {
		path += "?" + qs
	}

	b, err := c.call(ctx, http.MethodGet, path, nil, 4*1024*1024)
	if err != nil {
		return nil, err
	}

	out, err := decodeJSON[responses.ServiceList]("ListServices", b)
	if err != nil {
		return nil, err
	}
	return out.Services, nil
}

// SearchServices returns a bare array, unlike the listing endpoint.
func (c *Client) SearchServices(ctx context.Context, term string) ([]responses.Service, error) {
	b, err := c.call(ctx, http.MethodGet, "/api/services/search/"+url.PathEscape(term), nil, 4*1024*1024)
	if err != nil {
		return nil, err
	}
	return decodeJSON[[]responses.Service]("SearchServices", b)
}

func (c *Client) ListServiceCategories(ctx context.Context) ([]string, error) {
	b, err := c.call(ctx, http.MethodGet, "/api/services/meta/categories", nil, 256*1024)
	if err != nil {
		return nil, err
	}
	return decodeJSON[[]string]("ListServiceCategories", b)
}
