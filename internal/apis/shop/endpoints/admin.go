package endpoints

import (
	"context"
	"net/http"
	"net/url"

	"github.com/goccy/go-json"

	"shopfront/internal/apis/shop/responses"
)

func (c *Client) ListOrders(ctx context.Context) ([]responses.Order, error) {
	b, err := c.call(ctx, http.MethodGet, "/api/orders", nil, 8*1024*1024)
	if err != nil {
		return nil, err
	}
	out, err := decodeJSON[responses.OrderList]("ListOrders", b)
	if err != nil {
		return nil, err
	}
	return out.Orders, nil
}

func (c *Client) ListProducts(ctx context.Context) ([]responses.Product, error) {
	b, err := c.call(ctx, http.MethodGet, "/api/products", nil, 8*1024*1024)
	if err != nil {
		return nil, err
	}
	out, err := decodeJSON[responses.ProductList]("ListProducts", b)
	if err != nil {
		return nil, err
	}
	return out.Products, nil
}

func (c *Client) ListMessages(ctx context.Context) ([]responses.Message, error) {
	b, err := c.call(ctx, http.MethodGet, "/api/messages", nil, 4*1024*1024)
	if err != nil {
		return nil, err
	}
	out, err := decodeJSON[responses.MessageList]("ListMessages", b)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MarkMessageRead(ctx context.Context, id string) error {
	_, err := c.call(ctx, http.MethodPut, "/api/messages/"+url.PathEscape(id), map[string]string{"status": "read"}, 64*1024)
	return err
}

// Send performs a REST mutation against /api/<resource>[/<id>] and returns
// the raw JSON the upstream answered with.
func (c *Client) Send(ctx context.Context, method, resource, id string, body any) (json.RawMessage, error) {
	path := "/api/" + resource
	if id != "" {
		path += "/" + url.PathEscape(id)
	}
	b, err := c.call(ctx, method, path, body, 1024*1024)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, nil
	}
	return json.RawMessage(b), nil
}
