package backend

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/ariefcatur/go-wedding-orders/internal/orders"
)

type ListQuery struct {
	Status  string
	Search  string
	Page    int
	PerPage int
}

func (q ListQuery) values() url.Values {
	v := url.Values{}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(q.PerPage))
	}
	return v
}

func (c *Client) Catalogs(ctx context.Context, q ListQuery) (orders.Page[orders.Catalog], error) {
	var out orders.Page[orders.Catalog]
	err := c.get(ctx, "list_catalogs", "/api/catalogs", q.values(), &out)
	return out, err
}

func (c *Client) Catalog(ctx context.Context, id int64) (orders.Catalog, error) {
	var out envelope[orders.Catalog]
	err := c.get(ctx, "get_catalog", fmt.Sprintf("/api/catalogs/%d", id), nil, &out)
	return out.Data, err
}

func (c *Client) CustomFeatures(ctx context.Context) ([]orders.CustomFeature, error) {
	var out struct {
		Data struct {
			Features []orders.CustomFeature `json:"features"`
		} `json:"data"`
	}
	if err := c.get(ctx, "custom_features", "/api/custom-features", nil, &out); err != nil {
		return nil, err
	}
	return out.Data.Features, nil
}

func (c *Client) Users(ctx context.Context, q ListQuery) (orders.Page[orders.User], error) {
	var out orders.Page[orders.User]
	err := c.get(ctx, "list_users", "/api/users", q.values(), &out)
	return out, err
}
