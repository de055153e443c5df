// Package client is a Go client for the sales HTTP API.
package client

import (
	"context"
	"fmt"
	"strconv"

	"resty.dev/v3"

	"shop_sales/internal/sales"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Message    string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sales api: %d: %s", e.StatusCode, e.Message)
}

// Client talks to one sales service.
type Client struct {
	rc *resty.Client
}

// New returns a client for the service at baseURL, e.g. "http://localhost:5000".
func New(baseURL string) *Client {
	return &Client{
		rc: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Accept", "application/json"),
	}
}

// Close releases idle connections held by the client.
func (c *Client) Close() error {
	return c.rc.Close()
}

func (c *Client) List(ctx context.Context) ([]sales.Sale, error) {
	var out []sales.Sale
	res, err := c.rc.R().SetContext(ctx).SetResult(&out).SetError(&APIError{}).Get("/sales")
	if err := check(res, err); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id int64) (*sales.Sale, error) {
	var out sales.Sale
	res, err := c.byID(ctx, id).SetResult(&out).Get("/sales/{id}")
	if err := check(res, err); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Create(ctx context.Context, d sales.Details) (*sales.Sale, error) {
	var out sales.Sale
	res, err := c.rc.R().SetContext(ctx).SetBody(d).SetResult(&out).SetError(&APIError{}).Post("/sales")
	if err := check(res, err); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Update(ctx context.Context, id int64, d sales.Details) (*sales.UpdatedSale, error) {
	var out sales.UpdatedSale
	res, err := c.byID(ctx, id).SetBody(d).SetResult(&out).Put("/sales/{id}")
	if err := check(res, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a sale and returns the server's confirmation message.
func (c *Client) Delete(ctx context.Context, id int64) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	res, err := c.byID(ctx, id).SetResult(&out).Delete("/sales/{id}")
	if err := check(res, err); err != nil {
		return "", err
	}
	return out.Message, nil
}

func (c *Client) Total(ctx context.Context) (int64, error) {
	var out struct {
		Total int64 `json:"total"`
	}
	res, err := c.rc.R().SetContext(ctx).SetResult(&out).SetError(&APIError{}).Get("/sales/total")
	if err := check(res, err); err != nil {
		return 0, err
	}
	return out.Total, nil
}

func (c *Client) byID(ctx context.Context, id int64) *resty.Request {
	return c.rc.R().
		SetContext(ctx).
		SetPathParam("id", strconv.FormatInt(id, 10)).
		SetError(&APIError{})
}

func check(res *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if res.IsSuccess() {
		return nil
	}
	apiErr, ok := res.Error().(*APIError)
	if !ok || apiErr == nil {
		apiErr = &APIError{Message: res.String()}
	}
	apiErr.StatusCode = res.StatusCode()
	return apiErr
}
