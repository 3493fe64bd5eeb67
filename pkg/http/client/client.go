package client

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"
)

type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the status code is in the 2xx range
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

type Interface interface {
	Get(ctx context.Context, path string) (*Response, error)
	Post(ctx context.Context, path, contentType, body string) (*Response, error)
}

// Client issues single requests with no retries. Callers decide what a
// failed request means.
type Client struct {
	baseURL    string
	httpClient *http.Client
	GetFunc    func(ctx context.Context, path string) (*Response, error)
	PostFunc   func(ctx context.Context, path, contentType, body string) (*Response, error)
}

var _ Interface = (*Client)(nil)

type Options struct {
	BaseURL string
	Timeout time.Duration
}

func New(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	return &Client{
		baseURL: opts.BaseURL,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
	}
}

func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	if c.GetFunc != nil {
		return c.GetFunc(ctx, path)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	return c.do(req)
}

func (c *Client) Post(ctx context.Context, path, contentType, body string) (*Response, error) {
	if c.PostFunc != nil {
		return c.PostFunc(ctx, path, contentType, body)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	return c.do(req)
}

func (c *Client) url(path string) string {
	if c.baseURL == "" {
		return path // If no base URL, treat path as full URL
	}
	return c.baseURL + path
}

func (c *Client) do(req *http.Request) (*Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}
