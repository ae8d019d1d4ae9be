package httpclient

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
)

// Response is the subset of an HTTP response the service consumes.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client abstracts the HTTP transport used by providers, the URL checker
// and the channel scraper.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
	Head(ctx context.Context, url string, headers map[string]string) (Response, error)
}

// restyResponse wraps a resty response to satisfy Response.
type restyResponse struct {
	resp *resty.Response
}

func (r restyResponse) Body() []byte    { return r.resp.Body() }
func (r restyResponse) StatusCode() int { return r.resp.StatusCode() }

// restyClient implements Client on top of resty.
type restyClient struct {
	client *resty.Client
}

const defaultUserAgent = "SayCheese-TrendAggregator/1.0"

// NewRestyClient returns a Client tuned for feed and page fetching.
func NewRestyClient(timeout time.Duration) Client {
	c := resty.New().
		SetTimeout(timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5)).
		SetHeader("User-Agent", defaultUserAgent)
	return &restyClient{client: c}
}

// Get issues a GET request with the given headers.
func (c *restyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeaders(headers).
		Get(url)
	if err != nil {
		return nil, err
	}
	return restyResponse{resp: resp}, nil
}

// Head issues a HEAD request with the given headers.
func (c *restyClient) Head(ctx context.Context, url string, headers map[string]string) (Response, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeaders(headers).
		Head(url)
	if err != nil {
		return nil, err
	}
	return restyResponse{resp: resp}, nil
}
