package publishers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// httpPublisher posts digest events to a configured HTTP sink.
type httpPublisher struct {
	id     string
	typ    string
	cfg    HTTPPublisherConfig
	client *resty.Client
	log    Logger
}

// newHTTPPublisher creates an HTTP publisher from the config entry.
func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}

	client := resty.New().
		SetTimeout(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second)

	return &httpPublisher{
		id:     cfg.ID,
		typ:    cfg.Type,
		cfg:    *cfg.HTTP,
		client: client,
		log:    ensureLogger(log),
	}, nil
}

func (p *httpPublisher) ID() string   { return p.id }
func (p *httpPublisher) Type() string { return p.typ }

// Publish delivers the event as a JSON request to the configured sink.
func (p *httpPublisher) Publish(ctx context.Context, evt Event) error {
	req := p.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(evt)
	for k, v := range p.cfg.Headers {
		req.SetHeader(k, v)
	}

	resp, err := req.Execute(p.cfg.Method, p.cfg.URL)
	if err != nil {
		return fmt.Errorf("send event to %s: %w", p.cfg.URL, err)
	}
	if resp.StatusCode() >= 400 {
		return fmt.Errorf("http sink %s returned status %d", p.cfg.URL, resp.StatusCode())
	}

	p.log.DebugObj("http publisher delivered event", "publisher_http_delivery", map[string]any{
		"url":    p.cfg.URL,
		"status": resp.StatusCode(),
	})
	return nil
}
