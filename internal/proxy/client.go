// Package proxy forwards read requests to the task API and translates its
// failures into a small set of client-facing errors.
package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/tasktracker/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

type Client struct {
	baseURL string
	http    *http.Client
	prom    *observability.Prom
}

// NewClient shares httpClient across calls; no timeout is added, the inbound
// request context bounds each call.
func NewClient(baseURL string, httpClient *http.Client, prom *observability.Prom) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		prom:    prom,
	}
}

// Get fetches path from the task API and returns the JSON body of a 2xx answer.
// authorization is forwarded only when non-empty.
func (c *Client) Get(ctx context.Context, path, authorization string) (body []byte, err error) {
	start := time.Now()
	defer func() {
		c.observe(path, err, time.Since(start))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUnexpected, err)
	}

	req.Header.Set("Accept", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnexpected, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamStatusError{Status: resp.StatusCode, Detail: extractDetail(body)}
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: upstream body is not JSON", ErrUnexpected)
	}

	return body, nil
}

func (c *Client) observe(path string, err error, d time.Duration) {
	if c.prom == nil {
		return
	}
	c.prom.ObserveUpstream(path, resultOf(err), d)
}

func resultOf(err error) string {
	switch err.(type) {
	case nil:
		return "ok"
	case *NetworkError:
		return "network"
	case *UpstreamStatusError:
		return "upstream_status"
	}
	return "unexpected"
}
