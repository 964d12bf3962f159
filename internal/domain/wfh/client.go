package wfh

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// FailureRecorder counts degraded upstream reads; satisfied by the
// metrics collector.
type FailureRecorder interface {
	RecordUpstreamFailure()
}

// Client fetches WFH records from the legacy HR system. Every failure
// path resolves to an empty list: the portal never surfaces a legacy
// outage to the UI, and never leaves it loading forever.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Metrics FailureRecorder
}

func NewClient(baseURL string, timeout time.Duration, metrics FailureRecorder) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: timeout},
		Metrics: metrics,
	}
}

// GetMyRequests returns the caller's normalized WFH requests. The
// bearer token is forwarded so the legacy system scopes the result.
func (c *Client) GetMyRequests(ctx context.Context, bearerToken string) []Request {
	if c == nil || c.BaseURL == "" {
		return []Request{}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/api/wfh/my-requests", nil)
	if err != nil {
		return c.degrade("build request", err)
	}
	if bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+bearerToken)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return c.degrade("fetch", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.degrade("status", fmt.Errorf("upstream returned %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return c.degrade("read body", err)
	}

	return Normalize(body)
}

func (c *Client) degrade(stage string, err error) []Request {
	slog.Warn("wfh upstream read degraded to empty", "stage", stage, "err", err)
	if c.Metrics != nil {
		c.Metrics.RecordUpstreamFailure()
	}
	return []Request{}
}
