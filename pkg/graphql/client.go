package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"graphql-grafana-plugin/pkg/models"
	"graphql-grafana-plugin/pkg/ratelimit"

	"github.com/grafana/grafana-plugin-sdk-go/backend/httpclient"
)

// ClientError represents a failure to reach the GraphQL endpoint or an
// unusable response from it. GraphQL execution errors inside a 200
// response are not ClientErrors; they are returned in Response.Errors.
type ClientError struct {
	Msg string
	Err error // Wrapped error
}

func (e *ClientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("graphql client error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("graphql client error: %s", e.Msg)
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// Executor executes a GraphQL request and returns the execution result.
// Handlers depend on this interface so tests can inject a fake transport.
type Executor interface {
	Execute(ctx context.Context, req Request) (*Response, error)
}

// Client executes GraphQL requests over HTTP against a single endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	limiter    *ratelimit.Limiter
}

var _ Executor = (*Client)(nil)

// NewClient builds a client from the datasource settings. A bearer token
// is attached when configured, and outbound calls are rate limited when
// MaxQueriesPerSecond is set.
func NewClient(settings *models.Settings) (*Client, error) {
	if settings == nil || settings.Endpoint() == "" {
		return nil, &ClientError{Msg: "GraphQL endpoint URL is not configured"}
	}

	opts := httpclient.Options{
		Timeouts: &httpclient.TimeoutOptions{
			Timeout: time.Duration(settings.TimeoutSeconds) * time.Second,
		},
		Header: http.Header{
			"Content-Type": {"application/json"},
		},
	}
	if settings.Secrets != nil && settings.Secrets.APIToken != "" {
		opts.Header.Set("Authorization", "Bearer "+settings.Secrets.APIToken)
	}

	httpClient, err := httpclient.New(opts)
	if err != nil {
		return nil, &ClientError{Msg: "failed to initialize HTTP client", Err: err}
	}

	c := &Client{
		httpClient: httpClient,
		endpoint:   settings.Endpoint(),
	}
	if settings.MaxQueriesPerSecond > 0 {
		c.limiter = ratelimit.New(settings.MaxQueriesPerSecond, settings.MaxQueriesPerSecond)
	}
	return c, nil
}

// Execute posts the request envelope and decodes the execution result.
// Transport failures and non-2xx statuses are returned as ClientErrors;
// the caller inspects Response.Errors for GraphQL-level failures.
func (c *Client) Execute(ctx context.Context, req Request) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &ClientError{Msg: "rate limit wait aborted", Err: err}
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, &ClientError{Msg: "could not encode GraphQL request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Msg: "could not build HTTP request", Err: err}
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &ClientError{Msg: "request to GraphQL endpoint failed", Err: err}
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &ClientError{Msg: "could not read GraphQL response", Err: err}
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, &ClientError{Msg: fmt.Sprintf("GraphQL endpoint returned status %d", httpResp.StatusCode)}
	}

	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &ClientError{Msg: "could not decode GraphQL response", Err: err}
	}
	return &resp, nil
}
