// Package httpclient is the GraphQL-aware transport shared by every prober.
// It owns retry policy, per-call timeouts, and the mapping from transport
// failures onto the fixed set of error strings the classifier recognizes.
package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/roomkangali/gqlbola/internal/logger"
)

// Client is a bearer-token GraphQL client. Unlike the teacher's crawler
// client it carries no cookie jar: every probed principal authenticates via
// an Authorization header supplied per call.
type Client struct {
	httpClient *http.Client
	logger     *logger.Logger
	userAgent  string
	maxRetries int
	retryDelay time.Duration
}

// Options configures a new Client.
type Options struct {
	UserAgent          string
	MaxRetries         int
	RetryDelay         time.Duration
	InsecureSkipVerify bool
}

// New creates a Client with the teacher's defaulting conventions applied.
func New(log *logger.Logger, opts Options) *Client {
	if opts.UserAgent == "" {
		opts.UserAgent = "gqlbola/1.0"
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 500 * time.Millisecond
	}
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: opts.InsecureSkipVerify},
	}
	return &Client{
		httpClient: &http.Client{Transport: transport},
		logger:     log,
		userAgent:  opts.UserAgent,
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
	}
}

// GQLError is a single entry of a GraphQL response's top-level "errors"
// array.
type GQLError struct {
	Message string `json:"message"`
}

// GraphQLResponse is the decoded envelope of a GraphQL HTTP response.
type GraphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GQLError      `json:"errors"`
}

// HasData reports whether the response carries a non-null data payload,
// even when Errors is also populated -- Post then returns the response with
// a nil error, and callers such as the BOLA prober inspect Errors themselves.
func (r *GraphQLResponse) HasData() bool {
	return r != nil && len(r.Data) > 0 && string(r.Data) != "null"
}

// TransportError classifies a failed Post call the way the classifier
// expects: a formatted Message plus the raw signal needed to distinguish
// network failures from HTTP/GraphQL-level ones.
type TransportError struct {
	Message     string
	StatusCode  int
	HasResponse bool
	Timeout     bool
}

func (e *TransportError) Error() string { return e.Message }

// Post sends a single GraphQL POST request with the given document, JSON
// variables and headers, enforcing timeout as a per-call deadline on ctx.
// Retries apply only to transient network errors: an HTTP status or a
// GraphQL-level error is returned immediately so the caller's classifier
// sees the target's genuine response.
func (c *Client) Post(ctx context.Context, url, document string, variables map[string]any, headers map[string]string, timeout time.Duration) (*GraphQLResponse, error) {
	payload := map[string]any{"query": document}
	if len(variables) > 0 {
		payload["variables"] = variables
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &TransportError{Message: fmt.Sprintf("Network Error: %v", err)}
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(c.retryDelay)
		}

		callCtx, cancel := context.WithTimeout(ctx, timeout)
		req, err := http.NewRequestWithContext(callCtx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			cancel()
			return nil, &TransportError{Message: fmt.Sprintf("Network Error: %v", err)}
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			cancel()
			if isTimeout(err) {
				lastErr = &TransportError{Message: "Timeout de la petición", Timeout: true}
				continue
			}
			if isTransient(err) {
				lastErr = &TransportError{Message: fmt.Sprintf("Network Error: %v", err)}
				continue
			}
			return nil, &TransportError{Message: fmt.Sprintf("Network Error: %v", err)}
		}

		raw, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		cancel()
		if readErr != nil {
			lastErr = &TransportError{Message: fmt.Sprintf("Network Error: %v", readErr)}
			continue
		}

		return c.interpret(resp.StatusCode, raw)
	}

	if lastErr == nil {
		lastErr = &TransportError{Message: "Network Error: exhausted retries"}
	}
	return nil, lastErr
}

// interpret maps a raw HTTP response onto the fixed error-string shapes
// the classifier understands, or a clean GraphQLResponse when the call
// succeeded.
func (c *Client) interpret(status int, raw []byte) (*GraphQLResponse, error) {
	if status >= 500 {
		return nil, &TransportError{
			Message:     fmt.Sprintf("API Error %d: %s", status, truncate(raw)),
			StatusCode:  status,
			HasResponse: true,
		}
	}
	if status >= 400 && status != http.StatusOK {
		var gr GraphQLResponse
		if err := json.Unmarshal(raw, &gr); err == nil && len(gr.Errors) > 0 {
			return nil, &TransportError{
				Message:     fmt.Sprintf("HTTP Error %d: %s", status, joinMessages(gr.Errors)),
				StatusCode:  status,
				HasResponse: true,
			}
		}
		return nil, &TransportError{
			Message:     fmt.Sprintf("HTTP Error %d: %s", status, truncate(raw)),
			StatusCode:  status,
			HasResponse: true,
		}
	}

	var gr GraphQLResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return nil, &TransportError{
			Message:     fmt.Sprintf("HTTP Error %d: %s", status, truncate(raw)),
			StatusCode:  status,
			HasResponse: true,
		}
	}

	if !gr.HasData() && len(gr.Errors) > 0 {
		return &gr, &TransportError{
			Message:     fmt.Sprintf("GraphQL Error: %s", joinMessages(gr.Errors)),
			StatusCode:  status,
			HasResponse: true,
		}
	}

	// Data present (even alongside errors): let the caller grade it.
	return &gr, nil
}

func joinMessages(errs []GQLError) string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

func truncate(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

func isTransient(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.ErrUnexpectedEOF)
}
