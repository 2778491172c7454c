// Package api is the authorized request client for the alert service.
// Every outbound call goes through a single path that attaches the bearer
// credential, classifies failures into the Kind taxonomy, and enforces the
// global 401 policy: clear the session and navigate to login, exactly once,
// no matter how many concurrent requests fail together.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ihwang125/NewsToText/pkg/utils"
)

// SessionState is the slice of the session store the client needs: the
// credential for outbound requests and the clear operation for the 401
// policy. Clear reports whether this call performed the transition, which
// is what collapses N concurrent 401s into one navigation.
type SessionState interface {
	BearerToken() (string, bool)
	Clear(ctx context.Context) bool
}

// AuthFailureHandler runs after a 401 has cleared the session. The hosting
// application registers it once, typically to navigate to the login view.
type AuthFailureHandler func()

// Client issues authorized requests against the alert service.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	sessions      SessionState
	retry         utils.RetryConfig
	onAuthFailure AuthFailureHandler
}

// New creates a client for the service at baseURL (including the /api/v1
// prefix). The retry configuration applies to GET requests only; mutations
// are never repeated automatically.
func New(baseURL string, sessions SessionState, timeout time.Duration, retry utils.RetryConfig) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		sessions:   sessions,
		retry:      retry,
	}
}

// OnAuthFailure registers the handler invoked when a 401 clears the
// session. Register once, before the first request; the handler fires at
// most once per authenticated session regardless of how many in-flight
// requests observe the failure.
func (c *Client) OnAuthFailure(fn AuthFailureHandler) {
	c.onAuthFailure = fn
}

// errorBody is the failure shape the server sends with non-2xx responses.
type errorBody struct {
	Error string `json:"error"`
}

// do performs one API operation: marshal body, send with credentials,
// classify the outcome, and decode a 2xx response into out (which may be
// nil for operations with empty success bodies). fallbackMsg is used when
// the server did not provide its own error text.
func (c *Client) do(ctx context.Context, method, path string, body, out any, fallbackMsg string) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindServer, Message: fallbackMsg, Err: fmt.Errorf("marshal request body: %w", err)}
		}
	}

	status, respBody, err := c.send(ctx, method, path, payload)
	if err != nil {
		requestsTotal.WithLabelValues(method, "network_error").Inc()
		return &Error{Kind: KindNetwork, Message: fallbackMsg, Err: err}
	}

	requestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()

	switch {
	case status >= 200 && status < 300:
		if out != nil {
			if err := json.Unmarshal(respBody, out); err != nil {
				return &Error{Kind: KindServer, StatusCode: status, Message: fallbackMsg, Err: fmt.Errorf("malformed response: %w", err)}
			}
		}
		return nil

	case status == http.StatusUnauthorized:
		c.handleAuthFailure(ctx)
		return &Error{Kind: KindAuth, StatusCode: status, Message: serverMessage(respBody, fallbackMsg)}

	case status == http.StatusNotFound:
		return &Error{Kind: KindNotFound, StatusCode: status, Message: serverMessage(respBody, fallbackMsg)}

	default:
		return &Error{Kind: KindServer, StatusCode: status, Message: serverMessage(respBody, fallbackMsg)}
	}
}

// send dispatches the request, retrying transport failures for GETs. It
// returns the response status and body; err is non-nil only for transport
// failures, every received response is returned to the caller for
// classification.
func (c *Client) send(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	type result struct {
		status int
		body   []byte
	}

	attempt := func() (result, error) {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return result{}, fmt.Errorf("build request: %w", err)
		}

		requestID := uuid.New().String()
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Request-ID", requestID)
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if token, ok := c.sessions.BearerToken(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		duration := time.Since(start)
		requestDuration.WithLabelValues(method).Observe(duration.Seconds())

		if err != nil {
			log.Warn().
				Str("request_id", requestID).
				Str("method", method).
				Str("path", path).
				Dur("duration_ms", duration).
				Err(err).
				Msg("Request failed")
			return result{}, err
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return result{}, fmt.Errorf("read response body: %w", err)
		}

		log.Debug().
			Str("request_id", requestID).
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Dur("duration_ms", duration).
			Msg("Request completed")

		return result{status: resp.StatusCode, body: respBody}, nil
	}

	var res result
	var err error
	if method == http.MethodGet {
		res, err = utils.RetryWithResult(ctx, c.retry, attempt)
	} else {
		res, err = attempt()
	}
	if err != nil {
		return 0, nil, err
	}
	return res.status, res.body, nil
}

// handleAuthFailure enforces the uniform 401 policy. The session store's
// Clear reports whether this call transitioned the session; only that call
// fires the navigation handler, so concurrent 401s collapse to one
// clear and one navigation.
func (c *Client) handleAuthFailure(ctx context.Context) {
	authFailuresTotal.Inc()

	if !c.sessions.Clear(ctx) {
		return
	}

	log.Warn().Msg("Authorization failure, session cleared")
	if c.onAuthFailure != nil {
		c.onAuthFailure()
	}
}

// serverMessage extracts the server's error text, falling back to the
// per-operation message when the body carries none.
func serverMessage(body []byte, fallback string) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Error != "" {
		return eb.Error
	}
	return fallback
}
