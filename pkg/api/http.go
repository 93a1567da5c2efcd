package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/NicolasHaas/badgeboard/pkg/model"
	"github.com/NicolasHaas/badgeboard/pkg/version"
)

const (
	headerContentType = "Content-Type"
	headerUserAgent   = "User-Agent"
	headerRequestID   = "X-Request-ID"
	contentTypeJSON   = "application/json"

	// maxResponseBytes bounds how much of a response body is read.
	maxResponseBytes = 4 << 20
)

// envelope is the status wrapper most mutating endpoints answer with.
type envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// doRequest performs a JSON request.
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	var bodyReader io.Reader
	contentType := ""
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
		contentType = contentTypeJSON
	}
	return c.do(ctx, method, path, contentType, bodyReader, result)
}

// do sends one request and classifies the outcome.
func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, result any) (err error) {
	op := method + " " + path
	start := time.Now()
	requestID := uuid.NewString()
	defer func() {
		outcome := outcomeOf(err)
		c.log.Debug("api call", "op", op, "request_id", requestID, "outcome", outcome, "elapsed", time.Since(start))
		if c.observer != nil {
			c.observer(op, outcome, time.Since(start))
		}
	}()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("api: create request: %w", err)
	}
	req.Header.Set(headerUserAgent, version.UserAgent())
	req.Header.Set(headerRequestID, requestID)
	if contentType != "" {
		req.Header.Set(headerContentType, contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &model.NetworkError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &model.NetworkError{Op: op, Err: fmt.Errorf("read response body: %w", err)}
	}

	if resp.StatusCode >= 400 {
		return parseError(op, resp.StatusCode, respBody)
	}

	if len(respBody) > 0 && respBody[0] == '{' {
		var env envelope
		if json.Unmarshal(respBody, &env) == nil {
			if env.Success != nil && !*env.Success {
				return &model.RejectedError{Op: op, StatusCode: resp.StatusCode, Message: env.Message}
			}
			if env.Error != "" {
				return &model.RejectedError{Op: op, StatusCode: resp.StatusCode, Message: env.Error}
			}
		}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return &model.DecodeError{Source: op, Err: err}
		}
	}
	return nil
}

// parseError turns a non-2xx response into a rejection. A 5xx without a JSON
// body means the backend itself failed and is reported as a network failure.
func parseError(op string, statusCode int, body []byte) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil {
		msg := env.Message
		if msg == "" {
			msg = env.Error
		}
		return &model.RejectedError{Op: op, StatusCode: statusCode, Message: msg}
	}
	if statusCode >= 500 {
		return &model.NetworkError{Op: op, Err: fmt.Errorf("unexpected status %d", statusCode)}
	}
	return &model.RejectedError{Op: op, StatusCode: statusCode}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, model.ErrServerRejected):
		return OutcomeRejected
	case errors.Is(err, model.ErrDeserialization):
		return OutcomeDecode
	default:
		return OutcomeNetwork
	}
}

// get performs a GET request.
func (c *Client) get(ctx context.Context, path string, result any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, result)
}

// post performs a POST request.
func (c *Client) post(ctx context.Context, path string, body, result any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, result)
}

// put performs a PUT request.
func (c *Client) put(ctx context.Context, path string, body, result any) error {
	return c.doRequest(ctx, http.MethodPut, path, body, result)
}

// delete performs a DELETE request.
func (c *Client) delete(ctx context.Context, path string) error {
	return c.doRequest(ctx, http.MethodDelete, path, nil, nil)
}
