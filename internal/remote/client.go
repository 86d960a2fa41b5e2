// Package remote talks to a studydeck API server. Client implements the
// same store surface as the local database, so views and the CLI work
// against either.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/conorfennell/studydeck/internal/domain"
)

// ErrNoURL is returned by New when no server URL is configured.
var ErrNoURL = errors.New("remote: api url is not set")

// Client is an HTTP client for the JSON API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// New returns a client for the server at baseURL. A zero timeout leaves
// requests bounded only by their context.
func New(baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, ErrNoURL
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("remote: invalid api url: %w", err)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  slog.Default(),
	}, nil
}

// wireError mirrors the server's error body.
type wireError struct {
	Error  string              `json:"error"`
	Kind   string              `json:"kind"`
	Fields map[string][]string `json:"fields"`
}

var kindsByName = map[string]domain.ErrorKind{
	"validation": domain.KindValidation,
	"not_found":  domain.KindNotFound,
	"forbidden":  domain.KindForbidden,
	"transient":  domain.KindTransient,
	"timeout":    domain.KindTimeout,
	"conflict":   domain.KindConflict,
	"internal":   domain.KindInternal,
}

// kindForStatus classifies a failed response when the body names no kind.
func kindForStatus(status int) domain.ErrorKind {
	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return domain.KindValidation
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.KindForbidden
	case status == http.StatusNotFound:
		return domain.KindNotFound
	case status == http.StatusConflict:
		return domain.KindConflict
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return domain.KindTimeout
	case status == http.StatusTooManyRequests || status == http.StatusBadGateway || status == http.StatusServiceUnavailable:
		return domain.KindTransient
	}
	return domain.KindInternal
}

// call performs one request and decodes the response into a Result. A nil
// body sends no payload; T of struct{} ignores the response payload.
func call[T any](ctx context.Context, c *Client, method, path string, body any) domain.Result[T] {
	var payload io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return domain.Err[T](&domain.Error{Kind: domain.KindInternal, Message: "failed to encode request", Err: err})
		}
		payload = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return domain.Err[T](&domain.Error{Kind: domain.KindInternal, Message: "failed to build request", Err: err})
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		kind := domain.KindOf(err)
		if kind == domain.KindInternal {
			kind = domain.KindTransient
		}
		if errors.Is(err, context.Canceled) {
			kind = domain.KindInternal
		}
		c.logger.Debug("request failed", "method", method, "path", path, "kind", kind, "error", err)
		return domain.Err[T](&domain.Error{Kind: kind, Message: fmt.Sprintf("%s %s failed", method, path), Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return domain.Err[T](decodeFailure(resp))
	}

	var v T
	if resp.StatusCode == http.StatusNoContent {
		return domain.Ok(v)
	}
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil && !errors.Is(err, io.EOF) {
		return domain.Err[T](&domain.Error{Kind: domain.KindInternal, Message: "failed to decode response", Err: err})
	}
	return domain.Ok(v)
}

func decodeFailure(resp *http.Response) *domain.Error {
	var we wireError
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &we); err != nil {
		we.Error = strings.TrimSpace(string(raw))
	}
	kind, ok := kindsByName[we.Kind]
	if !ok {
		kind = kindForStatus(resp.StatusCode)
	}
	msg := we.Error
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return &domain.Error{Kind: kind, Message: msg, Fields: we.Fields}
}
