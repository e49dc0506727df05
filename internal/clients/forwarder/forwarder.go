// Package forwarder posts resolved lead payloads to client endpoints.
package forwarder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"leadportal_backend/internal/clients/domain"
	"leadportal_backend/platform/logger"
)

const (
	defaultTimeout  = 15 * time.Second
	maxResponseBody = 1 << 20
)

var (
	// ErrUnreachable is returned when the client endpoint could not be called.
	ErrUnreachable = errors.New("client endpoint unreachable")
	// ErrRejected is returned when the endpoint answered with a non-2xx status.
	ErrRejected = errors.New("client endpoint rejected the lead")
)

// Result is what the client endpoint answered. It is filled for failed calls
// too so the attempt can be logged.
type Result struct {
	StatusCode int
	Body       json.RawMessage
}

// Forwarder is the HTTP client for client endpoints.
type Forwarder struct {
	httpClient *http.Client
	log        *logger.Logger
}

// New creates a forwarder. A zero timeout uses the default.
func New(timeout time.Duration, log *logger.Logger) *Forwarder {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return NewWithClient(&http.Client{Timeout: timeout}, log)
}

// NewWithClient creates a forwarder on an existing HTTP client.
func NewWithClient(httpClient *http.Client, log *logger.Logger) *Forwarder {
	return &Forwarder{httpClient: httpClient, log: log}
}

// Send delivers payload with the configured method and headers.
func (f *Forwarder) Send(ctx context.Context, cfg domain.Config, payload domain.Payload) (Result, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Result{}, fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, cfg.HTTPMethod(), cfg.Path, bytes.NewReader(body))
	if err != nil {
		return unreachable(err), fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.log.WithContext(ctx).Error("client forward request failed", "error", err, "url", cfg.Path)
		return unreachable(err), fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		f.log.WithContext(ctx).Warn("client forward response unreadable", "error", err, "status", resp.StatusCode)
	}
	result := Result{StatusCode: resp.StatusCode, Body: asJSON(raw)}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.log.WithContext(ctx).Warn("client forward rejected", "status", resp.StatusCode, "url", cfg.Path)
		return result, fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	}
	return result, nil
}

func unreachable(err error) Result {
	body, _ := json.Marshal(map[string]string{"message": err.Error()})
	return Result{StatusCode: http.StatusBadGateway, Body: body}
}

// asJSON keeps JSON bodies as they are and wraps anything else in a string.
func asJSON(raw []byte) json.RawMessage {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	if json.Valid(raw) {
		return raw
	}
	wrapped, _ := json.Marshal(string(raw))
	return wrapped
}
