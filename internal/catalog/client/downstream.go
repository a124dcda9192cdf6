// Package client implements the gateway's HTTP clients for the entity services.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"microflix/pkg/platform/circuit"
	"microflix/pkg/platform/sentinel"
)

const maxErrorBody = 4 << 10

// StatusError is an unexpected non-2xx, non-404 answer from a downstream service.
type StatusError struct {
	Service     string
	Status      int
	Code        string
	Description string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s answered %d", e.Service, e.Status)
	if e.Description != "" {
		msg += ": " + e.Description
	}
	return msg
}

func (e *StatusError) Unwrap() error { return sentinel.ErrUnavailable }

// Detail is the error_description the downstream service sent, if any.
func (e *StatusError) Detail() string { return e.Description }

// NewHTTPClient builds the traced HTTP client shared by downstream clients.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// downstream performs JSON GETs against one service behind a circuit breaker.
type downstream struct {
	name    string
	baseURL string
	http    *http.Client
	breaker *circuit.Breaker
}

func newDownstream(name, baseURL string, httpClient *http.Client, breaker *circuit.Breaker) downstream {
	if breaker == nil {
		breaker = circuit.New(name)
	}
	return downstream{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		breaker: breaker,
	}
}

// getJSON decodes a 2xx body into out. A 404 becomes sentinel.ErrNotFound.
// credential, when set, is forwarded as a bearer token.
func (d downstream) getJSON(ctx context.Context, path, credential string, out any) error {
	if !d.breaker.Allow() {
		return fmt.Errorf("%s: circuit open: %w", d.name, sentinel.ErrUnavailable)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build %s request: %w", d.name, err)
	}
	req.Header.Set("Accept", "application/json")
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	resp, err := d.http.Do(req)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			d.breaker.RecordFailure()
		}
		return fmt.Errorf("%s request: %w", d.name, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		d.breaker.RecordSuccess()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%s %s: %w", d.name, path, sentinel.ErrNotFound)
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		d.breaker.RecordSuccess()
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", d.name, err)
		}
		return nil
	default:
		if resp.StatusCode >= 500 {
			d.breaker.RecordFailure()
		} else {
			d.breaker.RecordSuccess()
		}
		return d.statusError(resp)
	}
}

func (d downstream) statusError(resp *http.Response) error {
	se := &StatusError{Service: d.name, Status: resp.StatusCode}
	var envelope struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&envelope); err == nil {
		se.Code = envelope.Error
		se.Description = envelope.ErrorDescription
	}
	return se
}
