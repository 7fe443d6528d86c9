package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/iho/energyledger/internal/adapter/http/dto"
	"github.com/iho/energyledger/internal/adapter/http/middleware"
)

// apiError is a non-2xx answer from the server.
type apiError struct {
	Status  int
	Code    string
	Message string
}

func (e *apiError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("request failed with status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("%s (%d): %s", e.Code, e.Status, e.Message)
}

type apiClient struct {
	baseURL  string
	identity string
	token    string
	http     *http.Client
}

func newAPIClient(opts *options) *apiClient {
	return &apiClient{
		baseURL:  strings.TrimRight(opts.baseURL, "/"),
		identity: opts.identity,
		token:    opts.token,
		http:     &http.Client{Timeout: opts.timeout},
	}
}

// as returns a copy of the client acting for identity.
func (c *apiClient) as(identity, token string) *apiClient {
	cp := *c
	cp.identity = identity
	cp.token = token
	return &cp
}

// do sends a JSON request and decodes a JSON answer into out. POSTs carry a
// fresh Idempotency-Key so transport retries cannot double-apply them.
func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method == http.MethodPost {
		req.Header.Set(middleware.IdempotencyKeyHeader, ulid.Make().String())
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// download fetches a binary document.
func (c *apiClient) download(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp.StatusCode, data)
	}
	return data, nil
}

func (c *apiClient) authorize(req *http.Request) {
	switch {
	case c.token != "":
		req.Header.Set("Authorization", "Bearer "+c.token)
	case c.identity != "":
		req.Header.Set(middleware.ParticipantHeader, c.identity)
	}
}

func decodeAPIError(status int, data []byte) error {
	var body dto.ErrorResponse
	if err := json.Unmarshal(data, &body); err != nil {
		return &apiError{Status: status, Message: truncate(string(data), 200)}
	}

	msg := body.Error
	if body.Message != "" {
		msg += ": " + body.Message
	}
	return &apiError{Status: status, Code: body.Code, Message: msg}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
