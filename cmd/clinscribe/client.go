// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ClinScribe Contributors

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// ErrServerNotRunning indicates the API server refused the connection.
var ErrServerNotRunning = errors.New("clinscribe is not running (connection refused)")

// defaultHTTPClient is the package-level HTTP client used by commands that
// talk to a running server. Overridden in tests via httptest.
var defaultHTTPClient = &http.Client{
	Timeout: 5 * time.Second,
}

// apiClient provides HTTP access to a running ClinScribe server.
type apiClient struct {
	baseURL string
	http    *http.Client
}

// newAPIClient creates a client targeting the given host:port address.
func newAPIClient(addr string) *apiClient {
	return &apiClient{
		baseURL: "http://" + addr,
		http:    defaultHTTPClient,
	}
}

// getJSON performs a GET request and decodes the JSON response into dest.
// Returns ErrServerNotRunning on connection refused.
func (c *apiClient) getJSON(path string, dest any) error {
	resp, err := c.http.Get(c.baseURL + path)
	if err != nil {
		if isDialError(err) {
			return ErrServerNotRunning
		}
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid response: %w", err)
	}
	return nil
}

// postJSON performs a POST with no body and decodes the JSON response.
func (c *apiClient) postJSON(path string, dest any) error {
	resp, err := c.http.Post(c.baseURL+path, "application/json", nil)
	if err != nil {
		if isDialError(err) {
			return ErrServerNotRunning
		}
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("invalid response: %w", err)
	}
	return nil
}

// isDialError returns true if err is a net dial error (connection refused, etc.).
func isDialError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial"
	}
	return false
}
