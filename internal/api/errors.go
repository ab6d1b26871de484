// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error variables for common client errors.
var (
	// ErrClientClosed indicates the client was closed while a request was
	// in flight or parked on the pending queue.
	ErrClientClosed = errors.New("api client closed")

	// ErrQueueFull indicates the pending request queue reached its
	// capacity while offline.
	ErrQueueFull = errors.New("pending request queue full")

	// ErrRateLimited indicates a request was abandoned mid-cooldown: a
	// 429 opened a backoff window, and the caller's context ended or the
	// client closed before the deferred retry ran. Matched through the
	// *Error built from the 429 response.
	ErrRateLimited = errors.New("rate limited")
)

// Error represents an error response from the backend API.
type Error struct {
	Status  int
	Code    string
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend error [%s] (HTTP %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, e.Message)
}

// Unwrap lets errors.Is(err, ErrRateLimited) work for 429 errors.
func (e *Error) Unwrap() error {
	if e.Status == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	return nil
}

// apiErrorBody is the error envelope the backend uses when it can.
type apiErrorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

// parseError converts a non-2xx response into an *Error, tolerating both
// structured and bare error bodies.
func parseError(resp *Response) *Error {
	apiErr := &Error{Status: resp.StatusCode}

	var body apiErrorBody
	if err := json.Unmarshal(resp.Body, &body); err == nil {
		switch {
		case body.Error.Message != "":
			apiErr.Code = body.Error.Code
			apiErr.Message = body.Error.Message
			return apiErr
		case body.Message != "":
			apiErr.Message = body.Message
			return apiErr
		}
	}

	apiErr.Message = strings.TrimSpace(string(resp.Body))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
