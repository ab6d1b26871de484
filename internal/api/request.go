// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// =============================================================================
// REQUEST DESCRIPTOR
// =============================================================================

// Request describes one outbound call. Descriptors are self-contained so
// they can be parked on the pending queue and replayed later unchanged.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	Header http.Header
}

// NewRequest builds a descriptor for the given method and path.
func NewRequest(method, path string) *Request {
	return &Request{Method: method, Path: path}
}

// WithQuery sets the query parameters.
func (r *Request) WithQuery(query url.Values) *Request {
	r.Query = query
	return r
}

// WithBody sets the JSON request body.
func (r *Request) WithBody(body any) *Request {
	r.Body = body
	return r
}

// =============================================================================
// RESPONSE
// =============================================================================

// Response holds a fully-read backend response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the raw response body into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// dataEnvelope matches the backend's success envelope convention.
type dataEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// DecodeData unmarshals the response payload into v, tolerating both
// envelope forms the backend produces: payload nested under a "data"
// field, or the payload directly as the body.
func (r *Response) DecodeData(v any) error {
	var envelope dataEnvelope
	if err := json.Unmarshal(r.Body, &envelope); err == nil && isPresent(envelope.Data) {
		if err := json.Unmarshal(envelope.Data, v); err != nil {
			return fmt.Errorf("failed to parse response data: %w", err)
		}
		return nil
	}
	return r.Decode(v)
}

// isPresent reports whether a raw JSON field carries an actual value.
func isPresent(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}
