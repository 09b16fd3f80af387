// Package transport is the boundary to the upstream debt-tracking backend.
// The repository depends only on the Transport interface; the backend's REST
// contract is externally owned and its field names drift, so everything above
// this package works on the raw envelope and leaves shape tolerance to the
// decoder.
package transport

import (
	"context"
	"encoding/json"
)

// Envelope is the upstream response wrapper. Network-level failures are
// returned as errors and treated by callers exactly like Success=false.
// Status carries the HTTP status code for failure classification.
type Envelope struct {
	Success bool            `json:"success"`
	Status  int             `json:"-"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Transport issues one upstream request. body may be nil.
type Transport interface {
	Request(ctx context.Context, method, path string, body any) (*Envelope, error)
}
