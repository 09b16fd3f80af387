// Package handlers exposes the ledger repository over HTTP for the UI. The
// facade mirrors the upstream envelope shape so clients see one contract
// regardless of which backend deployment sits behind the service.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/qarzbook/ledgercore/internal/apperrors"
)

const maxBodyBytes = 1_048_576

// ErrorResponse is the failure body returned by every endpoint.
type ErrorResponse struct {
	Success bool              `json:"success"`
	Kind    string            `json:"kind"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func sendJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"data":    data,
	})
}

func sendError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Kind: string(apperrors.KindUnknown), Message: err.Error()}
	var ae *apperrors.Error
	if errors.As(err, &ae) {
		resp.Kind = string(ae.Kind)
		resp.Message = ae.Message
		resp.Fields = ae.Fields
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperrors.HTTPStatus(err))
	json.NewEncoder(w).Encode(resp)
}

func sendBadRequest(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(ErrorResponse{
		Kind:    string(apperrors.KindValidationFailed),
		Message: message,
	})
}

// decodeBody reads exactly one JSON object into dst. Unknown fields and
// trailing content are rejected.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		sendBadRequest(w, "Invalid request body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		sendBadRequest(w, "Request body must only contain a single JSON object")
		return false
	}
	return true
}

// forceRefresh reports whether the request asked to bypass the cache.
func forceRefresh(r *http.Request) bool {
	return r.URL.Query().Get("refresh") == "true"
}
