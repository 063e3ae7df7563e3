package respond

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"shopfront/internal/apis/shop/endpoints"
)

type ErrorBody struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields,omitempty"`
	} `json:"error"`
}

func WriteInternalError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, "internal_error", "internal error")
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteRaw sends an upstream JSON body through unchanged.
func WriteRaw(w http.ResponseWriter, status int, b []byte) {
	if len(b) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

func WriteError(w http.ResponseWriter, status int, code, msg string) {
	var b ErrorBody
	b.Error.Code = code
	b.Error.Message = msg
	WriteJSON(w, status, b)
}

func WriteValidation(w http.ResponseWriter, msg string, fields map[string]string) {
	var b ErrorBody
	b.Error.Code = "validation_failed"
	b.Error.Message = msg
	b.Error.Fields = fields
	WriteJSON(w, http.StatusBadRequest, b)
}

// WriteUpstreamError maps an upstream failure: 404 and 429 pass through,
// any other API error is a bad gateway. It reports false for non-API errors
// so the caller can decide.
func WriteUpstreamError(w http.ResponseWriter, err error) bool {
	var apiErr *endpoints.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Status {
	case http.StatusNotFound:
		WriteError(w, http.StatusNotFound, "not_found", apiErr.Message)
	case http.StatusTooManyRequests:
		WriteError(w, http.StatusTooManyRequests, "rate_limited", "too many requests")
	default:
		WriteError(w, http.StatusBadGateway, "upstream_error", apiErr.Error())
	}
	return true
}
