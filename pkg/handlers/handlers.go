// Package handlers provides shared response and request helpers for HTTP handlers.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"gopkg.in/yaml.v3"
)

// ErrBodyTooLarge is returned by DecodeJSON when the body exceeds its limit.
var ErrBodyTooLarge = errors.New("request body too large")

// RespondJSON writes data as a JSON response with the given status code.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// RespondYAML writes data as a YAML response with the given status code.
func RespondYAML(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(status)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	enc.Encode(data)
	enc.Close()
}

// RespondError logs err and writes it as a JSON error body.
// Server errors log at error level, client errors at warn.
func RespondError(w http.ResponseWriter, logger *slog.Logger, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error("handler error", "status", status, "error", err)
	} else {
		logger.Warn("request rejected", "status", status, "error", err)
	}
	RespondJSON(w, status, map[string]string{"error": err.Error()})
}

// DecodeJSON decodes a JSON request body into T, limited to maxBytes.
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, maxBytes int64) (T, error) {
	var result T

	body := http.MaxBytesReader(w, r.Body, maxBytes)
	defer body.Close()

	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&result); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return result, ErrBodyTooLarge
		}
		return result, fmt.Errorf("decode body: %w", err)
	}

	return result, nil
}
