package corrections

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/statecheck/pkg/handlers"
)

// Domain errors for correction requests. Store operations themselves never fail;
// these are raised at the HTTP boundary.
var (
	ErrNotFound     = errors.New("override not found")
	ErrInvalidKey   = errors.New("invalid image key")
	ErrInvalidBody  = errors.New("invalid request body")
	ErrInvalidQuery = errors.New("invalid query parameter")
)

// MapHTTPStatus maps correction domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, handlers.ErrBodyTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, ErrInvalidKey) || errors.Is(err, ErrInvalidBody) || errors.Is(err, ErrInvalidQuery) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// ValidateKey rejects empty, whitespace-only, or oversize image keys.
func ValidateKey(key string) error {
	if len(key) == 0 || len(key) > MaxKeyLength {
		return ErrInvalidKey
	}
	for _, r := range key {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return nil
		}
	}
	return ErrInvalidKey
}
