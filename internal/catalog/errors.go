package catalog

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidEntry = errors.New("invalid catalog entry")
	ErrDuplicateKey = errors.New("duplicate catalog key")
	ErrUnknownCrop  = errors.New("unknown crop")
)

// MapHTTPStatus maps catalog errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrUnknownCrop) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
