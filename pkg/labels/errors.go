package labels

import (
	"errors"
	"net/http"
)

// Pipeline errors. Missing or unusable text is never an error; it selects
// the fallback grouping instead.
var (
	// ErrExtraction indicates the source bytes could not be read as a PDF container.
	ErrExtraction = errors.New("document extraction failed")
	// ErrDocument indicates the source is not a valid document of the expected format.
	ErrDocument = errors.New("invalid document")
	// ErrIO indicates a source read or destination write failed.
	ErrIO = errors.New("document io failed")
	// ErrInvalidInput indicates an empty or out-of-range page selection or an unknown mode.
	ErrInvalidInput = errors.New("invalid input")
)

// MapHTTPStatus maps pipeline errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrDocument), errors.Is(err, ErrExtraction):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
