package jobs

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/labelsort/pkg/labels"
	"github.com/JaimeStill/labelsort/pkg/storage"
)

// Domain errors for sort jobs.
var (
	ErrNotFound     = errors.New("job not found")
	ErrDuplicate    = errors.New("job already exists")
	ErrFileTooLarge = errors.New("file exceeds maximum upload size")
	ErrInvalidFile  = errors.New("invalid file")
	ErrUnknownKey   = errors.New("group key not found")
	ErrBusy         = errors.New("sort capacity exhausted")
)

// MapHTTPStatus maps job, storage, and pipeline errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrUnknownKey), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidFile):
		return http.StatusBadRequest
	case errors.Is(err, ErrBusy):
		return http.StatusServiceUnavailable
	}
	return labels.MapHTTPStatus(err)
}
