package triage

import (
	"errors"
	"net/http"

	"github.com/kbristol/sift/internal/approval"
	"github.com/kbristol/sift/internal/engine"
)

// MapHTTPStatus maps triage domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, engine.ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, engine.ErrDuplicateItem) || errors.Is(err, engine.ErrVersionConflict) {
		return http.StatusConflict
	}
	if errors.Is(err, engine.ErrUnknownStage) || errors.Is(err, approval.ErrInvalidAction) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
