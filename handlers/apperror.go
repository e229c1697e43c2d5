package handlers

import (
	"errors"
	"net/http"

	"paymenthook/models"
)

// AppError maps an error kind to an HTTP status and a stable code
type AppError struct {
	Status int
	Code   string
}

var (
	ErrValidationFailed = &AppError{http.StatusBadRequest, "VALIDATION_FAILED"}
	ErrResourceNotFound = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND"}
	ErrIneligible       = &AppError{http.StatusBadRequest, "INELIGIBLE"}
	ErrUpstreamFailed   = &AppError{http.StatusInternalServerError, "UPSTREAM_ERROR"}
	ErrMalformedRequest = &AppError{http.StatusBadRequest, "MALFORMED_REQUEST"}
	ErrInternalError    = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR"}
)

func appErrorFor(err error) *AppError {
	switch {
	case errors.Is(err, models.ErrValidation):
		return ErrValidationFailed
	case errors.Is(err, models.ErrNotFound):
		return ErrResourceNotFound
	case errors.Is(err, models.ErrConflict):
		return ErrIneligible
	case errors.Is(err, models.ErrUpstream):
		return ErrUpstreamFailed
	case errors.Is(err, models.ErrMalformedRequest):
		return ErrMalformedRequest
	default:
		return ErrInternalError
	}
}
