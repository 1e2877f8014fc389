package api

import (
	"errors"
	"net/http"

	"crash-dash/internal/domain"
)

// httpStatusFromDomainError maps domain errors to HTTP status codes.
func httpStatusFromDomainError(err error) int {
	var notFound *domain.NotFoundError
	var validation *domain.ValidationError
	var invalidColumn *domain.InvalidColumnError
	var authFailed *domain.AuthenticationFailedError
	var unavailable *domain.SourceUnavailableError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &invalidColumn):
		return http.StatusBadRequest
	case errors.As(err, &authFailed):
		return http.StatusUnauthorized
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
