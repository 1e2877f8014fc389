package source

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"cloud.google.com/go/auth"
	"google.golang.org/api/googleapi"

	"crash-dash/internal/domain"
)

// Classify maps a raw warehouse or client error onto the domain taxonomy.
// Rejected or expired credentials become AuthenticationFailedError,
// everything else SourceUnavailableError. Errors already classified pass
// through unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var authFailed *domain.AuthenticationFailedError
	var unavailable *domain.SourceUnavailableError
	if errors.As(err, &authFailed) || errors.As(err, &unavailable) {
		return err
	}

	if isAuthError(err) {
		return domain.ErrAuthenticationFailed(err, "warehouse rejected credentials")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrSourceUnavailable(err, "warehouse query timed out")
	}
	return domain.ErrSourceUnavailable(err, "warehouse query failed")
}

func isAuthError(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden
	}

	var tokenErr *auth.Error
	if errors.As(err, &tokenErr) {
		return true
	}

	// Token exchange failures surfaced by older transports are plain errors.
	msg := err.Error()
	return strings.Contains(msg, "oauth2:") || strings.Contains(msg, "invalid_grant")
}
