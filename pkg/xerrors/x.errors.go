package xerrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

// Taxonomy
var (
	ErrInvalidInput  = errors.New("invalid input provided")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrNotFound      = errors.New("not found")
	ErrStateConflict = errors.New("invalid state transition")
	ErrConflict      = errors.New("already exists")
	ErrDependency    = errors.New("dependency unavailable")
)

// Auth
var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	ErrInvalidToken       = fmt.Errorf("%w: invalid or expired token", ErrUnauthorized)
	ErrSessionRevoked     = fmt.Errorf("%w: session revoked or expired", ErrUnauthorized)
	ErrAccountInactive    = fmt.Errorf("%w: account inactive", ErrForbidden)
)

// Workflow
var (
	ErrRejectionReason   = fmt.Errorf("%w: rejection reason is required when rejecting a document", ErrInvalidInput)
	ErrInvalidReview     = fmt.Errorf("%w: action must be 'certify' or 'reject'", ErrInvalidInput)
	ErrIdentityCheck     = fmt.Errorf("%w: identity verification failed", ErrInvalidInput)
	ErrPOSLocationClosed = fmt.Errorf("%w: pos location is inactive", ErrInvalidInput)
	ErrNotAssigned       = fmt.Errorf("%w: document is assigned to another certifier", ErrForbidden)
	ErrNotPending        = fmt.Errorf("%w: document is not awaiting certification", ErrStateConflict)
	ErrCommissionPaid    = fmt.Errorf("%w: commission already paid", ErrStateConflict)
)

// Invalid wraps a validation message so that errors.Is(err, ErrInvalidInput) holds.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// HTTPStatus maps an error from the usecase layer to a response code.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrStateConflict), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrDependency):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Public reports whether the error text may be shown to API clients.
func Public(err error) bool {
	return HTTPStatus(err) < http.StatusInternalServerError
}

func ParsePGErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code // e.g. 23505 for unique_violation
	}
	return "unknown"
}

// FromPG classifies a driver error. Errors that are already classified pass through.
func FromPG(err error) error {
	if err == nil {
		return nil
	}
	switch ParsePGErrorCode(err) {
	case "23505":
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case "23503", "23514", "22P02":
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	case "57P01", "57P03", "08000", "08003", "08006":
		return fmt.Errorf("%w: %v", ErrDependency, err)
	}
	if pgconn.Timeout(err) {
		return fmt.Errorf("%w: %v", ErrDependency, err)
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%w: %v", ErrDependency, err)
	}
	return err
}
