package xerrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[error]int{
		nil:                                       http.StatusOK,
		Invalid("bad %s", "input"):                http.StatusBadRequest,
		ErrRejectionReason:                        http.StatusBadRequest,
		ErrInvalidCredentials:                     http.StatusUnauthorized,
		ErrAccountInactive:                        http.StatusForbidden,
		ErrNotAssigned:                            http.StatusForbidden,
		fmt.Errorf("document 9: %w", ErrNotFound): http.StatusNotFound,
		ErrNotPending:                             http.StatusConflict,
		ErrConflict:                               http.StatusConflict,
		fmt.Errorf("pool: %w", ErrDependency):     http.StatusServiceUnavailable,
		errors.New("boom"):                        http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, HTTPStatus(err), "%v", err)
	}

	assert.True(t, Public(ErrNotPending))
	assert.False(t, Public(errors.New("boom")))
	assert.False(t, Public(ErrDependency))
}

func TestFromPG(t *testing.T) {
	assert.NoError(t, FromPG(nil))
	assert.ErrorIs(t, FromPG(&pgconn.PgError{Code: "23505"}), ErrConflict)
	assert.ErrorIs(t, FromPG(&pgconn.PgError{Code: "23503"}), ErrInvalidInput)
	assert.ErrorIs(t, FromPG(&pgconn.PgError{Code: "57P01"}), ErrDependency)
	assert.ErrorIs(t, FromPG(fmt.Errorf("query: %w", context.DeadlineExceeded)), ErrDependency)

	already := fmt.Errorf("doc: %w", ErrNotFound)
	assert.Equal(t, already, FromPG(already))
	assert.Equal(t, "unknown", ParsePGErrorCode(errors.New("x")))
}
