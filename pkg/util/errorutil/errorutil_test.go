package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, ToDomainError(nil))
		assert.NoError(t, MapError(nil))
	})

	t.Run("wrapped domain error is returned as is", func(t *testing.T) {
		original := NewForbidden("nope")
		got := ToDomainError(fmt.Errorf("handler: %w", original))
		require.NotNil(t, got)
		assert.Equal(t, CodeForbidden, got.Code)
		assert.Equal(t, http.StatusForbidden, got.HTTPStatus)
	})

	t.Run("missing rows become not found", func(t *testing.T) {
		got := ToDomainError(fmt.Errorf("load unit: %w", pgx.ErrNoRows))
		assert.Equal(t, http.StatusNotFound, got.HTTPStatus)
		assert.ErrorIs(t, got, pgx.ErrNoRows)
	})

	t.Run("unknown errors are opaque", func(t *testing.T) {
		cause := errors.New("connection reset")
		got := ToDomainError(cause)
		assert.Equal(t, CodeInternal, got.Code)
		assert.Equal(t, "internal server error", got.Message)
		assert.ErrorIs(t, got, cause)
	})
}

func TestDomainErrorIsMatchesCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewNotFoundMessage("There is no user with the given email"))

	assert.ErrorIs(t, err, &DomainError{Code: CodeNotFound})
	assert.NotErrorIs(t, err, &DomainError{Code: CodeConflict})
}

func TestWrapCopies(t *testing.T) {
	base := NewDomainError("X", "msg", http.StatusTeapot, nil)
	wrapped := base.Wrap(errors.New("cause"))

	assert.Nil(t, base.Err)
	assert.Equal(t, "msg [X]: cause", wrapped.Error())
}
