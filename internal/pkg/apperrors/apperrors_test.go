package apperrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestKindStatus(t *testing.T) {
	cases := map[Kind]int{
		KindAuthentication:  http.StatusUnauthorized,
		KindAuthorization:   http.StatusForbidden,
		KindValidation:      http.StatusBadRequest,
		KindNotFound:        http.StatusNotFound,
		KindConflict:        http.StatusConflict,
		KindDataUnavailable: http.StatusServiceUnavailable,
		KindInternal:        http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.Status())
	}
}

func TestStore_Classification(t *testing.T) {
	assert.NoError(t, Store(nil, "Client"))

	nf := Store(gorm.ErrRecordNotFound, "Client")
	require.Error(t, nf)
	assert.Equal(t, KindNotFound, KindOf(nf))
	assert.Equal(t, "Client not found", nf.(*Error).Message)

	down := Store(errors.New("connection refused"), "Client")
	assert.Equal(t, KindDataUnavailable, KindOf(down))

	timeout := Store(fmt.Errorf("query: %w", context.DeadlineExceeded), "Client")
	assert.Equal(t, KindDataUnavailable, KindOf(timeout))
	assert.ErrorIs(t, timeout, context.DeadlineExceeded)

	already := Validation("bad")
	assert.Same(t, already, Store(already, "Client"))
}

func TestAs_Wrapped(t *testing.T) {
	err := fmt.Errorf("outer: %w", Forbidden("no"))
	ae, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, KindAuthorization, ae.Kind)
	assert.True(t, IsKind(err, KindAuthorization))
	assert.False(t, IsKind(errors.New("plain"), KindAuthorization))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
}

func TestValidationDetails(t *testing.T) {
	err := Validation("Invalid request", FieldError{Field: "email", Message: "Invalid email format"})
	assert.Equal(t, "Invalid request", err.Error())
	require.Len(t, err.Details, 1)
	assert.Equal(t, "email", err.Details[0].Field)
}
