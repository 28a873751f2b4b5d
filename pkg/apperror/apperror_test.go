package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError(t *testing.T) {
	appErr := NotFound("order")
	assert.Equal(t, appErr, FromError(appErr))

	// Survives %w wrapping
	wrapped := fmt.Errorf("loading order: %w", appErr)
	assert.Equal(t, appErr, FromError(wrapped))

	// Unexpected errors yield nil
	assert.Nil(t, FromError(errors.New("disk on fire")))
	assert.Nil(t, FromError(nil))
}

func TestWrapKeepsCauseOutOfMessage(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := Wrap(http.StatusBadGateway, "failed to upload image", cause)

	assert.Equal(t, http.StatusBadGateway, err.Status)
	assert.Equal(t, "failed to upload image", err.Message)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestConstructors(t *testing.T) {
	nf := NotFound("branch")
	assert.Equal(t, http.StatusNotFound, nf.Status)
	assert.Equal(t, "branch not found", nf.Message)

	v := Validation("quantity must be positive")
	assert.Equal(t, http.StatusBadRequest, v.Status)

	f := Forbidden("no access")
	assert.Equal(t, http.StatusForbidden, f.Status)

	is := InsufficientStock("Coffee")
	assert.Equal(t, http.StatusBadRequest, is.Status)
	assert.Equal(t, "insufficient stock for product Coffee", is.Message)

	ar := AlreadyResolved("approved")
	require.Equal(t, http.StatusBadRequest, ar.Status)
	assert.Equal(t, "stock request already approved", ar.Message)
}
