package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{Conflict("dup"), http.StatusConflict},
		{Auth("nope"), http.StatusUnauthorized},
		{Privilege("nope"), http.StatusForbidden},
		{Token("nope"), http.StatusForbidden},
		{NotFound("gone"), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
		{fmt.Errorf("wrapped: %w", Conflict("dup")), http.StatusConflict},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Status(c.err), c.err.Error())
	}
}

func TestMessageHidesInternalCause(t *testing.T) {
	err := Internal("failed to save product", errors.New("connection reset"))
	assert.Equal(t, "failed to save product", Message(err))
	assert.Equal(t, "internal server error", Message(errors.New("connection reset")))
	assert.ErrorContains(t, err, "connection reset")
}
