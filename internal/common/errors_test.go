package common

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrListingNotFound, http.StatusNotFound},
		{fmt.Errorf("lookup: %w", ErrConversationNotFound), http.StatusNotFound},
		{ErrNotParticipant, http.StatusForbidden},
		{ErrInvalidCampusEmail, http.StatusForbidden},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrUserAlreadyExists, http.StatusConflict},
		{fmt.Errorf("%w: price must not be negative", ErrInvalidInput), http.StatusBadRequest},
		{ErrReportTarget, http.StatusBadRequest},
		{ErrFileTooLarge, http.StatusRequestEntityTooLarge},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusFor(tc.err), tc.err.Error())
	}
}

func TestServiceErrorHidesInternalCause(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

	ServiceError(c, errors.New("dial tcp 10.0.0.1: refused"), "failed to load listings")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "failed to load listings")
	assert.NotContains(t, w.Body.String(), "10.0.0.1")
}
