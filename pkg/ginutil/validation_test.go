package ginutil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type color string

func (c color) IsValid() bool { return c == "red" || c == "blue" }

type paintRequest struct {
	Color  color  `json:"color" binding:"required,enum"`
	Accent *color `json:"accent" binding:"omitempty,enum"`
}

func TestEnumValidation(t *testing.T) {
	require.NoError(t, RegisterValidations())
	require.NoError(t, RegisterValidations())
	gin.SetMode(gin.TestMode)

	tests := []struct {
		body string
		want int
	}{
		{`{"color":"red"}`, http.StatusOK},
		{`{"color":"red","accent":"blue"}`, http.StatusOK},
		{`{"color":"green"}`, http.StatusBadRequest},
		{`{"color":"red","accent":"green"}`, http.StatusBadRequest},
		{`{}`, http.StatusBadRequest},
	}

	r := gin.New()
	r.POST("/paint", func(c *gin.Context) {
		var req paintRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/paint", strings.NewReader(tt.body)))
		assert.Equal(t, tt.want, w.Code, tt.body)
	}
}
