package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/titanmarket/titanmarket-backend/internal/common"
)

// RequireAdmin checks that the authenticated user has the admin flag
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAdmin(c) {
			common.ErrorResponse(c, http.StatusForbidden, "Admin access required", nil)
			return
		}
		c.Next()
	}
}
