package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/titanmarket/titanmarket-backend/internal/common"
	"github.com/titanmarket/titanmarket-backend/pkg/jwt"
)

// Context keys set by the auth middlewares
const (
	ContextUserID  = "userID"
	ContextEmail   = "email"
	ContextIsAdmin = "isAdmin"
)

// extractToken reads a Bearer token from the Authorization header.
// allowQuery also accepts the token query parameter, for WebSocket handshakes
// where browsers cannot set headers.
func extractToken(c *gin.Context, allowQuery bool) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		if token := c.Query("token"); allowQuery && token != "" {
			return token, nil
		}
		return "", errors.New("missing authorization header")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errors.New("invalid authorization header format")
	}
	return parts[1], nil
}

func setClaims(c *gin.Context, claims *jwt.Claims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextEmail, claims.Email)
	c.Set(ContextIsAdmin, claims.IsAdmin)
}

// JWTAuth JWT authentication middleware
func JWTAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return requireToken(jwtManager, false)
}

// WSAuth is JWTAuth for the WebSocket upgrade, also accepting ?token=
func WSAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return requireToken(jwtManager, true)
}

func requireToken(jwtManager *jwt.Manager, allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := extractToken(c, allowQuery)
		if err != nil {
			common.ErrorResponse(c, http.StatusUnauthorized, err.Error(), nil)
			return
		}

		claims, err := jwtManager.VerifyToken(tokenString)
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				common.ErrorResponse(c, http.StatusUnauthorized, "Token expired", err)
			} else {
				common.ErrorResponse(c, http.StatusUnauthorized, "Invalid token", err)
			}
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalJWTAuth sets the user when a valid token is present and continues anonymously otherwise
func OptionalJWTAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString, err := extractToken(c, false); err == nil {
			if claims, err := jwtManager.VerifyToken(tokenString); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// GetUserID extracts user ID from context (0 when anonymous)
func GetUserID(c *gin.Context) uint64 {
	userID, exists := c.Get(ContextUserID)
	if !exists {
		return 0
	}
	if id, ok := userID.(uint64); ok {
		return id
	}
	return 0
}

// GetViewerID is GetUserID as a pointer, nil when anonymous
func GetViewerID(c *gin.Context) *uint64 {
	if id := GetUserID(c); id != 0 {
		return &id
	}
	return nil
}

// GetEmail extracts the signed-in email from context
func GetEmail(c *gin.Context) string {
	return c.GetString(ContextEmail)
}

// IsAdmin reports whether the signed-in user carries the admin flag
func IsAdmin(c *gin.Context) bool {
	return c.GetBool(ContextIsAdmin)
}
