package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/titanmarket/titanmarket-backend/internal/common"
	"github.com/titanmarket/titanmarket-backend/internal/domain"
	"github.com/titanmarket/titanmarket-backend/internal/middleware"
	"github.com/titanmarket/titanmarket-backend/internal/service"
)

const oauthStateCookie = "oauth_state"

// AuthHandler handles authentication requests
type AuthHandler struct {
	service      service.AuthService
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service service.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		service:      service,
		secureCookie: secureCookie,
	}
}

// Register handles POST /api/v1/auth/register
// @Summary Register with a campus email
// @Tags auth
// @Accept json
// @Produce json
// @Param request body domain.RegisterRequest true "Registration form"
// @Success 201 {object} common.APIResponse{data=domain.TokenResponse}
// @Failure 400 {object} common.APIResponse
// @Failure 403 {object} common.APIResponse
// @Failure 409 {object} common.APIResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	resp, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		common.ServiceError(c, err, "Registration failed")
		return
	}
	common.CreatedResponse(c, resp)
}

// Login handles POST /api/v1/auth/login
// @Summary Sign in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body domain.LoginRequest true "Credentials"
// @Success 200 {object} common.APIResponse{data=domain.TokenResponse}
// @Failure 401 {object} common.APIResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	resp, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		common.ServiceError(c, err, "Login failed")
		return
	}
	common.SuccessResponse(c, resp, nil)
}

// RefreshToken handles POST /api/v1/auth/refresh
// @Summary Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body domain.RefreshRequest true "Refresh token"
// @Success 200 {object} common.APIResponse{data=domain.TokenResponse}
// @Failure 401 {object} common.APIResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req domain.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	resp, err := h.service.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		common.ServiceError(c, err, "Token refresh failed")
		return
	}
	common.SuccessResponse(c, resp, nil)
}

// GoogleSignIn handles POST /api/v1/auth/google
// @Summary Sign in with a Google ID token
// @Description The token must belong to a verified campus Google account. The user is created on first sign-in.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body domain.GoogleSignInRequest true "Google ID token"
// @Success 200 {object} common.APIResponse{data=domain.TokenResponse}
// @Failure 401 {object} common.APIResponse
// @Failure 403 {object} common.APIResponse
// @Failure 503 {object} common.APIResponse
// @Router /auth/google [post]
func (h *AuthHandler) GoogleSignIn(c *gin.Context) {
	var req domain.GoogleSignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	resp, err := h.service.GoogleSignIn(c.Request.Context(), req.IDToken)
	if err != nil {
		common.ServiceError(c, err, "Google sign-in failed")
		return
	}
	common.SuccessResponse(c, resp, nil)
}

// GoogleAuthURL handles GET /api/v1/auth/google/url
// @Summary Start the Google redirect flow
// @Tags auth
// @Produce json
// @Success 200 {object} common.APIResponse
// @Failure 503 {object} common.APIResponse
// @Router /auth/google/url [get]
func (h *AuthHandler) GoogleAuthURL(c *gin.Context) {
	state := uuid.New().String()
	url, err := h.service.GoogleAuthURL(state)
	if err != nil {
		common.ServiceError(c, err, "Google sign-in unavailable")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, 600, "/", "", h.secureCookie, true)
	common.SuccessResponse(c, gin.H{"url": url}, nil)
}

// GoogleCallback handles GET /api/v1/auth/google/callback
// @Summary Complete the Google redirect flow
// @Tags auth
// @Produce json
// @Param code query string true "Authorization code"
// @Param state query string true "State issued by /auth/google/url"
// @Success 200 {object} common.APIResponse{data=domain.TokenResponse}
// @Failure 400 {object} common.APIResponse
// @Failure 401 {object} common.APIResponse
// @Router /auth/google/callback [get]
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")
	expected, err := c.Cookie(oauthStateCookie)
	if err != nil || expected == "" || state != expected {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid OAuth state", nil)
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", h.secureCookie, true)
	if code == "" {
		common.ErrorResponse(c, http.StatusBadRequest, "Missing authorization code", nil)
		return
	}

	resp, err := h.service.GoogleCallback(c.Request.Context(), code)
	if err != nil {
		common.ServiceError(c, err, "Google sign-in failed")
		return
	}
	common.SuccessResponse(c, resp, nil)
}

// Me handles GET /api/v1/auth/me
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} common.APIResponse{data=domain.UserResponse}
// @Failure 401 {object} common.APIResponse
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.service.Me(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		common.ServiceError(c, err, "Failed to load user")
		return
	}
	common.SuccessResponse(c, user, nil)
}
