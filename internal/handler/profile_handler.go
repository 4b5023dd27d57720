package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/titanmarket/titanmarket-backend/internal/common"
	"github.com/titanmarket/titanmarket-backend/internal/domain"
	"github.com/titanmarket/titanmarket-backend/internal/middleware"
	"github.com/titanmarket/titanmarket-backend/internal/service"
)

// ProfileHandler handles profile requests
type ProfileHandler struct {
	service service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(service service.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// GetProfile handles GET /api/v1/users/:id
// @Summary Public profile
// @Description Profile page with the user's active listings
// @Tags profiles
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} common.APIResponse{data=domain.ProfileResponse}
// @Failure 404 {object} common.APIResponse
// @Router /users/{id} [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), id)
	if err != nil {
		common.ServiceError(c, err, "Failed to load profile")
		return
	}
	common.SuccessResponse(c, profile, nil)
}

// UpdateProfile handles PUT /api/v1/me/profile
// @Summary Edit own profile
// @Tags profiles
// @Accept json
// @Produce json
// @Param request body domain.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} common.APIResponse{data=domain.UserResponse}
// @Failure 400 {object} common.APIResponse
// @Security BearerAuth
// @Router /me/profile [put]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req domain.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		common.ServiceError(c, err, "Failed to update profile")
		return
	}
	common.SuccessResponse(c, user, nil)
}

// CompleteSetup handles POST /api/v1/me/setup
// @Summary First-run profile setup
// @Tags profiles
// @Accept json
// @Produce json
// @Param request body domain.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} common.APIResponse{data=domain.UserResponse}
// @Failure 400 {object} common.APIResponse
// @Security BearerAuth
// @Router /me/setup [post]
func (h *ProfileHandler) CompleteSetup(c *gin.Context) {
	var req domain.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, err := h.service.CompleteSetup(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		common.ServiceError(c, err, "Failed to complete setup")
		return
	}
	common.SuccessResponse(c, user, nil)
}

// UploadPhoto handles POST /api/v1/me/photo
// @Summary Upload a profile photo
// @Tags profiles
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image (jpeg, png, gif, webp)"
// @Success 200 {object} common.APIResponse{data=domain.UserResponse}
// @Failure 400 {object} common.APIResponse
// @Failure 413 {object} common.APIResponse
// @Failure 503 {object} common.APIResponse
// @Security BearerAuth
// @Router /me/photo [post]
func (h *ProfileHandler) UploadPhoto(c *gin.Context) {
	file, closer, ok := formImage(c)
	if !ok {
		return
	}
	defer closer.Close()

	user, err := h.service.UploadPhoto(c.Request.Context(), middleware.GetUserID(c), file)
	if err != nil {
		common.ServiceError(c, err, "Failed to upload photo")
		return
	}
	common.SuccessResponse(c, user, nil)
}
