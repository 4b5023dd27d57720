package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/titanmarket/titanmarket-backend/internal/common"
	"github.com/titanmarket/titanmarket-backend/internal/domain"
	"github.com/titanmarket/titanmarket-backend/internal/middleware"
	"github.com/titanmarket/titanmarket-backend/internal/repository"
	"github.com/titanmarket/titanmarket-backend/internal/service"
	"github.com/titanmarket/titanmarket-backend/pkg/ginutil"
)

// ListingHandler handles marketplace listing requests
type ListingHandler struct {
	service service.ListingService
}

// NewListingHandler creates a new ListingHandler
func NewListingHandler(service service.ListingService) *ListingHandler {
	return &ListingHandler{service: service}
}

// Browse handles GET /api/v1/listings
// @Summary Browse listings
// @Tags listings
// @Produce json
// @Param q query string false "Keyword"
// @Param category query string false "Category"
// @Param condition query string false "Condition"
// @Param status query string false "active (default) or sold"
// @Param seller_id query int false "Seller ID"
// @Param min_price query number false "Minimum price"
// @Param max_price query number false "Maximum price"
// @Param location query string false "Location contains"
// @Param sort query string false "newest, price_asc, price_desc, views"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(20)
// @Success 200 {object} common.APIResponse{data=[]domain.ListingListResponse}
// @Failure 400 {object} common.APIResponse
// @Router /listings [get]
func (h *ListingHandler) Browse(c *gin.Context) {
	params := &repository.ListingListParams{
		SellerID: ginutil.QueryUint64(c, "seller_id"),
		MinPrice: ginutil.QueryFloat(c, "min_price"),
		MaxPrice: ginutil.QueryFloat(c, "max_price"),
		Location: c.Query("location"),
		Keyword:  c.Query("q"),
		Sort:     c.Query("sort"),
		Page:     ginutil.QueryInt(c, "page", 1),
		Limit:    ginutil.QueryInt(c, "limit", service.DefaultPageSize),
	}
	if v := c.Query("category"); v != "" {
		category := domain.Category(v)
		params.Category = &category
	}
	if v := c.Query("condition"); v != "" {
		condition := domain.Condition(v)
		params.Condition = &condition
	}
	status := domain.ListingStatusActive
	if v := c.Query("status"); v != "" {
		status = domain.ListingStatus(v)
	}
	params.Status = &status

	items, meta, err := h.service.Browse(c.Request.Context(), params)
	if err != nil {
		common.ServiceError(c, err, "Failed to browse listings")
		return
	}
	common.SuccessResponse(c, items, meta)
}

// Get handles GET /api/v1/listings/:id
// @Summary Listing detail
// @Tags listings
// @Produce json
// @Param id path int true "Listing ID"
// @Success 200 {object} common.APIResponse{data=domain.ListingResponse}
// @Failure 404 {object} common.APIResponse
// @Router /listings/{id} [get]
func (h *ListingHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	listing, err := h.service.Get(c.Request.Context(), id, middleware.GetViewerID(c))
	if err != nil {
		common.ServiceError(c, err, "Failed to load listing")
		return
	}
	common.SuccessResponse(c, listing, nil)
}

// Create handles POST /api/v1/listings
// @Summary Create a listing
// @Tags listings
// @Accept json
// @Produce json
// @Param request body domain.CreateListingRequest true "Listing"
// @Success 201 {object} common.APIResponse{data=domain.ListingResponse}
// @Failure 400 {object} common.APIResponse
// @Security BearerAuth
// @Router /listings [post]
func (h *ListingHandler) Create(c *gin.Context) {
	var req domain.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	listing, err := h.service.Create(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		common.ServiceError(c, err, "Failed to create listing")
		return
	}
	middleware.CountListingCreated(string(listing.Category))
	common.CreatedResponse(c, listing)
}

// Update handles PUT /api/v1/listings/:id
// @Summary Edit a listing
// @Description Seller only. The listing id and seller never change.
// @Tags listings
// @Accept json
// @Produce json
// @Param id path int true "Listing ID"
// @Param request body domain.UpdateListingRequest true "Changed fields"
// @Success 200 {object} common.APIResponse{data=domain.ListingResponse}
// @Failure 403 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Security BearerAuth
// @Router /listings/{id} [put]
func (h *ListingHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req domain.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	listing, err := h.service.Update(c.Request.Context(), id, middleware.GetUserID(c), &req)
	if err != nil {
		common.ServiceError(c, err, "Failed to update listing")
		return
	}
	common.SuccessResponse(c, listing, nil)
}

// UpdateStatus handles PATCH /api/v1/listings/:id/status
// @Summary Mark a listing sold or active
// @Tags listings
// @Accept json
// @Produce json
// @Param id path int true "Listing ID"
// @Param request body domain.UpdateListingStatusRequest true "New status"
// @Success 200 {object} common.APIResponse{data=domain.ListingResponse}
// @Failure 403 {object} common.APIResponse
// @Security BearerAuth
// @Router /listings/{id}/status [patch]
func (h *ListingHandler) UpdateStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req domain.UpdateListingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	listing, err := h.service.UpdateStatus(c.Request.Context(), id, middleware.GetUserID(c), req.Status)
	if err != nil {
		common.ServiceError(c, err, "Failed to update listing status")
		return
	}
	common.SuccessResponse(c, listing, nil)
}

// ListBySeller handles GET /api/v1/users/:id/listings
// @Summary A seller's active listings
// @Tags listings
// @Produce json
// @Param id path int true "Seller ID"
// @Success 200 {object} common.APIResponse{data=[]domain.ListingListResponse}
// @Router /users/{id}/listings [get]
func (h *ListingHandler) ListBySeller(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	items, err := h.service.ListBySeller(c.Request.Context(), id, true)
	if err != nil {
		common.ServiceError(c, err, "Failed to load listings")
		return
	}
	common.SuccessResponse(c, items, nil)
}

// ListMine handles GET /api/v1/me/listings
// @Summary Own listings, sold included
// @Tags listings
// @Produce json
// @Success 200 {object} common.APIResponse{data=[]domain.ListingListResponse}
// @Security BearerAuth
// @Router /me/listings [get]
func (h *ListingHandler) ListMine(c *gin.Context) {
	items, err := h.service.ListMine(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		common.ServiceError(c, err, "Failed to load listings")
		return
	}
	common.SuccessResponse(c, items, nil)
}

// UploadImage handles POST /api/v1/listings/images
// @Summary Upload a listing image
// @Description Returns the URL to include in the listing's images when creating or editing it
// @Tags listings
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image (jpeg, png, gif, webp)"
// @Success 201 {object} common.APIResponse{data=service.MediaUploadResult}
// @Failure 413 {object} common.APIResponse
// @Failure 503 {object} common.APIResponse
// @Security BearerAuth
// @Router /listings/images [post]
func (h *ListingHandler) UploadImage(c *gin.Context) {
	file, closer, ok := formImage(c)
	if !ok {
		return
	}
	defer closer.Close()

	result, err := h.service.UploadImage(c.Request.Context(), middleware.GetUserID(c), file)
	if err != nil {
		common.ServiceError(c, err, "Failed to upload image")
		return
	}
	common.CreatedResponse(c, result)
}
