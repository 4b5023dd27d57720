package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/titanmarket/titanmarket-backend/internal/common"
	"github.com/titanmarket/titanmarket-backend/internal/domain"
	"github.com/titanmarket/titanmarket-backend/internal/middleware"
	"github.com/titanmarket/titanmarket-backend/internal/service"
	"github.com/titanmarket/titanmarket-backend/pkg/ginutil"
)

// ReportHandler handles content reports
type ReportHandler struct {
	service service.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(service service.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// SubmitReport handles POST /api/v1/reports
// @Summary Report a user, listing or message
// @Description Exactly one of target_user_id, listing_id, message_id must be set
// @Tags reports
// @Accept json
// @Produce json
// @Param request body domain.SubmitReportRequest true "Report"
// @Success 201 {object} common.APIResponse{data=domain.ReportResponse}
// @Failure 400 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Security BearerAuth
// @Router /reports [post]
func (h *ReportHandler) SubmitReport(c *gin.Context) {
	var req domain.SubmitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	report, err := h.service.Submit(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		common.ServiceError(c, err, "Failed to submit report")
		return
	}
	middleware.CountReportSubmitted(string(report.Reason))
	common.CreatedResponse(c, report)
}

// ListMyReports handles GET /api/v1/me/reports
// @Summary Reports filed by the caller
// @Tags reports
// @Produce json
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} common.APIResponse{data=[]domain.ReportResponse}
// @Security BearerAuth
// @Router /me/reports [get]
func (h *ReportHandler) ListMyReports(c *gin.Context) {
	page := ginutil.QueryInt(c, "page", 1)
	limit := ginutil.QueryInt(c, "limit", service.DefaultPageSize)

	reports, meta, err := h.service.ListMine(c.Request.Context(), middleware.GetUserID(c), page, limit)
	if err != nil {
		common.ServiceError(c, err, "Failed to load reports")
		return
	}
	common.SuccessResponse(c, reports, meta)
}

// ListReports handles GET /api/v1/admin/reports
// @Summary All reports (admin only)
// @Tags reports
// @Produce json
// @Param status query string false "open, review, resolved"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} common.APIResponse{data=[]domain.ReportResponse}
// @Failure 401 {object} common.APIResponse
// @Failure 403 {object} common.APIResponse
// @Security BearerAuth
// @Router /admin/reports [get]
func (h *ReportHandler) ListReports(c *gin.Context) {
	var status *domain.ReportStatus
	if v := c.Query("status"); v != "" {
		s := domain.ReportStatus(v)
		status = &s
	}
	page := ginutil.QueryInt(c, "page", 1)
	limit := ginutil.QueryInt(c, "limit", service.DefaultPageSize)

	reports, meta, err := h.service.AdminList(c.Request.Context(), status, page, limit)
	if err != nil {
		common.ServiceError(c, err, "Failed to load reports")
		return
	}
	common.SuccessResponse(c, reports, meta)
}
