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

// MessageHandler handles buyer/seller conversations
type MessageHandler struct {
	service service.MessageService
}

// NewMessageHandler creates a new MessageHandler
func NewMessageHandler(service service.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

// StartConversation handles POST /api/v1/conversations
// @Summary Open the conversation about a listing
// @Description Returns the caller's existing conversation for the listing, or creates it.
// @Tags messages
// @Accept json
// @Produce json
// @Param request body domain.StartConversationRequest true "Listing"
// @Success 200 {object} common.APIResponse{data=domain.ConversationResponse}
// @Failure 400 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Failure 409 {object} common.APIResponse
// @Security BearerAuth
// @Router /conversations [post]
func (h *MessageHandler) StartConversation(c *gin.Context) {
	var req domain.StartConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	conv, err := h.service.FindOrCreateConversation(c.Request.Context(), req.ListingID, middleware.GetUserID(c))
	if err != nil {
		common.ServiceError(c, err, "Failed to open conversation")
		return
	}
	common.SuccessResponse(c, conv, nil)
}

// ListConversations handles GET /api/v1/conversations
// @Summary Inbox
// @Tags messages
// @Produce json
// @Success 200 {object} common.APIResponse{data=[]domain.ConversationResponse}
// @Security BearerAuth
// @Router /conversations [get]
func (h *MessageHandler) ListConversations(c *gin.Context) {
	convs, err := h.service.ListConversations(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		common.ServiceError(c, err, "Failed to load conversations")
		return
	}
	common.SuccessResponse(c, convs, nil)
}

// GetConversation handles GET /api/v1/conversations/:id
// @Summary Conversation detail
// @Tags messages
// @Produce json
// @Param id path int true "Conversation ID"
// @Success 200 {object} common.APIResponse{data=domain.ConversationResponse}
// @Failure 403 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Security BearerAuth
// @Router /conversations/{id} [get]
func (h *MessageHandler) GetConversation(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	conv, err := h.service.GetConversation(c.Request.Context(), id, middleware.GetUserID(c))
	if err != nil {
		common.ServiceError(c, err, "Failed to load conversation")
		return
	}
	common.SuccessResponse(c, conv, nil)
}

// ListMessages handles GET /api/v1/conversations/:id/messages
// @Summary Messages, oldest first
// @Tags messages
// @Produce json
// @Param id path int true "Conversation ID"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(50)
// @Success 200 {object} common.APIResponse{data=[]domain.MessageResponse}
// @Failure 403 {object} common.APIResponse
// @Security BearerAuth
// @Router /conversations/{id}/messages [get]
func (h *MessageHandler) ListMessages(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	page := ginutil.QueryInt(c, "page", 1)
	limit := ginutil.QueryInt(c, "limit", service.DefaultMessagePageSize)

	msgs, meta, err := h.service.ListMessages(c.Request.Context(), id, middleware.GetUserID(c), page, limit)
	if err != nil {
		common.ServiceError(c, err, "Failed to load messages")
		return
	}
	common.SuccessResponse(c, msgs, meta)
}

// SendMessage handles POST /api/v1/conversations/:id/messages
// @Summary Send a message
// @Tags messages
// @Accept json
// @Produce json
// @Param id path int true "Conversation ID"
// @Param request body domain.SendMessageRequest true "Message"
// @Success 201 {object} common.APIResponse{data=domain.MessageResponse}
// @Failure 400 {object} common.APIResponse
// @Failure 403 {object} common.APIResponse
// @Failure 429 {object} common.APIResponse
// @Security BearerAuth
// @Router /conversations/{id}/messages [post]
func (h *MessageHandler) SendMessage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req domain.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	msg, err := h.service.SendMessage(c.Request.Context(), id, middleware.GetUserID(c), req.Text)
	if err != nil {
		common.ServiceError(c, err, "Failed to send message")
		return
	}
	middleware.CountMessageSent()
	common.CreatedResponse(c, msg)
}

// MarkRead handles POST /api/v1/conversations/:id/read
// @Summary Mark the conversation read
// @Tags messages
// @Produce json
// @Param id path int true "Conversation ID"
// @Success 200 {object} common.APIResponse
// @Failure 403 {object} common.APIResponse
// @Security BearerAuth
// @Router /conversations/{id}/read [post]
func (h *MessageHandler) MarkRead(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.service.MarkRead(c.Request.Context(), id, middleware.GetUserID(c)); err != nil {
		common.ServiceError(c, err, "Failed to mark conversation read")
		return
	}
	common.SuccessResponse(c, gin.H{"conversation_id": id, "unread_count": 0}, nil)
}
