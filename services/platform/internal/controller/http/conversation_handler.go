package http

import (
	"net/http"

	"fanvault/pkg/logger"
	"fanvault/services/platform/internal/usecase"

	"github.com/gin-gonic/gin"
)

type ConversationHandler struct {
	messagingUseCase usecase.MessagingUseCase
	logger           *logger.Logger
}

func NewConversationHandler(messagingUseCase usecase.MessagingUseCase, logger *logger.Logger) *ConversationHandler {
	return &ConversationHandler{
		messagingUseCase: messagingUseCase,
		logger:           logger,
	}
}

type StartConversationRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// ListConversations godoc
// @Summary      List conversations
// @Description  The caller's conversations, most recent activity first
// @Tags         conversations
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   entity.Conversation
// @Router       /conversations [get]
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	convs, err := h.messagingUseCase.ListConversations(c.Request.Context(), viewerID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, convs)
}

// StartConversation godoc
// @Summary      Start conversation
// @Description  Returns the existing conversation with the user or opens a new one
// @Tags         conversations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body StartConversationRequest true "Other participant"
// @Success      200  {object}  entity.Conversation
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /conversations [post]
func (h *ConversationHandler) StartConversation(c *gin.Context) {
	var req StartConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	conv, err := h.messagingUseCase.StartConversation(c.Request.Context(), viewerID(c), req.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, conv)
}

// ListMessages godoc
// @Summary      List messages
// @Description  Latest messages in chronological order; marks the other side's messages read
// @Tags         conversations
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Conversation ID"
// @Param        limit query int false "Limit" default(50)
// @Success      200  {array}   entity.Message
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /conversations/{id}/messages [get]
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	msgs, err := h.messagingUseCase.ListMessages(c.Request.Context(), viewerID(c), c.Param("id"), queryInt(c, "limit", 0))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, msgs)
}

// SendMessage godoc
// @Summary      Send message
// @Tags         conversations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Conversation ID"
// @Param        request body SendMessageRequest true "Message"
// @Success      201  {object}  entity.Message
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /conversations/{id}/messages [post]
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	msg, err := h.messagingUseCase.SendMessage(c.Request.Context(), viewerID(c), c.Param("id"), req.Content)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}
