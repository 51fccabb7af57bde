package http

import (
	"net/http"

	"fanvault/pkg/logger"
	"fanvault/services/platform/internal/entity"
	"fanvault/services/platform/internal/usecase"

	"github.com/gin-gonic/gin"
)

type CommentHandler struct {
	commentUseCase usecase.CommentUseCase
	logger         *logger.Logger
}

func NewCommentHandler(commentUseCase usecase.CommentUseCase, logger *logger.Logger) *CommentHandler {
	return &CommentHandler{
		commentUseCase: commentUseCase,
		logger:         logger,
	}
}

type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

type VoteRequest struct {
	VoteType entity.VoteType `json:"vote_type" binding:"required,oneof=upvote downvote"`
}

type HideRequest struct {
	Hidden *bool `json:"hidden"`
}

// ListComments godoc
// @Summary      List comments
// @Description  Hidden comments are only visible to the post's creator
// @Tags         comments
// @Produce      json
// @Param        id path string true "Post ID"
// @Success      200  {array}   entity.Comment
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id}/comments [get]
func (h *CommentHandler) ListComments(c *gin.Context) {
	comments, err := h.commentUseCase.ListComments(c.Request.Context(), viewerID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, comments)
}

// CreateComment godoc
// @Summary      Comment on post
// @Description  Requires the same access as viewing the post
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Param        request body CreateCommentRequest true "Comment"
// @Success      201  {object}  entity.Comment
// @Failure      400  {object}  ErrorResponse
// @Failure      402  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /posts/{id}/comments [post]
func (h *CommentHandler) CreateComment(c *gin.Context) {
	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	comment, err := h.commentUseCase.CreateComment(c.Request.Context(), viewerID(c), c.Param("id"), req.Content)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// VoteComment godoc
// @Summary      Vote on comment
// @Description  Repeating a vote removes it, the opposite vote replaces it
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Comment ID"
// @Param        request body VoteRequest true "Vote"
// @Success      200  {object}  usecase.VoteResult
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /comments/{id}/vote [post]
func (h *CommentHandler) VoteComment(c *gin.Context) {
	var req VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.commentUseCase.VoteComment(c.Request.Context(), viewerID(c), c.Param("id"), req.VoteType)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// HideComment godoc
// @Summary      Hide or unhide comment
// @Description  Only the post's creator can moderate. Hides by default.
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Comment ID"
// @Param        request body HideRequest false "Hidden flag"
// @Success      200  {object}  entity.Comment
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /comments/{id}/hide [post]
func (h *CommentHandler) HideComment(c *gin.Context) {
	var req HideRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	hidden := req.Hidden == nil || *req.Hidden

	comment, err := h.commentUseCase.HideComment(c.Request.Context(), viewerID(c), c.Param("id"), hidden)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, comment)
}

// DeleteComment godoc
// @Summary      Delete comment
// @Description  Allowed for the author and the post's creator
// @Tags         comments
// @Security     BearerAuth
// @Param        id path string true "Comment ID"
// @Success      204
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /comments/{id} [delete]
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	if err := h.commentUseCase.DeleteComment(c.Request.Context(), viewerID(c), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
