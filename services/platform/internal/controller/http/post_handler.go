package http

import (
	"net/http"
	"strings"

	"fanvault/pkg/logger"
	"fanvault/services/platform/internal/entity"
	"fanvault/services/platform/internal/usecase"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	contentUseCase    usecase.ContentUseCase
	membershipUseCase usecase.MembershipUseCase
	logger            *logger.Logger
}

func NewPostHandler(contentUseCase usecase.ContentUseCase, membershipUseCase usecase.MembershipUseCase, logger *logger.Logger) *PostHandler {
	return &PostHandler{
		contentUseCase:    contentUseCase,
		membershipUseCase: membershipUseCase,
		logger:            logger,
	}
}

type CreatePostRequest struct {
	Title      string `form:"title" json:"title" binding:"required"`
	Content    string `form:"content" json:"content"`
	Visibility string `form:"visibility" json:"visibility"`
	Price      int64  `form:"price" json:"price"`
	Published  *bool  `form:"published" json:"published"`
}

type UpdatePostRequest struct {
	Title      *string            `json:"title"`
	Content    *string            `json:"content"`
	Visibility *entity.Visibility `json:"visibility"`
	Price      *int64             `json:"price"`
	Published  *bool              `json:"published"`
}

// ListPosts godoc
// @Summary      List posts
// @Description  Every post, newest first, redacted for the caller where access is missing
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   entity.PostView
// @Router       /posts [get]
func (h *PostHandler) ListPosts(c *gin.Context) {
	posts, err := h.contentUseCase.ListPosts(c.Request.Context(), viewerID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, posts)
}

// GetPost godoc
// @Summary      Get post by ID
// @Description  Returns the full post or its locked preview, never an access error
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      200  {object}  entity.PostView
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id} [get]
func (h *PostHandler) GetPost(c *gin.Context) {
	post, err := h.contentUseCase.GetPost(c.Request.Context(), c.Param("id"), viewerID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// CreatePost godoc
// @Summary      Create a new post
// @Description  Create a post, optionally with one image or video file uploaded to S3
// @Tags         posts
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        title formData string true "Post title"
// @Param        content formData string false "Post body"
// @Param        visibility formData string false "Visibility" Enums(public, members, ppv)
// @Param        price formData int false "Unlock price in cents, ppv only"
// @Param        published formData bool false "Published" default(true)
// @Param        media formData file false "Image or video file"
// @Success      201  {object}  entity.Post
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /posts [post]
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}

	input := usecase.PostInput{
		Title:      req.Title,
		Visibility: entity.Visibility(strings.ToLower(req.Visibility)),
		Price:      req.Price,
		Published:  req.Published == nil || *req.Published,
	}
	if req.Content != "" {
		input.Content = &req.Content
	}

	var media *usecase.MediaUpload
	if header, err := c.FormFile("media"); err == nil {
		file, err := header.Open()
		if err != nil {
			badRequest(c, err)
			return
		}
		defer file.Close()

		media = &usecase.MediaUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Body:        file,
		}
	}

	post, err := h.contentUseCase.CreatePost(c.Request.Context(), viewerID(c), input, media)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, post)
}

// UpdatePost godoc
// @Summary      Update post
// @Description  Update a post owned by the caller
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Param        request body UpdatePostRequest true "Post changes"
// @Success      200  {object}  entity.Post
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id} [patch]
func (h *PostHandler) UpdatePost(c *gin.Context) {
	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	post, err := h.contentUseCase.UpdatePost(c.Request.Context(), viewerID(c), c.Param("id"), usecase.PostPatch{
		Title:      req.Title,
		Content:    req.Content,
		Visibility: req.Visibility,
		Price:      req.Price,
		Published:  req.Published,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// DeletePost godoc
// @Summary      Delete post
// @Description  Delete a post owned by the caller with its comments and likes
// @Tags         posts
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      204
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id} [delete]
func (h *PostHandler) DeletePost(c *gin.Context) {
	if err := h.contentUseCase.DeletePost(c.Request.Context(), viewerID(c), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// LikePost godoc
// @Summary      Like or unlike post
// @Description  Toggle the caller's like on a post
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      200  {object}  usecase.LikeResult
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id}/like [post]
func (h *PostHandler) LikePost(c *gin.Context) {
	result, err := h.contentUseCase.LikePost(c.Request.Context(), viewerID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UnlockPost godoc
// @Summary      Unlock pay-per-view post
// @Description  Pay the post's price once for permanent access
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Post ID"
// @Success      201  {object}  usecase.UnlockResult
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /posts/{id}/unlock [post]
func (h *PostHandler) UnlockPost(c *gin.Context) {
	result, err := h.membershipUseCase.UnlockPost(c.Request.Context(), viewerID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}
