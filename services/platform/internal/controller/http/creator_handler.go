package http

import (
	"net/http"

	"fanvault/pkg/logger"
	"fanvault/services/platform/internal/entity"
	"fanvault/services/platform/internal/usecase"

	"github.com/gin-gonic/gin"
)

type CreatorHandler struct {
	creatorUseCase usecase.CreatorUseCase
	contentUseCase usecase.ContentUseCase
	logger         *logger.Logger
}

func NewCreatorHandler(creatorUseCase usecase.CreatorUseCase, contentUseCase usecase.ContentUseCase, logger *logger.Logger) *CreatorHandler {
	return &CreatorHandler{
		creatorUseCase: creatorUseCase,
		contentUseCase: contentUseCase,
		logger:         logger,
	}
}

type BecomeCreatorRequest struct {
	Handle      string        `json:"handle" binding:"required"`
	DisplayName string        `json:"display_name"`
	Bio         string        `json:"bio"`
	FandomName  string        `json:"fandom_name"`
	Tiers       []entity.Tier `json:"tiers"`
}

type UpdateCreatorRequest struct {
	DisplayName *string       `json:"display_name"`
	Bio         *string       `json:"bio"`
	FandomName  *string       `json:"fandom_name"`
	Tiers       []entity.Tier `json:"tiers"`
}

// BecomeCreator godoc
// @Summary      Become a creator
// @Description  Open a creator profile for the caller and switch their role to creator
// @Tags         creators
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body BecomeCreatorRequest true "Creator profile"
// @Success      201  {object}  entity.Creator
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /creators [post]
func (h *CreatorHandler) BecomeCreator(c *gin.Context) {
	var req BecomeCreatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	creator, err := h.creatorUseCase.BecomeCreator(c.Request.Context(), viewerID(c), usecase.CreatorInput{
		Handle:      req.Handle,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		FandomName:  req.FandomName,
		Tiers:       req.Tiers,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, creator)
}

// ListCreators godoc
// @Summary      List creators
// @Tags         creators
// @Produce      json
// @Param        limit query int false "Limit" default(20)
// @Param        offset query int false "Offset" default(0)
// @Success      200  {array}   entity.Creator
// @Router       /creators [get]
func (h *CreatorHandler) ListCreators(c *gin.Context) {
	creators, err := h.creatorUseCase.ListCreators(c.Request.Context(), queryInt(c, "limit", 20), queryInt(c, "offset", 0))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, creators)
}

// GetCreator godoc
// @Summary      Get creator by handle
// @Tags         creators
// @Produce      json
// @Param        handle path string true "Creator handle"
// @Success      200  {object}  entity.Creator
// @Failure      404  {object}  ErrorResponse
// @Router       /creators/{handle} [get]
func (h *CreatorHandler) GetCreator(c *gin.Context) {
	creator, err := h.creatorUseCase.GetCreatorByHandle(c.Request.Context(), c.Param("handle"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, creator)
}

// GetCreatorPosts godoc
// @Summary      List a creator's posts
// @Description  Posts are redacted for viewers without access
// @Tags         creators
// @Produce      json
// @Param        handle path string true "Creator handle"
// @Success      200  {array}   entity.PostView
// @Failure      404  {object}  ErrorResponse
// @Router       /creators/{handle}/posts [get]
func (h *CreatorHandler) GetCreatorPosts(c *gin.Context) {
	ctx := c.Request.Context()

	creator, err := h.creatorUseCase.GetCreatorByHandle(ctx, c.Param("handle"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	posts, err := h.contentUseCase.ListCreatorPosts(ctx, creator.ID, viewerID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, posts)
}

// UpdateMe godoc
// @Summary      Update own creator profile
// @Tags         creators
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdateCreatorRequest true "Profile changes"
// @Success      200  {object}  entity.Creator
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /creators/me [patch]
func (h *CreatorHandler) UpdateMe(c *gin.Context) {
	var req UpdateCreatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	creator, err := h.creatorUseCase.UpdateCreator(c.Request.Context(), viewerID(c), usecase.CreatorPatch{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		FandomName:  req.FandomName,
		Tiers:       req.Tiers,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, creator)
}

// GetEarnings godoc
// @Summary      Earnings summary
// @Description  Earnings broken down into tips and subscriptions, with the active subscriber count
// @Tags         creators
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  usecase.EarningsSummary
// @Failure      403  {object}  ErrorResponse
// @Router       /creators/me/earnings [get]
func (h *CreatorHandler) GetEarnings(c *gin.Context) {
	summary, err := h.creatorUseCase.GetEarnings(c.Request.Context(), viewerID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetActivity godoc
// @Summary      Recent activity
// @Description  Subscriptions, renewals, tips and unlocks recorded for the caller's creator profile, newest first
// @Tags         creators
// @Produce      json
// @Security     BearerAuth
// @Param        limit query int false "Limit" default(20)
// @Success      200  {array}   notifier.Activity
// @Failure      403  {object}  ErrorResponse
// @Router       /creators/me/activity [get]
func (h *CreatorHandler) GetActivity(c *gin.Context) {
	activities, err := h.creatorUseCase.GetActivity(c.Request.Context(), viewerID(c), queryInt(c, "limit", 20))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, activities)
}
