package http

import (
	"net/http"

	"fanvault/pkg/logger"
	"fanvault/services/platform/internal/usecase"

	"github.com/gin-gonic/gin"
)

type SubscriptionHandler struct {
	membershipUseCase usecase.MembershipUseCase
	logger            *logger.Logger
}

func NewSubscriptionHandler(membershipUseCase usecase.MembershipUseCase, logger *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		membershipUseCase: membershipUseCase,
		logger:            logger,
	}
}

type SubscribeRequest struct {
	CreatorID string `json:"creator_id" binding:"required"`
	TierID    string `json:"tier_id"`
	Amount    int64  `json:"amount" binding:"required"`
}

type RenewRequest struct {
	Days int `json:"days"`
}

type TipRequest struct {
	CreatorID *string `json:"creator_id"`
	PostID    *string `json:"post_id"`
	Amount    int64   `json:"amount" binding:"required"`
	Message   string  `json:"message"`
}

// Status godoc
// @Summary      Subscription status
// @Description  Whether the caller currently subscribes to a creator, days left and fandom badge
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Param        creator_id path string true "Creator ID"
// @Success      200  {object}  usecase.SubscriptionStatus
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /subscriptions/status/{creator_id} [get]
func (h *SubscriptionHandler) Status(c *gin.Context) {
	status, err := h.membershipUseCase.CheckSubscriptionStatus(c.Request.Context(), viewerID(c), c.Param("creator_id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// Subscribe godoc
// @Summary      Subscribe to creator
// @Description  Start a 30 day subscription
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body SubscribeRequest true "Subscription"
// @Success      201  {object}  entity.Subscription
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /subscriptions [post]
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	sub, err := h.membershipUseCase.Subscribe(c.Request.Context(), viewerID(c), req.CreatorID, req.TierID, req.Amount)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, sub)
}

// ListMine godoc
// @Summary      My subscriptions
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   entity.Subscription
// @Router       /subscriptions/me [get]
func (h *SubscriptionHandler) ListMine(c *gin.Context) {
	subs, err := h.membershipUseCase.ListSubscriptions(c.Request.Context(), viewerID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, subs)
}

// Renew godoc
// @Summary      Renew subscription
// @Description  Extend from the later of now and the current end date
// @Tags         subscriptions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Subscription ID"
// @Param        request body RenewRequest false "Days to add, default 30"
// @Success      200  {object}  entity.Subscription
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Router       /subscriptions/{id}/renew [post]
func (h *SubscriptionHandler) Renew(c *gin.Context) {
	var req RenewRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	sub, err := h.membershipUseCase.RenewSubscription(c.Request.Context(), viewerID(c), c.Param("id"), req.Days)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

// Cancel godoc
// @Summary      Cancel subscription
// @Tags         subscriptions
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Subscription ID"
// @Success      200  {object}  entity.Subscription
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /subscriptions/{id}/cancel [post]
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	sub, err := h.membershipUseCase.CancelSubscription(c.Request.Context(), viewerID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

// Tip godoc
// @Summary      Send a tip
// @Description  Tip a creator, optionally for a post. Tips without a creator accrue no earnings.
// @Tags         tips
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body TipRequest true "Tip"
// @Success      201  {object}  entity.Tip
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /tips [post]
func (h *SubscriptionHandler) Tip(c *gin.Context) {
	var req TipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	tip, err := h.membershipUseCase.Tip(c.Request.Context(), viewerID(c), usecase.TipInput{
		CreatorID: req.CreatorID,
		PostID:    req.PostID,
		Amount:    req.Amount,
		Message:   req.Message,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, tip)
}
