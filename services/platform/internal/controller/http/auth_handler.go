package http

import (
	"net/http"
	"time"

	"fanvault/pkg/logger"
	"fanvault/services/platform/internal/usecase"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUseCase usecase.AuthUseCase
	logger      *logger.Logger
}

func NewAuthHandler(authUseCase usecase.AuthUseCase, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
		logger:      logger,
	}
}

type RegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type WalletNonceRequest struct {
	Address string `json:"address" binding:"required"`
}

type WalletNonceResponse struct {
	Address   string `json:"address"`
	Nonce     string `json:"nonce"`
	Message   string `json:"message"`
	ExpiresAt string `json:"expires_at"`
}

type WalletVerifyRequest struct {
	Address   string `json:"address" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// Register godoc
// @Summary      Register a new user
// @Description  Create a supporter account and return a JWT
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration data"
// @Success      201  {object}  usecase.AuthResult
// @Failure      400  {object}  ErrorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.authUseCase.Register(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Login godoc
// @Summary      Login
// @Description  Exchange email and password for a JWT
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200  {object}  usecase.AuthResult
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.authUseCase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Me godoc
// @Summary      Current user
// @Description  Get the caller's user record and creator profile, if any
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  usecase.Profile
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	profile, err := h.authUseCase.GetProfile(c.Request.Context(), viewerID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// WalletNonce godoc
// @Summary      Request wallet nonce
// @Description  Issue a one-time message for the wallet to sign
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body WalletNonceRequest true "Wallet address"
// @Success      200  {object}  WalletNonceResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /auth/wallet/nonce [post]
func (h *AuthHandler) WalletNonce(c *gin.Context) {
	var req WalletNonceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	nonce, message, err := h.authUseCase.IssueWalletNonce(c.Request.Context(), viewerID(c), req.Address)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, WalletNonceResponse{
		Address:   nonce.Address,
		Nonce:     nonce.Nonce,
		Message:   message,
		ExpiresAt: nonce.ExpiresAt.Format(time.RFC3339),
	})
}

// WalletVerify godoc
// @Summary      Verify wallet
// @Description  Check the signed nonce and link the wallet to the caller
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body WalletVerifyRequest true "Signed nonce"
// @Success      200  {object}  entity.User
// @Failure      400  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /auth/wallet/verify [post]
func (h *AuthHandler) WalletVerify(c *gin.Context) {
	var req WalletVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.authUseCase.VerifyWallet(c.Request.Context(), viewerID(c), req.Address, req.Signature)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
