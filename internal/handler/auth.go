package handler

import (
	"net/http"

	"github.com/nazirsaif/nexus-sub000/internal/middleware"
	"github.com/nazirsaif/nexus-sub000/internal/model"
	"github.com/nazirsaif/nexus-sub000/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles registration, login and the token/OTP flows.
type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(err.Error(), ""))
		return
	}

	user, pair, err := h.auth.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, model.NewSuccessResponse("Registered", gin.H{
		"user":   user.ToResponse(),
		"tokens": pair,
	}))
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(err.Error(), ""))
		return
	}

	result, err := h.auth.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	if result.TwoFactorRequired {
		c.JSON(http.StatusOK, model.NewSuccessResponse("Verification code required", gin.H{
			"twoFactorRequired": true,
			"challengeId":       result.ChallengeID,
		}))
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("Logged in", gin.H{
		"user":   result.User.ToResponse(),
		"tokens": result.Tokens,
	}))
}

// VerifyOTP handles POST /api/auth/verify-otp
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req model.VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(err.Error(), ""))
		return
	}

	pair, user, err := h.auth.VerifyOTP(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("Logged in", gin.H{
		"user":   user.ToResponse(),
		"tokens": pair,
	}))
}

// ResendOTP handles POST /api/auth/resend-otp
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req model.ResendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(err.Error(), ""))
		return
	}
	if err := h.auth.ResendOTP(c.Request.Context(), req.ChallengeID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("Verification code sent", nil))
}

// Refresh handles POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req model.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(err.Error(), ""))
		return
	}
	pair, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("Token refreshed", gin.H{"tokens": pair}))
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	var req model.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(err.Error(), ""))
		return
	}
	if err := h.auth.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("Logged out", nil))
}

// VerifyEmail handles GET /api/auth/verify-email?token=
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	if err := h.auth.VerifyEmail(c.Request.Context(), c.Query("token")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("Email verified", nil))
}

// EnableTwoFactor handles POST /api/auth/enable-2fa
func (h *AuthHandler) EnableTwoFactor(c *gin.Context) {
	h.setTwoFactor(c, true)
}

// DisableTwoFactor handles POST /api/auth/disable-2fa
func (h *AuthHandler) DisableTwoFactor(c *gin.Context) {
	h.setTwoFactor(c, false)
}

func (h *AuthHandler) setTwoFactor(c *gin.Context, enabled bool) {
	if err := h.auth.SetTwoFactor(c.Request.Context(), middleware.UserID(c), enabled); err != nil {
		respondError(c, err)
		return
	}
	msg := "Two-factor authentication disabled"
	if enabled {
		msg = "Two-factor authentication enabled"
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse(msg, nil))
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.auth.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("OK", gin.H{
		"user":             user.ToResponse(),
		"balance":          user.Balance,
		"twoFactorEnabled": user.TwoFactorEnabled,
	}))
}
