package server

import (
	"github.com/nazirsaif/nexus-sub000/internal/config"
	"github.com/nazirsaif/nexus-sub000/internal/middleware"

	"github.com/gin-gonic/gin"
)

func setupRouter(cfg *config.Config, h *Handlers, s *Services) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())
	r.SetTrustedProxies(nil)

	api := r.Group("/api")

	// Public auth routes
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/verify-otp", h.Auth.VerifyOTP)
		auth.POST("/resend-otp", h.Auth.ResendOTP)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", h.Auth.Logout)
		auth.GET("/verify-email", h.Auth.VerifyEmail)
	}

	// Stripe calls this; the signature header is the authentication.
	api.POST("/payments/webhook/stripe", h.Payment.StripeWebhook)

	// Everything else requires a valid access token
	protected := api.Group("")
	protected.Use(middleware.RequireAuth(s.Tokens))

	protected.GET("/auth/me", h.Auth.Me)
	protected.POST("/auth/enable-2fa", h.Auth.EnableTwoFactor)
	protected.POST("/auth/disable-2fa", h.Auth.DisableTwoFactor)

	users := protected.Group("/users")
	{
		users.GET("", h.User.List)
		users.GET("/:id", h.User.Get)
	}

	profile := protected.Group("/profile")
	{
		profile.GET("/me", h.Profile.Me)
		profile.PUT("/me", h.Profile.Update)
		profile.GET("/:userId", h.Profile.Get)
	}

	meetings := protected.Group("/meetings")
	{
		meetings.POST("", h.Meeting.Create)
		meetings.GET("", h.Meeting.List)
		meetings.GET("/:id", h.Meeting.Get)
		meetings.PUT("/:id", h.Meeting.Update)
		meetings.POST("/:id/respond", h.Meeting.Respond)
		meetings.DELETE("/:id", h.Meeting.Cancel)
	}

	documents := protected.Group("/documents")
	{
		documents.POST("", h.Document.Upload)
		documents.GET("", h.Document.List)
		documents.GET("/:id", h.Document.Get)
		documents.GET("/:id/download", h.Document.Download)
		documents.POST("/:id/share", h.Document.Share)
		documents.DELETE("/:id/share/:userId", h.Document.Unshare)
		documents.POST("/:id/sign", h.Document.Sign)
		documents.DELETE("/:id", h.Document.Delete)
	}

	payments := protected.Group("/payments")
	{
		payments.POST("/deposit", h.Payment.Deposit)
		payments.POST("/withdraw", h.Payment.Withdraw)
		payments.POST("/transfer", h.Payment.Transfer)
		payments.GET("", h.Payment.List)
		payments.GET("/balance", h.Payment.Balance)
		payments.POST("/:id/cancel", h.Payment.Cancel)
	}

	calls := protected.Group("/video-calls")
	{
		calls.POST("", h.VideoCall.Create)
		calls.GET("", h.VideoCall.List)
		calls.GET("/:id", h.VideoCall.Get)
		calls.DELETE("/:id", h.VideoCall.End)
	}

	// Signaling socket; auth happens in the handler via query token.
	r.GET("/ws/calls/:roomId", h.Signaling.Serve)

	return r
}
