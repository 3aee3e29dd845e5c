package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/nazirsaif/nexus-sub000/internal/config"
	"github.com/nazirsaif/nexus-sub000/internal/middleware"
	"github.com/nazirsaif/nexus-sub000/internal/model"
	"github.com/nazirsaif/nexus-sub000/internal/service"
	"github.com/nazirsaif/nexus-sub000/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

// Stripe caps webhook payloads at 64KB; anything larger is not ours.
const maxWebhookBody = 65536

// PaymentHandler serves wallet and transaction endpoints plus the Stripe
// webhook.
type PaymentHandler struct {
	payments      *service.PaymentService
	webhookSecret string
}

func NewPaymentHandler(payments *service.PaymentService, cfg *config.Config) *PaymentHandler {
	return &PaymentHandler{payments: payments, webhookSecret: cfg.Payment.StripeWebhookSecret}
}

// Deposit handles POST /api/payments/deposit
func (h *PaymentHandler) Deposit(c *gin.Context) {
	var req model.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(err.Error(), ""))
		return
	}
	tx, err := h.payments.Deposit(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.NewSuccessResponse("Deposit created", gin.H{"transaction": tx}))
}

// Withdraw handles POST /api/payments/withdraw
func (h *PaymentHandler) Withdraw(c *gin.Context) {
	var req model.AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(err.Error(), ""))
		return
	}
	tx, err := h.payments.Withdraw(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.NewSuccessResponse("Withdrawal created", gin.H{"transaction": tx}))
}

// Transfer handles POST /api/payments/transfer
func (h *PaymentHandler) Transfer(c *gin.Context) {
	var req model.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse(err.Error(), ""))
		return
	}
	tx, err := h.payments.Transfer(c.Request.Context(), middleware.UserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, model.NewSuccessResponse("Transfer completed", gin.H{"transaction": tx}))
}

// Cancel handles POST /api/payments/:id/cancel
func (h *PaymentHandler) Cancel(c *gin.Context) {
	id, err := util.ParseObjectID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse("Invalid transaction id", ""))
		return
	}
	tx, err := h.payments.Cancel(c.Request.Context(), id, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("Transaction cancelled", gin.H{"transaction": tx}))
}

// List handles GET /api/payments?page=&pageSize=
func (h *PaymentHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c)
	txs, err := h.payments.List(c.Request.Context(), middleware.UserID(c), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("OK", gin.H{"transactions": txs}))
}

// Balance handles GET /api/payments/balance
func (h *PaymentHandler) Balance(c *gin.Context) {
	balance, err := h.payments.Balance(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.NewSuccessResponse("OK", gin.H{"balance": balance}))
}

// StripeWebhook handles POST /api/payments/webhook/stripe. Unauthenticated;
// the signature header is the authentication.
func (h *PaymentHandler) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.NewErrorResponse("Failed to read webhook body", ""))
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		logrus.WithError(err).Warn("rejected stripe webhook")
		c.JSON(http.StatusBadRequest, model.NewErrorResponse("Invalid webhook signature", ""))
		return
	}

	switch event.Type {
	case "payment_intent.succeeded", "payment_intent.payment_failed":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			c.JSON(http.StatusBadRequest, model.NewErrorResponse("Malformed event payload", ""))
			return
		}
		if event.Type == "payment_intent.succeeded" {
			err = h.payments.CompleteStripeDeposit(c.Request.Context(), intent.ID)
		} else {
			reason := ""
			if intent.LastPaymentError != nil {
				reason = intent.LastPaymentError.Msg
			}
			err = h.payments.FailStripeDeposit(c.Request.Context(), intent.ID, reason)
		}
		if err != nil && !errors.Is(err, service.ErrNotFound) {
			logrus.WithError(err).WithField("intentId", intent.ID).Error("webhook settlement failed")
			c.JSON(http.StatusInternalServerError, model.NewErrorResponse("Settlement failed", ""))
			return
		}
	default:
		logrus.WithField("type", event.Type).Debug("ignoring stripe event")
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse("OK", nil))
}
