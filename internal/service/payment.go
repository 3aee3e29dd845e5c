package service

import (
	"context"
	"fmt"
	"time"

	"github.com/nazirsaif/nexus-sub000/internal/config"
	"github.com/nazirsaif/nexus-sub000/internal/model"
	"github.com/nazirsaif/nexus-sub000/internal/repository"
	"github.com/nazirsaif/nexus-sub000/pkg/timer"
	"github.com/nazirsaif/nexus-sub000/pkg/util"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentGateway creates payment intents with an external provider.
type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount int64, paymentMethodID, reference string) (string, error)
}

// PaymentService handles deposits, withdrawals and transfers over the
// transaction status machine pending -> completed | failed | cancelled.
// Internal deposits/withdrawals settle asynchronously via SettleDue;
// transfers settle inline.
type PaymentService struct {
	cfg     *config.Config
	txs     repository.ITransactionRepository
	users   repository.IUserRepository
	gateway PaymentGateway // nil when Stripe is not configured
}

func NewPaymentService(cfg *config.Config, txs repository.ITransactionRepository, users repository.IUserRepository, gateway PaymentGateway) *PaymentService {
	return &PaymentService{cfg: cfg, txs: txs, users: users, gateway: gateway}
}

// Deposit creates a pending deposit. With a payment method it goes through
// the Stripe gateway and settles on webhook; otherwise the settlement worker
// completes it after the configured delay.
func (s *PaymentService) Deposit(ctx context.Context, userID primitive.ObjectID, req *model.AmountRequest) (*model.Transaction, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	tx := &model.Transaction{
		UserID:    userID,
		Type:      model.TxDeposit,
		Amount:    req.Amount,
		Status:    model.TxPending,
		Reference: uuid.NewString(),
		Gateway:   model.GatewayInternal,
	}

	if req.PaymentMethodID != "" {
		if s.gateway == nil {
			return nil, fmt.Errorf("%w: card payments are not configured", ErrInvalidInput)
		}
		intentID, err := s.gateway.CreateIntent(ctx, req.Amount, req.PaymentMethodID, tx.Reference)
		if err != nil {
			return nil, fmt.Errorf("failed to create payment intent: %w", err)
		}
		tx.Gateway = model.GatewayStripe
		tx.PaymentIntentID = intentID
	}

	created, err := s.txs.Create(ctx, tx)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"txId":    created.ID.Hex(),
		"userId":  userID.Hex(),
		"amount":  created.Amount,
		"gateway": created.Gateway,
	}).Info("deposit created")
	return created, nil
}

// Withdraw holds the amount immediately and creates a pending withdrawal.
// Cancel or failure refunds the hold.
func (s *PaymentService) Withdraw(ctx context.Context, userID primitive.ObjectID, req *model.AmountRequest) (*model.Transaction, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	ok, err := s.users.Debit(ctx, userID, req.Amount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInsufficientFunds
	}

	created, err := s.txs.Create(ctx, &model.Transaction{
		UserID:    userID,
		Type:      model.TxWithdraw,
		Amount:    req.Amount,
		Status:    model.TxPending,
		Reference: uuid.NewString(),
		Gateway:   model.GatewayInternal,
	})
	if err != nil {
		// The hold is in place but the record failed; give the money back.
		if refundErr := s.users.Credit(ctx, userID, req.Amount); refundErr != nil {
			logrus.WithError(refundErr).WithField("userId", userID.Hex()).Error("failed to refund withdrawal hold")
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"txId":   created.ID.Hex(),
		"userId": userID.Hex(),
		"amount": created.Amount,
	}).Info("withdrawal created, amount held")
	return created, nil
}

// Transfer settles inline: check funds, debit sender, credit recipient.
func (s *PaymentService) Transfer(ctx context.Context, senderID primitive.ObjectID, req *model.TransferRequest) (*model.Transaction, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	recipientID, err := util.ParseObjectID(req.RecipientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if recipientID == senderID {
		return nil, fmt.Errorf("%w: cannot transfer to yourself", ErrInvalidInput)
	}
	recipient, err := s.users.FindByID(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	if recipient == nil {
		return nil, fmt.Errorf("%w: recipient does not exist", ErrInvalidInput)
	}

	ok, err := s.users.Debit(ctx, senderID, req.Amount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInsufficientFunds
	}
	if err := s.users.Credit(ctx, recipientID, req.Amount); err != nil {
		if refundErr := s.users.Credit(ctx, senderID, req.Amount); refundErr != nil {
			logrus.WithError(refundErr).WithField("userId", senderID.Hex()).Error("failed to refund transfer debit")
		}
		return nil, err
	}

	now := time.Now()
	created, err := s.txs.Create(ctx, &model.Transaction{
		UserID:         senderID,
		Type:           model.TxTransfer,
		Amount:         req.Amount,
		Status:         model.TxCompleted,
		Reference:      uuid.NewString(),
		Gateway:        model.GatewayInternal,
		CounterpartyID: recipientID,
		SettledAt:      now,
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"txId":        created.ID.Hex(),
		"senderId":    senderID.Hex(),
		"recipientId": recipientID.Hex(),
		"amount":      req.Amount,
	}).Info("transfer completed")
	return created, nil
}

// Cancel moves an owned pending transaction to cancelled; a cancelled
// withdrawal refunds its hold.
func (s *PaymentService) Cancel(ctx context.Context, txID, callerID primitive.ObjectID) (*model.Transaction, error) {
	tx, err := s.txs.FindByID(ctx, txID)
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, ErrNotFound
	}
	if tx.UserID != callerID {
		return nil, fmt.Errorf("%w: only the owner may cancel a transaction", ErrForbidden)
	}

	ok, err := s.txs.TransitionStatus(ctx, txID, model.TxPending, model.TxCancelled, "")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: only pending transactions can be cancelled", ErrConflict)
	}

	if tx.Type == model.TxWithdraw {
		if err := s.users.Credit(ctx, tx.UserID, tx.Amount); err != nil {
			logrus.WithError(err).WithField("txId", txID.Hex()).Error("failed to refund cancelled withdrawal")
		}
	}
	tx.Status = model.TxCancelled
	return tx, nil
}

// List returns the caller's transactions, newest first.
func (s *PaymentService) List(ctx context.Context, userID primitive.ObjectID, page, pageSize int) ([]*model.Transaction, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = config.DefaultPageSize
	}
	if pageSize > config.MaxPageSize {
		pageSize = config.MaxPageSize
	}
	return s.txs.FindForUser(ctx, userID, page, pageSize)
}

// Balance returns the user's current balance in cents.
func (s *PaymentService) Balance(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, ErrNotFound
	}
	return user.Balance, nil
}

// SettleDue completes internal pending transactions older than the settle
// delay. Called periodically from the server's settlement loop.
func (s *PaymentService) SettleDue(ctx context.Context) error {
	defer timer.Track("PaymentService.SettleDue")()

	cutoff := time.Now().Add(-time.Duration(s.cfg.Payment.SettleDelaySec) * time.Second)
	due, err := s.txs.FindSettleable(ctx, cutoff)
	if err != nil {
		return err
	}

	for _, tx := range due {
		ok, err := s.txs.TransitionStatus(ctx, tx.ID, model.TxPending, model.TxCompleted, "")
		if err != nil {
			logrus.WithError(err).WithField("txId", tx.ID.Hex()).Error("settlement transition failed")
			continue
		}
		if !ok {
			continue // cancelled in the meantime
		}
		// Withdrawal holds were taken at creation; deposits credit now.
		if tx.Type == model.TxDeposit {
			if err := s.users.Credit(ctx, tx.UserID, tx.Amount); err != nil {
				logrus.WithError(err).WithField("txId", tx.ID.Hex()).Error("failed to credit settled deposit")
				continue
			}
		}
		logrus.WithFields(logrus.Fields{
			"txId":   tx.ID.Hex(),
			"type":   tx.Type,
			"amount": tx.Amount,
		}).Info("transaction settled")
	}
	return nil
}

// CompleteStripeDeposit settles the deposit matching a succeeded payment intent.
func (s *PaymentService) CompleteStripeDeposit(ctx context.Context, intentID string) error {
	tx, err := s.txs.FindByPaymentIntent(ctx, intentID)
	if err != nil {
		return err
	}
	if tx == nil {
		return ErrNotFound
	}
	ok, err := s.txs.TransitionStatus(ctx, tx.ID, model.TxPending, model.TxCompleted, "")
	if err != nil {
		return err
	}
	if !ok {
		return nil // already settled or cancelled
	}
	return s.users.Credit(ctx, tx.UserID, tx.Amount)
}

// FailStripeDeposit marks the deposit matching a failed payment intent.
func (s *PaymentService) FailStripeDeposit(ctx context.Context, intentID, reason string) error {
	tx, err := s.txs.FindByPaymentIntent(ctx, intentID)
	if err != nil {
		return err
	}
	if tx == nil {
		return ErrNotFound
	}
	_, err = s.txs.TransitionStatus(ctx, tx.ID, model.TxPending, model.TxFailed, reason)
	return err
}
