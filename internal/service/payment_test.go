package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nazirsaif/nexus-sub000/internal/config"
	"github.com/nazirsaif/nexus-sub000/internal/model"
)

func newPaymentFixture(t *testing.T, balance int64) (*PaymentService, *fakeTxRepo, *fakeUserRepo, *model.User) {
	t.Helper()
	user := &model.User{Name: "Payer", Email: "payer@example.com", Role: model.RoleInvestor, Balance: balance}
	users := newFakeUserRepo(user)
	txs := &fakeTxRepo{}
	cfg := &config.Config{Payment: config.PaymentConfig{SettleDelaySec: 0, SettleIntervalSec: 1}}
	return NewPaymentService(cfg, txs, users, nil), txs, users, user
}

func TestDepositCreatesPending(t *testing.T) {
	svc, _, users, user := newPaymentFixture(t, 0)

	tx, err := svc.Deposit(context.Background(), user.ID, &model.AmountRequest{Amount: 5000})
	if err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	if tx.Status != model.TxPending {
		t.Errorf("status = %q, want pending", tx.Status)
	}
	if tx.Gateway != model.GatewayInternal {
		t.Errorf("gateway = %q, want internal", tx.Gateway)
	}
	// The balance only moves at settlement.
	if got := users.balance(user.ID); got != 0 {
		t.Errorf("balance = %d before settlement, want 0", got)
	}
}

func TestDepositRejectsCardWithoutGateway(t *testing.T) {
	svc, _, _, user := newPaymentFixture(t, 0)

	_, err := svc.Deposit(context.Background(), user.ID, &model.AmountRequest{Amount: 5000, PaymentMethodID: "pm_123"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestWithdrawHoldsImmediately(t *testing.T) {
	svc, _, users, user := newPaymentFixture(t, 10000)

	tx, err := svc.Withdraw(context.Background(), user.ID, &model.AmountRequest{Amount: 4000})
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	if tx.Status != model.TxPending {
		t.Errorf("status = %q, want pending", tx.Status)
	}
	if got := users.balance(user.ID); got != 6000 {
		t.Errorf("balance = %d after hold, want 6000", got)
	}
}

func TestWithdrawInsufficientFunds(t *testing.T) {
	svc, _, users, user := newPaymentFixture(t, 1000)

	_, err := svc.Withdraw(context.Background(), user.ID, &model.AmountRequest{Amount: 4000})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if got := users.balance(user.ID); got != 1000 {
		t.Errorf("balance = %d, want untouched 1000", got)
	}
}

func TestTransferSettlesInline(t *testing.T) {
	svc, _, users, sender := newPaymentFixture(t, 10000)
	recipient := &model.User{Name: "Payee", Email: "payee@example.com", Role: model.RoleEntrepreneur}
	users.Create(context.Background(), recipient)

	tx, err := svc.Transfer(context.Background(), sender.ID, &model.TransferRequest{
		Amount:      2500,
		RecipientID: recipient.ID.Hex(),
	})
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if tx.Status != model.TxCompleted {
		t.Errorf("status = %q, want completed", tx.Status)
	}
	if got := users.balance(sender.ID); got != 7500 {
		t.Errorf("sender balance = %d, want 7500", got)
	}
	if got := users.balance(recipient.ID); got != 2500 {
		t.Errorf("recipient balance = %d, want 2500", got)
	}
}

func TestTransferToSelfRejected(t *testing.T) {
	svc, _, _, user := newPaymentFixture(t, 10000)

	_, err := svc.Transfer(context.Background(), user.ID, &model.TransferRequest{
		Amount:      100,
		RecipientID: user.ID.Hex(),
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestCancelWithdrawRefundsHold(t *testing.T) {
	svc, _, users, user := newPaymentFixture(t, 10000)
	ctx := context.Background()

	tx, err := svc.Withdraw(ctx, user.ID, &model.AmountRequest{Amount: 4000})
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}

	cancelled, err := svc.Cancel(ctx, tx.ID, user.ID)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != model.TxCancelled {
		t.Errorf("status = %q, want cancelled", cancelled.Status)
	}
	if got := users.balance(user.ID); got != 10000 {
		t.Errorf("balance = %d after refund, want 10000", got)
	}
}

func TestCancelOnlyPending(t *testing.T) {
	svc, txs, _, user := newPaymentFixture(t, 10000)
	ctx := context.Background()

	tx, err := svc.Withdraw(ctx, user.ID, &model.AmountRequest{Amount: 1000})
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	if _, err := txs.TransitionStatus(ctx, tx.ID, model.TxPending, model.TxCompleted, ""); err != nil {
		t.Fatalf("TransitionStatus: %v", err)
	}

	if _, err := svc.Cancel(ctx, tx.ID, user.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestCancelOwnerOnly(t *testing.T) {
	svc, _, users, user := newPaymentFixture(t, 10000)
	other := &model.User{Name: "Other", Email: "other@example.com", Role: model.RoleInvestor}
	users.Create(context.Background(), other)

	tx, err := svc.Withdraw(context.Background(), user.ID, &model.AmountRequest{Amount: 1000})
	if err != nil {
		t.Fatalf("Withdraw: %v", err)
	}
	if _, err := svc.Cancel(context.Background(), tx.ID, other.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestSettleDueCreditsDeposit(t *testing.T) {
	svc, txs, users, user := newPaymentFixture(t, 0)
	ctx := context.Background()

	tx, err := svc.Deposit(ctx, user.ID, &model.AmountRequest{Amount: 5000})
	if err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	// Age the transaction past the settle delay.
	tx.CreatedAt = time.Now().Add(-time.Minute)

	if err := svc.SettleDue(ctx); err != nil {
		t.Fatalf("SettleDue: %v", err)
	}

	settled, _ := txs.FindByID(ctx, tx.ID)
	if settled.Status != model.TxCompleted {
		t.Errorf("status = %q, want completed", settled.Status)
	}
	if got := users.balance(user.ID); got != 5000 {
		t.Errorf("balance = %d after settlement, want 5000", got)
	}
}

func TestSettleDueSkipsCancelled(t *testing.T) {
	svc, txs, users, user := newPaymentFixture(t, 0)
	ctx := context.Background()

	tx, err := svc.Deposit(ctx, user.ID, &model.AmountRequest{Amount: 5000})
	if err != nil {
		t.Fatalf("Deposit: %v", err)
	}
	tx.CreatedAt = time.Now().Add(-time.Minute)

	if _, err := svc.Cancel(ctx, tx.ID, user.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if err := svc.SettleDue(ctx); err != nil {
		t.Fatalf("SettleDue: %v", err)
	}

	settled, _ := txs.FindByID(ctx, tx.ID)
	if settled.Status != model.TxCancelled {
		t.Errorf("status = %q, want cancelled to stick", settled.Status)
	}
	if got := users.balance(user.ID); got != 0 {
		t.Errorf("balance = %d, want 0", got)
	}
}

func TestStripeDepositWebhookSettlement(t *testing.T) {
	svc, txs, users, user := newPaymentFixture(t, 0)
	ctx := context.Background()

	tx, _ := txs.Create(ctx, &model.Transaction{
		UserID:          user.ID,
		Type:            model.TxDeposit,
		Amount:          8000,
		Status:          model.TxPending,
		Gateway:         model.GatewayStripe,
		PaymentIntentID: "pi_123",
	})

	if err := svc.CompleteStripeDeposit(ctx, "pi_123"); err != nil {
		t.Fatalf("CompleteStripeDeposit: %v", err)
	}
	settled, _ := txs.FindByID(ctx, tx.ID)
	if settled.Status != model.TxCompleted {
		t.Errorf("status = %q, want completed", settled.Status)
	}
	if got := users.balance(user.ID); got != 8000 {
		t.Errorf("balance = %d, want 8000", got)
	}

	// A replayed webhook must not credit twice.
	if err := svc.CompleteStripeDeposit(ctx, "pi_123"); err != nil {
		t.Fatalf("replayed CompleteStripeDeposit: %v", err)
	}
	if got := users.balance(user.ID); got != 8000 {
		t.Errorf("balance = %d after replay, want 8000", got)
	}
}

func TestFailStripeDeposit(t *testing.T) {
	svc, txs, _, user := newPaymentFixture(t, 0)
	ctx := context.Background()

	tx, _ := txs.Create(ctx, &model.Transaction{
		UserID:          user.ID,
		Type:            model.TxDeposit,
		Amount:          8000,
		Status:          model.TxPending,
		Gateway:         model.GatewayStripe,
		PaymentIntentID: "pi_456",
	})

	if err := svc.FailStripeDeposit(ctx, "pi_456", "card_declined"); err != nil {
		t.Fatalf("FailStripeDeposit: %v", err)
	}
	failed, _ := txs.FindByID(ctx, tx.ID)
	if failed.Status != model.TxFailed {
		t.Errorf("status = %q, want failed", failed.Status)
	}
	if failed.FailureReason != "card_declined" {
		t.Errorf("failureReason = %q, want card_declined", failed.FailureReason)
	}
}
