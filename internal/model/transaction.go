package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transaction types
const (
	TxDeposit  = "deposit"
	TxWithdraw = "withdraw"
	TxTransfer = "transfer"
)

// Transaction statuses: pending -> completed | failed | cancelled
const (
	TxPending   = "pending"
	TxCompleted = "completed"
	TxFailed    = "failed"
	TxCancelled = "cancelled"
)

// Payment gateways
const (
	GatewayInternal = "internal"
	GatewayStripe   = "stripe"
)

type Transaction struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	Type            string             `bson:"type" json:"type"`
	Amount          int64              `bson:"amount" json:"amount"` // cents, always positive
	Status          string             `bson:"status" json:"status"`
	Reference       string             `bson:"reference" json:"reference"`
	Gateway         string             `bson:"gateway" json:"gateway"`
	CounterpartyID  primitive.ObjectID `bson:"counterpartyId,omitempty" json:"counterpartyId,omitempty"`
	PaymentIntentID string             `bson:"paymentIntentId,omitempty" json:"-"`
	FailureReason   string             `bson:"failureReason,omitempty" json:"failureReason,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	SettledAt       time.Time          `bson:"settledAt,omitempty" json:"settledAt,omitempty"`
}

// AmountRequest is the body of POST /api/payments/{deposit,withdraw}.
type AmountRequest struct {
	Amount          int64  `json:"amount" binding:"required,gt=0"`
	PaymentMethodID string `json:"paymentMethodId"` // present -> Stripe deposit
}

// TransferRequest is the body of POST /api/payments/transfer.
type TransferRequest struct {
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	RecipientID string `json:"recipientId" binding:"required"`
	Note        string `json:"note"`
}
