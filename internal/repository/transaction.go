package repository

import (
	"context"
	"time"

	"github.com/nazirsaif/nexus-sub000/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ITransactionRepository defines transaction persistence
type ITransactionRepository interface {
	Create(ctx context.Context, tx *model.Transaction) (*model.Transaction, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Transaction, error)
	FindByPaymentIntent(ctx context.Context, paymentIntentID string) (*model.Transaction, error)
	FindForUser(ctx context.Context, userID primitive.ObjectID, page, pageSize int) ([]*model.Transaction, error)
	// FindSettleable returns pending internal transactions created before cutoff.
	FindSettleable(ctx context.Context, cutoff time.Time) ([]*model.Transaction, error)
	// TransitionStatus moves a transaction out of fromStatus; returns false if
	// it was no longer in that status.
	TransitionStatus(ctx context.Context, id primitive.ObjectID, fromStatus, toStatus, failureReason string) (bool, error)
}

// TransactionRepository implements transaction persistence
type TransactionRepository struct {
	collection *mongo.Collection
}

func NewTransactionRepository(db *mongo.Database) ITransactionRepository {
	return &TransactionRepository{collection: db.Collection("transactions")}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *model.Transaction) (*model.Transaction, error) {
	tx.CreatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, tx)
	if err != nil {
		return nil, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		tx.ID = oid
	}
	return tx, nil
}

func (r *TransactionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Transaction, error) {
	var tx *model.Transaction
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tx)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return tx, nil
}

func (r *TransactionRepository) FindByPaymentIntent(ctx context.Context, paymentIntentID string) (*model.Transaction, error) {
	var tx *model.Transaction
	err := r.collection.FindOne(ctx, bson.M{"paymentIntentId": paymentIntentID}).Decode(&tx)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return tx, nil
}

func (r *TransactionRepository) FindForUser(ctx context.Context, userID primitive.ObjectID, page, pageSize int) ([]*model.Transaction, error) {
	// Transfers show up for both sides.
	filter := bson.M{"$or": []bson.M{
		{"userId": userID},
		{"counterpartyId": userID},
	}}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var txs []*model.Transaction
	if err := cursor.All(ctx, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

func (r *TransactionRepository) FindSettleable(ctx context.Context, cutoff time.Time) ([]*model.Transaction, error) {
	filter := bson.M{
		"status":    model.TxPending,
		"gateway":   model.GatewayInternal,
		"createdAt": bson.M{"$lte": cutoff},
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var txs []*model.Transaction
	if err := cursor.All(ctx, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

func (r *TransactionRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, fromStatus, toStatus, failureReason string) (bool, error) {
	set := bson.M{"status": toStatus, "settledAt": time.Now()}
	if failureReason != "" {
		set["failureReason"] = failureReason
	}
	// Guarded on the current status so the worker and a concurrent cancel
	// cannot both win.
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": fromStatus},
		bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	return res.MatchedCount == 1, nil
}
