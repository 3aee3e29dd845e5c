package repository

import (
	"context"
	"time"

	"github.com/nazirsaif/nexus-sub000/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// IOTPRepository defines OTP challenge persistence
type IOTPRepository interface {
	Create(ctx context.Context, challenge *model.OTPChallenge) (*model.OTPChallenge, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.OTPChallenge, error)
	IncrementAttempts(ctx context.Context, id primitive.ObjectID) error
	ResetCode(ctx context.Context, id primitive.ObjectID, codeHash string, expiresAt time.Time) error
	Consume(ctx context.Context, id primitive.ObjectID) error
}

// OTPRepository implements OTP challenge persistence
type OTPRepository struct {
	collection *mongo.Collection
}

func NewOTPRepository(db *mongo.Database) IOTPRepository {
	return &OTPRepository{collection: db.Collection("otps")}
}

func (r *OTPRepository) Create(ctx context.Context, challenge *model.OTPChallenge) (*model.OTPChallenge, error) {
	challenge.CreatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, challenge)
	if err != nil {
		return nil, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		challenge.ID = oid
	}
	return challenge, nil
}

func (r *OTPRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.OTPChallenge, error) {
	var challenge *model.OTPChallenge
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&challenge)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return challenge, nil
}

func (r *OTPRepository) IncrementAttempts(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"attempts": 1}})
	return err
}

func (r *OTPRepository) ResetCode(ctx context.Context, id primitive.ObjectID, codeHash string, expiresAt time.Time) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"codeHash": codeHash, "expiresAt": expiresAt, "attempts": 0}})
	return err
}

func (r *OTPRepository) Consume(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"consumed": true}})
	return err
}
