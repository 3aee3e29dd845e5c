package repository

import (
	"context"
	"time"

	"github.com/nazirsaif/nexus-sub000/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// IRefreshTokenRepository defines refresh-token persistence
type IRefreshTokenRepository interface {
	Create(ctx context.Context, token *model.RefreshToken) (*model.RefreshToken, error)
	FindByHash(ctx context.Context, hash string) (*model.RefreshToken, error)
	MarkRotated(ctx context.Context, id primitive.ObjectID) error
	Revoke(ctx context.Context, id primitive.ObjectID) error
	RevokeFamily(ctx context.Context, familyID string) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// RefreshTokenRepository implements refresh-token persistence
type RefreshTokenRepository struct {
	collection *mongo.Collection
}

func NewRefreshTokenRepository(db *mongo.Database) IRefreshTokenRepository {
	return &RefreshTokenRepository{collection: db.Collection("refresh_tokens")}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, token *model.RefreshToken) (*model.RefreshToken, error) {
	token.CreatedAt = time.Now()
	res, err := r.collection.InsertOne(ctx, token)
	if err != nil {
		return nil, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		token.ID = oid
	}
	return token, nil
}

func (r *RefreshTokenRepository) FindByHash(ctx context.Context, hash string) (*model.RefreshToken, error) {
	var token *model.RefreshToken
	err := r.collection.FindOne(ctx, bson.M{"tokenHash": hash}).Decode(&token)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return token, nil
}

func (r *RefreshTokenRepository) MarkRotated(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"rotated": true, "revoked": true}})
	return err
}

func (r *RefreshTokenRepository) Revoke(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"revoked": true}})
	return err
}

func (r *RefreshTokenRepository) RevokeFamily(ctx context.Context, familyID string) error {
	_, err := r.collection.UpdateMany(ctx,
		bson.M{"familyId": familyID},
		bson.M{"$set": bson.M{"revoked": true}})
	return err
}

func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lt": before}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
