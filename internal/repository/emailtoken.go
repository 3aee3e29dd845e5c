package repository

import (
	"context"

	"github.com/nazirsaif/nexus-sub000/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// IEmailTokenRepository defines email-verification token persistence
type IEmailTokenRepository interface {
	Create(ctx context.Context, token *model.EmailToken) (*model.EmailToken, error)
	FindByToken(ctx context.Context, token string) (*model.EmailToken, error)
	MarkUsed(ctx context.Context, id primitive.ObjectID) error
}

// EmailTokenRepository implements email-verification token persistence
type EmailTokenRepository struct {
	collection *mongo.Collection
}

func NewEmailTokenRepository(db *mongo.Database) IEmailTokenRepository {
	return &EmailTokenRepository{collection: db.Collection("email_tokens")}
}

func (r *EmailTokenRepository) Create(ctx context.Context, token *model.EmailToken) (*model.EmailToken, error) {
	res, err := r.collection.InsertOne(ctx, token)
	if err != nil {
		return nil, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		token.ID = oid
	}
	return token, nil
}

func (r *EmailTokenRepository) FindByToken(ctx context.Context, token string) (*model.EmailToken, error) {
	var et *model.EmailToken
	err := r.collection.FindOne(ctx, bson.M{"token": token}).Decode(&et)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return et, nil
}

func (r *EmailTokenRepository) MarkUsed(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"used": true}})
	return err
}
