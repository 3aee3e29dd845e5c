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

// IProfileRepository defines profile persistence
type IProfileRepository interface {
	FindByUserID(ctx context.Context, userID primitive.ObjectID) (*model.Profile, error)
	Upsert(ctx context.Context, profile *model.Profile) (*model.Profile, error)
}

// ProfileRepository implements profile persistence
type ProfileRepository struct {
	collection *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) IProfileRepository {
	return &ProfileRepository{collection: db.Collection("profiles")}
}

func (r *ProfileRepository) FindByUserID(ctx context.Context, userID primitive.ObjectID) (*model.Profile, error) {
	var profile *model.Profile
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&profile)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}

func (r *ProfileRepository) Upsert(ctx context.Context, profile *model.Profile) (*model.Profile, error) {
	now := time.Now()
	profile.UpdatedAt = now

	update := bson.M{
		"$set": bson.M{
			"role":         profile.Role,
			"bio":          profile.Bio,
			"location":     profile.Location,
			"website":      profile.Website,
			"entrepreneur": profile.Entrepreneur,
			"investor":     profile.Investor,
			"updatedAt":    now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var saved *model.Profile
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"userId": profile.UserID}, update, opts).Decode(&saved)
	if err != nil {
		return nil, err
	}
	return saved, nil
}
