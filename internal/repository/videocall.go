package repository

import (
	"context"
	"time"

	"github.com/nazirsaif/nexus-sub000/internal/model"
	"github.com/nazirsaif/nexus-sub000/pkg/generic"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IVideoCallRepository defines call-room persistence. Rooms are never edited
// or removed once created; lifecycle moves through SetStatus only.
type IVideoCallRepository interface {
	Create(ctx context.Context, call *model.VideoCall) error
	GetByID(ctx context.Context, id string) (*model.VideoCall, error)
	FindForUser(ctx context.Context, userID primitive.ObjectID) ([]*model.VideoCall, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status string, at time.Time) error
}

// VideoCallRepository layers room queries over the generic base repository.
type VideoCallRepository struct {
	*generic.MongoBaseRepository[*model.VideoCall]
}

func NewVideoCallRepository(db *mongo.Database) IVideoCallRepository {
	return &VideoCallRepository{
		MongoBaseRepository: generic.NewBaseRepository[*model.VideoCall](db.Collection("video_calls")),
	}
}

func (r *VideoCallRepository) FindForUser(ctx context.Context, userID primitive.ObjectID) ([]*model.VideoCall, error) {
	filter := bson.M{"$or": []bson.M{
		{"hostId": userID},
		{"participants": userID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var calls []*model.VideoCall
	if err := cursor.All(ctx, &calls); err != nil {
		return nil, err
	}
	return calls, nil
}

func (r *VideoCallRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status string, at time.Time) error {
	set := bson.M{"status": status, "updatedAt": at}
	switch status {
	case model.CallActive:
		set["startedAt"] = at
	case model.CallEnded:
		set["endedAt"] = at
	}
	_, err := r.Collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}
