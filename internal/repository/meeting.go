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

// IMeetingRepository defines meeting persistence
type IMeetingRepository interface {
	Create(ctx context.Context, meeting *model.Meeting) (*model.Meeting, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Meeting, error)
	FindForUser(ctx context.Context, userID primitive.ObjectID, from, to *time.Time) ([]*model.Meeting, error)
	// FindOverlapping returns non-cancelled meetings involving userID that
	// overlap [start, end), excluding excludeID when non-nil.
	FindOverlapping(ctx context.Context, userID primitive.ObjectID, start, end time.Time, excludeID primitive.ObjectID) ([]*model.Meeting, error)
	Update(ctx context.Context, meeting *model.Meeting) error
	SetParticipantStatus(ctx context.Context, meetingID, userID primitive.ObjectID, status string) error
	SetStatus(ctx context.Context, id primitive.ObjectID, status string) error
}

// MeetingRepository implements meeting persistence
type MeetingRepository struct {
	collection *mongo.Collection
}

func NewMeetingRepository(db *mongo.Database) IMeetingRepository {
	return &MeetingRepository{collection: db.Collection("meetings")}
}

func (r *MeetingRepository) Create(ctx context.Context, meeting *model.Meeting) (*model.Meeting, error) {
	now := time.Now()
	meeting.CreatedAt = now
	meeting.UpdatedAt = now
	res, err := r.collection.InsertOne(ctx, meeting)
	if err != nil {
		return nil, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		meeting.ID = oid
	}
	return meeting, nil
}

func (r *MeetingRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Meeting, error) {
	var meeting *model.Meeting
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&meeting)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return meeting, nil
}

func participantFilter(userID primitive.ObjectID) bson.M {
	return bson.M{"$or": []bson.M{
		{"organizerId": userID},
		{"participants.userId": userID},
	}}
}

func (r *MeetingRepository) FindForUser(ctx context.Context, userID primitive.ObjectID, from, to *time.Time) ([]*model.Meeting, error) {
	filter := participantFilter(userID)
	if from != nil {
		filter["endTime"] = bson.M{"$gt": *from}
	}
	if to != nil {
		filter["startTime"] = bson.M{"$lt": *to}
	}

	opts := options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var meetings []*model.Meeting
	if err := cursor.All(ctx, &meetings); err != nil {
		return nil, err
	}
	return meetings, nil
}

func (r *MeetingRepository) FindOverlapping(ctx context.Context, userID primitive.ObjectID, start, end time.Time, excludeID primitive.ObjectID) ([]*model.Meeting, error) {
	filter := participantFilter(userID)
	filter["status"] = bson.M{"$ne": model.MeetingCancelled}
	// Strict overlap: touching endpoints do not conflict.
	filter["startTime"] = bson.M{"$lt": end}
	filter["endTime"] = bson.M{"$gt": start}
	if excludeID != primitive.NilObjectID {
		filter["_id"] = bson.M{"$ne": excludeID}
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var meetings []*model.Meeting
	if err := cursor.All(ctx, &meetings); err != nil {
		return nil, err
	}
	return meetings, nil
}

func (r *MeetingRepository) Update(ctx context.Context, meeting *model.Meeting) error {
	meeting.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": meeting.ID}, meeting)
	return err
}

func (r *MeetingRepository) SetParticipantStatus(ctx context.Context, meetingID, userID primitive.ObjectID, status string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": meetingID, "participants.userId": userID},
		bson.M{"$set": bson.M{
			"participants.$.status": status,
			"updatedAt":             time.Now(),
		}})
	return err
}

func (r *MeetingRepository) SetStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now()}})
	return err
}
