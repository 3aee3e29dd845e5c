package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Video call statuses: scheduled -> active -> ended
const (
	CallScheduled = "scheduled"
	CallActive    = "active"
	CallEnded     = "ended"
)

type VideoCall struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	HostID       primitive.ObjectID   `bson:"hostId" json:"hostId"`
	MeetingID    primitive.ObjectID   `bson:"meetingId,omitempty" json:"meetingId,omitempty"`
	Title        string               `bson:"title" json:"title"`
	Participants []primitive.ObjectID `bson:"participants" json:"participants"`
	Status       string               `bson:"status" json:"status"`
	StartedAt    time.Time            `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	EndedAt      time.Time            `bson:"endedAt,omitempty" json:"endedAt,omitempty"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

func (v *VideoCall) GetID() primitive.ObjectID   { return v.ID }
func (v *VideoCall) SetID(id primitive.ObjectID) { v.ID = id }

// Invited reports whether userID may join the room (host included).
func (v *VideoCall) Invited(userID primitive.ObjectID) bool {
	if v.HostID == userID {
		return true
	}
	for _, p := range v.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// CreateCallRequest is the body of POST /api/video-calls.
type CreateCallRequest struct {
	Title        string   `json:"title" binding:"required"`
	MeetingID    string   `json:"meetingId"`
	Participants []string `json:"participants"`
}
