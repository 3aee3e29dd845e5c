package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Meeting statuses
const (
	MeetingScheduled = "scheduled"
	MeetingCancelled = "cancelled"
)

// Participant response statuses
const (
	ParticipantInvited  = "invited"
	ParticipantAccepted = "accepted"
	ParticipantDeclined = "declined"
)

// Participant is one attendee entry on a meeting. The userId is always an
// ObjectID reference into the users collection.
type Participant struct {
	UserID primitive.ObjectID `bson:"userId" json:"userId"`
	Status string             `bson:"status" json:"status"`
}

type Meeting struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizerID  primitive.ObjectID `bson:"organizerId" json:"organizerId"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description" json:"description"`
	StartTime    time.Time          `bson:"startTime" json:"startTime"`
	EndTime      time.Time          `bson:"endTime" json:"endTime"`
	Participants []Participant      `bson:"participants" json:"participants"`
	Status       string             `bson:"status" json:"status"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// HasParticipant reports whether userID appears on the meeting (organizer included).
func (m *Meeting) HasParticipant(userID primitive.ObjectID) bool {
	if m.OrganizerID == userID {
		return true
	}
	for _, p := range m.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// Overlaps reports whether the meeting overlaps [start, end). Back-to-back
// meetings do not overlap.
func (m *Meeting) Overlaps(start, end time.Time) bool {
	return m.StartTime.Before(end) && m.EndTime.After(start)
}

// CreateMeetingRequest is the body of POST /api/meetings.
type CreateMeetingRequest struct {
	Title        string    `json:"title" binding:"required"`
	Description  string    `json:"description"`
	StartTime    time.Time `json:"startTime" binding:"required"`
	EndTime      time.Time `json:"endTime" binding:"required"`
	Participants []string  `json:"participants" binding:"required,min=1"`
}

// UpdateMeetingRequest is the body of PUT /api/meetings/:id.
type UpdateMeetingRequest struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	StartTime   *time.Time `json:"startTime"`
	EndTime     *time.Time `json:"endTime"`
}

// RespondMeetingRequest is the body of POST /api/meetings/:id/respond.
type RespondMeetingRequest struct {
	Response string `json:"response" binding:"required,oneof=accepted declined"`
}

// MeetingConflict describes one overlapping meeting found during conflict
// detection, returned with the 409.
type MeetingConflict struct {
	UserID    string    `json:"userId"`
	MeetingID string    `json:"meetingId"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}
