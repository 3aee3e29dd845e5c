package model

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestMeetingOverlaps(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	m := &Meeting{StartTime: base, EndTime: base.Add(time.Hour)} // 10:00-11:00

	cases := []struct {
		name       string
		start, end time.Time
		want       bool
	}{
		{"identical window", base, base.Add(time.Hour), true},
		{"contained", base.Add(15 * time.Minute), base.Add(45 * time.Minute), true},
		{"containing", base.Add(-time.Hour), base.Add(2 * time.Hour), true},
		{"overlapping start", base.Add(-30 * time.Minute), base.Add(30 * time.Minute), true},
		{"overlapping end", base.Add(30 * time.Minute), base.Add(90 * time.Minute), true},
		{"ends at start", base.Add(-time.Hour), base, false},
		{"starts at end", base.Add(time.Hour), base.Add(2 * time.Hour), false},
		{"fully before", base.Add(-2 * time.Hour), base.Add(-time.Hour), false},
		{"fully after", base.Add(2 * time.Hour), base.Add(3 * time.Hour), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := m.Overlaps(tc.start, tc.end); got != tc.want {
				t.Errorf("Overlaps(%v, %v) = %v, want %v", tc.start, tc.end, got, tc.want)
			}
		})
	}
}

func TestHasParticipant(t *testing.T) {
	organizer := primitive.NewObjectID()
	invitee := primitive.NewObjectID()
	outsider := primitive.NewObjectID()

	m := &Meeting{
		OrganizerID:  organizer,
		Participants: []Participant{{UserID: invitee, Status: ParticipantInvited}},
	}

	if !m.HasParticipant(organizer) {
		t.Error("organizer should count as participant")
	}
	if !m.HasParticipant(invitee) {
		t.Error("invitee should count as participant")
	}
	if m.HasParticipant(outsider) {
		t.Error("outsider should not count as participant")
	}
}
