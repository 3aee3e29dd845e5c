package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nazirsaif/nexus-sub000/internal/model"
	"github.com/nazirsaif/nexus-sub000/internal/repository"
	"github.com/nazirsaif/nexus-sub000/pkg/util"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const lockStripes = 64

// MeetingService handles scheduling and conflict detection. The conflict
// check and the subsequent insert run under per-participant striped locks so
// two concurrent bookings for the same person cannot both pass the check.
type MeetingService struct {
	meetings repository.IMeetingRepository
	users    repository.IUserRepository
	locks    [lockStripes]sync.Mutex
}

func NewMeetingService(meetings repository.IMeetingRepository, users repository.IUserRepository) *MeetingService {
	return &MeetingService{meetings: meetings, users: users}
}

func stripeFor(id primitive.ObjectID) int {
	b := [12]byte(id)
	return int(b[11]) % lockStripes
}

// lockParticipants acquires the stripes for all ids in a fixed order to avoid
// deadlock between overlapping participant sets, and returns the unlock func.
func (s *MeetingService) lockParticipants(ids []primitive.ObjectID) func() {
	stripes := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		stripes[stripeFor(id)] = struct{}{}
	}
	order := make([]int, 0, len(stripes))
	for idx := range stripes {
		order = append(order, idx)
	}
	sort.Ints(order)
	for _, idx := range order {
		s.locks[idx].Lock()
	}
	return func() {
		for i := len(order) - 1; i >= 0; i-- {
			s.locks[order[i]].Unlock()
		}
	}
}

// ConflictError carries the overlapping meetings found during scheduling.
type ConflictError struct {
	Conflicts []model.MeetingConflict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("scheduling conflict with %d existing meeting(s)", len(e.Conflicts))
}

// checkConflicts is the single overlap check: one query per participant,
// strict interval overlap, cancelled meetings ignored.
func (s *MeetingService) checkConflicts(ctx context.Context, participantIDs []primitive.ObjectID, start, end time.Time, excludeID primitive.ObjectID) error {
	var conflicts []model.MeetingConflict
	for _, userID := range participantIDs {
		overlapping, err := s.meetings.FindOverlapping(ctx, userID, start, end, excludeID)
		if err != nil {
			return err
		}
		for _, m := range overlapping {
			conflicts = append(conflicts, model.MeetingConflict{
				UserID:    userID.Hex(),
				MeetingID: m.ID.Hex(),
				Title:     m.Title,
				StartTime: m.StartTime,
				EndTime:   m.EndTime,
			})
		}
	}
	if len(conflicts) > 0 {
		return &ConflictError{Conflicts: conflicts}
	}
	return nil
}

func validateWindow(start, end time.Time) error {
	if !end.After(start) {
		return fmt.Errorf("%w: endTime must be after startTime", ErrInvalidInput)
	}
	if start.Before(time.Now()) {
		return fmt.Errorf("%w: startTime must be in the future", ErrInvalidInput)
	}
	return nil
}

// Create schedules a meeting. The organizer is an implicit participant.
func (s *MeetingService) Create(ctx context.Context, organizerID primitive.ObjectID, req *model.CreateMeetingRequest) (*model.Meeting, error) {
	if err := validateWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}

	participantIDs, err := util.ParseObjectIDs(req.Participants)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	// Deduplicate and fold the organizer in.
	seen := map[primitive.ObjectID]struct{}{organizerID: {}}
	unique := []primitive.ObjectID{organizerID}
	for _, id := range participantIDs {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			unique = append(unique, id)
		}
	}

	found, err := s.users.FindByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(found) != len(unique) {
		return nil, fmt.Errorf("%w: one or more participants do not exist", ErrInvalidInput)
	}

	unlock := s.lockParticipants(unique)
	defer unlock()

	if err := s.checkConflicts(ctx, unique, req.StartTime, req.EndTime, primitive.NilObjectID); err != nil {
		return nil, err
	}

	participants := make([]model.Participant, 0, len(unique))
	for _, id := range unique {
		status := model.ParticipantInvited
		if id == organizerID {
			status = model.ParticipantAccepted
		}
		participants = append(participants, model.Participant{UserID: id, Status: status})
	}

	meeting, err := s.meetings.Create(ctx, &model.Meeting{
		OrganizerID:  organizerID,
		Title:        req.Title,
		Description:  req.Description,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Participants: participants,
		Status:       model.MeetingScheduled,
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"meetingId":    meeting.ID.Hex(),
		"organizerId":  organizerID.Hex(),
		"participants": len(participants),
	}).Info("meeting scheduled")
	return meeting, nil
}

// ListForUser returns the caller's meetings, optionally windowed.
func (s *MeetingService) ListForUser(ctx context.Context, userID primitive.ObjectID, from, to *time.Time) ([]*model.Meeting, error) {
	return s.meetings.FindForUser(ctx, userID, from, to)
}

// Get returns a meeting the caller participates in.
func (s *MeetingService) Get(ctx context.Context, meetingID, userID primitive.ObjectID) (*model.Meeting, error) {
	meeting, err := s.meetings.FindByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, ErrNotFound
	}
	if !meeting.HasParticipant(userID) {
		return nil, ErrForbidden
	}
	return meeting, nil
}

// Update lets the organizer edit or reschedule. Rescheduling re-runs conflict
// detection with the meeting itself excluded.
func (s *MeetingService) Update(ctx context.Context, meetingID, callerID primitive.ObjectID, req *model.UpdateMeetingRequest) (*model.Meeting, error) {
	meeting, err := s.meetings.FindByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if meeting == nil {
		return nil, ErrNotFound
	}
	if meeting.OrganizerID != callerID {
		return nil, fmt.Errorf("%w: only the organizer may edit a meeting", ErrForbidden)
	}
	if meeting.Status == model.MeetingCancelled {
		return nil, fmt.Errorf("%w: meeting is cancelled", ErrConflict)
	}

	if req.Title != "" {
		meeting.Title = req.Title
	}
	if req.Description != nil {
		meeting.Description = *req.Description
	}

	reschedule := req.StartTime != nil || req.EndTime != nil
	if reschedule {
		start, end := meeting.StartTime, meeting.EndTime
		if req.StartTime != nil {
			start = *req.StartTime
		}
		if req.EndTime != nil {
			end = *req.EndTime
		}
		if err := validateWindow(start, end); err != nil {
			return nil, err
		}

		ids := make([]primitive.ObjectID, 0, len(meeting.Participants))
		for _, p := range meeting.Participants {
			ids = append(ids, p.UserID)
		}

		unlock := s.lockParticipants(ids)
		defer unlock()

		if err := s.checkConflicts(ctx, ids, start, end, meeting.ID); err != nil {
			return nil, err
		}
		meeting.StartTime = start
		meeting.EndTime = end
	}

	if err := s.meetings.Update(ctx, meeting); err != nil {
		return nil, err
	}
	return meeting, nil
}

// Respond records a participant's accept/decline.
func (s *MeetingService) Respond(ctx context.Context, meetingID, userID primitive.ObjectID, response string) error {
	meeting, err := s.meetings.FindByID(ctx, meetingID)
	if err != nil {
		return err
	}
	if meeting == nil {
		return ErrNotFound
	}
	if meeting.Status == model.MeetingCancelled {
		return fmt.Errorf("%w: meeting is cancelled", ErrConflict)
	}

	isParticipant := false
	for _, p := range meeting.Participants {
		if p.UserID == userID {
			isParticipant = true
			break
		}
	}
	if !isParticipant {
		return ErrForbidden
	}
	return s.meetings.SetParticipantStatus(ctx, meetingID, userID, response)
}

// Cancel marks the meeting cancelled; only the organizer may do it. The
// record is kept so past conflicts stay auditable.
func (s *MeetingService) Cancel(ctx context.Context, meetingID, callerID primitive.ObjectID) error {
	meeting, err := s.meetings.FindByID(ctx, meetingID)
	if err != nil {
		return err
	}
	if meeting == nil {
		return ErrNotFound
	}
	if meeting.OrganizerID != callerID {
		return fmt.Errorf("%w: only the organizer may cancel a meeting", ErrForbidden)
	}
	if meeting.Status == model.MeetingCancelled {
		return fmt.Errorf("%w: meeting is already cancelled", ErrConflict)
	}
	return s.meetings.SetStatus(ctx, meetingID, model.MeetingCancelled)
}
