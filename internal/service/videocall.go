package service

import (
	"context"
	"fmt"
	"time"

	"github.com/nazirsaif/nexus-sub000/internal/model"
	"github.com/nazirsaif/nexus-sub000/internal/repository"
	"github.com/nazirsaif/nexus-sub000/pkg/util"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VideoCallService manages room metadata and its lifecycle:
// scheduled -> active (first join) -> ended (host ends or last peer leaves).
type VideoCallService struct {
	calls    repository.IVideoCallRepository
	users    repository.IUserRepository
	meetings repository.IMeetingRepository
}

func NewVideoCallService(calls repository.IVideoCallRepository, users repository.IUserRepository, meetings repository.IMeetingRepository) *VideoCallService {
	return &VideoCallService{calls: calls, users: users, meetings: meetings}
}

// Create schedules a call room.
func (s *VideoCallService) Create(ctx context.Context, hostID primitive.ObjectID, req *model.CreateCallRequest) (*model.VideoCall, error) {
	participants, err := util.ParseObjectIDs(req.Participants)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if len(participants) > 0 {
		found, err := s.users.FindByIDs(ctx, participants)
		if err != nil {
			return nil, err
		}
		if len(found) != len(participants) {
			return nil, fmt.Errorf("%w: one or more participants do not exist", ErrInvalidInput)
		}
	}

	call := &model.VideoCall{
		HostID:       hostID,
		Title:        req.Title,
		Participants: participants,
		Status:       model.CallScheduled,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if req.MeetingID != "" {
		meetingID, err := util.ParseObjectID(req.MeetingID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
		}
		meeting, err := s.meetings.FindByID(ctx, meetingID)
		if err != nil {
			return nil, err
		}
		if meeting == nil {
			return nil, fmt.Errorf("%w: meeting does not exist", ErrInvalidInput)
		}
		if !meeting.HasParticipant(hostID) {
			return nil, ErrForbidden
		}
		call.MeetingID = meetingID
	}

	if err := s.calls.Create(ctx, call); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"callId": call.ID.Hex(),
		"hostId": hostID.Hex(),
	}).Info("call room created")
	return call, nil
}

// ListForUser returns rooms the user hosts or is invited to.
func (s *VideoCallService) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]*model.VideoCall, error) {
	return s.calls.FindForUser(ctx, userID)
}

// Get returns a room the caller is invited to.
func (s *VideoCallService) Get(ctx context.Context, callID string, userID primitive.ObjectID) (*model.VideoCall, error) {
	call, err := s.calls.GetByID(ctx, callID)
	if err != nil || call == nil {
		return nil, ErrNotFound
	}
	if !call.Invited(userID) {
		return nil, ErrForbidden
	}
	return call, nil
}

// End moves the room to ended. Host only.
func (s *VideoCallService) End(ctx context.Context, callID string, callerID primitive.ObjectID) error {
	call, err := s.calls.GetByID(ctx, callID)
	if err != nil || call == nil {
		return ErrNotFound
	}
	if call.HostID != callerID {
		return fmt.Errorf("%w: only the host may end a call", ErrForbidden)
	}
	if call.Status == model.CallEnded {
		return fmt.Errorf("%w: call already ended", ErrConflict)
	}
	return s.calls.SetStatus(ctx, call.ID, model.CallEnded, time.Now())
}

// Authorize checks that userID may join room callID and returns the room.
// Used by the signaling relay before upgrading the connection.
func (s *VideoCallService) Authorize(ctx context.Context, callID string, userID primitive.ObjectID) (*model.VideoCall, error) {
	call, err := s.calls.GetByID(ctx, callID)
	if err != nil || call == nil {
		return nil, ErrNotFound
	}
	if !call.Invited(userID) {
		return nil, ErrForbidden
	}
	if call.Status == model.CallEnded {
		return nil, fmt.Errorf("%w: call has ended", ErrConflict)
	}
	return call, nil
}

// PeerJoined marks the room active on the first join.
func (s *VideoCallService) PeerJoined(ctx context.Context, callID string, userID primitive.ObjectID) {
	call, err := s.calls.GetByID(ctx, callID)
	if err != nil || call == nil {
		return
	}
	if call.Status == model.CallScheduled {
		if err := s.calls.SetStatus(ctx, call.ID, model.CallActive, time.Now()); err != nil {
			logrus.WithError(err).WithField("callId", callID).Error("failed to activate call")
		}
	}
}

// PeerLeft ends the room when the last peer disconnects.
func (s *VideoCallService) PeerLeft(ctx context.Context, callID string, userID primitive.ObjectID, remaining int) {
	if remaining > 0 {
		return
	}
	call, err := s.calls.GetByID(ctx, callID)
	if err != nil || call == nil {
		return
	}
	if call.Status == model.CallActive {
		if err := s.calls.SetStatus(ctx, call.ID, model.CallEnded, time.Now()); err != nil {
			logrus.WithError(err).WithField("callId", callID).Error("failed to end call")
		}
	}
}
