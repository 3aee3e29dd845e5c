package service

import (
	"context"
	"fmt"

	"github.com/nazirsaif/nexus-sub000/internal/model"
	"github.com/nazirsaif/nexus-sub000/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProfileService manages extended role-specific profile fields.
type ProfileService struct {
	profiles repository.IProfileRepository
	users    repository.IUserRepository
}

func NewProfileService(profiles repository.IProfileRepository, users repository.IUserRepository) *ProfileService {
	return &ProfileService{profiles: profiles, users: users}
}

// Get returns a user's profile; an empty profile if none was saved yet.
func (s *ProfileService) Get(ctx context.Context, userID primitive.ObjectID) (*model.Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	profile, err := s.profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return &model.Profile{UserID: userID, Role: user.Role}, nil
	}
	return profile, nil
}

// Update upserts the caller's profile. The role-specific section must match
// the account role.
func (s *ProfileService) Update(ctx context.Context, userID primitive.ObjectID, req *model.UpdateProfileRequest) (*model.Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	switch user.Role {
	case model.RoleEntrepreneur:
		if req.Investor != nil {
			return nil, fmt.Errorf("%w: investor fields on an entrepreneur profile", ErrInvalidInput)
		}
	case model.RoleInvestor:
		if req.Entrepreneur != nil {
			return nil, fmt.Errorf("%w: entrepreneur fields on an investor profile", ErrInvalidInput)
		}
	}

	return s.profiles.Upsert(ctx, &model.Profile{
		UserID:       userID,
		Role:         user.Role,
		Bio:          req.Bio,
		Location:     req.Location,
		Website:      req.Website,
		Entrepreneur: req.Entrepreneur,
		Investor:     req.Investor,
	})
}
