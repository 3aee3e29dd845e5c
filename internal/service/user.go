package service

import (
	"context"

	"github.com/nazirsaif/nexus-sub000/internal/config"
	"github.com/nazirsaif/nexus-sub000/internal/model"
	"github.com/nazirsaif/nexus-sub000/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserService exposes counterpart discovery.
type UserService struct {
	users repository.IUserRepository
}

func NewUserService(users repository.IUserRepository) *UserService {
	return &UserService{users: users}
}

// List returns users, optionally filtered by role, paginated.
func (s *UserService) List(ctx context.Context, role string, page, pageSize int) ([]model.UserResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = config.DefaultPageSize
	}
	if pageSize > config.MaxPageSize {
		pageSize = config.MaxPageSize
	}

	users, err := s.users.List(ctx, role, page, pageSize)
	if err != nil {
		return nil, err
	}
	out := make([]model.UserResponse, len(users))
	for i, u := range users {
		out[i] = u.ToResponse()
	}
	return out, nil
}

// Get returns the public view of one user.
func (s *UserService) Get(ctx context.Context, id primitive.ObjectID) (*model.UserResponse, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	resp := user.ToResponse()
	return &resp, nil
}
