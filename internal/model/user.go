package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles
const (
	RoleEntrepreneur = "entrepreneur"
	RoleInvestor     = "investor"
	RoleAdmin        = "admin"
)

type User struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name             string             `bson:"name" json:"name"`
	Email            string             `bson:"email" json:"email"`
	Password         string             `bson:"password" json:"-"` // Bcrypt hash - never expose
	Role             string             `bson:"role" json:"role"`
	EmailVerified    bool               `bson:"emailVerified" json:"emailVerified"`
	TwoFactorEnabled bool               `bson:"twoFactorEnabled" json:"twoFactorEnabled"`
	Balance          int64              `bson:"balance" json:"balance"` // cents
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UserResponse is the public view of a user (no credentials, no balance)
type UserResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ToResponse converts User to UserResponse (excludes password and balance)
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:            u.ID.Hex(),
		Name:          u.Name,
		Email:         u.Email,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
		CreatedAt:     u.CreatedAt,
	}
}

// ValidRole reports whether role is one of the registerable roles.
func ValidRole(role string) bool {
	return role == RoleEntrepreneur || role == RoleInvestor
}
