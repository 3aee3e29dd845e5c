package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EntrepreneurDetails holds the entrepreneur-specific profile fields.
type EntrepreneurDetails struct {
	StartupName  string `bson:"startupName" json:"startupName"`
	Industry     string `bson:"industry" json:"industry"`
	FundingStage string `bson:"fundingStage" json:"fundingStage"`
	PitchSummary string `bson:"pitchSummary" json:"pitchSummary"`
}

// InvestorDetails holds the investor-specific profile fields.
type InvestorDetails struct {
	Firm            string   `bson:"firm" json:"firm"`
	InvestmentFocus []string `bson:"investmentFocus" json:"investmentFocus"`
	MinCheck        int64    `bson:"minCheck" json:"minCheck"` // cents
	MaxCheck        int64    `bson:"maxCheck" json:"maxCheck"` // cents
}

type Profile struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID   `bson:"userId" json:"userId"`
	Role         string               `bson:"role" json:"role"`
	Bio          string               `bson:"bio" json:"bio"`
	Location     string               `bson:"location" json:"location"`
	Website      string               `bson:"website" json:"website"`
	Entrepreneur *EntrepreneurDetails `bson:"entrepreneur,omitempty" json:"entrepreneur,omitempty"`
	Investor     *InvestorDetails     `bson:"investor,omitempty" json:"investor,omitempty"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}

func (p *Profile) GetID() primitive.ObjectID   { return p.ID }
func (p *Profile) SetID(id primitive.ObjectID) { p.ID = id }

// UpdateProfileRequest is the body of PUT /api/profile/me.
type UpdateProfileRequest struct {
	Bio          string               `json:"bio"`
	Location     string               `json:"location"`
	Website      string               `json:"website"`
	Entrepreneur *EntrepreneurDetails `json:"entrepreneur,omitempty"`
	Investor     *InvestorDetails     `json:"investor,omitempty"`
}
