package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Share permissions
const (
	PermissionView = "view"
	PermissionSign = "sign"
)

// SharePermission grants one user access to a document.
type SharePermission struct {
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	Permission string             `bson:"permission" json:"permission"`
	GrantedAt  time.Time          `bson:"grantedAt" json:"grantedAt"`
}

// Signature is one captured e-signature on a document. ImageData is the
// canvas-drawn signature as a base64 PNG data URL.
type Signature struct {
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	ImageData string             `bson:"imageData" json:"imageData"`
	SignedAt  time.Time          `bson:"signedAt" json:"signedAt"`
}

type Document struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID      primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	Title        string             `bson:"title" json:"title"`
	OriginalName string             `bson:"originalName" json:"originalName"`
	StoredName   string             `bson:"storedName" json:"-"`
	MimeType     string             `bson:"mimeType" json:"mimeType"`
	Size         int64              `bson:"size" json:"size"`
	SharedWith   []SharePermission  `bson:"sharedWith" json:"sharedWith"`
	Signatures   []Signature        `bson:"signatures" json:"signatures"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// PermissionFor returns the permission granted to userID, or "" if none.
// The owner implicitly holds sign permission.
func (d *Document) PermissionFor(userID primitive.ObjectID) string {
	if d.OwnerID == userID {
		return PermissionSign
	}
	for _, s := range d.SharedWith {
		if s.UserID == userID {
			return s.Permission
		}
	}
	return ""
}

// SignedBy reports whether userID has already signed the document.
func (d *Document) SignedBy(userID primitive.ObjectID) bool {
	for _, s := range d.Signatures {
		if s.UserID == userID {
			return true
		}
	}
	return false
}

// ShareDocumentRequest is the body of POST /api/documents/:id/share.
type ShareDocumentRequest struct {
	UserID     string `json:"userId" binding:"required"`
	Permission string `json:"permission" binding:"required,oneof=view sign"`
}

// SignDocumentRequest is the body of POST /api/documents/:id/sign.
type SignDocumentRequest struct {
	ImageData string `json:"imageData" binding:"required"`
}
