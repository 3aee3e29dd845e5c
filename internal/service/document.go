package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/nazirsaif/nexus-sub000/internal/model"
	"github.com/nazirsaif/nexus-sub000/internal/repository"
	"github.com/nazirsaif/nexus-sub000/pkg/storage"
	"github.com/nazirsaif/nexus-sub000/pkg/util"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DocumentService handles uploads, sharing permissions and e-signatures.
type DocumentService struct {
	docs  repository.IDocumentRepository
	users repository.IUserRepository
	store *storage.DiskStore
}

func NewDocumentService(docs repository.IDocumentRepository, users repository.IUserRepository, store *storage.DiskStore) *DocumentService {
	return &DocumentService{docs: docs, users: users, store: store}
}

// Upload validates the file, records its metadata and stores the bytes.
func (s *DocumentService) Upload(ctx context.Context, ownerID primitive.ObjectID, title string, header *multipart.FileHeader) (*model.Document, error) {
	if err := s.store.Validate(header); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if title == "" {
		title = header.Filename
	}

	doc, err := s.docs.Create(ctx, &model.Document{
		OwnerID:      ownerID,
		Title:        title,
		OriginalName: header.Filename,
		StoredName:   storage.SanitizeFilename(header.Filename),
		MimeType:     header.Header.Get("Content-Type"),
		Size:         header.Size,
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.store.Save(doc.ID.Hex(), header); err != nil {
		// Roll the metadata back; a document without a file is useless.
		_ = s.docs.Delete(ctx, doc.ID)
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"documentId": doc.ID.Hex(),
		"ownerId":    ownerID.Hex(),
		"size":       doc.Size,
	}).Info("document uploaded")
	return doc, nil
}

// ListForUser returns documents owned by or shared with the user.
func (s *DocumentService) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]*model.Document, error) {
	return s.docs.FindForUser(ctx, userID)
}

// Get returns a document the caller may see.
func (s *DocumentService) Get(ctx context.Context, docID, userID primitive.ObjectID) (*model.Document, error) {
	doc, err := s.docs.FindByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotFound
	}
	if doc.PermissionFor(userID) == "" {
		return nil, ErrForbidden
	}
	return doc, nil
}

// FilePath resolves the on-disk path for download, with the same access check
// as Get.
func (s *DocumentService) FilePath(ctx context.Context, docID, userID primitive.ObjectID) (string, *model.Document, error) {
	doc, err := s.Get(ctx, docID, userID)
	if err != nil {
		return "", nil, err
	}
	return s.store.Path(doc.ID.Hex(), doc.StoredName), doc, nil
}

// Share grants view or sign permission. Owner only.
func (s *DocumentService) Share(ctx context.Context, docID, ownerID primitive.ObjectID, req *model.ShareDocumentRequest) error {
	doc, err := s.docs.FindByID(ctx, docID)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrNotFound
	}
	if doc.OwnerID != ownerID {
		return fmt.Errorf("%w: only the owner may share a document", ErrForbidden)
	}

	targetID, err := util.ParseObjectID(req.UserID)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}
	if targetID == ownerID {
		return fmt.Errorf("%w: cannot share a document with yourself", ErrInvalidInput)
	}
	target, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return fmt.Errorf("%w: user does not exist", ErrInvalidInput)
	}

	return s.docs.AddShare(ctx, docID, model.SharePermission{
		UserID:     targetID,
		Permission: req.Permission,
		GrantedAt:  time.Now(),
	})
}

// Unshare revokes a user's access. Owner only.
func (s *DocumentService) Unshare(ctx context.Context, docID, ownerID, targetID primitive.ObjectID) error {
	doc, err := s.docs.FindByID(ctx, docID)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrNotFound
	}
	if doc.OwnerID != ownerID {
		return fmt.Errorf("%w: only the owner may revoke sharing", ErrForbidden)
	}
	return s.docs.RemoveShare(ctx, docID, targetID)
}

// Sign appends a captured signature. Requires sign permission; one signature
// per user.
func (s *DocumentService) Sign(ctx context.Context, docID, userID primitive.ObjectID, imageData string) (*model.Document, error) {
	doc, err := s.docs.FindByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotFound
	}
	if doc.PermissionFor(userID) != model.PermissionSign {
		return nil, fmt.Errorf("%w: sign permission required", ErrForbidden)
	}
	if doc.SignedBy(userID) {
		return nil, fmt.Errorf("%w: document already signed by this user", ErrConflict)
	}

	sig := model.Signature{UserID: userID, ImageData: imageData, SignedAt: time.Now()}
	if err := s.docs.AddSignature(ctx, docID, sig); err != nil {
		return nil, err
	}
	doc.Signatures = append(doc.Signatures, sig)

	logrus.WithFields(logrus.Fields{
		"documentId": docID.Hex(),
		"signerId":   userID.Hex(),
	}).Info("document signed")
	return doc, nil
}

// Delete removes the file and metadata. Uploader only.
func (s *DocumentService) Delete(ctx context.Context, docID, callerID primitive.ObjectID) error {
	doc, err := s.docs.FindByID(ctx, docID)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrNotFound
	}
	if doc.OwnerID != callerID {
		return fmt.Errorf("%w: only the uploader may delete a document", ErrForbidden)
	}
	if err := s.docs.Delete(ctx, docID); err != nil {
		return err
	}
	if err := s.store.Remove(docID.Hex()); err != nil {
		logrus.WithError(err).WithField("documentId", docID.Hex()).Warn("failed to remove document files")
	}
	return nil
}
