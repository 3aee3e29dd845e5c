package repository

import (
	"context"
	"time"

	"github.com/nazirsaif/nexus-sub000/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IDocumentRepository defines document metadata persistence
type IDocumentRepository interface {
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Document, error)
	FindForUser(ctx context.Context, userID primitive.ObjectID) ([]*model.Document, error)
	AddShare(ctx context.Context, docID primitive.ObjectID, share model.SharePermission) error
	RemoveShare(ctx context.Context, docID, userID primitive.ObjectID) error
	AddSignature(ctx context.Context, docID primitive.ObjectID, sig model.Signature) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// DocumentRepository implements document metadata persistence
type DocumentRepository struct {
	collection *mongo.Collection
}

func NewDocumentRepository(db *mongo.Database) IDocumentRepository {
	return &DocumentRepository{collection: db.Collection("documents")}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.SharedWith == nil {
		doc.SharedWith = []model.SharePermission{}
	}
	if doc.Signatures == nil {
		doc.Signatures = []model.Signature{}
	}
	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		doc.ID = oid
	}
	return doc, nil
}

func (r *DocumentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Document, error) {
	var doc *model.Document
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return doc, nil
}

func (r *DocumentRepository) FindForUser(ctx context.Context, userID primitive.ObjectID) ([]*model.Document, error) {
	filter := bson.M{"$or": []bson.M{
		{"ownerId": userID},
		{"sharedWith.userId": userID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []*model.Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *DocumentRepository) AddShare(ctx context.Context, docID primitive.ObjectID, share model.SharePermission) error {
	// Replace an existing grant for the same user, if any, then push.
	if err := r.RemoveShare(ctx, docID, share.UserID); err != nil {
		return err
	}
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": docID},
		bson.M{
			"$push": bson.M{"sharedWith": share},
			"$set":  bson.M{"updatedAt": time.Now()},
		})
	return err
}

func (r *DocumentRepository) RemoveShare(ctx context.Context, docID, userID primitive.ObjectID) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": docID},
		bson.M{
			"$pull": bson.M{"sharedWith": bson.M{"userId": userID}},
			"$set":  bson.M{"updatedAt": time.Now()},
		})
	return err
}

func (r *DocumentRepository) AddSignature(ctx context.Context, docID primitive.ObjectID, sig model.Signature) error {
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": docID},
		bson.M{
			"$push": bson.M{"signatures": sig},
			"$set":  bson.M{"updatedAt": time.Now()},
		})
	return err
}

func (r *DocumentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
