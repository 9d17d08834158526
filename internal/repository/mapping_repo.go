package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"peergrade/internal/model"
)

// MappingRepo handles MongoDB operations for review mappings. Mappings are
// created by the surrounding system; this engine reads them and, on cascade,
// never deletes them itself.
type MappingRepo interface {
	Create(ctx context.Context, mapping *model.Mapping) error
	GetByID(ctx context.Context, id string) (*model.Mapping, error)
	// GetPeers returns every mapping of the same kind pointing at the same
	// reviewee within the assignment, the current one included.
	GetPeers(ctx context.Context, mapping *model.Mapping) ([]*model.Mapping, error)
	GetByReviewer(ctx context.Context, assignmentID, reviewerID string) ([]*model.Mapping, error)
}

type mappingRepo struct {
	collection *mongo.Collection
}

// NewMappingRepo creates a new mapping repository
func NewMappingRepo(db *mongo.Database) MappingRepo {
	return &mappingRepo{
		collection: db.Collection("mappings"),
	}
}

func (r *mappingRepo) Create(ctx context.Context, mapping *model.Mapping) error {
	_, err := r.collection.InsertOne(ctx, mapping)
	return err
}

func (r *mappingRepo) GetByID(ctx context.Context, id string) (*model.Mapping, error) {
	var mapping model.Mapping
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&mapping)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}

func (r *mappingRepo) GetPeers(ctx context.Context, mapping *model.Mapping) ([]*model.Mapping, error) {
	cursor, err := r.collection.Find(ctx, bson.M{
		"assignmentId": mapping.AssignmentID,
		"revieweeId":   mapping.RevieweeID,
		"kind":         mapping.Kind,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var mappings []*model.Mapping
	if err := cursor.All(ctx, &mappings); err != nil {
		return nil, err
	}
	return mappings, nil
}

func (r *mappingRepo) GetByReviewer(ctx context.Context, assignmentID, reviewerID string) ([]*model.Mapping, error) {
	cursor, err := r.collection.Find(ctx, bson.M{
		"assignmentId": assignmentID,
		"reviewerId":   reviewerID,
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var mappings []*model.Mapping
	if err := cursor.All(ctx, &mappings); err != nil {
		return nil, err
	}
	return mappings, nil
}
