package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"peergrade/internal/model"
)

// AssignmentRepo reads the slice of assignment state the engine consumes.
type AssignmentRepo interface {
	Create(ctx context.Context, assignment *model.Assignment) error
	GetByID(ctx context.Context, id string) (*model.Assignment, error)
}

type assignmentRepo struct {
	collection *mongo.Collection
}

// NewAssignmentRepo creates a new assignment repository
func NewAssignmentRepo(db *mongo.Database) AssignmentRepo {
	return &assignmentRepo{
		collection: db.Collection("assignments"),
	}
}

func (r *assignmentRepo) Create(ctx context.Context, assignment *model.Assignment) error {
	_, err := r.collection.InsertOne(ctx, assignment)
	return err
}

func (r *assignmentRepo) GetByID(ctx context.Context, id string) (*model.Assignment, error) {
	var assignment model.Assignment
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&assignment)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}
