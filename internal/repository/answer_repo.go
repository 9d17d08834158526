package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"peergrade/internal/model"
)

// AnswerRepo handles MongoDB operations for answers
type AnswerRepo interface {
	// Upsert writes the answer keyed on (responseId, questionId): it creates
	// the record on first write and overwrites value and comment afterwards.
	// Each call is atomic and independent of the rest of the batch.
	Upsert(ctx context.Context, answer *model.Answer) error
	GetByResponse(ctx context.Context, responseID string) ([]*model.Answer, error)
	Get(ctx context.Context, responseID, questionID string) (*model.Answer, error)
	DeleteByResponse(ctx context.Context, responseID string) error
}

type answerRepo struct {
	collection *mongo.Collection
}

// NewAnswerRepo creates a new answer repository
func NewAnswerRepo(db *mongo.Database) AnswerRepo {
	return &answerRepo{
		collection: db.Collection("answers"),
	}
}

func (r *answerRepo) Upsert(ctx context.Context, answer *model.Answer) error {
	filter := bson.M{
		"responseId": answer.ResponseID,
		"questionId": answer.QuestionID,
	}
	update := bson.M{
		"$set": bson.M{
			"value":   answer.Value,
			"comment": answer.Comment,
		},
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID().Hex(),
			"responseId": answer.ResponseID,
			"questionId": answer.QuestionID,
		},
	}
	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *answerRepo) GetByResponse(ctx context.Context, responseID string) ([]*model.Answer, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"responseId": responseID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var answers []*model.Answer
	if err := cursor.All(ctx, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

func (r *answerRepo) Get(ctx context.Context, responseID, questionID string) (*model.Answer, error) {
	var answer model.Answer
	err := r.collection.FindOne(ctx, bson.M{
		"responseId": responseID,
		"questionId": questionID,
	}).Decode(&answer)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

func (r *answerRepo) DeleteByResponse(ctx context.Context, responseID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"responseId": responseID})
	return err
}
