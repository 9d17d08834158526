package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"peergrade/internal/model"
)

// QuestionnaireRepo handles MongoDB operations for questionnaires. Questions
// are embedded in the questionnaire document.
type QuestionnaireRepo interface {
	Create(ctx context.Context, q *model.Questionnaire) (string, error)
	GetByID(ctx context.Context, id string) (*model.Questionnaire, error)
	// GetByOwnerTeam returns the quiz questionnaires authored by a team.
	GetByOwnerTeam(ctx context.Context, teamID string) ([]*model.Questionnaire, error)
	// GetByQuestionID finds the questionnaire embedding the question.
	GetByQuestionID(ctx context.Context, questionID string) (*model.Questionnaire, error)
	List(ctx context.Context) ([]*model.Questionnaire, error)
}

type questionnaireRepo struct {
	collection *mongo.Collection
}

// NewQuestionnaireRepo creates a new questionnaire repository
func NewQuestionnaireRepo(db *mongo.Database) QuestionnaireRepo {
	return &questionnaireRepo{
		collection: db.Collection("questionnaires"),
	}
}

func (r *questionnaireRepo) Create(ctx context.Context, q *model.Questionnaire) (string, error) {
	if err := q.Validate(); err != nil {
		return "", err
	}
	if q.ID == "" {
		q.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.collection.InsertOne(ctx, q); err != nil {
		return "", err
	}
	return q.ID, nil
}

func (r *questionnaireRepo) GetByID(ctx context.Context, id string) (*model.Questionnaire, error) {
	var q model.Questionnaire
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&q)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *questionnaireRepo) GetByOwnerTeam(ctx context.Context, teamID string) ([]*model.Questionnaire, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"ownerTeamId": teamID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questionnaires []*model.Questionnaire
	if err := cursor.All(ctx, &questionnaires); err != nil {
		return nil, err
	}
	return questionnaires, nil
}

func (r *questionnaireRepo) GetByQuestionID(ctx context.Context, questionID string) (*model.Questionnaire, error) {
	var q model.Questionnaire
	err := r.collection.FindOne(ctx, bson.M{"questions.id": questionID}).Decode(&q)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *questionnaireRepo) List(ctx context.Context) ([]*model.Questionnaire, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var questionnaires []*model.Questionnaire
	if err := cursor.All(ctx, &questionnaires); err != nil {
		return nil, err
	}
	return questionnaires, nil
}
