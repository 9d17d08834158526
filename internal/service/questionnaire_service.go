package service

import (
	"context"
	"fmt"
	"log"

	"peergrade/internal/cache"
	"peergrade/internal/model"
	"peergrade/internal/repository"
)

// QuestionnaireService manages rubric definitions. Creation validates the
// score-bound invariant; existing rubrics are immutable once answered, so
// there is no update path.
type QuestionnaireService struct {
	questionnaires repository.QuestionnaireRepo
	rubrics        cache.RubricCache
}

// NewQuestionnaireService creates a new questionnaire service
func NewQuestionnaireService(questionnaires repository.QuestionnaireRepo, rubrics cache.RubricCache) *QuestionnaireService {
	return &QuestionnaireService{
		questionnaires: questionnaires,
		rubrics:        rubrics,
	}
}

// Create validates and stores a questionnaire.
func (s *QuestionnaireService) Create(ctx context.Context, q *model.Questionnaire) (string, error) {
	if err := q.Validate(); err != nil {
		return "", &ValidationError{Field: "questionnaire", Msg: err.Error()}
	}
	id, err := s.questionnaires.Create(ctx, q)
	if err != nil {
		return "", fmt.Errorf("failed to create questionnaire: %w", err)
	}
	if s.rubrics != nil {
		if err := s.rubrics.Set(ctx, q); err != nil {
			log.Printf("rubric cache write failed for %s: %v", id, err)
		}
	}
	return id, nil
}

// Get returns one questionnaire.
func (s *QuestionnaireService) Get(ctx context.Context, id string) (*model.Questionnaire, error) {
	q, err := s.questionnaires.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load questionnaire: %w", err)
	}
	if q == nil {
		return nil, fmt.Errorf("questionnaire %s: %w", id, ErrNotFound)
	}
	return q, nil
}

// List returns every questionnaire.
func (s *QuestionnaireService) List(ctx context.Context) ([]*model.Questionnaire, error) {
	return s.questionnaires.List(ctx)
}
