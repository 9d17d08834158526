package service

import (
	"context"
	"fmt"
	"log"

	"peergrade/internal/cache"
	"peergrade/internal/model"
	"peergrade/internal/repository"
)

// ResolverService picks the questionnaire that applies to a mapping.
// Resolution is a pure function of the mapping, the round, and whatever
// answers the response already carries.
type ResolverService struct {
	questionnaires repository.QuestionnaireRepo
	assignments    repository.AssignmentRepo
	answers        repository.AnswerRepo
	rubrics        cache.RubricCache
}

// NewResolverService creates a new resolver. The rubric cache is optional.
func NewResolverService(
	questionnaires repository.QuestionnaireRepo,
	assignments repository.AssignmentRepo,
	answers repository.AnswerRepo,
	rubrics cache.RubricCache,
) *ResolverService {
	return &ResolverService{
		questionnaires: questionnaires,
		assignments:    assignments,
		answers:        answers,
		rubrics:        rubrics,
	}
}

// Resolve returns the questionnaire governing (mapping, round). When a
// response with stored answers is supplied, the rubric is derived from the
// question its first answer references; a rubric whose only question is a
// file upload leaves no answers behind, in which case the assignment's
// default review rubric applies.
func (s *ResolverService) Resolve(ctx context.Context, mapping *model.Mapping, round int, response *model.Response) (*model.Questionnaire, error) {
	if response != nil {
		q, err := s.fromAnswers(ctx, mapping, response)
		if err != nil || q != nil {
			return q, err
		}
	}
	return s.fromMapping(ctx, mapping, round)
}

func (s *ResolverService) fromAnswers(ctx context.Context, mapping *model.Mapping, response *model.Response) (*model.Questionnaire, error) {
	answers, err := s.answers.GetByResponse(ctx, response.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}
	if len(answers) == 0 {
		// Upload-only rubric: no answer records exist. Fall back to the
		// assignment's default review questionnaire.
		assignment, err := s.assignment(ctx, mapping)
		if err != nil {
			return nil, err
		}
		if id := assignment.DefaultReviewRubric(); id != "" {
			return s.questionnaire(ctx, id)
		}
		return nil, nil
	}
	q, err := s.questionnaires.GetByQuestionID(ctx, answers[0].QuestionID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up questionnaire by question: %w", err)
	}
	if q == nil {
		return nil, ErrResolutionFailed
	}
	return q, nil
}

func (s *ResolverService) fromMapping(ctx context.Context, mapping *model.Mapping, round int) (*model.Questionnaire, error) {
	switch {
	case mapping.Kind.RubricVariesByRound():
		assignment, err := s.assignment(ctx, mapping)
		if err != nil {
			return nil, err
		}
		if round == 0 {
			round = assignment.RoundForTopic(mapping.TopicID)
		}
		id := assignment.RubricFor(round, mapping.TopicID)
		if id == "" {
			return nil, ErrResolutionFailed
		}
		return s.questionnaire(ctx, id)

	case mapping.Kind.RubricMayVaryByDuty():
		assignment, err := s.assignment(ctx, mapping)
		if err != nil {
			return nil, err
		}
		if assignment.DutyBased && mapping.DutyID != "" {
			id := assignment.RubricForDuty(mapping.DutyID)
			if id == "" {
				return nil, ErrResolutionFailed
			}
			return s.questionnaire(ctx, id)
		}
		if mapping.QuestionnaireID == "" {
			return nil, ErrResolutionFailed
		}
		return s.questionnaire(ctx, mapping.QuestionnaireID)

	case mapping.Kind == model.KindQuiz:
		if mapping.QuestionnaireID != "" {
			return s.questionnaire(ctx, mapping.QuestionnaireID)
		}
		// Multiple quizzes can exist per assignment, keyed by the authoring
		// team; the reviewee of a quiz mapping is that team.
		quizzes, err := s.questionnaires.GetByOwnerTeam(ctx, mapping.RevieweeID)
		if err != nil {
			return nil, fmt.Errorf("failed to look up team quizzes: %w", err)
		}
		if len(quizzes) == 0 {
			return nil, ErrResolutionFailed
		}
		return quizzes[0], nil

	default:
		return nil, model.ErrBadKind
	}
}

func (s *ResolverService) assignment(ctx context.Context, mapping *model.Mapping) (*model.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, mapping.AssignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignment: %w", err)
	}
	if assignment == nil {
		return nil, ErrResolutionFailed
	}
	return assignment, nil
}

func (s *ResolverService) questionnaire(ctx context.Context, id string) (*model.Questionnaire, error) {
	if s.rubrics != nil {
		q, err := s.rubrics.Get(ctx, id)
		if err != nil {
			log.Printf("rubric cache read failed for %s: %v", id, err)
		}
		if q != nil {
			return q, nil
		}
	}
	q, err := s.questionnaires.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load questionnaire: %w", err)
	}
	if q == nil {
		return nil, ErrResolutionFailed
	}
	if s.rubrics != nil {
		if err := s.rubrics.Set(ctx, q); err != nil {
			log.Printf("rubric cache write failed for %s: %v", id, err)
		}
	}
	return q, nil
}
