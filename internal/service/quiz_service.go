package service

import (
	"context"
	"fmt"

	"peergrade/internal/model"
	"peergrade/internal/repository"
)

// QuizResult reports a graded quiz attempt.
type QuizResult struct {
	ResponseID string          `json:"responseId"`
	Score      int             `json:"score"`
	Maximum    int             `json:"maximum"`
	Answers    []*model.Answer `json:"answers"`
}

// QuizService grades auto-scored quiz responses. A quiz answer is worth the
// question's weight when it matches the stored correct choice and zero
// otherwise; the aggregate runs through the same scoring math as reviews.
type QuizService struct {
	mappings       repository.MappingRepo
	responses      repository.ResponseRepo
	answers        repository.AnswerRepo
	questionnaires repository.QuestionnaireRepo
	resolver       *ResolverService
	policy         AccessPolicy
}

// NewQuizService creates a new quiz service
func NewQuizService(
	mappings repository.MappingRepo,
	responses repository.ResponseRepo,
	answers repository.AnswerRepo,
	questionnaires repository.QuestionnaireRepo,
	resolver *ResolverService,
	policy AccessPolicy,
) *QuizService {
	if policy == nil {
		policy = ReviewerOnlyPolicy{}
	}
	return &QuizService{
		mappings:       mappings,
		responses:      responses,
		answers:        answers,
		questionnaires: questionnaires,
		resolver:       resolver,
		policy:         policy,
	}
}

// Submit grades the submitted choices against the quiz's answer key. It
// fails without writing anything when a required question lacks an answer,
// and refuses a second attempt on the same mapping.
func (s *QuizService) Submit(ctx context.Context, actorID, mapID string, submitted map[string]string) (*QuizResult, error) {
	mapping, err := s.mappings.GetByID(ctx, mapID)
	if err != nil {
		return nil, fmt.Errorf("failed to load mapping: %w", err)
	}
	if mapping == nil {
		return nil, fmt.Errorf("mapping %s: %w", mapID, ErrNotFound)
	}
	if mapping.Kind != model.KindQuiz {
		return nil, validationErr("mapping", "mapping %s is not a quiz", mapID)
	}
	allowed, err := s.policy.CanEdit(ctx, actorID, mapping)
	if err != nil {
		return nil, fmt.Errorf("access policy failed: %w", err)
	}
	if !allowed {
		return nil, ErrForbidden
	}

	prior, err := s.responses.GetByMap(ctx, mapID)
	if err != nil {
		return nil, fmt.Errorf("failed to load prior attempts: %w", err)
	}
	if len(prior) > 0 {
		return nil, ErrQuizTaken
	}

	quiz, err := s.resolver.Resolve(ctx, mapping, 0, nil)
	if err != nil {
		return nil, err
	}

	// All-or-nothing validation before any write.
	for _, question := range quiz.Questions {
		if !question.Required || question.Type != model.QuestionMultipleChoice {
			continue
		}
		if _, ok := submitted[question.ID]; !ok {
			return nil, validationErr("answers", "question %s has no answer; answer every question", question.ID)
		}
	}

	response := &model.Response{MapID: mapID, Submitted: true}
	if _, err := s.responses.Create(ctx, response); err != nil {
		return nil, fmt.Errorf("failed to create response: %w", err)
	}

	graded := make([]*model.Answer, 0, len(quiz.Questions))
	for _, question := range quiz.Questions {
		if question.Type != model.QuestionMultipleChoice {
			continue
		}
		choice := submitted[question.ID]
		value := 0
		if choice != "" && choice == question.CorrectChoice {
			value = 1
		}
		answer := &model.Answer{
			ResponseID: response.ID,
			QuestionID: question.ID,
			Value:      &value,
			Comment:    choice,
		}
		if err := s.answers.Upsert(ctx, answer); err != nil {
			return nil, fmt.Errorf("failed to save quiz answer: %w", err)
		}
		graded = append(graded, answer)
	}

	return &QuizResult{
		ResponseID: response.ID,
		Score:      AggregateScore(quiz, graded),
		Maximum:    MaximumScore(quiz, graded),
		Answers:    graded,
	}, nil
}

// Result returns the graded attempt on a quiz mapping.
func (s *QuizService) Result(ctx context.Context, mapID string) (*QuizResult, error) {
	mapping, err := s.mappings.GetByID(ctx, mapID)
	if err != nil {
		return nil, fmt.Errorf("failed to load mapping: %w", err)
	}
	if mapping == nil || mapping.Kind != model.KindQuiz {
		return nil, fmt.Errorf("quiz mapping %s: %w", mapID, ErrNotFound)
	}
	attempts, err := s.responses.GetByMap(ctx, mapID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempts: %w", err)
	}
	if len(attempts) == 0 {
		return nil, fmt.Errorf("quiz attempt on mapping %s: %w", mapID, ErrNotFound)
	}
	attempt := attempts[0]

	quiz, err := s.resolver.Resolve(ctx, mapping, 0, attempt)
	if err != nil {
		return nil, err
	}
	answers, err := s.answers.GetByResponse(ctx, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}
	return &QuizResult{
		ResponseID: attempt.ID,
		Score:      AggregateScore(quiz, answers),
		Maximum:    MaximumScore(quiz, answers),
		Answers:    answers,
	}, nil
}

// Available lists the quizzes in an assignment the reviewer has not started
// yet, one quiz mapping per authoring team.
func (s *QuizService) Available(ctx context.Context, assignmentID, reviewerID string) ([]*model.Questionnaire, error) {
	mappings, err := s.mappings.GetByReviewer(ctx, assignmentID, reviewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load mappings: %w", err)
	}
	var quizzes []*model.Questionnaire
	for _, mapping := range mappings {
		if mapping.Kind != model.KindQuiz {
			continue
		}
		attempts, err := s.responses.GetByMap(ctx, mapping.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load attempts: %w", err)
		}
		if len(attempts) > 0 {
			continue
		}
		quiz, err := s.resolver.Resolve(ctx, mapping, 0, nil)
		if err == ErrResolutionFailed {
			continue
		}
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, nil
}
