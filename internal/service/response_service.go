package service

import (
	"context"
	"fmt"
	"log"

	"peergrade/internal/model"
	"peergrade/internal/repository"
)

// AccessPolicy answers whether a user may edit responses on a mapping. The
// engine trusts the answer and implements no policy itself.
type AccessPolicy interface {
	CanEdit(ctx context.Context, userID string, mapping *model.Mapping) (bool, error)
}

// ReviewerOnlyPolicy is the default policy: only the mapping's reviewer may
// edit its responses.
type ReviewerOnlyPolicy struct{}

func (ReviewerOnlyPolicy) CanEdit(_ context.Context, userID string, mapping *model.Mapping) (bool, error) {
	return userID == mapping.ReviewerID, nil
}

// AnswerInput is one question's answer as supplied by the reviewer.
type AnswerInput struct {
	QuestionID string `json:"questionId"`
	Value      *int   `json:"value"`
	Comment    string `json:"comment"`
}

// SaveRequest carries an autosave or submission of a response.
type SaveRequest struct {
	AdditionalComment string        `json:"additionalComment"`
	Answers           []AnswerInput `json:"answers"`
	// Submit marks the response submitted. Autosaves leave it false; only an
	// explicit completion signal flips it.
	Submit bool `json:"submit"`
}

// SaveResult reports the state after a save.
type SaveResult struct {
	Response  *model.Response `json:"response"`
	Aggregate int             `json:"aggregate"`
	Maximum   int             `json:"maximum"`
	Notified  bool            `json:"notified"`
}

// ResponseView is a response together with its rubric and answers. State
// carries the locked overlay when another holder owns the artifact.
type ResponseView struct {
	Response      *model.Response      `json:"response"`
	State         model.ResponseState  `json:"state"`
	Editable      bool                 `json:"editable"`
	Questionnaire *model.Questionnaire `json:"questionnaire"`
	Answers       []*model.Answer      `json:"answers"`
}

// ResponseService drives the response lifecycle: begin/edit, autosave,
// submit, delete. It owns no policy, no scoring math, and no delivery.
type ResponseService struct {
	mappings    repository.MappingRepo
	responses   repository.ResponseRepo
	answers     repository.AnswerRepo
	assignments repository.AssignmentRepo
	resolver    *ResolverService
	scoring     *ScoringService
	locks       *LockManager
	notifier    *Notifier
	policy      AccessPolicy
}

// NewResponseService creates a new response lifecycle service
func NewResponseService(
	mappings repository.MappingRepo,
	responses repository.ResponseRepo,
	answers repository.AnswerRepo,
	assignments repository.AssignmentRepo,
	resolver *ResolverService,
	scoring *ScoringService,
	locks *LockManager,
	notifier *Notifier,
	policy AccessPolicy,
) *ResponseService {
	if policy == nil {
		policy = ReviewerOnlyPolicy{}
	}
	return &ResponseService{
		mappings:    mappings,
		responses:   responses,
		answers:     answers,
		assignments: assignments,
		resolver:    resolver,
		scoring:     scoring,
		locks:       locks,
		notifier:    notifier,
		policy:      policy,
	}
}

// Begin opens the mapping's response for the round for editing, creating a
// fresh draft when none exists or when the latest one was already submitted
// (re-submission never mutates history). With team reviewing enabled the
// artifact lock is acquired first; losing it yields a read-only locked view,
// not an error.
func (s *ResponseService) Begin(ctx context.Context, actorID, mapID string, round int) (*ResponseView, error) {
	mapping, assignment, err := s.mappingWithAssignment(ctx, mapID)
	if err != nil {
		return nil, err
	}
	if mapping.Kind == model.KindQuiz {
		return nil, validationErr("mapping", "quiz mappings are graded through the quiz endpoint")
	}
	if err := s.authorize(ctx, actorID, mapping); err != nil {
		return nil, err
	}
	if round == 0 && mapping.Kind.RubricVariesByRound() {
		round = assignment.RoundForTopic(mapping.TopicID)
	}

	if assignment.TeamReviewing {
		if _, err := s.locks.Acquire(ctx, mapID, actorID); err == ErrLocked {
			return s.lockedView(ctx, mapping, round)
		} else if err != nil {
			return nil, err
		}
	}

	response, err := s.responses.LatestForRound(ctx, mapID, round)
	if err != nil {
		return nil, fmt.Errorf("failed to load response: %w", err)
	}
	fresh := response == nil || response.Submitted
	if fresh {
		response = &model.Response{MapID: mapID, Round: round}
		if _, err := s.responses.Create(ctx, response); err != nil {
			return nil, fmt.Errorf("failed to create response: %w", err)
		}
	}

	var existing *model.Response
	if !fresh {
		existing = response
	}
	questionnaire, err := s.resolver.Resolve(ctx, mapping, round, existing)
	if err != nil {
		return nil, err
	}
	if err := s.initAnswers(ctx, response.ID, questionnaire); err != nil {
		return nil, err
	}

	answers, err := s.answers.GetByResponse(ctx, response.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}
	return &ResponseView{
		Response:      response,
		State:         response.State(),
		Editable:      true,
		Questionnaire: questionnaire,
		Answers:       answers,
	}, nil
}

// Get returns the response with its rubric and answers. The reviewer always
// sees their own response; anyone else needs the visibility flag.
func (s *ResponseService) Get(ctx context.Context, actorID, responseID string) (*ResponseView, error) {
	response, mapping, err := s.responseWithMapping(ctx, responseID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.policy.CanEdit(ctx, actorID, mapping)
	if err != nil {
		return nil, err
	}
	if !allowed && !response.Visible {
		return nil, ErrForbidden
	}

	questionnaire, err := s.resolver.Resolve(ctx, mapping, response.Round, response)
	if err != nil {
		return nil, err
	}
	answers, err := s.answers.GetByResponse(ctx, response.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}
	return &ResponseView{
		Response:      response,
		State:         response.State(),
		Editable:      allowed,
		Questionnaire: questionnaire,
		Answers:       answers,
	}, nil
}

// Save applies an autosave or submission. Each answer upsert is atomic and
// independent: a failure mid-batch leaves the answers already written valid.
// Submitting a review triggers the significant-difference check, and a flagged
// difference notifies the instructor without ever blocking the save.
func (s *ResponseService) Save(ctx context.Context, actorID, responseID string, req *SaveRequest) (*SaveResult, error) {
	response, mapping, err := s.responseWithMapping(ctx, responseID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actorID, mapping); err != nil {
		return nil, err
	}
	assignment, err := s.assignment(ctx, mapping)
	if err != nil {
		return nil, err
	}
	if assignment.TeamReviewing {
		held, err := s.locks.Held(ctx, mapping.ID, actorID)
		if err != nil {
			return nil, err
		}
		if !held {
			return nil, ErrLocked
		}
	}

	questionnaire, err := s.resolver.Resolve(ctx, mapping, response.Round, response)
	if err != nil {
		return nil, err
	}
	if err := s.upsertAnswers(ctx, response.ID, questionnaire, req.Answers); err != nil {
		return nil, err
	}

	wasSubmitted := response.Submitted
	response.AdditionalComment = req.AdditionalComment
	if req.Submit {
		response.Submitted = true
	}
	if err := s.responses.Update(ctx, response); err != nil {
		return nil, fmt.Errorf("failed to update response: %w", err)
	}

	answers, err := s.answers.GetByResponse(ctx, response.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}
	result := &SaveResult{
		Response:  response,
		Aggregate: AggregateScore(questionnaire, answers),
		Maximum:   MaximumScore(questionnaire, answers),
	}

	if !wasSubmitted && response.Submitted {
		s.notifier.ResponseSubmitted(assignment, mapping, response)
		if mapping.Kind.IsReview() {
			result.Notified = s.checkDifference(ctx, assignment, mapping, response)
		}
	}
	return result, nil
}

// Delete destroys the response and its answers. With team reviewing the
// caller must win the lock first; the lock is released once the artifact is
// gone.
func (s *ResponseService) Delete(ctx context.Context, actorID, responseID string) error {
	response, mapping, err := s.responseWithMapping(ctx, responseID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, actorID, mapping); err != nil {
		return err
	}
	assignment, err := s.assignment(ctx, mapping)
	if err != nil {
		return err
	}
	if assignment.TeamReviewing {
		if _, err := s.locks.Acquire(ctx, mapping.ID, actorID); err != nil {
			return err
		}
	}

	if err := s.answers.DeleteByResponse(ctx, response.ID); err != nil {
		return fmt.Errorf("failed to delete answers: %w", err)
	}
	if err := s.responses.Delete(ctx, response.ID); err != nil {
		return fmt.Errorf("failed to delete response: %w", err)
	}
	if assignment.TeamReviewing {
		if err := s.locks.Release(ctx, mapping.ID); err != nil {
			log.Printf("failed to release lock for mapping %s: %v", mapping.ID, err)
		}
	}
	return nil
}

// SetVisibility flips whether the response is shown to others. No other
// lifecycle side effects.
func (s *ResponseService) SetVisibility(ctx context.Context, actorID, responseID string, visible bool) (*model.Response, error) {
	response, mapping, err := s.responseWithMapping(ctx, responseID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actorID, mapping); err != nil {
		return nil, err
	}
	response.Visible = visible
	if err := s.responses.Update(ctx, response); err != nil {
		return nil, fmt.Errorf("failed to update response: %w", err)
	}
	return response, nil
}

// RoundComments is the comment roll-up of one round.
type RoundComments struct {
	Round    int    `json:"round"`
	Comments string `json:"comments"`
	Count    int    `json:"count"`
}

// ReviewComments aggregates the comments a reviewer left across every round
// of every review mapping in the assignment, using the response of record
// (last created) per round.
type ReviewComments struct {
	Comments string          `json:"comments"`
	Count    int             `json:"count"`
	Rounds   []RoundComments `json:"rounds"`
}

// CommentsByReviewer builds the review-comment roll-up for one reviewer in
// one assignment.
func (s *ResponseService) CommentsByReviewer(ctx context.Context, assignmentID, reviewerID string) (*ReviewComments, error) {
	assignment, err := s.assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignment: %w", err)
	}
	if assignment == nil {
		return nil, fmt.Errorf("assignment %s: %w", assignmentID, ErrNotFound)
	}
	mappings, err := s.mappings.GetByReviewer(ctx, assignmentID, reviewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load mappings: %w", err)
	}

	rounds := assignment.NumRounds
	if rounds < 1 {
		rounds = 1
	}
	out := &ReviewComments{Rounds: make([]RoundComments, rounds)}
	for i := range out.Rounds {
		out.Rounds[i].Round = i + 1
	}

	for _, mapping := range mappings {
		if !mapping.Kind.IsReview() {
			continue
		}
		for round := 1; round <= rounds; round++ {
			latest, err := s.responses.LatestForRound(ctx, mapping.ID, round)
			if err != nil {
				return nil, fmt.Errorf("failed to load response: %w", err)
			}
			if latest == nil {
				continue
			}
			answers, err := s.answers.GetByResponse(ctx, latest.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to load answers: %w", err)
			}
			bucket := &out.Rounds[round-1]
			for _, a := range answers {
				out.Comments += a.Comment
				bucket.Comments += a.Comment
			}
			out.Comments += latest.AdditionalComment
			bucket.Comments += latest.AdditionalComment
			out.Count++
			bucket.Count++
		}
	}
	return out, nil
}

func (s *ResponseService) checkDifference(ctx context.Context, assignment *model.Assignment, mapping *model.Mapping, response *model.Response) bool {
	result, err := s.scoring.SignificantDifference(ctx, assignment, mapping, response)
	if err != nil {
		// The submission itself already persisted; the comparison is advisory.
		log.Printf("significant difference check failed for response %s: %v", response.ID, err)
		return false
	}
	if !result.Significant {
		return false
	}
	s.notifier.GradeConflict(assignment, mapping, response, result)
	return true
}

// initAnswers pre-creates a blank answer per question so concurrent editing
// windows converge on upserts. Upload questions carry no answer record.
// Existing answers are left untouched.
func (s *ResponseService) initAnswers(ctx context.Context, responseID string, q *model.Questionnaire) error {
	for _, question := range q.SortedQuestions() {
		if question.Type == model.QuestionUploadFile {
			continue
		}
		existing, err := s.answers.Get(ctx, responseID, question.ID)
		if err != nil {
			return fmt.Errorf("failed to load answer: %w", err)
		}
		if existing != nil {
			continue
		}
		blank := &model.Answer{ResponseID: responseID, QuestionID: question.ID}
		if err := s.answers.Upsert(ctx, blank); err != nil {
			return fmt.Errorf("failed to init answer: %w", err)
		}
	}
	return nil
}

func (s *ResponseService) upsertAnswers(ctx context.Context, responseID string, q *model.Questionnaire, inputs []AnswerInput) error {
	for _, in := range inputs {
		question := q.QuestionByID(in.QuestionID)
		if question == nil {
			return validationErr("questionId", "question %s is not part of the rubric", in.QuestionID)
		}
		if in.Value != nil {
			if !question.Type.Scorable() {
				return validationErr("value", "question %s takes no score", in.QuestionID)
			}
			if *in.Value < q.MinQuestionScore || *in.Value > q.MaxQuestionScore {
				return validationErr("value", "score for question %s must be between %d and %d",
					in.QuestionID, q.MinQuestionScore, q.MaxQuestionScore)
			}
		}
		answer := &model.Answer{
			ResponseID: responseID,
			QuestionID: in.QuestionID,
			Value:      in.Value,
			Comment:    in.Comment,
		}
		if err := s.answers.Upsert(ctx, answer); err != nil {
			return fmt.Errorf("failed to save answer for question %s: %w", in.QuestionID, err)
		}
	}
	return nil
}

func (s *ResponseService) lockedView(ctx context.Context, mapping *model.Mapping, round int) (*ResponseView, error) {
	response, err := s.responses.LatestForRound(ctx, mapping.ID, round)
	if err != nil {
		return nil, fmt.Errorf("failed to load response: %w", err)
	}
	view := &ResponseView{State: model.StateLocked, Editable: false}
	if response == nil {
		return view, nil
	}
	view.Response = response
	view.Answers, err = s.answers.GetByResponse(ctx, response.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}
	view.Questionnaire, err = s.resolver.Resolve(ctx, mapping, round, response)
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *ResponseService) authorize(ctx context.Context, actorID string, mapping *model.Mapping) error {
	allowed, err := s.policy.CanEdit(ctx, actorID, mapping)
	if err != nil {
		return fmt.Errorf("access policy failed: %w", err)
	}
	if !allowed {
		return ErrForbidden
	}
	return nil
}

func (s *ResponseService) mappingWithAssignment(ctx context.Context, mapID string) (*model.Mapping, *model.Assignment, error) {
	mapping, err := s.mappings.GetByID(ctx, mapID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load mapping: %w", err)
	}
	if mapping == nil {
		return nil, nil, fmt.Errorf("mapping %s: %w", mapID, ErrNotFound)
	}
	assignment, err := s.assignment(ctx, mapping)
	if err != nil {
		return nil, nil, err
	}
	return mapping, assignment, nil
}

func (s *ResponseService) responseWithMapping(ctx context.Context, responseID string) (*model.Response, *model.Mapping, error) {
	response, err := s.responses.GetByID(ctx, responseID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load response: %w", err)
	}
	if response == nil {
		return nil, nil, fmt.Errorf("response %s: %w", responseID, ErrNotFound)
	}
	mapping, err := s.mappings.GetByID(ctx, response.MapID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load mapping: %w", err)
	}
	if mapping == nil {
		return nil, nil, fmt.Errorf("mapping %s: %w", response.MapID, ErrNotFound)
	}
	return response, mapping, nil
}

func (s *ResponseService) assignment(ctx context.Context, mapping *model.Mapping) (*model.Assignment, error) {
	assignment, err := s.assignments.GetByID(ctx, mapping.AssignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assignment: %w", err)
	}
	if assignment == nil {
		return nil, fmt.Errorf("assignment %s: %w", mapping.AssignmentID, ErrNotFound)
	}
	return assignment, nil
}
