package service

import (
	"context"
	"fmt"

	"peergrade/internal/model"
	"peergrade/internal/repository"
)

// AggregateScore sums answer value times question weight over the answers
// that are actually filled in and whose question is scorable. Advisory and
// unanswered questions are skipped, not zero-scored.
func AggregateScore(q *model.Questionnaire, answers []*model.Answer) int {
	sum := 0
	for _, a := range answers {
		if !a.Answered() {
			continue
		}
		question := q.QuestionByID(a.QuestionID)
		if question == nil || !question.Type.Scorable() {
			continue
		}
		sum += *a.Value * question.Weight
	}
	return sum
}

// MaximumScore is the weight sum of the scorable questions that were
// actually answered, times the questionnaire's per-question maximum. It
// deliberately tracks the answered set, not the rubric's full definition:
// the denominator follows what the reviewer was presented and filled in.
func MaximumScore(q *model.Questionnaire, answers []*model.Answer) int {
	weights := 0
	for _, a := range answers {
		if !a.Answered() {
			continue
		}
		question := q.QuestionByID(a.QuestionID)
		if question == nil || !question.Type.Scorable() {
			continue
		}
		weights += question.Weight
	}
	return weights * q.MaxQuestionScore
}

// SignificanceResult carries the outcome of the peer comparison.
type SignificanceResult struct {
	Significant bool
	Score       float64 // this response's aggregate/maximum, in [0,1]
	PeerAverage float64 // mean ratio of the other reviews on the artifact
	PeerCount   int
	Limit       float64 // allowed deviation in percent
}

// ScoringService computes aggregate scores and the significant-difference
// check against the other reviews of the same artifact.
type ScoringService struct {
	mappings  repository.MappingRepo
	responses repository.ResponseRepo
	answers   repository.AnswerRepo
	resolver  *ResolverService
}

// NewScoringService creates a new scoring service
func NewScoringService(
	mappings repository.MappingRepo,
	responses repository.ResponseRepo,
	answers repository.AnswerRepo,
	resolver *ResolverService,
) *ScoringService {
	return &ScoringService{
		mappings:  mappings,
		responses: responses,
		answers:   answers,
		resolver:  resolver,
	}
}

// ResponseScore computes the aggregate and maximum score of one response
// under its resolved questionnaire.
func (s *ScoringService) ResponseScore(ctx context.Context, mapping *model.Mapping, response *model.Response) (aggregate, maximum int, err error) {
	q, err := s.resolver.Resolve(ctx, mapping, response.Round, response)
	if err != nil {
		return 0, 0, err
	}
	answers, err := s.answers.GetByResponse(ctx, response.ID)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load answers: %w", err)
	}
	return AggregateScore(q, answers), MaximumScore(q, answers), nil
}

// SignificantDifference compares the response's score ratio against the
// average ratio of the other submitted reviews on the same artifact. Only
// review mappings carry the check. assignment supplies the per-questionnaire
// notification limit.
//
// Peers whose maximum score is zero (no scorable answers) are excluded from
// the average; if that leaves no baseline, there is no conflict.
func (s *ScoringService) SignificantDifference(ctx context.Context, assignment *model.Assignment, mapping *model.Mapping, response *model.Response) (*SignificanceResult, error) {
	if !mapping.Kind.IsReview() {
		return &SignificanceResult{}, nil
	}

	q, err := s.resolver.Resolve(ctx, mapping, response.Round, response)
	if err != nil {
		return nil, err
	}
	answers, err := s.answers.GetByResponse(ctx, response.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load answers: %w", err)
	}
	maximum := MaximumScore(q, answers)
	if maximum == 0 {
		// Nothing scorable was answered; no ratio to compare.
		return &SignificanceResult{}, nil
	}
	score := float64(AggregateScore(q, answers)) / float64(maximum)

	peerSum, peerCount, err := s.peerRatios(ctx, mapping, response)
	if err != nil {
		return nil, err
	}
	result := &SignificanceResult{
		Score:     score,
		PeerCount: peerCount,
		Limit:     assignment.NotificationLimit(q.ID),
	}
	if peerCount == 0 {
		// First review on this artifact: no baseline, no conflict.
		return result, nil
	}
	result.PeerAverage = peerSum / float64(peerCount)
	result.Significant = diff(result.PeerAverage, score)*100 > result.Limit
	return result, nil
}

// peerRatios sums the score ratios of the latest submitted response of every
// other mapping on the same artifact and round.
func (s *ScoringService) peerRatios(ctx context.Context, mapping *model.Mapping, response *model.Response) (sum float64, count int, err error) {
	peers, err := s.mappings.GetPeers(ctx, mapping)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to load peer mappings: %w", err)
	}
	for _, peer := range peers {
		latest, err := s.responses.LatestForRound(ctx, peer.ID, response.Round)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to load peer response: %w", err)
		}
		if latest == nil || latest.ID == response.ID || !latest.Submitted {
			continue
		}
		aggregate, maximum, err := s.ResponseScore(ctx, peer, latest)
		if err != nil {
			return 0, 0, err
		}
		if maximum == 0 {
			continue
		}
		sum += float64(aggregate) / float64(maximum)
		count++
	}
	return sum, count, nil
}

func diff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
