package service

import (
	"context"
	"testing"

	"peergrade/internal/model"
)

func TestAggregateAndMaximumScore(t *testing.T) {
	rubric := reviewRubric("quest_review")

	tests := []struct {
		name      string
		answers   []*model.Answer
		aggregate int
		maximum   int
	}{
		{
			name: "all scorable questions answered",
			answers: []*model.Answer{
				{QuestionID: "q1", Value: intp(5)},
				{QuestionID: "q2", Value: intp(4)},
				{QuestionID: "q3", Value: intp(5)},
				{QuestionID: "q4", Comment: "solid work"},
			},
			aggregate: 5*2 + 4*2 + 5*1, // 23
			maximum:   (2 + 2 + 1) * 5, // 25
		},
		{
			name: "unanswered question shrinks the denominator",
			answers: []*model.Answer{
				{QuestionID: "q1", Value: intp(3)},
				{QuestionID: "q2", Value: nil},
				{QuestionID: "q3", Value: intp(2)},
			},
			aggregate: 3*2 + 2*1,
			maximum:   (2 + 1) * 5,
		},
		{
			name: "comment-only answers never score",
			answers: []*model.Answer{
				{QuestionID: "q4", Comment: "prose only"},
			},
			aggregate: 0,
			maximum:   0,
		},
		{
			name: "answer to an unknown question is ignored",
			answers: []*model.Answer{
				{QuestionID: "q1", Value: intp(4)},
				{QuestionID: "q99", Value: intp(5)},
			},
			aggregate: 4 * 2,
			maximum:   2 * 5,
		},
		{
			name:      "no answers at all",
			answers:   nil,
			aggregate: 0,
			maximum:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AggregateScore(rubric, tt.answers); got != tt.aggregate {
				t.Errorf("AggregateScore = %d, want %d", got, tt.aggregate)
			}
			if got := MaximumScore(rubric, tt.answers); got != tt.maximum {
				t.Errorf("MaximumScore = %d, want %d", got, tt.maximum)
			}
		})
	}
}

// addPeerReview stores another review mapping on the same artifact with a
// submitted response scored uniformly at value.
func addPeerReview(f *fixture, id, reviewerID string, round, value int) {
	ctx := context.Background()
	mapping := &model.Mapping{
		ID:           id,
		Kind:         model.KindReview,
		AssignmentID: "asgt_1",
		ReviewerID:   reviewerID,
		RevieweeID:   "team_a",
		CreatedAt:    f.store.nextTime(),
	}
	f.mappings.Create(ctx, mapping)

	response := &model.Response{MapID: id, Round: round, Submitted: true}
	f.responses.Create(ctx, response)
	for _, q := range []string{"q1", "q2", "q3"} {
		f.answers.Upsert(ctx, &model.Answer{ResponseID: response.ID, QuestionID: q, Value: intp(value)})
	}
}

func TestSignificantDifference(t *testing.T) {
	ctx := context.Background()

	build := func(limit float64) (*fixture, *model.Assignment, *model.Mapping, *model.Response) {
		f := newFixture()
		assignment, mapping := f.seedReviewWorld(false)
		assignment.Rubrics[0].NotificationLimit = limit

		response := &model.Response{MapID: mapping.ID, Round: 1, Submitted: true}
		f.responses.Create(ctx, response)
		// 2*5+2*5+1*3 = 23 of 25, a 0.92 ratio.
		f.answers.Upsert(ctx, &model.Answer{ResponseID: response.ID, QuestionID: "q1", Value: intp(5)})
		f.answers.Upsert(ctx, &model.Answer{ResponseID: response.ID, QuestionID: "q2", Value: intp(5)})
		f.answers.Upsert(ctx, &model.Answer{ResponseID: response.ID, QuestionID: "q3", Value: intp(3)})
		return f, assignment, mapping, response
	}

	t.Run("deviation beyond the limit is significant", func(t *testing.T) {
		f, assignment, mapping, response := build(30)
		addPeerReview(f, "map_peer", "student_2", 1, 2) // ratio 0.4

		result, err := f.scoring.SignificantDifference(ctx, assignment, mapping, response)
		if err != nil {
			t.Fatalf("SignificantDifference: %v", err)
		}
		if !result.Significant {
			t.Errorf("0.92 vs peer 0.40 with limit 30 not flagged: %+v", result)
		}
		if result.PeerCount != 1 {
			t.Errorf("PeerCount = %d, want 1", result.PeerCount)
		}
	})

	t.Run("deviation within the limit passes", func(t *testing.T) {
		f, assignment, mapping, response := build(60)
		addPeerReview(f, "map_peer", "student_2", 1, 2)

		result, err := f.scoring.SignificantDifference(ctx, assignment, mapping, response)
		if err != nil {
			t.Fatalf("SignificantDifference: %v", err)
		}
		if result.Significant {
			t.Errorf("0.92 vs peer 0.40 with limit 60 flagged: %+v", result)
		}
	})

	t.Run("no peers means no conflict", func(t *testing.T) {
		f, assignment, mapping, response := build(0)

		result, err := f.scoring.SignificantDifference(ctx, assignment, mapping, response)
		if err != nil {
			t.Fatalf("SignificantDifference: %v", err)
		}
		if result.Significant {
			t.Error("flagged with no peer baseline")
		}
		if result.PeerCount != 0 {
			t.Errorf("PeerCount = %d, want 0", result.PeerCount)
		}
	})

	t.Run("peers without scorable answers are excluded", func(t *testing.T) {
		f, assignment, mapping, response := build(30)

		// Peer submitted only prose: maximum 0, no ratio to contribute.
		peer := &model.Mapping{
			ID: "map_peer", Kind: model.KindReview, AssignmentID: "asgt_1",
			ReviewerID: "student_2", RevieweeID: "team_a", CreatedAt: f.store.nextTime(),
		}
		f.mappings.Create(ctx, peer)
		peerResp := &model.Response{MapID: peer.ID, Round: 1, Submitted: true}
		f.responses.Create(ctx, peerResp)
		f.answers.Upsert(ctx, &model.Answer{ResponseID: peerResp.ID, QuestionID: "q4", Comment: "prose"})

		result, err := f.scoring.SignificantDifference(ctx, assignment, mapping, response)
		if err != nil {
			t.Fatalf("SignificantDifference: %v", err)
		}
		if result.PeerCount != 0 || result.Significant {
			t.Errorf("zero-maximum peer counted: %+v", result)
		}
	})

	t.Run("unsubmitted peer drafts are excluded", func(t *testing.T) {
		f, assignment, mapping, response := build(0)

		peer := &model.Mapping{
			ID: "map_peer", Kind: model.KindReview, AssignmentID: "asgt_1",
			ReviewerID: "student_2", RevieweeID: "team_a", CreatedAt: f.store.nextTime(),
		}
		f.mappings.Create(ctx, peer)
		draft := &model.Response{MapID: peer.ID, Round: 1}
		f.responses.Create(ctx, draft)
		f.answers.Upsert(ctx, &model.Answer{ResponseID: draft.ID, QuestionID: "q1", Value: intp(1)})

		result, err := f.scoring.SignificantDifference(ctx, assignment, mapping, response)
		if err != nil {
			t.Fatalf("SignificantDifference: %v", err)
		}
		if result.PeerCount != 0 {
			t.Errorf("draft peer counted: %+v", result)
		}
	})

	t.Run("non-review mappings never flag", func(t *testing.T) {
		f := newFixture()
		assignment, _ := f.seedReviewWorld(false)
		mapping := &model.Mapping{
			ID: "map_fb", Kind: model.KindFeedback, AssignmentID: assignment.ID,
			ReviewerID: "student_1", RevieweeID: "student_2",
			QuestionnaireID: "quest_review", CreatedAt: f.store.nextTime(),
		}
		f.mappings.Create(ctx, mapping)
		response := &model.Response{MapID: mapping.ID, Submitted: true}
		f.responses.Create(ctx, response)

		result, err := f.scoring.SignificantDifference(ctx, assignment, mapping, response)
		if err != nil {
			t.Fatalf("SignificantDifference: %v", err)
		}
		if result.Significant {
			t.Error("feedback mapping flagged a grade conflict")
		}
	})
}
