package model

import "testing"

func validQuestionnaire() *Questionnaire {
	return &Questionnaire{
		Name:             "Review Rubric",
		Type:             QuestionnaireReview,
		MinQuestionScore: 0,
		MaxQuestionScore: 5,
		Questions: []Question{
			{ID: "q1", Seq: 1, Type: QuestionCriterion, Weight: 2},
			{ID: "q2", Seq: 2, Type: QuestionScale, Weight: 1},
			{ID: "q3", Seq: 3, Type: QuestionTextArea},
		},
	}
}

func TestQuestionnaireValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Questionnaire)
		wantErr error
	}{
		{
			name:   "valid questionnaire",
			mutate: func(*Questionnaire) {},
		},
		{
			name:    "missing name",
			mutate:  func(q *Questionnaire) { q.Name = "" },
			wantErr: ErrNoName,
		},
		{
			name:    "max not above min",
			mutate:  func(q *Questionnaire) { q.MaxQuestionScore = 0 },
			wantErr: ErrScoreBounds,
		},
		{
			name:    "negative minimum",
			mutate:  func(q *Questionnaire) { q.MinQuestionScore = -1 },
			wantErr: ErrScoreBounds,
		},
		{
			name:    "duplicate question id",
			mutate:  func(q *Questionnaire) { q.Questions[1].ID = "q1" },
			wantErr: ErrDuplicateQID,
		},
		{
			name:    "unknown question type",
			mutate:  func(q *Questionnaire) { q.Questions[0].Type = "essay" },
			wantErr: ErrUnknownQType,
		},
		{
			name:    "scorable question without weight",
			mutate:  func(q *Questionnaire) { q.Questions[0].Weight = 0 },
			wantErr: ErrWeightInvalid,
		},
		{
			name: "multiple choice without a correct option",
			mutate: func(q *Questionnaire) {
				q.Questions[0] = Question{
					ID: "q1", Type: QuestionMultipleChoice, Weight: 1,
					Choices: []string{"Paris", "Madrid"},
				}
			},
			wantErr: ErrNoCorrectOpt,
		},
		{
			name: "multiple choice whose correct option is not offered",
			mutate: func(q *Questionnaire) {
				q.Questions[0] = Question{
					ID: "q1", Type: QuestionMultipleChoice, Weight: 1,
					Choices: []string{"Paris", "Madrid"}, CorrectChoice: "Rome",
				}
			},
			wantErr: ErrNoCorrectOpt,
		},
		{
			name: "multiple choice with a valid key",
			mutate: func(q *Questionnaire) {
				q.Questions[0] = Question{
					ID: "q1", Type: QuestionMultipleChoice, Weight: 1,
					Choices: []string{"Paris", "Madrid"}, CorrectChoice: "Paris",
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validQuestionnaire()
			tt.mutate(q)
			if err := q.Validate(); err != tt.wantErr {
				t.Errorf("Validate = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestQuestionTypeScorable(t *testing.T) {
	scorable := []QuestionType{QuestionCriterion, QuestionScale, QuestionMultipleChoice}
	advisory := []QuestionType{QuestionCheckbox, QuestionTextArea, QuestionUploadFile}

	for _, typ := range scorable {
		if !typ.Scorable() {
			t.Errorf("%s not scorable", typ)
		}
	}
	for _, typ := range advisory {
		if typ.Scorable() {
			t.Errorf("%s scorable", typ)
		}
	}
}

func TestSortedQuestions(t *testing.T) {
	q := &Questionnaire{
		Questions: []Question{
			{ID: "c", Seq: 3},
			{ID: "a", Seq: 1},
			{ID: "b", Seq: 2},
		},
	}
	sorted := q.SortedQuestions()
	for i, want := range []string{"a", "b", "c"} {
		if sorted[i].ID != want {
			t.Fatalf("position %d = %s, want %s", i, sorted[i].ID, want)
		}
	}
	// The questionnaire's own slice must stay untouched.
	if q.Questions[0].ID != "c" {
		t.Error("SortedQuestions reordered the source slice")
	}
}

func TestQuestionByID(t *testing.T) {
	q := validQuestionnaire()
	if got := q.QuestionByID("q2"); got == nil || got.ID != "q2" {
		t.Errorf("QuestionByID(q2) = %+v", got)
	}
	if got := q.QuestionByID("missing"); got != nil {
		t.Errorf("QuestionByID(missing) = %+v, want nil", got)
	}
}
