package model

import (
	"errors"
	"sort"
)

// QuestionType distinguishes scorable rubric items from advisory ones.
type QuestionType string

const (
	QuestionCriterion      QuestionType = "criterion"       // scored on the questionnaire's scale
	QuestionScale          QuestionType = "scale"           // scored slider
	QuestionMultipleChoice QuestionType = "multiple_choice" // quiz item, graded against CorrectChoice
	QuestionCheckbox       QuestionType = "checkbox"        // advisory true/false
	QuestionTextArea       QuestionType = "text_area"       // comment only
	QuestionUploadFile     QuestionType = "upload_file"     // no answer record at all
)

// Scorable reports whether answers to this type contribute to the aggregate
// score. Advisory and comment-only questions never do.
func (t QuestionType) Scorable() bool {
	switch t {
	case QuestionCriterion, QuestionScale, QuestionMultipleChoice:
		return true
	}
	return false
}

// Question is one weighted item of a questionnaire. Questions are immutable
// once answers reference them.
type Question struct {
	ID       string       `json:"id" bson:"id"`
	Seq      int          `json:"seq" bson:"seq"`
	Type     QuestionType `json:"type" bson:"type"`
	Prompt   string       `json:"prompt" bson:"prompt"`
	Weight   int          `json:"weight" bson:"weight"`
	Required bool         `json:"required" bson:"required"`

	// Quiz items only.
	Choices       []string `json:"choices,omitempty" bson:"choices,omitempty"`
	CorrectChoice string   `json:"correctChoice,omitempty" bson:"correctChoice,omitempty"`
}

// QuestionnaireType tags the purpose of a rubric.
type QuestionnaireType string

const (
	QuestionnaireReview         QuestionnaireType = "review"
	QuestionnaireMetareview     QuestionnaireType = "metareview"
	QuestionnaireTeammateReview QuestionnaireType = "teammate_review"
	QuestionnaireFeedback       QuestionnaireType = "feedback"
	QuestionnaireSurvey         QuestionnaireType = "survey"
	QuestionnaireBookmarkRating QuestionnaireType = "bookmark_rating"
	QuestionnaireQuiz           QuestionnaireType = "quiz"
)

var (
	ErrNoName        = errors.New("questionnaire name is required")
	ErrScoreBounds   = errors.New("max question score must be greater than min, and min must be >= 0")
	ErrDuplicateQID  = errors.New("duplicate question id in questionnaire")
	ErrUnknownQType  = errors.New("unknown question type")
	ErrNoCorrectOpt  = errors.New("multiple choice question needs a correct choice among its options")
	ErrBadKind       = errors.New("unknown mapping kind")
	ErrWeightInvalid = errors.New("question weight must be positive")
)

// Questionnaire is an ordered rubric with per-question score bounds.
// Questions are embedded in the document the way the teacher embeds survey
// questions; they are read-mostly and effectively immutable in use.
type Questionnaire struct {
	ID               string            `json:"id" bson:"_id,omitempty"`
	Name             string            `json:"name" bson:"name"`
	Type             QuestionnaireType `json:"type" bson:"type"`
	MinQuestionScore int               `json:"minQuestionScore" bson:"minQuestionScore"`
	MaxQuestionScore int               `json:"maxQuestionScore" bson:"maxQuestionScore"`

	// OwnerTeamID is set on quizzes: the team that authored the quiz.
	OwnerTeamID string `json:"ownerTeamId,omitempty" bson:"ownerTeamId,omitempty"`

	Questions []Question `json:"questions" bson:"questions"`
}

// Validate enforces the construction-time invariants. Repositories refuse to
// store a questionnaire that fails it.
func (q *Questionnaire) Validate() error {
	if q.Name == "" {
		return ErrNoName
	}
	if q.MinQuestionScore < 0 || q.MaxQuestionScore <= q.MinQuestionScore {
		return ErrScoreBounds
	}
	seen := make(map[string]bool, len(q.Questions))
	for i := range q.Questions {
		question := &q.Questions[i]
		if seen[question.ID] {
			return ErrDuplicateQID
		}
		seen[question.ID] = true
		switch question.Type {
		case QuestionCriterion, QuestionScale, QuestionCheckbox,
			QuestionTextArea, QuestionUploadFile:
		case QuestionMultipleChoice:
			if !containsChoice(question.Choices, question.CorrectChoice) {
				return ErrNoCorrectOpt
			}
		default:
			return ErrUnknownQType
		}
		if question.Type.Scorable() && question.Weight <= 0 {
			return ErrWeightInvalid
		}
	}
	return nil
}

// SortedQuestions returns the questions in ascending sequence order.
func (q *Questionnaire) SortedQuestions() []Question {
	out := make([]Question, len(q.Questions))
	copy(out, q.Questions)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// QuestionByID returns the embedded question, or nil.
func (q *Questionnaire) QuestionByID(id string) *Question {
	for i := range q.Questions {
		if q.Questions[i].ID == id {
			return &q.Questions[i]
		}
	}
	return nil
}

func containsChoice(choices []string, want string) bool {
	if want == "" {
		return false
	}
	for _, c := range choices {
		if c == want {
			return true
		}
	}
	return false
}
