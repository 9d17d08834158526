package model

import "time"

// MappingKind is the closed set of reviewer-to-reviewee mapping kinds.
type MappingKind string

const (
	KindReview           MappingKind = "review"
	KindSelfReview       MappingKind = "self_review"
	KindMetareview       MappingKind = "metareview"
	KindTeammateReview   MappingKind = "teammate_review"
	KindFeedback         MappingKind = "feedback"
	KindCourseSurvey     MappingKind = "course_survey"
	KindAssignmentSurvey MappingKind = "assignment_survey"
	KindGlobalSurvey     MappingKind = "global_survey"
	KindBookmarkRating   MappingKind = "bookmark_rating"
	KindQuiz             MappingKind = "quiz"
)

// Valid reports whether k is one of the known mapping kinds.
func (k MappingKind) Valid() bool {
	switch k {
	case KindReview, KindSelfReview, KindMetareview, KindTeammateReview,
		KindFeedback, KindCourseSurvey, KindAssignmentSurvey,
		KindGlobalSurvey, KindBookmarkRating, KindQuiz:
		return true
	}
	return false
}

// IsReview reports whether responses on this kind of mapping participate in
// the significant-difference check against peer reviews.
func (k MappingKind) IsReview() bool {
	return k == KindReview || k == KindSelfReview
}

// RubricVariesByRound reports whether the applicable questionnaire is chosen
// per round and per the reviewee's topic rather than fixed on the mapping.
func (k MappingKind) RubricVariesByRound() bool {
	return k == KindReview || k == KindSelfReview
}

// RubricMayVaryByDuty reports whether a duty-based assignment overrides the
// mapping's questionnaire with the reviewee's duty rubric.
func (k MappingKind) RubricMayVaryByDuty() bool {
	switch k {
	case KindMetareview, KindTeammateReview, KindFeedback, KindCourseSurvey,
		KindAssignmentSurvey, KindGlobalSurvey, KindBookmarkRating:
		return true
	}
	return false
}

// Mapping assigns a reviewer to a reviewee (a user, team, or artifact) for
// one purpose within an assignment. Mappings are created and destroyed by the
// surrounding system; this engine only reads them.
type Mapping struct {
	ID           string      `json:"id" bson:"_id,omitempty"`
	Kind         MappingKind `json:"kind" bson:"kind"`
	AssignmentID string      `json:"assignmentId" bson:"assignmentId"`
	ReviewerID   string      `json:"reviewerId" bson:"reviewerId"`
	RevieweeID   string      `json:"revieweeId" bson:"revieweeId"`
	ReviewerName string      `json:"reviewerName" bson:"reviewerName"`
	RevieweeName string      `json:"revieweeName" bson:"revieweeName"`

	// QuestionnaireID is the fixed rubric for kinds that carry one, and the
	// team-authored quiz for quiz mappings.
	QuestionnaireID string `json:"questionnaireId,omitempty" bson:"questionnaireId,omitempty"`

	// TopicID is the reviewee's signed-up topic, used by round-varying kinds.
	TopicID string `json:"topicId,omitempty" bson:"topicId,omitempty"`

	// DutyID is the reviewee's duty on duty-based assignments.
	DutyID string `json:"dutyId,omitempty" bson:"dutyId,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
