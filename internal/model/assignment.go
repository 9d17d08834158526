package model

// AssignmentRubric binds one questionnaire to an assignment for a given
// round, topic, or duty, together with the grade-conflict tolerance.
type AssignmentRubric struct {
	QuestionnaireID string `json:"questionnaireId" bson:"questionnaireId"`
	Round           int    `json:"round,omitempty" bson:"round,omitempty"` // 0 = any round
	TopicID         string `json:"topicId,omitempty" bson:"topicId,omitempty"`
	DutyID          string `json:"dutyId,omitempty" bson:"dutyId,omitempty"`

	// NotificationLimit is the allowed deviation, in percent of the maximum
	// score, between this review's ratio and the peer average before the
	// instructor is notified.
	NotificationLimit float64 `json:"notificationLimit" bson:"notificationLimit"`
}

// Assignment is the slice of assignment state this engine consumes. The
// surrounding system owns the full assignment lifecycle.
type Assignment struct {
	ID              string `json:"id" bson:"_id,omitempty"`
	Name            string `json:"name" bson:"name"`
	InstructorEmail string `json:"instructorEmail" bson:"instructorEmail"`

	TeamReviewing  bool `json:"teamReviewing" bson:"teamReviewing"`
	DutyBased      bool `json:"dutyBased" bson:"dutyBased"`
	NumRounds      int  `json:"numRounds" bson:"numRounds"`
	CurrentRound   int  `json:"currentRound" bson:"currentRound"`
	Rubrics        []AssignmentRubric `json:"rubrics" bson:"rubrics"`
	RoundsPerTopic map[string]int     `json:"roundsPerTopic,omitempty" bson:"roundsPerTopic,omitempty"`
}

// RoundForTopic is the assignment's current round for the reviewee's topic.
// Topics advance independently when the assignment staggers deadlines.
func (a *Assignment) RoundForTopic(topicID string) int {
	if r, ok := a.RoundsPerTopic[topicID]; ok {
		return r
	}
	return a.CurrentRound
}

// RubricFor picks the questionnaire bound to (round, topic), preferring the
// most specific binding: topic+round, then round, then the assignment-wide
// default. Returns the empty string when nothing matches.
func (a *Assignment) RubricFor(round int, topicID string) string {
	var roundOnly, fallback string
	for _, rb := range a.Rubrics {
		if rb.DutyID != "" {
			continue
		}
		switch {
		case rb.TopicID == topicID && topicID != "" && (rb.Round == round || rb.Round == 0):
			return rb.QuestionnaireID
		case rb.TopicID == "" && rb.Round == round:
			roundOnly = rb.QuestionnaireID
		case rb.TopicID == "" && rb.Round == 0 && fallback == "":
			fallback = rb.QuestionnaireID
		}
	}
	if roundOnly != "" {
		return roundOnly
	}
	return fallback
}

// RubricForDuty picks the questionnaire bound to a duty on duty-based
// assignments. Returns the empty string when the duty has no rubric.
func (a *Assignment) RubricForDuty(dutyID string) string {
	for _, rb := range a.Rubrics {
		if rb.DutyID != "" && rb.DutyID == dutyID {
			return rb.QuestionnaireID
		}
	}
	return ""
}

// DefaultReviewRubric is the assignment-wide review questionnaire, used as
// the fallback when a response has no answers to derive the rubric from.
func (a *Assignment) DefaultReviewRubric() string {
	return a.RubricFor(0, "")
}

// NotificationLimit is the allowed percentage deviation configured for the
// given questionnaire on this assignment. Zero means every deviation
// notifies, which is also the safe default when no binding exists.
func (a *Assignment) NotificationLimit(questionnaireID string) float64 {
	for _, rb := range a.Rubrics {
		if rb.QuestionnaireID == questionnaireID {
			return rb.NotificationLimit
		}
	}
	return 0
}
