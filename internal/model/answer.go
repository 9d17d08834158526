package model

// Answer records one question's value and comment within a response. At most
// one answer exists per (response, question): writes go through an upsert.
// A nil Value is an unanswered question and is skipped by scoring.
type Answer struct {
	ID         string `json:"id" bson:"_id,omitempty"`
	ResponseID string `json:"responseId" bson:"responseId"`
	QuestionID string `json:"questionId" bson:"questionId"`
	Value      *int   `json:"value" bson:"value"`
	Comment    string `json:"comment" bson:"comment"`
}

// Answered reports whether the reviewer actually scored this question.
func (a *Answer) Answered() bool {
	return a.Value != nil
}
