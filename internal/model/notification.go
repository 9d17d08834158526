package model

import "time"

// GradeConflict is the payload handed to the mail collaborator and broadcast
// to instructor dashboards when a submitted review deviates from its peers
// by more than the assignment's notification limit.
type GradeConflict struct {
	ID             string    `json:"id"`
	AssignmentID   string    `json:"assignmentId"`
	AssignmentName string    `json:"assignmentName"`
	MapID          string    `json:"mapId"`
	ResponseID     string    `json:"responseId"`
	ReviewerName   string    `json:"reviewerName"`
	RevieweeName   string    `json:"revieweeName"`

	// Score is this review's aggregate/maximum ratio in [0,1].
	Score float64 `json:"score"`
	// PeerAverage is the mean ratio of the other reviews on the artifact.
	PeerAverage float64 `json:"peerAverage"`

	ResponseURL       string    `json:"responseUrl"`
	SummaryURL        string    `json:"summaryUrl"`
	AssignmentEditURL string    `json:"assignmentEditUrl"`
	CreatedAt         time.Time `json:"createdAt"`
}
