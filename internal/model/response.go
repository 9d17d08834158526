package model

import (
	"sort"
	"time"
)

// ResponseState is where a response sits in its lifecycle.
type ResponseState string

const (
	StateDraft     ResponseState = "draft"
	StateSubmitted ResponseState = "submitted"
	// StateLocked overlays draft when another holder owns the artifact lock;
	// it is reported to the caller, never stored.
	StateLocked ResponseState = "locked"
)

// Response is one reviewer's filled-in questionnaire for one round of one
// mapping. Several responses may exist per (mapping, round) when
// re-submission is enabled; the most recently created one is the version of
// record.
type Response struct {
	ID                string    `json:"id" bson:"_id,omitempty"`
	MapID             string    `json:"mapId" bson:"mapId"`
	Round             int       `json:"round" bson:"round"` // 0 = unrounded
	Submitted         bool      `json:"submitted" bson:"submitted"`
	AdditionalComment string    `json:"additionalComment" bson:"additionalComment"`
	Visible           bool      `json:"visible" bson:"visible"`
	CreatedAt         time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt" bson:"updatedAt"`
}

// State reports the stored lifecycle state (the locked overlay is decided by
// the lifecycle service, not here).
func (r *Response) State() ResponseState {
	if r.Submitted {
		return StateSubmitted
	}
	return StateDraft
}

// SortByCreationDesc orders responses newest-created first. The version of
// record for a round is creation order, never update order: an autosave on an
// old response must not promote it over a later re-submission.
func SortByCreationDesc(responses []*Response) {
	sort.SliceStable(responses, func(i, j int) bool {
		return responses[i].CreatedAt.After(responses[j].CreatedAt)
	})
}

// LatestForRound returns the most recently created response for the round,
// or nil if none exists.
func LatestForRound(responses []*Response, round int) *Response {
	var latest *Response
	for _, r := range responses {
		if r.Round != round {
			continue
		}
		if latest == nil || r.CreatedAt.After(latest.CreatedAt) {
			latest = r
		}
	}
	return latest
}
