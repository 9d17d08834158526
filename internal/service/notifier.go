package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"peergrade/internal/model"
)

// MailMessage is what the engine hands to the mail collaborator.
type MailMessage struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers notification mail. Delivery is fire-and-forget from the
// engine's perspective: failures are logged, never retried synchronously,
// and never fail the submission that triggered them.
type Mailer interface {
	Deliver(ctx context.Context, msg *MailMessage) error
}

// Broadcaster pushes notification events to connected instructor dashboards.
// The WebSocket hub implements it.
type Broadcaster interface {
	BroadcastToInstructors(assignmentID string, event string, payload interface{})
}

// LogMailer is the default mail collaborator when none is configured: it
// writes the message to the process log.
type LogMailer struct{}

func (LogMailer) Deliver(_ context.Context, msg *MailMessage) error {
	log.Printf("mail to %s: %s", msg.To, msg.Subject)
	return nil
}

// Notifier builds grade-conflict notifications and hands them off. It fires
// only when a review response transitions to submitted in the triggering
// call and the significant-difference check flags it.
type Notifier struct {
	mailer      Mailer
	broadcaster Broadcaster
	baseURL     string
}

// NewNotifier creates a new notifier. broadcaster may be nil.
func NewNotifier(mailer Mailer, broadcaster Broadcaster, baseURL string) *Notifier {
	if mailer == nil {
		mailer = LogMailer{}
	}
	return &Notifier{
		mailer:      mailer,
		broadcaster: broadcaster,
		baseURL:     baseURL,
	}
}

// ResponseSubmitted announces a completed submission to the instructor
// dashboards watching the assignment.
func (n *Notifier) ResponseSubmitted(assignment *model.Assignment, mapping *model.Mapping, response *model.Response) {
	if n.broadcaster == nil {
		return
	}
	n.broadcaster.BroadcastToInstructors(assignment.ID, "response_submitted", map[string]interface{}{
		"assignmentId": assignment.ID,
		"mapId":        mapping.ID,
		"responseId":   response.ID,
		"round":        response.Round,
		"reviewerName": mapping.ReviewerName,
		"revieweeName": mapping.RevieweeName,
	})
}

// GradeConflict assembles the payload and dispatches it. Mail goes out on a
// separate goroutine so delivery can never block or fail the submission.
func (n *Notifier) GradeConflict(assignment *model.Assignment, mapping *model.Mapping, response *model.Response, result *SignificanceResult) {
	conflict := &model.GradeConflict{
		ID:                uuid.New().String(),
		AssignmentID:      assignment.ID,
		AssignmentName:    assignment.Name,
		MapID:             mapping.ID,
		ResponseID:        response.ID,
		ReviewerName:      mapping.ReviewerName,
		RevieweeName:      mapping.RevieweeName,
		Score:             result.Score,
		PeerAverage:       result.PeerAverage,
		ResponseURL:       fmt.Sprintf("%s/responses/%s", n.baseURL, response.ID),
		SummaryURL:        fmt.Sprintf("%s/assignments/%s/reviewees/%s/summary", n.baseURL, assignment.ID, mapping.RevieweeID),
		AssignmentEditURL: fmt.Sprintf("%s/assignments/%s/edit", n.baseURL, assignment.ID),
		CreatedAt:         time.Now(),
	}

	if n.broadcaster != nil {
		n.broadcaster.BroadcastToInstructors(assignment.ID, "grade_conflict", conflict)
	}

	msg := &MailMessage{
		To:      assignment.InstructorEmail,
		Subject: "A review score is outside the acceptable range",
		Body: fmt.Sprintf(
			"%s scored %s at %.0f%% on %q while the peer average is %.0f%%.\nResponse: %s\nSummary: %s",
			conflict.ReviewerName, conflict.RevieweeName, conflict.Score*100,
			conflict.AssignmentName, conflict.PeerAverage*100,
			conflict.ResponseURL, conflict.SummaryURL,
		),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := n.mailer.Deliver(ctx, msg); err != nil {
			log.Printf("grade conflict mail for response %s failed: %v", response.ID, err)
		}
	}()
}
