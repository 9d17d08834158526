package middleware

import (
	"context"
	"net/http"
	"strings"

	"peergrade/internal/service"
)

type contextKey string

const (
	InstructorIDKey contextKey = "instructorId"
	ReviewerIDKey   contextKey = "reviewerId"
	AssignmentIDKey contextKey = "assignmentId"
)

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireInstructor validates an instructor JWT from the Authorization header
func (m *AuthMiddleware) RequireInstructor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateInstructorToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), InstructorIDKey, claims.InstructorID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireReviewer validates a reviewer JWT from the Authorization header
func (m *AuthMiddleware) RequireReviewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			http.Error(w, `{"error":"missing authorization"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateReviewerToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, ReviewerIDKey, claims.ReviewerID)
		ctx = context.WithValue(ctx, AssignmentIDKey, claims.AssignmentID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetInstructorID extracts instructor ID from context
func GetInstructorID(ctx context.Context) string {
	if v := ctx.Value(InstructorIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetReviewerID extracts reviewer ID from context
func GetReviewerID(ctx context.Context) string {
	if v := ctx.Value(ReviewerIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetAssignmentID extracts the token's assignment scope from context
func GetAssignmentID(ctx context.Context) string {
	if v := ctx.Value(AssignmentIDKey); v != nil {
		return v.(string)
	}
	return ""
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
