package model

import "github.com/golang-jwt/jwt/v5"

// InstructorClaims are JWT claims for instructor authentication
type InstructorClaims struct {
	InstructorID string `json:"instructorId"`
	jwt.RegisteredClaims
}

// ReviewerClaims are JWT claims for assignment-scoped reviewer tokens
type ReviewerClaims struct {
	AssignmentID string `json:"assignmentId"`
	ReviewerID   string `json:"reviewerId"`
	jwt.RegisteredClaims
}

// LoginRequest is the request body for instructor login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned after successful login
type LoginResponse struct {
	Token        string `json:"token"`
	InstructorID string `json:"instructorId"`
}
