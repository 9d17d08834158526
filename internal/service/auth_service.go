package service

import (
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"peergrade/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AuthService handles instructor and reviewer authentication
type AuthService struct {
	instructorUsername string
	instructorPassword string
	jwtSecret          []byte
}

// NewAuthService creates a new auth service
func NewAuthService() *AuthService {
	username := os.Getenv("INSTRUCTOR_USERNAME")
	if username == "" {
		username = "instructor"
	}
	password := os.Getenv("INSTRUCTOR_PASSWORD")
	if password == "" {
		password = "password123"
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "super-secret-key-change-in-production"
	}

	return &AuthService{
		instructorUsername: username,
		instructorPassword: password,
		jwtSecret:          []byte(secret),
	}
}

// Login validates credentials and returns an instructor token
func (s *AuthService) Login(username, password string) (*model.LoginResponse, error) {
	if username != s.instructorUsername || password != s.instructorPassword {
		return nil, ErrInvalidCredentials
	}

	instructorID := "instr_" + uuid.New().String()[:8]

	claims := &model.InstructorClaims{
		InstructorID: instructorID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(7 * 24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, err
	}

	return &model.LoginResponse{
		Token:        tokenString,
		InstructorID: instructorID,
	}, nil
}

// ValidateInstructorToken validates an instructor JWT and returns claims
func (s *AuthService) ValidateInstructorToken(tokenString string) (*model.InstructorClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.InstructorClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.InstructorClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// GenerateReviewerToken creates an assignment-scoped token for a reviewer
func (s *AuthService) GenerateReviewerToken(assignmentID, reviewerID string) (string, error) {
	claims := &model.ReviewerClaims{
		AssignmentID: assignmentID,
		ReviewerID:   reviewerID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateReviewerToken validates a reviewer JWT and returns claims
func (s *AuthService) ValidateReviewerToken(tokenString string) (*model.ReviewerClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.ReviewerClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.ReviewerClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
