package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"peergrade/internal/service"
	"peergrade/internal/transport/rest/handler"
	"peergrade/internal/transport/rest/middleware"
	"peergrade/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService          *service.AuthService
	ResponseService      *service.ResponseService
	QuizService          *service.QuizService
	QuestionnaireService *service.QuestionnaireService
	WSHub                *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	responseHandler := handler.NewResponseHandler(c.ResponseService)
	quizHandler := handler.NewQuizHandler(c.QuizService)
	questionnaireHandler := handler.NewQuestionnaireHandler(c.QuestionnaireService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// WebSocket routes (token in query param)
	v1.HandleFunc("/ws/assignments/{assignmentId}/notifications", wsHandler.InstructorWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Instructor routes
	instructorRoutes := v1.NewRoute().Subrouter()
	instructorRoutes.Use(authMW.RequireInstructor)

	instructorRoutes.HandleFunc("/auth/reviewer-token", authHandler.ReviewerToken).Methods("POST", "OPTIONS")
	instructorRoutes.HandleFunc("/questionnaires", questionnaireHandler.Create).Methods("POST", "OPTIONS")
	instructorRoutes.HandleFunc("/questionnaires", questionnaireHandler.List).Methods("GET", "OPTIONS")
	instructorRoutes.HandleFunc("/questionnaires/{id}", questionnaireHandler.Get).Methods("GET", "OPTIONS")
	instructorRoutes.HandleFunc("/assignments/{assignmentId}/review-comments", responseHandler.ReviewComments).Methods("GET", "OPTIONS")

	// Reviewer routes
	reviewerRoutes := v1.NewRoute().Subrouter()
	reviewerRoutes.Use(authMW.RequireReviewer)

	reviewerRoutes.HandleFunc("/mappings/{mapId}/responses", responseHandler.Begin).Methods("POST", "OPTIONS")
	reviewerRoutes.HandleFunc("/responses/{id}", responseHandler.Get).Methods("GET", "OPTIONS")
	reviewerRoutes.HandleFunc("/responses/{id}", responseHandler.Save).Methods("PUT", "OPTIONS")
	reviewerRoutes.HandleFunc("/responses/{id}", responseHandler.Delete).Methods("DELETE", "OPTIONS")
	reviewerRoutes.HandleFunc("/responses/{id}/visibility", responseHandler.SetVisibility).Methods("PATCH", "OPTIONS")
	reviewerRoutes.HandleFunc("/mappings/{mapId}/quiz", quizHandler.Submit).Methods("POST", "OPTIONS")
	reviewerRoutes.HandleFunc("/mappings/{mapId}/quiz", quizHandler.Result).Methods("GET", "OPTIONS")
	reviewerRoutes.HandleFunc("/assignments/{assignmentId}/quizzes", quizHandler.Available).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, PATCH, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
