package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"peergrade/internal/service"
	"peergrade/internal/transport/rest/middleware"
)

// QuizHandler handles quiz grading endpoints
type QuizHandler struct {
	quizSvc *service.QuizService
}

// NewQuizHandler creates a new quiz handler
func NewQuizHandler(quizSvc *service.QuizService) *QuizHandler {
	return &QuizHandler{quizSvc: quizSvc}
}

// SubmitQuizRequest maps question ids to the chosen option
type SubmitQuizRequest struct {
	Answers map[string]string `json:"answers"`
}

// Submit handles POST /v1/mappings/{mapId}/quiz
func (h *QuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	mapID := mux.Vars(r)["mapId"]
	reviewerID := middleware.GetReviewerID(r.Context())

	var req SubmitQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.quizSvc.Submit(r.Context(), reviewerID, mapID, req.Answers)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// Result handles GET /v1/mappings/{mapId}/quiz
func (h *QuizHandler) Result(w http.ResponseWriter, r *http.Request) {
	mapID := mux.Vars(r)["mapId"]

	result, err := h.quizSvc.Result(r.Context(), mapID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Available handles GET /v1/assignments/{assignmentId}/quizzes
func (h *QuizHandler) Available(w http.ResponseWriter, r *http.Request) {
	assignmentID := mux.Vars(r)["assignmentId"]
	reviewerID := middleware.GetReviewerID(r.Context())

	quizzes, err := h.quizSvc.Available(r.Context(), assignmentID, reviewerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"quizzes": quizzes})
}
