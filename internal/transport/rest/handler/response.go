package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"peergrade/internal/service"
	"peergrade/internal/transport/rest/middleware"
)

// ResponseHandler handles the response lifecycle endpoints
type ResponseHandler struct {
	responseSvc *service.ResponseService
}

// NewResponseHandler creates a new response handler
func NewResponseHandler(responseSvc *service.ResponseService) *ResponseHandler {
	return &ResponseHandler{responseSvc: responseSvc}
}

// Begin handles POST /v1/mappings/{mapId}/responses?round=N
func (h *ResponseHandler) Begin(w http.ResponseWriter, r *http.Request) {
	mapID := mux.Vars(r)["mapId"]
	reviewerID := middleware.GetReviewerID(r.Context())

	round := 0
	if v := r.URL.Query().Get("round"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "round must be a non-negative integer")
			return
		}
		round = parsed
	}

	view, err := h.responseSvc.Begin(r.Context(), reviewerID, mapID, round)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	status := http.StatusOK
	if view.Editable {
		status = http.StatusCreated
	}
	writeJSON(w, status, view)
}

// Get handles GET /v1/responses/{id}
func (h *ResponseHandler) Get(w http.ResponseWriter, r *http.Request) {
	responseID := mux.Vars(r)["id"]
	reviewerID := middleware.GetReviewerID(r.Context())

	view, err := h.responseSvc.Get(r.Context(), reviewerID, responseID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// Save handles PUT /v1/responses/{id} for both autosaves and submissions
func (h *ResponseHandler) Save(w http.ResponseWriter, r *http.Request) {
	responseID := mux.Vars(r)["id"]
	reviewerID := middleware.GetReviewerID(r.Context())

	var req service.SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.responseSvc.Save(r.Context(), reviewerID, responseID, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Delete handles DELETE /v1/responses/{id}
func (h *ResponseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	responseID := mux.Vars(r)["id"]
	reviewerID := middleware.GetReviewerID(r.Context())

	if err := h.responseSvc.Delete(r.Context(), reviewerID, responseID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// VisibilityRequest is the request body for toggling visibility
type VisibilityRequest struct {
	Visible bool `json:"visible"`
}

// SetVisibility handles PATCH /v1/responses/{id}/visibility
func (h *ResponseHandler) SetVisibility(w http.ResponseWriter, r *http.Request) {
	responseID := mux.Vars(r)["id"]
	reviewerID := middleware.GetReviewerID(r.Context())

	var req VisibilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	response, err := h.responseSvc.SetVisibility(r.Context(), reviewerID, responseID, req.Visible)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

// ReviewComments handles GET /v1/assignments/{assignmentId}/review-comments?reviewer=R
// (instructor only)
func (h *ResponseHandler) ReviewComments(w http.ResponseWriter, r *http.Request) {
	assignmentID := mux.Vars(r)["assignmentId"]
	reviewerID := r.URL.Query().Get("reviewer")
	if reviewerID == "" {
		writeError(w, http.StatusBadRequest, "reviewer query parameter is required")
		return
	}

	comments, err := h.responseSvc.CommentsByReviewer(r.Context(), assignmentID, reviewerID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comments)
}
