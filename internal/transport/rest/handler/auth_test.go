package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"peergrade/internal/service"
)

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
	}{
		{service.ErrLocked, http.StatusConflict},
		{service.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("mapping m1: %w", service.ErrNotFound), http.StatusNotFound},
		{service.ErrResolutionFailed, http.StatusUnprocessableEntity},
		{service.ErrForbidden, http.StatusForbidden},
		{service.ErrQuizTaken, http.StatusConflict},
		{&service.ValidationError{Field: "value", Msg: "out of range"}, http.StatusBadRequest},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, tt.err)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
		})
	}
}
