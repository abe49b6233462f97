package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/crimelens/crime-analytics/internal/observability"
	"github.com/crimelens/crime-analytics/internal/storage"
)

// FeedbackHandler stores and lists visitor feedback.
type FeedbackHandler struct {
	logger *observability.Logger
	repo   *storage.FeedbackRepository
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(logger *observability.Logger, repo *storage.FeedbackRepository) *FeedbackHandler {
	return &FeedbackHandler{logger: logger, repo: repo}
}

// FeedbackRequestDTO is the JSON form of a feedback submission.
type FeedbackRequestDTO struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Submit handles POST /submit-feedback. Both JSON and form bodies are accepted.
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req FeedbackRequestDTO
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "invalid form body", err.Error())
			return
		}
		req = FeedbackRequestDTO{
			Name:    r.PostFormValue("name"),
			Email:   r.PostFormValue("email"),
			Message: r.PostFormValue("message"),
		}
	}

	fb := &storage.Feedback{Name: req.Name, Email: req.Email, Message: req.Message}
	if err := h.repo.Create(r.Context(), fb); err != nil {
		if errors.Is(err, storage.ErrInvalid) {
			writeError(w, http.StatusBadRequest, "invalid feedback", err.Error())
			return
		}
		h.logger.WithContext(r.Context()).Error().Err(err).Msg("Failed to store feedback")
		writeError(w, http.StatusInternalServerError, "failed to store feedback", "")
		return
	}

	h.logger.WithContext(r.Context()).Info().Str("feedback_id", fb.ID.String()).Msg("Feedback stored")
	writeJSON(w, http.StatusCreated, map[string]string{
		"status": "ok",
		"id":     fb.ID.String(),
	})
}

// List handles GET /api/feedback.
func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", storage.DefaultListLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid query parameter", err.Error())
		return
	}

	entries, err := h.repo.List(r.Context(), limit)
	if err != nil {
		h.logger.WithContext(r.Context()).Error().Err(err).Msg("Failed to list feedback")
		writeError(w, http.StatusInternalServerError, "failed to list feedback", "")
		return
	}
	if entries == nil {
		entries = []*storage.Feedback{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"feedback": entries})
}
