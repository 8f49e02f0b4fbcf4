package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"credit-score/domain"
	"credit-score/repository"
	"credit-score/service"
)

// maxBodyBytes caps the predict request body.
const maxBodyBytes = 1 << 20

// CreditScorer is the part of service.CreditService the handlers need.
type CreditScorer interface {
	Score(ctx context.Context, rec domain.ApplicantRecord) (service.Assessment, error)
	Record(ctx context.Context, id string) (domain.StoredScore, error)
}

type ScoreHandler struct {
	service CreditScorer
}

func NewScoreHandler(service CreditScorer) *ScoreHandler {
	return &ScoreHandler{service: service}
}

// Predict scores the applicant in the request body.
func (h *ScoreHandler) Predict(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", "")
		return
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	var req domain.ApplicantRequest
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body", "body must contain a single JSON object")
		return
	}

	rec, err := req.Record()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	assessment, err := h.service.Score(r.Context(), rec)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "invalid input", err.Error())
			return
		}
		slog.Error("scoring failed", "request_id", RequestIDFrom(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error", err.Error())
		return
	}

	slog.Info("applicant scored",
		"request_id", RequestIDFrom(r.Context()),
		"id", assessment.Record.ID,
		"score", assessment.Response.CreditScore,
		"status", assessment.Response.LoanStatus,
	)

	w.Header().Set("X-Score-ID", assessment.Record.ID)
	writeJSON(w, http.StatusOK, assessment.Response)
}

// GetRecord returns a stored score record by its id path value.
func (h *ScoreHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id", "")
		return
	}

	rec, err := h.service.Record(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "score record not found", "")
			return
		}
		slog.Error("loading score record failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, rec)
}
