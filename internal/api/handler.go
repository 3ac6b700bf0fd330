package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	practicesession "github.com/quizdrill/backend/internal/domain/practice_session"
	"github.com/quizdrill/backend/internal/domain/questionbank"
	"github.com/quizdrill/backend/internal/importer"
	"github.com/quizdrill/backend/internal/service"
)

// maxBodyBytes caps request bodies, imports included.
const maxBodyBytes = 10 << 20

// Handler holds all dependencies needed by HTTP handlers.
// Instead of relying on package-level globals, every handler method
// receives its dependencies through this struct.
type Handler struct {
	svc    *service.StudyService
	logger *slog.Logger
	tick   time.Duration
}

// NewHandler creates a Handler with the given dependencies. tick is the
// interval of countdown messages on the websocket feed.
func NewHandler(svc *service.StudyService, logger *slog.Logger, tick time.Duration) *Handler {
	if tick <= 0 {
		tick = practicesession.DefaultTickInterval
	}
	return &Handler{
		svc:    svc,
		logger: logger,
		tick:   tick,
	}
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type ErrorResponse struct {
	Error string `json:"error" example:"session not found"`
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, ErrorResponse{Error: msg})
}

type validator interface {
	Validate() error
}

// decodeJSON decodes the request body into v. It writes a 400 and returns
// false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, v validator) bool {
	if !decodeJSON(w, r, v) {
		return false
	}
	if err := v.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// handleServiceError maps domain errors to HTTP responses. Returns true if
// an error was handled (caller should return).
func (h *Handler) handleServiceError(w http.ResponseWriter, err error) bool {
	if err == nil {
		return false
	}

	switch {
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, questionbank.ErrQuestionNotFound):
		respondError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, practicesession.ErrInsufficientPool),
		errors.Is(err, practicesession.ErrNothingToRetry),
		errors.Is(err, practicesession.ErrNotInProgress),
		errors.Is(err, practicesession.ErrNotFinished),
		errors.Is(err, practicesession.ErrMockOnly),
		errors.Is(err, practicesession.ErrForwardOnly):
		respondError(w, http.StatusConflict, err.Error())

	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, practicesession.ErrInvalidDirection),
		errors.Is(err, practicesession.ErrUnknownQuestion),
		errors.Is(err, practicesession.ErrUnknownChoice):
		respondError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, importer.ErrImport),
		errors.Is(err, questionbank.ErrMalformedQuestion):
		respondError(w, http.StatusUnprocessableEntity, err.Error())

	default:
		h.logger.Error("service error", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
	return true
}
