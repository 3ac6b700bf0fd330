package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// RegisterRoutes wires every endpoint onto mux.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /subjects", h.listSubjects)

	// Questions
	mux.HandleFunc("GET /questions", h.listQuestions)
	mux.HandleFunc("POST /questions", h.createQuestion)
	mux.HandleFunc("GET /questions/{questionID}", h.getQuestion)
	mux.HandleFunc("PUT /questions/{questionID}", h.updateQuestion)
	mux.HandleFunc("DELETE /questions/{questionID}", h.deleteQuestion)
	mux.HandleFunc("POST /questions/{questionID}/bookmark", h.toggleBookmark)
	mux.HandleFunc("POST /questions/{questionID}/reset-stats", h.resetStats)
	mux.HandleFunc("GET /review", h.listReview)

	// Import / export
	mux.HandleFunc("GET /export", h.exportBank)
	mux.HandleFunc("POST /import/json", h.importJSON)
	mux.HandleFunc("POST /import/csv", h.importCSV)

	// Exam configuration
	mux.HandleFunc("GET /config", h.getExamConfig)
	mux.HandleFunc("PUT /config", h.updateExamConfig)

	// Sessions
	mux.HandleFunc("POST /sessions", h.createSession)
	mux.HandleFunc("GET /sessions/{sessionID}", h.getSession)
	mux.HandleFunc("POST /sessions/{sessionID}/answers", h.submitAnswer)
	mux.HandleFunc("POST /sessions/{sessionID}/advance", h.advanceSession)
	mux.HandleFunc("POST /sessions/{sessionID}/finish", h.finishSession)
	mux.HandleFunc("POST /sessions/{sessionID}/retry", h.retrySession)
	mux.HandleFunc("GET /sessions/{sessionID}/countdown", h.countdown)
	mux.HandleFunc("GET /history", h.listHistory)

	// Swagger UI served at /swagger/
	mux.Handle("GET /swagger/", httpSwagger.WrapHandler)
}

// NewServer builds the full handler chain:
// RequestID → Recoverer → Logging → CORS → mux.
func NewServer(h *Handler, logger *slog.Logger, origins []string) http.Handler {
	mux := http.NewServeMux()
	RegisterRoutes(mux, h)

	var handler http.Handler = mux
	handler = CORS(origins)(handler)
	handler = Logging(logger)(handler)
	handler = middleware.Recoverer(handler)
	handler = middleware.RequestID(handler)
	return handler
}

// health reports liveness.
// @Summary      Health check
// @Tags         System
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
