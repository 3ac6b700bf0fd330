package api

import (
	"net/http"

	"github.com/quizdrill/backend/internal/domain/examconfig"
)

type ExamConfigRequest struct {
	MockCount   int `json:"mock_count" example:"60"`
	MockMinutes int `json:"mock_minutes" example:"60"`
	PassScore   int `json:"pass_score" example:"60"`
}

type ExamConfigResponse struct {
	MockCount   int `json:"mock_count" example:"60"`
	MockMinutes int `json:"mock_minutes" example:"60"`
	PassScore   int `json:"pass_score" example:"60"`
}

func toExamConfigResponse(cfg examconfig.Config) ExamConfigResponse {
	return ExamConfigResponse{
		MockCount:   cfg.MockQuestionCount,
		MockMinutes: cfg.MockDurationMinutes,
		PassScore:   cfg.PassScorePercent,
	}
}

// getExamConfig returns the mock exam settings.
// @Summary      Get exam configuration
// @Tags         Config
// @Produce      json
// @Success      200  {object}  ExamConfigResponse
// @Router       /config [get]
func (h *Handler) getExamConfig(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, toExamConfigResponse(h.svc.ExamConfig()))
}

// updateExamConfig stores new mock exam settings. Values are clamped into
// their allowed ranges; zero keeps the default.
// @Summary      Update exam configuration
// @Tags         Config
// @Accept       json
// @Produce      json
// @Param        body  body      ExamConfigRequest  true  "Settings"
// @Success      200   {object}  ExamConfigResponse
// @Failure      400   {object}  ErrorResponse
// @Router       /config [put]
func (h *Handler) updateExamConfig(w http.ResponseWriter, r *http.Request) {
	var req ExamConfigRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	cfg, err := h.svc.UpdateExamConfig(r.Context(), examconfig.Config{
		MockQuestionCount:   req.MockCount,
		MockDurationMinutes: req.MockMinutes,
		PassScorePercent:    req.PassScore,
	})
	if h.handleServiceError(w, err) {
		return
	}
	respondJSON(w, http.StatusOK, toExamConfigResponse(cfg))
}
