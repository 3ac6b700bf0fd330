package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	practicesession "github.com/quizdrill/backend/internal/domain/practice_session"
	"github.com/quizdrill/backend/internal/domain/scoring"
	"github.com/quizdrill/backend/internal/service"
	"github.com/quizdrill/backend/internal/store"
)

// ── Request / Response types ────────────────────────────────────────────────

type CreateSessionRequest struct {
	Mode           string   `json:"mode" example:"practice"`
	Subjects       []string `json:"subjects,omitempty" example:"Database"`
	MaxQuestions   *int     `json:"max_questions,omitempty" example:"10"`
	MaxDurationMin *int     `json:"max_duration_min,omitempty" example:"15"`
}

func (r *CreateSessionRequest) Validate() error {
	if r.Mode != "" && !practicesession.Mode(r.Mode).Valid() {
		return errors.New("invalid mode: must be practice or mock")
	}
	if r.MaxQuestions != nil && *r.MaxQuestions <= 0 {
		return errors.New("max_questions must be positive")
	}
	if r.MaxDurationMin != nil && *r.MaxDurationMin <= 0 {
		return errors.New("max_duration_min must be positive")
	}
	return nil
}

type SubmitAnswerRequest struct {
	QuestionID string `json:"question_id"`
	ChoiceID   string `json:"choice_id"`
}

func (r *SubmitAnswerRequest) Validate() error {
	if r.QuestionID == "" {
		return errors.New("question_id is required")
	}
	if r.ChoiceID == "" {
		return errors.New("choice_id is required")
	}
	return nil
}

// SubmitAnswerResponse carries the immediate verdict in practice sessions.
// Mock answers are only "recorded".
type SubmitAnswerResponse struct {
	Status      string `json:"status" example:"answered"`
	Correct     *bool  `json:"correct,omitempty"`
	AnswerID    string `json:"answer_id,omitempty"`
	Explanation string `json:"explanation,omitempty"`
}

type AdvanceRequest struct {
	Direction string `json:"direction" example:"forward"`
}

func (r *AdvanceRequest) Validate() error {
	if r.Direction != "forward" && r.Direction != "backward" {
		return errors.New("direction must be forward or backward")
	}
	return nil
}

func (r *AdvanceRequest) direction() practicesession.Direction {
	if r.Direction == "backward" {
		return practicesession.Backward
	}
	return practicesession.Forward
}

// SessionQuestion hides the answer key until the question was answered in
// practice or the session has finished.
type SessionQuestion struct {
	ID          string           `json:"id"`
	Subject     string           `json:"subject" example:"Database"`
	Topic       string           `json:"topic"`
	Prompt      string           `json:"prompt"`
	Choices     []ChoiceResponse `json:"choices"`
	SelectedID  string           `json:"selected_id,omitempty"`
	AnswerID    string           `json:"answer_id,omitempty"`
	Explanation string           `json:"explanation,omitempty"`
	Correct     *bool            `json:"correct,omitempty"`
}

type ResultResponse struct {
	Percent  int      `json:"percent" example:"80"`
	Correct  int      `json:"correct" example:"48"`
	Total    int      `json:"total" example:"60"`
	Passed   *bool    `json:"passed,omitempty"`
	WrongIDs []string `json:"wrong_ids"`
}

type SessionResponse struct {
	ID               string            `json:"id"`
	Mode             string            `json:"mode" example:"mock"`
	State            string            `json:"state" example:"in_progress"`
	Index            int               `json:"index" example:"0"`
	Total            int               `json:"total" example:"60"`
	Answered         int               `json:"answered" example:"0"`
	Questions        []SessionQuestion `json:"questions"`
	StartedAt        time.Time         `json:"started_at"`
	Deadline         *time.Time        `json:"deadline,omitempty"`
	RemainingSeconds *int              `json:"remaining_seconds,omitempty"`
	RetryOf          string            `json:"retry_of,omitempty"`
	Result           *ResultResponse   `json:"result,omitempty"`
}

type SessionRecordResponse struct {
	ID         string    `json:"id"`
	Mode       string    `json:"mode" example:"mock"`
	RetryOf    string    `json:"retry_of,omitempty"`
	Percent    int       `json:"percent" example:"75"`
	Correct    int       `json:"correct" example:"45"`
	Total      int       `json:"total" example:"60"`
	Passed     bool      `json:"passed"`
	WrongIDs   []string  `json:"wrong_ids"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

func (h *Handler) toResultResponse(mode practicesession.Mode, res scoring.Result) *ResultResponse {
	out := &ResultResponse{
		Percent:  res.Percent,
		Correct:  res.Correct,
		Total:    res.Total,
		WrongIDs: make([]string, len(res.Wrong)),
	}
	for i, q := range res.Wrong {
		out.WrongIDs[i] = q.ID
	}
	if mode == practicesession.ModeMock {
		passed := h.svc.Passed(res.Percent)
		out.Passed = &passed
	}
	return out
}

func (h *Handler) toSessionResponse(sess *practicesession.PracticeSession) SessionResponse {
	snap := sess.Snapshot()
	finished := snap.State == practicesession.StateFinished

	resp := SessionResponse{
		ID:        snap.ID,
		Mode:      string(snap.Mode),
		State:     snap.State.String(),
		Index:     snap.Index,
		Total:     len(snap.Questions),
		Answered:  len(snap.Answers),
		Questions: make([]SessionQuestion, len(snap.Questions)),
		StartedAt: snap.StartedAt,
		RetryOf:   snap.RetryOf,
	}

	for i, q := range snap.Questions {
		sq := SessionQuestion{
			ID:         q.ID,
			Subject:    q.Subject.String(),
			Topic:      q.Topic,
			Prompt:     q.Prompt,
			Choices:    toChoices(q.Choices),
			SelectedID: snap.Answers[q.ID],
		}
		_, revealed := snap.Revealed[q.ID]
		if revealed || finished {
			correct := q.IsCorrect(snap.Answers[q.ID])
			sq.AnswerID = q.AnswerID
			sq.Explanation = q.Explanation
			sq.Correct = &correct
		}
		resp.Questions[i] = sq
	}

	if !snap.Deadline.IsZero() {
		deadline := snap.Deadline
		remaining := int(snap.Remaining / time.Second)
		resp.Deadline = &deadline
		resp.RemainingSeconds = &remaining
	}

	switch {
	case snap.Result != nil:
		resp.Result = h.toResultResponse(snap.Mode, *snap.Result)
	case finished:
		resp.Result = h.toResultResponse(snap.Mode, sess.Summary())
	}
	return resp
}

// ── Handlers ────────────────────────────────────────────────────────────────

// createSession starts a practice or mock session.
// @Summary      Start a session
// @Description  Practice sessions draw max_questions (default 10) at random and score each answer immediately. Mock sessions use the exam configuration and are scored on finish.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        body  body      CreateSessionRequest  true  "Session settings"
// @Success      201   {object}  SessionResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse  "not enough questions"
// @Router       /sessions [post]
func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	subjects, err := parseSubjects(strings.Join(req.Subjects, ","))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	start := service.StartRequest{
		Mode:     practicesession.Mode(req.Mode),
		Subjects: subjects,
	}
	if req.MaxQuestions != nil {
		start.MaxQuestions = *req.MaxQuestions
	}
	if req.MaxDurationMin != nil {
		start.MaxDurationMinutes = *req.MaxDurationMin
	}

	sess, err := h.svc.StartSession(start)
	if h.handleServiceError(w, err) {
		return
	}
	respondJSON(w, http.StatusCreated, h.toSessionResponse(sess))
}

// getSession returns the current state of a session.
// @Summary      Get a session
// @Tags         Sessions
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  SessionResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /sessions/{sessionID} [get]
func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.Session(r.PathValue("sessionID"))
	if h.handleServiceError(w, err) {
		return
	}
	respondJSON(w, http.StatusOK, h.toSessionResponse(sess))
}

// submitAnswer records a choice.
// @Summary      Answer a question
// @Description  Practice: the first answer is final and the verdict is returned. Mock: answers can be changed until finish.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        sessionID  path      string               true  "Session ID"
// @Param        body       body      SubmitAnswerRequest  true  "Answer"
// @Success      200        {object}  SubmitAnswerResponse
// @Failure      400        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Failure      409        {object}  ErrorResponse
// @Router       /sessions/{sessionID}/answers [post]
func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var req SubmitAnswerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	reveal, err := h.svc.SelectAnswer(r.PathValue("sessionID"), req.QuestionID, req.ChoiceID)
	if h.handleServiceError(w, err) {
		return
	}

	if reveal == nil {
		respondJSON(w, http.StatusOK, SubmitAnswerResponse{Status: "recorded"})
		return
	}
	correct := reveal.Correct
	respondJSON(w, http.StatusOK, SubmitAnswerResponse{
		Status:      "answered",
		Correct:     &correct,
		AnswerID:    reveal.AnswerID,
		Explanation: reveal.Explanation,
	})
}

// advanceSession moves the cursor.
// @Summary      Move to another question
// @Description  Mock sessions move both ways. Practice sessions only move forward and finish after the last question.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        sessionID  path      string          true  "Session ID"
// @Param        body       body      AdvanceRequest  true  "Direction"
// @Success      200        {object}  SessionResponse
// @Failure      400        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Failure      409        {object}  ErrorResponse
// @Router       /sessions/{sessionID}/advance [post]
func (h *Handler) advanceSession(w http.ResponseWriter, r *http.Request) {
	var req AdvanceRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	sessionID := r.PathValue("sessionID")
	if h.handleServiceError(w, h.svc.Advance(sessionID, req.direction())) {
		return
	}
	sess, err := h.svc.Session(sessionID)
	if h.handleServiceError(w, err) {
		return
	}
	respondJSON(w, http.StatusOK, h.toSessionResponse(sess))
}

// finishSession scores a mock session. Repeated calls return the same result.
// @Summary      Finish a mock session
// @Tags         Sessions
// @Produce      json
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  SessionResponse
// @Failure      404        {object}  ErrorResponse
// @Failure      409        {object}  ErrorResponse
// @Router       /sessions/{sessionID}/finish [post]
func (h *Handler) finishSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("sessionID")
	if _, err := h.svc.Finish(sessionID); h.handleServiceError(w, err) {
		return
	}
	sess, err := h.svc.Session(sessionID)
	if h.handleServiceError(w, err) {
		return
	}
	respondJSON(w, http.StatusOK, h.toSessionResponse(sess))
}

// retrySession starts a mock session over the questions missed.
// @Summary      Retry wrong answers
// @Description  The time budget keeps the per-question pace of the original exam, rounded up to whole minutes.
// @Tags         Sessions
// @Produce      json
// @Param        sessionID  path      string  true  "Finished mock session ID"
// @Success      201        {object}  SessionResponse
// @Failure      404        {object}  ErrorResponse
// @Failure      409        {object}  ErrorResponse
// @Router       /sessions/{sessionID}/retry [post]
func (h *Handler) retrySession(w http.ResponseWriter, r *http.Request) {
	next, err := h.svc.Retry(r.PathValue("sessionID"))
	if h.handleServiceError(w, err) {
		return
	}
	respondJSON(w, http.StatusCreated, h.toSessionResponse(next))
}

// listHistory returns finished sessions, newest first.
// @Summary      Session history
// @Tags         Sessions
// @Produce      json
// @Param        limit  query     int  false  "Maximum number of records"
// @Success      200    {array}   SessionRecordResponse
// @Failure      400    {object}  ErrorResponse
// @Router       /history [get]
func (h *Handler) listHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	records, err := h.svc.History(r.Context(), limit)
	if h.handleServiceError(w, err) {
		return
	}

	resp := make([]SessionRecordResponse, len(records))
	for i, rec := range records {
		resp[i] = toSessionRecordResponse(rec)
	}
	respondJSON(w, http.StatusOK, resp)
}

func toSessionRecordResponse(rec store.SessionRecord) SessionRecordResponse {
	wrong := rec.WrongIDs
	if wrong == nil {
		wrong = []string{}
	}
	return SessionRecordResponse{
		ID:         rec.ID,
		Mode:       rec.Mode,
		RetryOf:    rec.RetryOf,
		Percent:    rec.Percent,
		Correct:    rec.Correct,
		Total:      rec.Total,
		Passed:     rec.Passed,
		WrongIDs:   wrong,
		StartedAt:  rec.StartedAt,
		FinishedAt: rec.FinishedAt,
	}
}
