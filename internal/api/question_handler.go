package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/quizdrill/backend/internal/domain/questionbank"
	"github.com/quizdrill/backend/internal/domain/subject"
	"github.com/quizdrill/backend/internal/id"
)

// ── Request / Response types ────────────────────────────────────────────────

type ChoiceRequest struct {
	ID   string `json:"id,omitempty" example:"c1"`
	Text string `json:"text" example:"Primary key"`
}

// QuestionRequest creates or replaces a question. The correct choice is
// given either by answer_index or by answer_id; answer_index wins.
type QuestionRequest struct {
	Subject     string          `json:"subject" example:"Database"`
	Topic       string          `json:"topic" example:"Keys"`
	Prompt      string          `json:"prompt" example:"Which key uniquely identifies a row?"`
	Choices     []ChoiceRequest `json:"choices"`
	AnswerIndex *int            `json:"answer_index,omitempty" example:"1"`
	AnswerID    string          `json:"answer_id,omitempty"`
	Explanation string          `json:"explanation" example:"Primary keys are unique and not null."`
	Difficulty  int             `json:"difficulty,omitempty" example:"2"`
	Tags        []string        `json:"tags,omitempty"`
	Source      string          `json:"source,omitempty"`
	Bookmarked  bool            `json:"bookmarked"`
}

func (r *QuestionRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return errors.New("prompt is required")
	}
	if _, ok := subject.Parse(r.Subject); !ok {
		return fmt.Errorf("unknown subject %q", r.Subject)
	}
	if len(r.Choices) < questionbank.MinChoices || len(r.Choices) > questionbank.MaxChoices {
		return fmt.Errorf("choices: need %d to %d", questionbank.MinChoices, questionbank.MaxChoices)
	}
	for _, c := range r.Choices {
		if strings.TrimSpace(c.Text) == "" {
			return errors.New("choice text is required")
		}
	}
	if r.AnswerIndex != nil {
		if *r.AnswerIndex < 0 || *r.AnswerIndex >= len(r.Choices) {
			return errors.New("answer_index out of range")
		}
	} else if r.AnswerID == "" {
		return errors.New("answer_index or answer_id is required")
	}
	return nil
}

// toQuestion builds the domain question. Choices without an id get a fresh
// one; ids of existing choices are kept so answers stay stable.
func (r *QuestionRequest) toQuestion(questionID string) questionbank.Question {
	sub, _ := subject.Parse(r.Subject)
	q := questionbank.Question{
		ID:          questionID,
		Subject:     sub,
		Topic:       r.Topic,
		Prompt:      r.Prompt,
		Choices:     make([]questionbank.Choice, len(r.Choices)),
		AnswerID:    r.AnswerID,
		Explanation: r.Explanation,
		Difficulty:  r.Difficulty,
		Tags:        r.Tags,
		Source:      r.Source,
		Bookmarked:  r.Bookmarked,
	}
	for i, c := range r.Choices {
		cid := c.ID
		if cid == "" {
			cid = id.GenerateID()
		}
		q.Choices[i] = questionbank.Choice{ID: cid, Text: c.Text}
	}
	if r.AnswerIndex != nil {
		q.AnswerID = q.Choices[*r.AnswerIndex].ID
	}
	if q.Difficulty == 0 {
		q.Difficulty = questionbank.DefaultDifficulty
	}
	if q.Tags == nil {
		q.Tags = []string{}
	}
	return q
}

type ChoiceResponse struct {
	ID   string `json:"id" example:"c1"`
	Text string `json:"text" example:"Primary key"`
}

type QuestionResponse struct {
	ID            string           `json:"id" example:"3f0e7c9a-1b2c-4d5e-8f90-a1b2c3d4e5f6"`
	Subject       string           `json:"subject" example:"Database"`
	Topic         string           `json:"topic" example:"Keys"`
	Prompt        string           `json:"prompt" example:"Which key uniquely identifies a row?"`
	Choices       []ChoiceResponse `json:"choices"`
	AnswerID      string           `json:"answer_id" example:"c1"`
	Explanation   string           `json:"explanation"`
	Difficulty    int              `json:"difficulty" example:"2"`
	Tags          []string         `json:"tags"`
	Source        string           `json:"source"`
	TimesAnswered int              `json:"times_answered" example:"3"`
	TimesCorrect  int              `json:"times_correct" example:"2"`
	Mastery       int              `json:"mastery" example:"67"`
	LastSeen      *time.Time       `json:"last_seen,omitempty"`
	Bookmarked    bool             `json:"bookmarked"`
}

func toChoices(choices []questionbank.Choice) []ChoiceResponse {
	out := make([]ChoiceResponse, len(choices))
	for i, c := range choices {
		out[i] = ChoiceResponse{ID: c.ID, Text: c.Text}
	}
	return out
}

func toQuestionResponse(q questionbank.Question) QuestionResponse {
	tags := q.Tags
	if tags == nil {
		tags = []string{}
	}
	return QuestionResponse{
		ID:            q.ID,
		Subject:       q.Subject.String(),
		Topic:         q.Topic,
		Prompt:        q.Prompt,
		Choices:       toChoices(q.Choices),
		AnswerID:      q.AnswerID,
		Explanation:   q.Explanation,
		Difficulty:    q.Difficulty,
		Tags:          tags,
		Source:        q.Source,
		TimesAnswered: q.Attempts,
		TimesCorrect:  q.Correct,
		Mastery:       q.Mastery(),
		LastSeen:      q.LastSeen,
		Bookmarked:    q.Bookmarked,
	}
}

func toQuestionResponses(questions []questionbank.Question) []QuestionResponse {
	out := make([]QuestionResponse, len(questions))
	for i, q := range questions {
		out[i] = toQuestionResponse(q)
	}
	return out
}

type SubjectResponse struct {
	Name          string `json:"name" example:"Database"`
	Questions     int    `json:"questions" example:"12"`
	TimesAnswered int    `json:"times_answered" example:"40"`
	TimesCorrect  int    `json:"times_correct" example:"31"`
	Mastery       int    `json:"mastery" example:"78"`
}

type BookmarkResponse struct {
	ID         string `json:"id"`
	Bookmarked bool   `json:"bookmarked"`
}

// parseSubjects reads a comma separated subject list. Unknown names are an
// error so a typo never silently widens the selection.
func parseSubjects(raw string) ([]subject.Subject, error) {
	var out []subject.Subject
	for _, name := range strings.Split(raw, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		sub, ok := subject.Parse(name)
		if !ok {
			return nil, fmt.Errorf("unknown subject %q", name)
		}
		out = append(out, sub)
	}
	return out, nil
}

// ── Handlers ────────────────────────────────────────────────────────────────

// listSubjects returns per-subject counts.
// @Summary      List subjects
// @Description  Subjects in canonical order with question counts and mastery.
// @Tags         Questions
// @Produce      json
// @Success      200  {array}  SubjectResponse
// @Router       /subjects [get]
func (h *Handler) listSubjects(w http.ResponseWriter, r *http.Request) {
	stats := h.svc.SubjectStats()

	resp := make([]SubjectResponse, 0, len(stats))
	for _, sub := range subject.All() {
		s := stats[sub]
		resp = append(resp, SubjectResponse{
			Name:          sub.String(),
			Questions:     s.Questions,
			TimesAnswered: s.Attempts,
			TimesCorrect:  s.Correct,
			Mastery:       s.Mastery(),
		})
	}
	respondJSON(w, http.StatusOK, resp)
}

// listQuestions lists the bank.
// @Summary      List questions
// @Description  Search over prompt, topic, subject and tags, optionally narrowed to subjects.
// @Tags         Questions
// @Produce      json
// @Param        q        query  string  false  "Search term"
// @Param        subject  query  string  false  "Comma separated subjects"
// @Success      200  {array}   QuestionResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /questions [get]
func (h *Handler) listQuestions(w http.ResponseWriter, r *http.Request) {
	subjects, err := parseSubjects(r.URL.Query().Get("subject"))
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	questions := h.svc.Questions(r.URL.Query().Get("q"), subjects)
	respondJSON(w, http.StatusOK, toQuestionResponses(questions))
}

// createQuestion adds a question.
// @Summary      Create a question
// @Tags         Questions
// @Accept       json
// @Produce      json
// @Param        body  body      QuestionRequest  true  "Question to create"
// @Success      201   {object}  QuestionResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      422   {object}  ErrorResponse
// @Router       /questions [post]
func (h *Handler) createQuestion(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	q, err := h.svc.CreateQuestion(r.Context(), req.toQuestion(id.GenerateID()))
	if h.handleServiceError(w, err) {
		return
	}
	respondJSON(w, http.StatusCreated, toQuestionResponse(q))
}

// getQuestion returns one question.
// @Summary      Get a question
// @Tags         Questions
// @Produce      json
// @Param        questionID  path      string  true  "Question ID"
// @Success      200         {object}  QuestionResponse
// @Failure      404         {object}  ErrorResponse
// @Router       /questions/{questionID} [get]
func (h *Handler) getQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := h.svc.Question(r.PathValue("questionID"))
	if h.handleServiceError(w, err) {
		return
	}
	respondJSON(w, http.StatusOK, toQuestionResponse(q))
}

// updateQuestion replaces a question's content. Statistics are kept.
// @Summary      Update a question
// @Tags         Questions
// @Accept       json
// @Produce      json
// @Param        questionID  path      string           true  "Question ID"
// @Param        body        body      QuestionRequest  true  "New content"
// @Success      200         {object}  QuestionResponse
// @Failure      400         {object}  ErrorResponse
// @Failure      404         {object}  ErrorResponse
// @Failure      422         {object}  ErrorResponse
// @Router       /questions/{questionID} [put]
func (h *Handler) updateQuestion(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	q, err := h.svc.UpdateQuestion(r.Context(), req.toQuestion(r.PathValue("questionID")))
	if h.handleServiceError(w, err) {
		return
	}
	respondJSON(w, http.StatusOK, toQuestionResponse(q))
}

// DELETE /questions/{questionID}
// @Summary      Delete a question
// @Tags         Questions
// @Param        questionID  path  string  true  "Question ID"
// @Success      204
// @Failure      404  {object}  ErrorResponse
// @Router       /questions/{questionID} [delete]
func (h *Handler) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	if h.handleServiceError(w, h.svc.DeleteQuestion(r.Context(), r.PathValue("questionID"))) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// toggleBookmark flips the bookmark flag.
// @Summary      Toggle bookmark
// @Tags         Questions
// @Produce      json
// @Param        questionID  path      string  true  "Question ID"
// @Success      200         {object}  BookmarkResponse
// @Failure      404         {object}  ErrorResponse
// @Router       /questions/{questionID}/bookmark [post]
func (h *Handler) toggleBookmark(w http.ResponseWriter, r *http.Request) {
	questionID := r.PathValue("questionID")
	marked, err := h.svc.ToggleBookmark(r.Context(), questionID)
	if h.handleServiceError(w, err) {
		return
	}
	respondJSON(w, http.StatusOK, BookmarkResponse{ID: questionID, Bookmarked: marked})
}

// resetStats zeroes a question's attempt counters.
// @Summary      Reset statistics
// @Tags         Questions
// @Produce      json
// @Param        questionID  path      string  true  "Question ID"
// @Success      200         {object}  QuestionResponse
// @Failure      404         {object}  ErrorResponse
// @Router       /questions/{questionID}/reset-stats [post]
func (h *Handler) resetStats(w http.ResponseWriter, r *http.Request) {
	q, err := h.svc.ResetStats(r.Context(), r.PathValue("questionID"))
	if h.handleServiceError(w, err) {
		return
	}
	respondJSON(w, http.StatusOK, toQuestionResponse(q))
}

// listReview returns weak and bookmarked questions, most recently seen first.
// @Summary      Review queue
// @Tags         Questions
// @Produce      json
// @Success      200  {array}  QuestionResponse
// @Router       /review [get]
func (h *Handler) listReview(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, toQuestionResponses(h.svc.Review()))
}
