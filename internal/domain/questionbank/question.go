package questionbank

import (
	"errors"
	"fmt"
	"time"

	"github.com/quizdrill/backend/internal/domain/subject"
	"github.com/quizdrill/backend/internal/id"
)

const (
	MinChoices = 2
	MaxChoices = 6

	MinDifficulty     = 1
	MaxDifficulty     = 5
	DefaultDifficulty = 2
)

// ErrMalformedQuestion marks a question that cannot be scored: too few or
// too many choices, duplicate choice ids, or an answer id that does not
// resolve within its own choice list.
var ErrMalformedQuestion = errors.New("malformed question")

// Choice is one selectable answer. Its ID is only unique within its question.
type Choice struct {
	ID   string
	Text string
}

// Question is a multiple-choice item together with its lifetime statistics.
type Question struct {
	ID          string
	Subject     subject.Subject
	Topic       string
	Prompt      string
	Choices     []Choice
	AnswerID    string
	Explanation string
	Difficulty  int
	Tags        []string
	Source      string

	Attempts   int
	Correct    int
	LastSeen   *time.Time
	Bookmarked bool
}

// New builds a fresh question from plain choice texts, generating ids for
// the question and every choice. answerIndex selects the correct choice.
func New(sub subject.Subject, topic, prompt string, choiceTexts []string, answerIndex int, explanation string) (Question, error) {
	if answerIndex < 0 || answerIndex >= len(choiceTexts) {
		return Question{}, fmt.Errorf("%w: answer index %d out of range for %d choices", ErrMalformedQuestion, answerIndex, len(choiceTexts))
	}

	choices := make([]Choice, len(choiceTexts))
	for i, text := range choiceTexts {
		choices[i] = Choice{ID: id.GenerateID(), Text: text}
	}

	q := Question{
		ID:          id.GenerateID(),
		Subject:     sub,
		Topic:       topic,
		Prompt:      prompt,
		Choices:     choices,
		AnswerID:    choices[answerIndex].ID,
		Explanation: explanation,
		Difficulty:  DefaultDifficulty,
		Tags:        []string{},
	}
	if err := q.Validate(); err != nil {
		return Question{}, err
	}
	return q, nil
}

// Validate checks the structural invariants a question must hold before it
// may enter the bank.
func (q Question) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("%w: missing id", ErrMalformedQuestion)
	}
	if !q.Subject.Valid() {
		return fmt.Errorf("%w: unknown subject %q", ErrMalformedQuestion, q.Subject)
	}
	if len(q.Choices) < MinChoices || len(q.Choices) > MaxChoices {
		return fmt.Errorf("%w: %d choices, need %d to %d", ErrMalformedQuestion, len(q.Choices), MinChoices, MaxChoices)
	}

	seen := make(map[string]bool, len(q.Choices))
	for _, c := range q.Choices {
		if c.ID == "" {
			return fmt.Errorf("%w: choice without id", ErrMalformedQuestion)
		}
		if seen[c.ID] {
			return fmt.Errorf("%w: duplicate choice id %q", ErrMalformedQuestion, c.ID)
		}
		seen[c.ID] = true
	}
	if !seen[q.AnswerID] {
		return fmt.Errorf("%w: answer id %q not among choices", ErrMalformedQuestion, q.AnswerID)
	}

	if q.Difficulty < MinDifficulty || q.Difficulty > MaxDifficulty {
		return fmt.Errorf("%w: difficulty %d outside %d..%d", ErrMalformedQuestion, q.Difficulty, MinDifficulty, MaxDifficulty)
	}
	if q.Attempts < 0 || q.Correct < 0 || q.Correct > q.Attempts {
		return fmt.Errorf("%w: inconsistent stats %d/%d", ErrMalformedQuestion, q.Correct, q.Attempts)
	}
	return nil
}

// HasChoice reports whether choiceID belongs to this question.
func (q Question) HasChoice(choiceID string) bool {
	for _, c := range q.Choices {
		if c.ID == choiceID {
			return true
		}
	}
	return false
}

// IsCorrect reports whether choiceID is the designated answer.
func (q Question) IsCorrect(choiceID string) bool {
	return choiceID != "" && choiceID == q.AnswerID
}

// AnswerIndex returns the position of the correct choice, or -1.
func (q Question) AnswerIndex() int {
	for i, c := range q.Choices {
		if c.ID == q.AnswerID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy so snapshots never alias bank storage.
func (q Question) Clone() Question {
	out := q
	if q.Choices != nil {
		out.Choices = make([]Choice, len(q.Choices))
		copy(out.Choices, q.Choices)
	}
	if q.Tags != nil {
		out.Tags = make([]string, len(q.Tags))
		copy(out.Tags, q.Tags)
	}
	if q.LastSeen != nil {
		ts := *q.LastSeen
		out.LastSeen = &ts
	}
	return out
}

// CloneAll deep-copies a slice of questions.
func CloneAll(questions []Question) []Question {
	out := make([]Question, len(questions))
	for i, q := range questions {
		out[i] = q.Clone()
	}
	return out
}
