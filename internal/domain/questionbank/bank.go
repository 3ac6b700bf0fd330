package questionbank

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/quizdrill/backend/internal/domain/subject"
)

var ErrQuestionNotFound = errors.New("question not found")

// Bank is the process-wide question collection. It is the single writer for
// question data: every mutation happens under its write lock and readers
// only ever see deep-copied snapshots, so a batch of stat updates is never
// observed half-applied.
type Bank struct {
	mu        sync.RWMutex
	questions []Question
}

// NewBank creates a bank from an initial set of questions. The questions
// are validated; a malformed question rejects the whole set.
func NewBank(questions []Question) (*Bank, error) {
	b := &Bank{}
	if err := b.Replace(questions); err != nil {
		return nil, err
	}
	return b, nil
}

// Snapshot returns a deep copy of every question in bank order.
func (b *Bank) Snapshot() []Question {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return CloneAll(b.questions)
}

// Len returns the number of questions.
func (b *Bank) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.questions)
}

// Get returns a copy of the question with the given id.
func (b *Bank) Get(questionID string) (Question, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	i := b.indexOf(questionID)
	if i < 0 {
		return Question{}, ErrQuestionNotFound
	}
	return b.questions[i].Clone(), nil
}

// Replace swaps the whole collection. Nothing changes unless every question
// validates and ids are unique.
func (b *Bank) Replace(questions []Question) error {
	seen := make(map[string]bool, len(questions))
	for _, q := range questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("question %q: %w", q.ID, err)
		}
		if seen[q.ID] {
			return fmt.Errorf("%w: duplicate question id %q", ErrMalformedQuestion, q.ID)
		}
		seen[q.ID] = true
	}

	next := CloneAll(questions)

	b.mu.Lock()
	b.questions = next
	b.mu.Unlock()
	return nil
}

// Add inserts a new question at the front of the bank, the way freshly
// authored questions are listed first.
func (b *Bank) Add(q Question) error {
	if err := q.Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.indexOf(q.ID) >= 0 {
		return fmt.Errorf("%w: duplicate question id %q", ErrMalformedQuestion, q.ID)
	}
	b.questions = append([]Question{q.Clone()}, b.questions...)
	return nil
}

// Update replaces the content of an existing question. Statistics are kept
// from the stored copy; only the authoring fields and the bookmark change.
func (b *Bank) Update(q Question) (Question, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(q.ID)
	if i < 0 {
		return Question{}, ErrQuestionNotFound
	}

	current := b.questions[i]
	next := q.Clone()
	next.Attempts = current.Attempts
	next.Correct = current.Correct
	next.LastSeen = current.LastSeen

	if err := next.Validate(); err != nil {
		return Question{}, err
	}
	b.questions[i] = next
	return next.Clone(), nil
}

// Remove deletes a question.
func (b *Bank) Remove(questionID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(questionID)
	if i < 0 {
		return ErrQuestionNotFound
	}
	b.questions = append(b.questions[:i], b.questions[i+1:]...)
	return nil
}

// ToggleBookmark flips the bookmark flag and returns its new value.
func (b *Bank) ToggleBookmark(questionID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(questionID)
	if i < 0 {
		return false, ErrQuestionNotFound
	}
	b.questions[i].Bookmarked = !b.questions[i].Bookmarked
	return b.questions[i].Bookmarked, nil
}

// ResetStats clears the attempt counters of a question. LastSeen and the
// bookmark are left alone.
func (b *Bank) ResetStats(questionID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(questionID)
	if i < 0 {
		return ErrQuestionNotFound
	}
	b.questions[i].Attempts = 0
	b.questions[i].Correct = 0
	return nil
}

// RecordAttempts applies a batch of scored answers in one critical section.
// Each question id is counted at most once per batch; ids no longer in the
// bank (deleted mid-session) are skipped. It returns how many questions
// were updated.
func (b *Bank) RecordAttempts(at time.Time, attempts ...Attempt) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	applied := make(map[string]bool, len(attempts))
	updated := 0
	for _, a := range attempts {
		if applied[a.QuestionID] {
			continue
		}
		applied[a.QuestionID] = true

		i := b.indexOf(a.QuestionID)
		if i < 0 {
			continue
		}
		b.questions[i].record(a.Correct, at)
		updated++
	}
	return updated
}

// Search returns questions whose prompt, topic, subject or tags contain the
// term (case-insensitive). An empty term matches everything.
func (b *Bank) Search(term string) []Question {
	key := strings.ToLower(strings.TrimSpace(term))

	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []Question
	for _, q := range b.questions {
		if key == "" || strings.Contains(searchText(q), key) {
			out = append(out, q.Clone())
		}
	}
	return out
}

// StatsBySubject aggregates question counts and attempt totals per subject.
func (b *Bank) StatsBySubject() map[subject.Subject]SubjectStats {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[subject.Subject]SubjectStats)
	for _, q := range b.questions {
		s := out[q.Subject]
		s.Questions++
		s.Attempts += q.Attempts
		s.Correct += q.Correct
		out[q.Subject] = s
	}
	return out
}

func (b *Bank) indexOf(questionID string) int {
	for i := range b.questions {
		if b.questions[i].ID == questionID {
			return i
		}
	}
	return -1
}

func searchText(q Question) string {
	parts := append([]string{q.Prompt, q.Topic, string(q.Subject)}, q.Tags...)
	return strings.ToLower(strings.Join(parts, " "))
}

// FilterBySubject keeps the questions whose subject is in subjects. An
// empty filter keeps everything.
func FilterBySubject(questions []Question, subjects []subject.Subject) []Question {
	if len(subjects) == 0 {
		return questions
	}
	allowed := make(map[subject.Subject]bool, len(subjects))
	for _, s := range subjects {
		allowed[s] = true
	}

	out := make([]Question, 0, len(questions))
	for _, q := range questions {
		if allowed[q.Subject] {
			out = append(out, q)
		}
	}
	return out
}
