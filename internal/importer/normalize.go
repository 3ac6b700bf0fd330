package importer

import (
	"fmt"

	"github.com/quizdrill/backend/internal/domain/questionbank"
	"github.com/quizdrill/backend/internal/domain/subject"
	"github.com/quizdrill/backend/internal/id"
)

// AnswerPolicy decides what happens to a record that does not name its
// correct answer.
type AnswerPolicy string

const (
	// AnswerPolicyFirstChoice designates the first listed choice as correct
	// and repairs what it can. This matches files exported by older versions.
	AnswerPolicyFirstChoice AnswerPolicy = "first-choice"
	// AnswerPolicyRequire rejects the whole payload when any record lacks a
	// resolvable answerId or cannot be stored as given.
	AnswerPolicyRequire AnswerPolicy = "require"
)

// ParseAnswerPolicy maps a configuration value to a policy. The empty string
// selects the default.
func ParseAnswerPolicy(s string) (AnswerPolicy, error) {
	switch AnswerPolicy(s) {
	case "", AnswerPolicyFirstChoice:
		return AnswerPolicyFirstChoice, nil
	case AnswerPolicyRequire:
		return AnswerPolicyRequire, nil
	default:
		return "", fmt.Errorf("unknown answer policy %q", s)
	}
}

func (p AnswerPolicy) strict() bool {
	return p == AnswerPolicyRequire
}

// Normalize converts a raw record into a Question, filling every missing
// field with its default. It never fails; the result may still break the
// question invariants (see Repair).
func Normalize(r RawRecord) questionbank.Question {
	q := questionbank.Question{
		ID:          r.ID,
		Subject:     subject.Default(),
		Topic:       r.Topic,
		Prompt:      r.Prompt,
		AnswerID:    r.AnswerID,
		Explanation: r.Explanation,
		Difficulty:  r.Difficulty,
		Tags:        r.Tags,
		Source:      r.Source,
		Attempts:    r.Attempts,
		Correct:     r.Correct,
		Bookmarked:  r.Bookmarked,
	}
	if q.ID == "" {
		q.ID = id.GenerateID()
	}
	if s, ok := subject.Parse(r.Subject); ok {
		q.Subject = s
	}
	if q.Difficulty == 0 {
		q.Difficulty = questionbank.DefaultDifficulty
	}
	if q.Tags == nil {
		q.Tags = []string{}
	}
	if r.LastSeen != nil {
		ts := *r.LastSeen
		q.LastSeen = &ts
	}

	switch r.Shape {
	case ShapeFlattened:
		q.Choices = make([]questionbank.Choice, 0, len(r.Flat))
		for _, text := range r.Flat {
			q.Choices = append(q.Choices, questionbank.Choice{ID: id.GenerateID(), Text: text})
		}
	default:
		q.Choices = make([]questionbank.Choice, 0, len(r.Choices))
		for _, c := range r.Choices {
			cid := c.ID
			if cid == "" {
				cid = id.GenerateID()
			}
			q.Choices = append(q.Choices, questionbank.Choice{ID: cid, Text: c.Text})
		}
	}

	if q.AnswerID == "" && len(q.Choices) > 0 {
		q.AnswerID = q.Choices[0].ID
	}
	return q
}

// Repair brings a normalized question in line with the bank invariants.
// Difficulty and statistics are always clamped. Under the first-choice
// policy duplicate choice ids are regenerated, choices beyond the maximum
// are cut and an unresolvable answer falls back to the first choice; under
// the require policy each of those is an error. A question with fewer than
// two choices cannot be repaired.
func Repair(q questionbank.Question, policy AnswerPolicy) (questionbank.Question, error) {
	q = q.Clone()

	if len(q.Choices) < questionbank.MinChoices {
		return q, fmt.Errorf("%w: %d choices", questionbank.ErrMalformedQuestion, len(q.Choices))
	}
	if len(q.Choices) > questionbank.MaxChoices {
		if policy.strict() {
			return q, fmt.Errorf("%w: %d choices exceeds %d", questionbank.ErrMalformedQuestion, len(q.Choices), questionbank.MaxChoices)
		}
		q.Choices = q.Choices[:questionbank.MaxChoices]
	}

	seen := make(map[string]bool, len(q.Choices))
	for i, c := range q.Choices {
		if seen[c.ID] {
			if policy.strict() {
				return q, fmt.Errorf("%w: duplicate choice id %q", questionbank.ErrMalformedQuestion, c.ID)
			}
			q.Choices[i].ID = id.GenerateID()
		}
		seen[q.Choices[i].ID] = true
	}

	if !q.HasChoice(q.AnswerID) {
		if policy.strict() {
			return q, fmt.Errorf("%w: answer id %q not among choices", questionbank.ErrMalformedQuestion, q.AnswerID)
		}
		q.AnswerID = q.Choices[0].ID
	}

	q.Difficulty = clamp(q.Difficulty, questionbank.MinDifficulty, questionbank.MaxDifficulty)
	if q.Attempts < 0 {
		q.Attempts = 0
	}
	q.Correct = clamp(q.Correct, 0, q.Attempts)

	return q, q.Validate()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
