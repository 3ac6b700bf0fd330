package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/quizdrill/backend/internal/domain/questionbank"
	"github.com/quizdrill/backend/internal/id"
)

// ErrImport is matched by every *ImportError via errors.Is.
var ErrImport = errors.New("import failed")

var (
	errNotArray     = errors.New("root must be an array of questions")
	errTrailingData = errors.New("unexpected data after the question array")
)

// ImportError reports a payload that could not be imported. Record is the
// zero-based index of the offending record, or -1 when the payload itself
// is unreadable.
type ImportError struct {
	Record int
	Err    error
}

func (e *ImportError) Error() string {
	if e.Record < 0 {
		return fmt.Sprintf("import: %v", e.Err)
	}
	return fmt.Sprintf("import: record %d: %v", e.Record, e.Err)
}

func (e *ImportError) Unwrap() error { return e.Err }

func (e *ImportError) Is(target error) bool { return target == ErrImport }

// ImportJSON parses a JSON array of question records into a replacement
// bank. Nothing is returned unless the whole payload was accepted, so the
// caller can swap the bank in one step.
//
// Under AnswerPolicyFirstChoice, records that cannot be repaired (fewer than
// two choices) are dropped and duplicate question ids are regenerated.
// Under AnswerPolicyRequire any such record, or one without an answerId,
// fails the import.
func ImportJSON(r io.Reader, policy AnswerPolicy) ([]questionbank.Question, error) {
	dec := json.NewDecoder(r)
	var root any
	if err := dec.Decode(&root); err != nil {
		return nil, &ImportError{Record: -1, Err: err}
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, &ImportError{Record: -1, Err: errTrailingData}
	}
	items, ok := root.([]any)
	if !ok {
		return nil, &ImportError{Record: -1, Err: errNotArray}
	}

	out := make([]questionbank.Question, 0, len(items))
	ids := make(map[string]bool, len(items))
	for i, item := range items {
		m, _ := item.(map[string]any)
		raw := DecodeRecord(m)
		if policy.strict() && raw.AnswerID == "" {
			return nil, &ImportError{Record: i, Err: fmt.Errorf("%w: missing answerId", questionbank.ErrMalformedQuestion)}
		}

		q, err := Repair(Normalize(raw), policy)
		if err != nil {
			if policy.strict() {
				return nil, &ImportError{Record: i, Err: err}
			}
			continue
		}

		if ids[q.ID] {
			if policy.strict() {
				return nil, &ImportError{Record: i, Err: fmt.Errorf("%w: duplicate id %q", questionbank.ErrMalformedQuestion, q.ID)}
			}
			q.ID = id.GenerateID()
		}
		ids[q.ID] = true
		out = append(out, q)
	}
	return out, nil
}

// ExportChoice is the wire form of a choice.
type ExportChoice struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// ExportRecord is the wire form of a question. ImportJSON reads it back
// losslessly.
type ExportRecord struct {
	ID          string         `json:"id"`
	Subject     string         `json:"subject"`
	Topic       string         `json:"topic"`
	Prompt      string         `json:"prompt"`
	Choices     []ExportChoice `json:"choices"`
	AnswerID    string         `json:"answerId"`
	Explanation string         `json:"explanation"`
	Difficulty  int            `json:"difficulty"`
	Tags        []string       `json:"tags"`
	Source      string         `json:"source"`
	Attempts    int            `json:"attempts"`
	Correct     int            `json:"correct"`
	LastSeen    *int64         `json:"lastSeen,omitempty"` // epoch milliseconds
	Bookmarked  bool           `json:"bookmarked"`
}

// ToRecord converts a question to its wire form.
func ToRecord(q questionbank.Question) ExportRecord {
	rec := ExportRecord{
		ID:          q.ID,
		Subject:     q.Subject.String(),
		Topic:       q.Topic,
		Prompt:      q.Prompt,
		Choices:     make([]ExportChoice, len(q.Choices)),
		AnswerID:    q.AnswerID,
		Explanation: q.Explanation,
		Difficulty:  q.Difficulty,
		Tags:        q.Tags,
		Source:      q.Source,
		Attempts:    q.Attempts,
		Correct:     q.Correct,
		Bookmarked:  q.Bookmarked,
	}
	for i, c := range q.Choices {
		rec.Choices[i] = ExportChoice{ID: c.ID, Text: c.Text}
	}
	if rec.Tags == nil {
		rec.Tags = []string{}
	}
	if q.LastSeen != nil {
		ms := q.LastSeen.UnixMilli()
		rec.LastSeen = &ms
	}
	return rec
}

// Export writes questions as an indented JSON array.
func Export(w io.Writer, questions []questionbank.Question) error {
	records := make([]ExportRecord, len(questions))
	for i, q := range questions {
		records[i] = ToRecord(q)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
