package importer_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/quizdrill/backend/internal/domain/questionbank"
	"github.com/quizdrill/backend/internal/domain/subject"
	"github.com/quizdrill/backend/internal/importer"
)

func sampleQuestion(t *testing.T) questionbank.Question {
	t.Helper()
	q, err := questionbank.New(subject.Database, "Keys", "Which key uniquely identifies a row?",
		[]string{"Foreign key", "Primary key", "Candidate key"}, 1, "Primary keys identify rows.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	seen := time.UnixMilli(1_700_000_123_456)
	q.Difficulty = 4
	q.Tags = []string{"keys", "relational"}
	q.Source = "2023 exam"
	q.Attempts = 7
	q.Correct = 5
	q.LastSeen = &seen
	q.Bookmarked = true
	return q
}

func decodeMaps(t *testing.T, data []byte) []map[string]any {
	t.Helper()
	var out []map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return out
}

func assertSameQuestion(t *testing.T, want, got questionbank.Question) {
	t.Helper()
	if got.ID != want.ID || got.Subject != want.Subject || got.Topic != want.Topic ||
		got.Prompt != want.Prompt || got.AnswerID != want.AnswerID ||
		got.Explanation != want.Explanation || got.Difficulty != want.Difficulty ||
		got.Source != want.Source || got.Attempts != want.Attempts ||
		got.Correct != want.Correct || got.Bookmarked != want.Bookmarked {
		t.Fatalf("question mismatch:\nwant %+v\ngot  %+v", want, got)
	}
	if len(got.Choices) != len(want.Choices) {
		t.Fatalf("expected %d choices, got %d", len(want.Choices), len(got.Choices))
	}
	for i := range want.Choices {
		if got.Choices[i] != want.Choices[i] {
			t.Errorf("choice %d: want %+v, got %+v", i, want.Choices[i], got.Choices[i])
		}
	}
	if strings.Join(got.Tags, ",") != strings.Join(want.Tags, ",") {
		t.Errorf("tags: want %v, got %v", want.Tags, got.Tags)
	}
	switch {
	case want.LastSeen == nil && got.LastSeen != nil:
		t.Errorf("expected no lastSeen, got %v", got.LastSeen)
	case want.LastSeen != nil && (got.LastSeen == nil || !got.LastSeen.Equal(*want.LastSeen)):
		t.Errorf("lastSeen: want %v, got %v", want.LastSeen, got.LastSeen)
	}
}

// ── Round trip ──────────────────────────────────────────────────────────────

func TestExport_RoundTrip(t *testing.T) {
	q := sampleQuestion(t)
	plain, err := questionbank.New(subject.Spreadsheet, "", "SUM?", []string{"a", "b"}, 0, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := importer.Export(&buf, []questionbank.Question{q, plain}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	maps := decodeMaps(t, buf.Bytes())
	assertSameQuestion(t, q, importer.Normalize(importer.DecodeRecord(maps[0])))
	assertSameQuestion(t, plain, importer.Normalize(importer.DecodeRecord(maps[1])))

	imported, err := importer.ImportJSON(bytes.NewReader(buf.Bytes()), importer.AnswerPolicyRequire)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(imported) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(imported))
	}
	assertSameQuestion(t, q, imported[0])
}

func TestExport_WireShape(t *testing.T) {
	var buf bytes.Buffer
	if err := importer.Export(&buf, []questionbank.Question{sampleQuestion(t)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := decodeMaps(t, buf.Bytes())[0]

	for _, key := range []string{"id", "subject", "choices", "answerId", "difficulty", "tags", "attempts", "correct", "lastSeen", "bookmarked"} {
		if _, ok := m[key]; !ok {
			t.Errorf("expected key %q in export", key)
		}
	}
	if m["lastSeen"].(float64) != 1_700_000_123_456 {
		t.Errorf("expected lastSeen in epoch milliseconds, got %v", m["lastSeen"])
	}
}

// ── Normalize ───────────────────────────────────────────────────────────────

func TestNormalize_Defaults(t *testing.T) {
	q := importer.Normalize(importer.DecodeRecord(map[string]any{
		"prompt":  "P",
		"choices": []any{map[string]any{"text": "x"}, map[string]any{"text": "y"}},
	}))

	if q.ID == "" {
		t.Error("expected a generated id")
	}
	if q.Subject != subject.Default() {
		t.Errorf("expected default subject, got %q", q.Subject)
	}
	if len(q.Choices) != 2 || q.Choices[0].ID == "" || q.Choices[1].ID == "" {
		t.Fatalf("expected two choices with ids, got %+v", q.Choices)
	}
	if q.AnswerID != q.Choices[0].ID {
		t.Error("expected answer to default to the first choice")
	}
	if q.Difficulty != 2 || q.Attempts != 0 || q.Correct != 0 || q.Bookmarked {
		t.Errorf("unexpected baseline values %+v", q)
	}
	if q.Tags == nil || q.LastSeen != nil {
		t.Error("expected empty tags and no lastSeen")
	}
}

func TestNormalize_FlattenedShape(t *testing.T) {
	raw := importer.DecodeRecord(map[string]any{
		"subject": "데이터베이스",
		"prompt":  "P",
		"choice1": "a",
		"choice2": "",
		"choice3": "c",
	})
	if raw.Shape != importer.ShapeFlattened {
		t.Fatalf("expected flattened shape, got %s", raw.Shape)
	}

	q := importer.Normalize(raw)
	if q.Subject != subject.Database {
		t.Errorf("expected Korean label to resolve, got %q", q.Subject)
	}
	if len(q.Choices) != 2 || q.Choices[0].Text != "a" || q.Choices[1].Text != "c" {
		t.Errorf("expected empty choices skipped, got %+v", q.Choices)
	}
}

func TestNormalize_IsTotal(t *testing.T) {
	inputs := []map[string]any{
		nil,
		{},
		{"choices": "not a list", "difficulty": "hard", "attempts": true, "tags": 5},
		{"choices": []any{42, nil, "bare text"}, "lastSeen": "yesterday"},
		{"subject": "Astronomy", "id": 12.0},
	}
	for i, in := range inputs {
		q := importer.Normalize(importer.DecodeRecord(in))
		if q.ID == "" || !q.Subject.Valid() || q.Difficulty == 0 {
			t.Errorf("input %d: expected defaults, got %+v", i, q)
		}
	}
}

// ── Repair ──────────────────────────────────────────────────────────────────

func TestRepair(t *testing.T) {
	base := func() questionbank.Question {
		return importer.Normalize(importer.DecodeRecord(map[string]any{
			"prompt": "P",
			"choices": []any{
				map[string]any{"id": "a", "text": "A"},
				map[string]any{"id": "b", "text": "B"},
			},
			"answerId": "b",
		}))
	}

	t.Run("unresolved answer falls back to first choice", func(t *testing.T) {
		q := base()
		q.AnswerID = "zzz"
		got, err := importer.Repair(q, importer.AnswerPolicyFirstChoice)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.AnswerID != "a" {
			t.Errorf("expected answer a, got %q", got.AnswerID)
		}

		if _, err := importer.Repair(q, importer.AnswerPolicyRequire); !errors.Is(err, questionbank.ErrMalformedQuestion) {
			t.Errorf("expected ErrMalformedQuestion under require, got %v", err)
		}
	})

	t.Run("too few choices", func(t *testing.T) {
		q := base()
		q.Choices = q.Choices[:1]
		if _, err := importer.Repair(q, importer.AnswerPolicyFirstChoice); !errors.Is(err, questionbank.ErrMalformedQuestion) {
			t.Errorf("expected ErrMalformedQuestion, got %v", err)
		}
	})

	t.Run("too many choices are cut", func(t *testing.T) {
		q := base()
		for i := 0; i < 6; i++ {
			q.Choices = append(q.Choices, questionbank.Choice{ID: string(rune('c' + i)), Text: "x"})
		}
		got, err := importer.Repair(q, importer.AnswerPolicyFirstChoice)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got.Choices) != questionbank.MaxChoices {
			t.Errorf("expected %d choices, got %d", questionbank.MaxChoices, len(got.Choices))
		}
		if _, err := importer.Repair(q, importer.AnswerPolicyRequire); err == nil {
			t.Error("expected error under require")
		}
	})

	t.Run("duplicate choice ids", func(t *testing.T) {
		q := base()
		q.Choices[1].ID = "a"
		q.AnswerID = "a"
		got, err := importer.Repair(q, importer.AnswerPolicyFirstChoice)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Choices[0].ID == got.Choices[1].ID {
			t.Error("expected duplicate id to be regenerated")
		}
	})

	t.Run("stats and difficulty clamped", func(t *testing.T) {
		q := base()
		q.Difficulty = 9
		q.Attempts = 3
		q.Correct = 8
		got, err := importer.Repair(q, importer.AnswerPolicyRequire)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Difficulty != 5 || got.Correct != 3 {
			t.Errorf("expected difficulty 5 and correct 3, got %d and %d", got.Difficulty, got.Correct)
		}

		q.Difficulty = -4
		q.Attempts = -1
		got, _ = importer.Repair(q, importer.AnswerPolicyFirstChoice)
		if got.Difficulty != 1 || got.Attempts != 0 || got.Correct != 0 {
			t.Errorf("unexpected clamp result %+v", got)
		}
	})
}

// ── ImportJSON ──────────────────────────────────────────────────────────────

func TestImportJSON_Errors(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"invalid json", `[{"prompt": `},
		{"object root", `{"questions": []}`},
		{"string root", `"hello"`},
		{"trailing garbage", `[{"prompt": "p", "choice1": "a", "choice2": "b"}] {"truncated": `},
		{"two arrays", `[] []`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := importer.ImportJSON(strings.NewReader(tt.payload), importer.AnswerPolicyFirstChoice)
			if !errors.Is(err, importer.ErrImport) {
				t.Fatalf("expected ErrImport, got %v", err)
			}
			var ie *importer.ImportError
			if !errors.As(err, &ie) || ie.Record != -1 {
				t.Errorf("expected payload-level ImportError, got %v", err)
			}
		})
	}
}

func TestImportJSON_LenientDropsUnrepairable(t *testing.T) {
	payload := `[
		{"id": "q1", "prompt": "ok", "choice1": "a", "choice2": "b"},
		{"id": "q2", "prompt": "one choice", "choice1": "a"},
		"not an object",
		{"id": "q1", "prompt": "dup id", "choices": [{"text": "x"}, {"text": "y"}]}
	]`
	got, err := importer.ImportJSON(strings.NewReader(payload), importer.AnswerPolicyFirstChoice)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(got))
	}
	if got[0].ID != "q1" || got[1].ID == "q1" {
		t.Errorf("expected duplicate id to be regenerated, got %q and %q", got[0].ID, got[1].ID)
	}
	if got[0].AnswerID != got[0].Choices[0].ID {
		t.Error("expected missing answer to default to the first choice")
	}
	if _, err := questionbank.NewBank(got); err != nil {
		t.Errorf("expected importable bank, got %v", err)
	}
}

func TestImportJSON_RequireAnswerID(t *testing.T) {
	payload := `[
		{"prompt": "ok", "choices": [{"id": "a", "text": "A"}, {"id": "b", "text": "B"}], "answerId": "b"},
		{"prompt": "missing", "choices": [{"id": "a", "text": "A"}, {"id": "b", "text": "B"}]}
	]`
	_, err := importer.ImportJSON(strings.NewReader(payload), importer.AnswerPolicyRequire)
	if !errors.Is(err, importer.ErrImport) || !errors.Is(err, questionbank.ErrMalformedQuestion) {
		t.Fatalf("expected ImportError wrapping ErrMalformedQuestion, got %v", err)
	}
	var ie *importer.ImportError
	if errors.As(err, &ie) && ie.Record != 1 {
		t.Errorf("expected record 1 to be blamed, got %d", ie.Record)
	}
}

func TestParseAnswerPolicy(t *testing.T) {
	if p, err := importer.ParseAnswerPolicy(""); err != nil || p != importer.AnswerPolicyFirstChoice {
		t.Errorf("expected default policy, got %q (%v)", p, err)
	}
	if p, err := importer.ParseAnswerPolicy("require"); err != nil || p != importer.AnswerPolicyRequire {
		t.Errorf("expected require policy, got %q (%v)", p, err)
	}
	if _, err := importer.ParseAnswerPolicy("guess"); err == nil {
		t.Error("expected error for unknown policy")
	}
}
