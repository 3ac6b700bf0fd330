package importer_test

import (
	"strings"
	"testing"

	"github.com/quizdrill/backend/internal/domain/subject"
	"github.com/quizdrill/backend/internal/importer"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{`A,B,"C, with comma",D,E,,,1,exp`, []string{"A", "B", "C, with comma", "D", "E", "", "", "1", "exp"}},
		{` a , b `, []string{"a", "b"}},
		{`"x""y",z`, []string{"xy", "z"}},
		{``, []string{""}},
	}
	for _, tt := range tests {
		got := importer.ParseLine(tt.line)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
			t.Errorf("ParseLine(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestImportCSV(t *testing.T) {
	data := strings.Join([]string{
		"subject,topic,prompt,choice1,choice2,choice3,choice4,answerIndex,explanation",
		`Database,Keys,"Pick one, please",A,B,C,,2,because`,
		"",
		"Spreadsheet,,Too few,A,,,,0,",
		",,No subject,A,B,,,0,",
		"Database,,,A,B,,,0,no prompt",
		"Astronomy,,Unknown subject,A,B,,,0,",
		"스프레드시트,Functions,Clamped,A,B,,,9,",
		"Computer General,,Bad index,A,B,,,x,",
	}, "\r\n")

	got, err := importer.ImportCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 questions, got %d", len(got))
	}

	first := got[0]
	if first.Prompt != "Pick one, please" || first.Subject != subject.Database || first.Explanation != "because" {
		t.Errorf("unexpected first question %+v", first)
	}
	if len(first.Choices) != 3 || first.AnswerIndex() != 2 {
		t.Errorf("expected 3 choices with answer index 2, got %d/%d", len(first.Choices), first.AnswerIndex())
	}

	if got[1].Prompt != "Unknown subject" || got[1].Subject != subject.Default() {
		t.Errorf("expected unknown subject to fall back to the default, got %q", got[1].Subject)
	}
	if got[2].Subject != subject.Spreadsheet || got[2].AnswerIndex() != 1 {
		t.Errorf("expected clamped answer index 1, got %d", got[2].AnswerIndex())
	}
	if got[3].AnswerIndex() != 0 {
		t.Errorf("expected unparsable index to select the first choice, got %d", got[3].AnswerIndex())
	}

	ids := map[string]bool{}
	for _, q := range got {
		if ids[q.ID] {
			t.Errorf("duplicate id %s", q.ID)
		}
		ids[q.ID] = true
		if err := q.Validate(); err != nil {
			t.Errorf("invalid question: %v", err)
		}
	}
}

func TestImportCSV_HeaderOnly(t *testing.T) {
	got, err := importer.ImportCSV(strings.NewReader("subject,topic,prompt\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty bank, got %d", len(got))
	}
}
