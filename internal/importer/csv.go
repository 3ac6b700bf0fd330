package importer

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/quizdrill/backend/internal/domain/questionbank"
	"github.com/quizdrill/backend/internal/domain/subject"
)

// CSV column order. The first line of a file is a header and is skipped.
const (
	colSubject = iota
	colTopic
	colPrompt
	colChoice1
	colChoice2
	colChoice3
	colChoice4
	colAnswerIndex
	colExplanation
	csvColumns
)

const maxCSVLine = 1 << 20

// ParseLine splits one comma-separated line. A double quote toggles quoted
// mode, in which commas are literal; quotes themselves are dropped and every
// field is trimmed.
func ParseLine(line string) []string {
	var (
		fields []string
		cur    strings.Builder
		quoted bool
	)
	for _, ch := range line {
		switch {
		case ch == '"':
			quoted = !quoted
		case ch == ',' && !quoted:
			fields = append(fields, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(ch)
		}
	}
	return append(fields, strings.TrimSpace(cur.String()))
}

// ImportCSV builds a replacement bank from CSV rows. Rows without a
// subject, without a prompt or with fewer than two non-empty choices are
// skipped; an unknown subject falls back to the default one. The answer index is clamped into range, and an unparsable index
// selects the first choice. Every question gets fresh ids.
func ImportCSV(r io.Reader) ([]questionbank.Question, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxCSVLine)

	out := []questionbank.Question{}
	header := true
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		if header {
			header = false
			continue
		}
		if q, ok := questionFromRow(ParseLine(line)); ok {
			out = append(out, q)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &ImportError{Record: -1, Err: err}
	}
	return out, nil
}

func questionFromRow(cols []string) (questionbank.Question, bool) {
	for len(cols) < csvColumns {
		cols = append(cols, "")
	}

	if cols[colSubject] == "" || cols[colPrompt] == "" {
		return questionbank.Question{}, false
	}
	sub, ok := subject.Parse(cols[colSubject])
	if !ok {
		sub = subject.Default()
	}

	var choices []string
	for _, text := range cols[colChoice1 : colChoice4+1] {
		if text != "" {
			choices = append(choices, text)
		}
	}
	if len(choices) < questionbank.MinChoices {
		return questionbank.Question{}, false
	}

	answer, err := strconv.Atoi(cols[colAnswerIndex])
	if err != nil {
		answer = 0
	}
	answer = clamp(answer, 0, len(choices)-1)

	q, err := questionbank.New(sub, cols[colTopic], cols[colPrompt], choices, answer, cols[colExplanation])
	if err != nil {
		return questionbank.Question{}, false
	}
	return q, true
}
