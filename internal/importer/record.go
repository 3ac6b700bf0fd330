package importer

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Shape tells which of the two accepted record layouts a RawRecord came from.
type Shape int

const (
	// ShapeChoiceList carries a "choices" array of {id, text} entries.
	ShapeChoiceList Shape = iota
	// ShapeFlattened carries choice1..choice4 as separate text fields.
	ShapeFlattened
)

func (s Shape) String() string {
	if s == ShapeFlattened {
		return "flattened"
	}
	return "choice-list"
}

// RawChoice is a choice as it appeared in the payload. ID may be empty.
type RawChoice struct {
	ID   string
	Text string
}

// RawRecord is a loosely-shaped question record lifted out of decoded JSON.
// Only the field matching Shape holds choices: Choices for ShapeChoiceList,
// Flat for ShapeFlattened. Zero values mean "absent".
type RawRecord struct {
	Shape Shape

	ID          string
	Subject     string
	Topic       string
	Prompt      string
	Choices     []RawChoice
	Flat        []string
	AnswerID    string
	Explanation string
	Difficulty  int
	Tags        []string
	Source      string
	Attempts    int
	Correct     int
	LastSeen    *time.Time
	Bookmarked  bool
}

var flatChoiceKeys = []string{"choice1", "choice2", "choice3", "choice4"}

// DecodeRecord lifts a decoded JSON object into a RawRecord. It never fails:
// fields of the wrong type are treated as absent.
func DecodeRecord(m map[string]any) RawRecord {
	r := RawRecord{
		ID:          asString(m["id"]),
		Subject:     asString(m["subject"]),
		Topic:       asString(m["topic"]),
		Prompt:      asString(m["prompt"]),
		AnswerID:    asString(m["answerId"]),
		Explanation: asString(m["explanation"]),
		Difficulty:  asInt(m["difficulty"]),
		Tags:        asStrings(m["tags"]),
		Source:      asString(m["source"]),
		Attempts:    asInt(m["attempts"]),
		Correct:     asInt(m["correct"]),
		LastSeen:    asTime(m["lastSeen"]),
		Bookmarked:  asBool(m["bookmarked"]),
	}

	if list, ok := m["choices"].([]any); ok {
		r.Shape = ShapeChoiceList
		r.Choices = make([]RawChoice, 0, len(list))
		for _, entry := range list {
			switch c := entry.(type) {
			case map[string]any:
				r.Choices = append(r.Choices, RawChoice{ID: asString(c["id"]), Text: asString(c["text"])})
			case string:
				r.Choices = append(r.Choices, RawChoice{Text: c})
			}
		}
		return r
	}

	r.Shape = ShapeFlattened
	for _, key := range flatChoiceKeys {
		if text := asString(m[key]); text != "" {
			r.Flat = append(r.Flat, text)
		}
	}
	return r
}

func asString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
}

func asInt(v any) int {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0
		}
		return int(x)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func asBool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		b, _ := strconv.ParseBool(x)
		return b
	default:
		return false
	}
}

func asStrings(v any) []string {
	out := []string{}
	list, ok := v.([]any)
	if !ok {
		return out
	}
	for _, item := range list {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// asTime accepts epoch milliseconds (the export format) or an RFC 3339
// string. Zero is treated as absent.
func asTime(v any) *time.Time {
	switch x := v.(type) {
	case float64:
		if x <= 0 || math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
		t := time.UnixMilli(int64(x))
		return &t
	case string:
		t, err := time.Parse(time.RFC3339, x)
		if err != nil {
			return nil
		}
		return &t
	default:
		return nil
	}
}
