package subject

import "strings"

// Subject is one of the fixed exam subjects a question belongs to.
type Subject string

const (
	ComputerGeneral Subject = "Computer General"
	Spreadsheet     Subject = "Spreadsheet"
	Database        Subject = "Database"
)

var all = []Subject{ComputerGeneral, Spreadsheet, Database}

// aliases maps every accepted spelling (lower-cased) to its subject.
// Korean labels are accepted for banks exported with Korean subject names.
var aliases = map[string]Subject{
	"computer general": ComputerGeneral,
	"computer-general": ComputerGeneral,
	"컴퓨터 일반":           ComputerGeneral,
	"spreadsheet":      Spreadsheet,
	"스프레드시트":           Spreadsheet,
	"database":         Database,
	"데이터베이스":           Database,
}

// All returns the subjects in their canonical order.
func All() []Subject {
	out := make([]Subject, len(all))
	copy(out, all)
	return out
}

// Default is the first enumerated subject.
func Default() Subject {
	return all[0]
}

// Parse resolves a user-supplied label. The second result is false when the
// label is empty or unknown.
func Parse(s string) (Subject, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return "", false
	}
	sub, ok := aliases[key]
	return sub, ok
}

// Valid reports whether s is one of the canonical subjects.
func (s Subject) Valid() bool {
	for _, v := range all {
		if v == s {
			return true
		}
	}
	return false
}

func (s Subject) String() string {
	return string(s)
}
