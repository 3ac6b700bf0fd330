package subject_test

import (
	"testing"

	"github.com/quizdrill/backend/internal/domain/subject"
)

func TestDefault_IsFirst(t *testing.T) {
	if subject.Default() != subject.All()[0] {
		t.Errorf("expected default %q to be the first subject", subject.Default())
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want subject.Subject
		ok   bool
	}{
		{"Computer General", subject.ComputerGeneral, true},
		{"  spreadsheet ", subject.Spreadsheet, true},
		{"DATABASE", subject.Database, true},
		{"컴퓨터 일반", subject.ComputerGeneral, true},
		{"데이터베이스", subject.Database, true},
		{"", "", false},
		{"Chemistry", "", false},
	}

	for _, tt := range tests {
		got, ok := subject.Parse(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Parse(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	list := subject.All()
	list[0] = "mutated"

	if subject.All()[0] != subject.ComputerGeneral {
		t.Error("expected All to return an independent copy")
	}
}

func TestValid(t *testing.T) {
	if !subject.Spreadsheet.Valid() {
		t.Error("expected Spreadsheet to be valid")
	}
	if subject.Subject("spreadsheet").Valid() {
		t.Error("expected non-canonical spelling to be invalid")
	}
}
