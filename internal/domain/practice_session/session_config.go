package practicesession

import (
	"time"

	"github.com/quizdrill/backend/internal/domain/examconfig"
	"github.com/quizdrill/backend/internal/domain/subject"
)

// Mode selects the scoring cadence of a session.
type Mode string

const (
	// ModePractice scores each question as soon as it is answered.
	ModePractice Mode = "practice"
	// ModeMock is a timed exam scored in one batch at the end.
	ModeMock Mode = "mock"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModePractice || m == ModeMock
}

// DefaultPracticeQuestions is the practice queue size when none is given.
const DefaultPracticeQuestions = 10

// SessionConfig holds the constraints for starting a session.
type SessionConfig struct {
	Mode         Mode
	Subjects     []subject.Subject // empty = every subject
	MaxQuestions int               // queue size, capped at the pool size
	MaxDuration  *time.Duration    // nil = no time limit
}

// DefaultConfig returns an untimed practice run over every subject.
func DefaultConfig() SessionConfig {
	return SessionConfig{
		Mode:         ModePractice,
		Subjects:     nil,
		MaxQuestions: DefaultPracticeQuestions,
		MaxDuration:  nil,
	}
}

// MockConfig derives a mock exam configuration from the exam settings.
func MockConfig(exam examconfig.Config) SessionConfig {
	duration := exam.Duration()
	return SessionConfig{
		Mode:         ModeMock,
		MaxQuestions: exam.MockQuestionCount,
		MaxDuration:  &duration,
	}
}
