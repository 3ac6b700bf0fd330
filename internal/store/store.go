package store

import (
	"context"
	"errors"
	"time"

	"github.com/quizdrill/backend/internal/domain/examconfig"
	"github.com/quizdrill/backend/internal/domain/questionbank"
)

var (
	ErrNotFound = errors.New("not found")
)

// SessionRecord is the persisted summary of a finished session.
type SessionRecord struct {
	ID         string
	Mode       string
	RetryOf    string
	Total      int
	Correct    int
	Percent    int
	Passed     bool
	WrongIDs   []string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Store persists the bank, the exam configuration and session history. The
// bank and the configuration are independent blobs; loading one that was
// never saved returns ErrNotFound.
type Store interface {
	LoadBank(ctx context.Context) ([]questionbank.Question, error)
	SaveBank(ctx context.Context, questions []questionbank.Question) error

	LoadExamConfig(ctx context.Context) (examconfig.Config, error)
	SaveExamConfig(ctx context.Context, cfg examconfig.Config) error

	SaveSessionResult(ctx context.Context, rec SessionRecord) error
	// ListSessionResults returns the most recent records first. A limit of
	// zero or less returns everything.
	ListSessionResults(ctx context.Context, limit int) ([]SessionRecord, error)

	Close() error
}
