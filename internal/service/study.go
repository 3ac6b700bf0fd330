package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/quizdrill/backend/internal/domain/examconfig"
	practicesession "github.com/quizdrill/backend/internal/domain/practice_session"
	"github.com/quizdrill/backend/internal/domain/questionbank"
	"github.com/quizdrill/backend/internal/domain/review"
	"github.com/quizdrill/backend/internal/domain/subject"
	"github.com/quizdrill/backend/internal/importer"
	"github.com/quizdrill/backend/internal/store"
	"github.com/quizdrill/backend/internal/worker"
)

const (
	// DefaultSessionRetention is how long a finished session stays
	// reachable for review and retry before it is evicted.
	DefaultSessionRetention = 30 * time.Minute
	DefaultSweepInterval    = time.Minute
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidRequest  = errors.New("invalid request")
)

// Options tune a StudyService. Zero values pick the defaults.
type Options struct {
	TickInterval time.Duration
	AnswerPolicy importer.AnswerPolicy
	// SessionRetention and SweepInterval control eviction of finished
	// sessions. Their results live on in the session history.
	SessionRetention time.Duration
	SweepInterval    time.Duration
	// SeedBank fills an empty store with the sample questions.
	SeedBank bool
	Clock    func() time.Time
}

// StartRequest describes a new session. Mock sessions take their size and
// budget from the exam configuration; the overrides only apply to practice.
type StartRequest struct {
	Mode               practicesession.Mode
	Subjects           []subject.Subject
	MaxQuestions       int
	MaxDurationMinutes int
}

// StudyService is the single writer of the bank. It owns running sessions,
// drives their countdowns and persists the bank and session history
// whenever they change.
type StudyService struct {
	bank   *questionbank.Bank
	store  store.Store
	logger *slog.Logger
	opts   Options

	// countdowns live as long as the service
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.RWMutex
	sessions map[string]*practicesession.PracticeSession
	exam     examconfig.Config

	persistMu sync.Mutex
}

// NewStudyService loads the bank and exam configuration from st.
func NewStudyService(ctx context.Context, st store.Store, logger *slog.Logger, opts Options) (*StudyService, error) {
	if opts.TickInterval <= 0 {
		opts.TickInterval = practicesession.DefaultTickInterval
	}
	if opts.AnswerPolicy == "" {
		opts.AnswerPolicy = importer.AnswerPolicyFirstChoice
	}
	if opts.SessionRetention <= 0 {
		opts.SessionRetention = DefaultSessionRetention
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultSweepInterval
	}

	questions, err := st.LoadBank(ctx)
	seeded := false
	switch {
	case errors.Is(err, store.ErrNotFound):
		questions = nil
		if opts.SeedBank {
			questions = questionbank.Seed()
			seeded = true
		}
	case err != nil:
		return nil, fmt.Errorf("load bank: %w", err)
	}

	bank, err := questionbank.NewBank(questions)
	if err != nil {
		return nil, fmt.Errorf("load bank: %w", err)
	}

	exam, err := st.LoadExamConfig(ctx)
	if errors.Is(err, store.ErrNotFound) {
		exam = examconfig.Default()
	} else if err != nil {
		return nil, fmt.Errorf("load exam config: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s := &StudyService{
		bank:     bank,
		store:    st,
		logger:   logger,
		opts:     opts,
		ctx:      runCtx,
		cancel:   cancel,
		sessions: make(map[string]*practicesession.PracticeSession),
		exam:     exam.Normalize(),
	}

	if seeded {
		if err := s.persistBank(ctx); err != nil {
			cancel()
			return nil, err
		}
		logger.Info("seeded question bank", "questions", bank.Len())
	}

	worker.StartPeriodic(runCtx, opts.SweepInterval, func(time.Time) bool {
		s.evictFinished()
		return false
	})
	return s, nil
}

// Close stops every running countdown and the session sweeper.
func (s *StudyService) Close() {
	s.cancel()
}

// ── Bank ────────────────────────────────────────────────────────────────────

// Questions lists the bank, optionally narrowed by a search term and a set
// of subjects.
func (s *StudyService) Questions(term string, subjects []subject.Subject) []questionbank.Question {
	var questions []questionbank.Question
	if term != "" {
		questions = s.bank.Search(term)
	} else {
		questions = s.bank.Snapshot()
	}
	return questionbank.FilterBySubject(questions, subjects)
}

func (s *StudyService) Question(id string) (questionbank.Question, error) {
	return s.bank.Get(id)
}

// CreateQuestion adds a question to the front of the bank. Statistics on
// the input are ignored.
func (s *StudyService) CreateQuestion(ctx context.Context, q questionbank.Question) (questionbank.Question, error) {
	q.Attempts, q.Correct, q.LastSeen = 0, 0, nil
	if q.Tags == nil {
		q.Tags = []string{}
	}
	if err := s.bank.Add(q); err != nil {
		return questionbank.Question{}, err
	}
	return q, s.persistBank(ctx)
}

// UpdateQuestion replaces a question's content, keeping its statistics.
func (s *StudyService) UpdateQuestion(ctx context.Context, q questionbank.Question) (questionbank.Question, error) {
	updated, err := s.bank.Update(q)
	if err != nil {
		return questionbank.Question{}, err
	}
	return updated, s.persistBank(ctx)
}

func (s *StudyService) DeleteQuestion(ctx context.Context, id string) error {
	if err := s.bank.Remove(id); err != nil {
		return err
	}
	return s.persistBank(ctx)
}

func (s *StudyService) ToggleBookmark(ctx context.Context, id string) (bool, error) {
	marked, err := s.bank.ToggleBookmark(id)
	if err != nil {
		return false, err
	}
	return marked, s.persistBank(ctx)
}

func (s *StudyService) ResetStats(ctx context.Context, id string) (questionbank.Question, error) {
	if err := s.bank.ResetStats(id); err != nil {
		return questionbank.Question{}, err
	}
	q, err := s.bank.Get(id)
	if err != nil {
		return questionbank.Question{}, err
	}
	return q, s.persistBank(ctx)
}

// SubjectStats returns per-subject counts, including subjects with no
// questions.
func (s *StudyService) SubjectStats() map[subject.Subject]questionbank.SubjectStats {
	stats := s.bank.StatsBySubject()
	for _, sub := range subject.All() {
		if _, ok := stats[sub]; !ok {
			stats[sub] = questionbank.SubjectStats{}
		}
	}
	return stats
}

// Review returns the questions that need another look.
func (s *StudyService) Review() []questionbank.Question {
	return review.Select(s.bank.Snapshot())
}

// ── Import / export ─────────────────────────────────────────────────────────

// ImportJSON replaces the whole bank with the payload. On any error the
// bank is left untouched.
func (s *StudyService) ImportJSON(ctx context.Context, r io.Reader) (int, error) {
	questions, err := importer.ImportJSON(r, s.opts.AnswerPolicy)
	if err != nil {
		return 0, err
	}
	return s.replaceBank(ctx, questions, "json")
}

// ImportCSV replaces the whole bank with the valid rows of r.
func (s *StudyService) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	questions, err := importer.ImportCSV(r)
	if err != nil {
		return 0, err
	}
	return s.replaceBank(ctx, questions, "csv")
}

func (s *StudyService) replaceBank(ctx context.Context, questions []questionbank.Question, format string) (int, error) {
	if err := s.bank.Replace(questions); err != nil {
		return 0, &importer.ImportError{Record: -1, Err: err}
	}
	s.logger.Info("bank imported", "format", format, "questions", len(questions))
	return len(questions), s.persistBank(ctx)
}

func (s *StudyService) Export(w io.Writer) error {
	return importer.Export(w, s.bank.Snapshot())
}

// ── Exam configuration ──────────────────────────────────────────────────────

func (s *StudyService) ExamConfig() examconfig.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exam
}

// UpdateExamConfig normalizes and stores cfg. Running sessions keep the
// configuration they started with.
func (s *StudyService) UpdateExamConfig(ctx context.Context, cfg examconfig.Config) (examconfig.Config, error) {
	cfg = cfg.Normalize()
	if err := s.store.SaveExamConfig(ctx, cfg); err != nil {
		return examconfig.Config{}, fmt.Errorf("save exam config: %w", err)
	}
	s.mu.Lock()
	s.exam = cfg
	s.mu.Unlock()
	return cfg, nil
}

// ── Sessions ────────────────────────────────────────────────────────────────

// StartSession samples a new session from the bank and starts its
// countdown if it is timed.
func (s *StudyService) StartSession(req StartRequest) (*practicesession.PracticeSession, error) {
	var cfg practicesession.SessionConfig
	switch req.Mode {
	case practicesession.ModeMock:
		cfg = practicesession.MockConfig(s.ExamConfig())
	case practicesession.ModePractice, "":
		cfg = practicesession.DefaultConfig()
		if req.MaxQuestions > 0 {
			cfg.MaxQuestions = req.MaxQuestions
		}
		if req.MaxDurationMinutes > 0 {
			d := time.Duration(req.MaxDurationMinutes) * time.Minute
			cfg.MaxDuration = &d
		}
	default:
		return nil, fmt.Errorf("%w: unknown mode %q", ErrInvalidRequest, req.Mode)
	}
	cfg.Subjects = req.Subjects

	sess, err := practicesession.Start(s.bank.Snapshot(), cfg, s.bank, s.sessionOptions()...)
	if err != nil {
		return nil, err
	}
	s.register(sess)
	s.logger.Info("session started",
		"session_id", sess.ID,
		"mode", sess.Mode,
		"questions", len(sess.Questions),
	)
	return sess, nil
}

// Session looks up a session by id.
func (s *StudyService) Session(id string) (*practicesession.PracticeSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *StudyService) SelectAnswer(sessionID, questionID, choiceID string) (*practicesession.Reveal, error) {
	sess, err := s.Session(sessionID)
	if err != nil {
		return nil, err
	}
	reveal, err := sess.SelectAnswer(questionID, choiceID)
	if err != nil {
		return nil, err
	}
	if reveal != nil {
		// practice answers change the bank immediately
		if err := s.persistBank(context.Background()); err != nil {
			s.logger.Error("failed to persist bank", "session_id", sessionID, "error", err)
		}
	}
	return reveal, nil
}

func (s *StudyService) Advance(sessionID string, dir practicesession.Direction) error {
	sess, err := s.Session(sessionID)
	if err != nil {
		return err
	}
	return sess.Advance(dir)
}

// Finish ends a mock session. Persistence happens in the finish hook, so a
// session that ran out of time is stored the same way.
func (s *StudyService) Finish(sessionID string) (practicesession.Snapshot, error) {
	sess, err := s.Session(sessionID)
	if err != nil {
		return practicesession.Snapshot{}, err
	}
	if _, err := sess.Finish(); err != nil {
		return practicesession.Snapshot{}, err
	}
	return sess.Snapshot(), nil
}

// Retry starts a mock session over the questions missed in sessionID.
func (s *StudyService) Retry(sessionID string) (*practicesession.PracticeSession, error) {
	sess, err := s.Session(sessionID)
	if err != nil {
		return nil, err
	}
	next, err := sess.RetryWrong()
	if err != nil {
		return nil, err
	}
	s.register(next)
	s.logger.Info("retry started",
		"session_id", next.ID,
		"retry_of", sessionID,
		"questions", len(next.Questions),
	)
	return next, nil
}

// Passed reports whether percent meets the configured pass score.
func (s *StudyService) Passed(percent int) bool {
	return s.ExamConfig().Passed(percent)
}

// History returns finished sessions, newest first.
func (s *StudyService) History(ctx context.Context, limit int) ([]store.SessionRecord, error) {
	return s.store.ListSessionResults(ctx, limit)
}

func (s *StudyService) sessionOptions() []practicesession.Option {
	opts := []practicesession.Option{practicesession.WithOnFinish(s.onSessionFinished)}
	if s.opts.Clock != nil {
		opts = append(opts, practicesession.WithClock(s.opts.Clock))
	}
	return opts
}

func (s *StudyService) register(sess *practicesession.PracticeSession) {
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	sess.RunCountdown(s.ctx, s.opts.TickInterval)
}

// onSessionFinished runs once per session, possibly on the countdown
// goroutine, so it uses its own context.
func (s *StudyService) onSessionFinished(sess *practicesession.PracticeSession) {
	ctx := context.Background()
	snap := sess.Snapshot()

	res := sess.Summary()
	if snap.Result != nil {
		res = *snap.Result
	}
	wrong := make([]string, len(res.Wrong))
	for i, q := range res.Wrong {
		wrong[i] = q.ID
	}

	rec := store.SessionRecord{
		ID:         snap.ID,
		Mode:       string(snap.Mode),
		RetryOf:    snap.RetryOf,
		Total:      res.Total,
		Correct:    res.Correct,
		Percent:    res.Percent,
		Passed:     snap.Mode == practicesession.ModeMock && s.Passed(res.Percent),
		WrongIDs:   wrong,
		StartedAt:  snap.StartedAt,
		FinishedAt: snap.FinishedAt,
	}

	if snap.Mode == practicesession.ModeMock {
		if err := s.persistBank(ctx); err != nil {
			s.logger.Error("failed to persist bank", "session_id", snap.ID, "error", err)
		}
	}
	if err := s.store.SaveSessionResult(ctx, rec); err != nil {
		s.logger.Error("failed to save session result", "session_id", snap.ID, "error", err)
		return
	}
	s.logger.Info("session finished",
		"session_id", snap.ID,
		"mode", snap.Mode,
		"percent", res.Percent,
		"passed", rec.Passed,
	)
}

// persistBank saves a fresh snapshot. Saves are serialized so an older
// snapshot never overwrites a newer one.
func (s *StudyService) persistBank(ctx context.Context) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if err := s.store.SaveBank(ctx, s.bank.Snapshot()); err != nil {
		return fmt.Errorf("save bank: %w", err)
	}
	return nil
}

func (s *StudyService) now() time.Time {
	if s.opts.Clock != nil {
		return s.opts.Clock()
	}
	return time.Now()
}

// evictFinished drops sessions that finished more than SessionRetention ago.
func (s *StudyService) evictFinished() {
	cutoff := s.now().Add(-s.opts.SessionRetention)

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.State() != practicesession.StateFinished {
			continue
		}
		if finished := sess.FinishedAt(); !finished.IsZero() && finished.Before(cutoff) {
			delete(s.sessions, id)
			s.logger.Debug("session evicted", "session_id", id)
		}
	}
}
