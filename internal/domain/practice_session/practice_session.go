package practicesession

import (
	"errors"
	"sync"
	"time"

	"github.com/quizdrill/backend/internal/domain/questionbank"
	"github.com/quizdrill/backend/internal/domain/scoring"
	"github.com/quizdrill/backend/internal/id"
	"github.com/quizdrill/backend/internal/worker"
)

// MinMockPool is the smallest bank a mock exam can be drawn from.
const MinMockPool = 2

var (
	ErrInsufficientPool = errors.New("not enough questions to start a session")
	ErrNothingToRetry   = errors.New("no wrong answers to retry")
	ErrNotInProgress    = errors.New("session is not in progress")
	ErrNotFinished      = errors.New("session is not finished")
	ErrMockOnly         = errors.New("only available in mock sessions")
	ErrForwardOnly      = errors.New("practice sessions only move forward")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrUnknownQuestion  = errors.New("question is not part of this session")
	ErrUnknownChoice    = errors.New("choice does not belong to the question")
)

// State is the lifecycle position of a session.
type State int

const (
	StateIdle State = iota
	StateInProgress
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateInProgress:
		return "in_progress"
	case StateFinished:
		return "finished"
	default:
		return "idle"
	}
}

// Direction moves the cursor through the queue.
type Direction int

const (
	Backward Direction = -1
	Forward  Direction = 1
)

// Recorder receives per-question statistics. *questionbank.Bank implements it.
type Recorder interface {
	RecordAttempts(at time.Time, attempts ...questionbank.Attempt) int
}

// Reveal is the immediate feedback of a practice answer.
type Reveal struct {
	QuestionID  string
	ChoiceID    string
	Correct     bool
	AnswerID    string
	Explanation string
}

// Option customizes a session.
type Option func(*PracticeSession)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *PracticeSession) { s.now = now }
}

// WithOnFinish registers a callback run once after the session reaches
// Finished, whichever path got it there. It runs without the session lock
// held and may be called from the countdown goroutine.
func WithOnFinish(fn func(*PracticeSession)) Option {
	return func(s *PracticeSession) { s.onFinish = fn }
}

// pacing remembers the first exam of a retry chain so every retry keeps its
// per-question time.
type pacing struct {
	budget    time.Duration
	questions int
}

// PracticeSession is one run over a fixed queue of question snapshots.
// Exported fields are set at start and never change afterwards.
type PracticeSession struct {
	ID          string
	Mode        Mode
	Questions   []questionbank.Question
	MaxDuration *time.Duration
	StartedAt   time.Time
	Deadline    time.Time // zero when untimed
	RetryOf     string    // id of the session whose wrong answers seeded this one

	mu         sync.Mutex
	state      State
	index      int
	answers    map[string]string
	revealed   map[string]Reveal
	result     *scoring.Result
	finishedAt time.Time
	pace       pacing
	timer      *worker.Periodic

	recorder Recorder
	now      func() time.Time
	onFinish func(*PracticeSession)
	opts     []Option
}

// Start samples a queue from pool and begins a session. Mock exams need at
// least MinMockPool questions, and no session may start with an empty queue.
func Start(pool []questionbank.Question, config SessionConfig, recorder Recorder, opts ...Option) (*PracticeSession, error) {
	mode := config.Mode
	if mode == "" {
		mode = ModePractice
	}

	pool = questionbank.FilterBySubject(pool, config.Subjects)
	if mode == ModeMock && len(pool) < MinMockPool {
		return nil, ErrInsufficientPool
	}

	queue := Sample(pool, config.MaxQuestions)
	if len(queue) == 0 {
		return nil, ErrInsufficientPool
	}

	s := newSession(mode, queue, config.MaxDuration, recorder, opts)
	if config.MaxDuration != nil {
		s.pace = pacing{budget: *config.MaxDuration, questions: len(queue)}
	}
	return s, nil
}

func newSession(mode Mode, queue []questionbank.Question, maxDuration *time.Duration, recorder Recorder, opts []Option) *PracticeSession {
	s := &PracticeSession{
		ID:        id.GenerateID(),
		Mode:      mode,
		Questions: queue,
		state:     StateIdle,
		answers:   make(map[string]string),
		revealed:  make(map[string]Reveal),
		recorder:  recorder,
		now:       time.Now,
		opts:      opts,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.StartedAt = s.now()
	if maxDuration != nil {
		d := *maxDuration
		s.MaxDuration = &d
		s.Deadline = s.StartedAt.Add(d)
	}
	s.state = StateInProgress
	return s
}

// SelectAnswer records choiceID for questionID.
//
// Practice sessions lock the first answer per question: it is scored
// immediately, the bank is updated once and the reveal is returned; later
// calls for the same question return the original reveal unchanged.
// Mock sessions just overwrite the answer and return a nil reveal.
func (s *PracticeSession) SelectAnswer(questionID, choiceID string) (*Reveal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateInProgress {
		return nil, ErrNotInProgress
	}
	q, ok := s.question(questionID)
	if !ok {
		return nil, ErrUnknownQuestion
	}
	if !q.HasChoice(choiceID) {
		return nil, ErrUnknownChoice
	}

	if s.Mode == ModeMock {
		s.answers[questionID] = choiceID
		return nil, nil
	}

	if prior, ok := s.revealed[questionID]; ok {
		return &prior, nil
	}

	reveal := Reveal{
		QuestionID:  questionID,
		ChoiceID:    choiceID,
		Correct:     q.IsCorrect(choiceID),
		AnswerID:    q.AnswerID,
		Explanation: q.Explanation,
	}
	s.answers[questionID] = choiceID
	s.revealed[questionID] = reveal

	if s.recorder != nil {
		s.recorder.RecordAttempts(s.now(), questionbank.Attempt{
			QuestionID: questionID,
			Correct:    reveal.Correct,
		})
	}
	return &reveal, nil
}

// Advance moves the cursor. Mock sessions move both ways and clamp at the
// ends. Practice sessions only move forward; stepping past the last
// question finishes the session without a scoring pass.
func (s *PracticeSession) Advance(dir Direction) error {
	if dir != Forward && dir != Backward {
		return ErrInvalidDirection
	}

	s.mu.Lock()
	if s.state != StateInProgress {
		s.mu.Unlock()
		return ErrNotInProgress
	}

	finished := false
	switch s.Mode {
	case ModeMock:
		s.index = clamp(s.index+int(dir), 0, len(s.Questions)-1)
	default:
		if dir != Forward {
			s.mu.Unlock()
			return ErrForwardOnly
		}
		if s.index+1 < len(s.Questions) {
			s.index++
		} else {
			s.finishLocked(nil)
			finished = true
		}
	}
	s.mu.Unlock()

	if finished {
		s.notifyFinish()
	}
	return nil
}

// Finish ends a mock session: the answers are scored once and every queued
// question's statistics are updated once. Calling it again after the
// session finished returns the stored result without touching the bank.
func (s *PracticeSession) Finish() (scoring.Result, error) {
	s.mu.Lock()
	if s.Mode != ModeMock {
		s.mu.Unlock()
		return scoring.Result{}, ErrMockOnly
	}

	switch s.state {
	case StateFinished:
		res := cloneResult(*s.result)
		s.mu.Unlock()
		return res, nil
	case StateInProgress:
	default:
		s.mu.Unlock()
		return scoring.Result{}, ErrNotInProgress
	}

	res := s.scoreLocked()
	s.finishLocked(&res)
	s.mu.Unlock()

	s.notifyFinish()
	return cloneResult(res), nil
}

// RetryWrong starts a new mock session over exactly the questions missed in
// this one, in their original order. The time budget keeps the per-question
// pace of the first exam: ceil(minutes / questions * wrong), at least one
// minute.
func (s *PracticeSession) RetryWrong() (*PracticeSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Mode != ModeMock {
		return nil, ErrMockOnly
	}
	if s.state != StateFinished || s.result == nil {
		return nil, ErrNotFinished
	}
	if len(s.result.Wrong) == 0 {
		return nil, ErrNothingToRetry
	}

	var budget *time.Duration
	if s.pace.questions > 0 {
		d := RetryBudget(s.pace.budget, s.pace.questions, len(s.result.Wrong))
		budget = &d
	}

	next := newSession(ModeMock, questionbank.CloneAll(s.result.Wrong), budget, s.recorder, s.opts)
	next.RetryOf = s.ID
	next.pace = s.pace
	return next, nil
}

// RetryBudget scales an exam budget to the number of questions being
// retried, rounding up to whole minutes with a one minute floor.
func RetryBudget(examBudget time.Duration, examQuestions, wrong int) time.Duration {
	if examQuestions <= 0 {
		return time.Minute
	}
	scaled := (examBudget*time.Duration(wrong) + time.Duration(examQuestions) - 1) / time.Duration(examQuestions)
	minutes := (scaled + time.Minute - 1) / time.Minute
	if minutes < 1 {
		minutes = 1
	}
	return minutes * time.Minute
}

// State returns the current lifecycle state.
func (s *PracticeSession) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Index returns the cursor position.
func (s *PracticeSession) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Current returns the question under the cursor.
func (s *PracticeSession) Current() questionbank.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Questions[s.index].Clone()
}

// Result returns the batch score of a finished mock session.
func (s *PracticeSession) Result() (scoring.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return scoring.Result{}, false
	}
	return cloneResult(*s.result), true
}

// FinishedAt is the moment the session finished, zero while it runs.
func (s *PracticeSession) FinishedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finishedAt
}

// Summary scores the answers given so far without touching the bank. For a
// practice session it is the end-of-run score.
func (s *PracticeSession) Summary() scoring.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return scoring.Score(s.Questions, s.answers)
}

// Snapshot is a consistent copy of a session's mutable state.
type Snapshot struct {
	ID         string
	Mode       Mode
	State      State
	Index      int
	Questions  []questionbank.Question
	Answers    map[string]string
	Revealed   map[string]Reveal
	Result     *scoring.Result
	StartedAt  time.Time
	Deadline   time.Time
	FinishedAt time.Time
	Remaining  time.Duration
	RetryOf    string
}

// Snapshot copies the session state under a single lock.
func (s *PracticeSession) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:         s.ID,
		Mode:       s.Mode,
		State:      s.state,
		Index:      s.index,
		Questions:  questionbank.CloneAll(s.Questions),
		Answers:    make(map[string]string, len(s.answers)),
		Revealed:   make(map[string]Reveal, len(s.revealed)),
		StartedAt:  s.StartedAt,
		Deadline:   s.Deadline,
		FinishedAt: s.finishedAt,
		Remaining:  s.remainingLocked(),
		RetryOf:    s.RetryOf,
	}
	for k, v := range s.answers {
		snap.Answers[k] = v
	}
	for k, v := range s.revealed {
		snap.Revealed[k] = v
	}
	if s.result != nil {
		res := cloneResult(*s.result)
		snap.Result = &res
	}
	return snap
}

func (s *PracticeSession) question(questionID string) (questionbank.Question, bool) {
	for _, q := range s.Questions {
		if q.ID == questionID {
			return q, true
		}
	}
	return questionbank.Question{}, false
}

// scoreLocked grades the answer map and pushes one attempt per queued
// question to the recorder.
func (s *PracticeSession) scoreLocked() scoring.Result {
	res := scoring.Score(s.Questions, s.answers)
	if s.recorder != nil {
		s.recorder.RecordAttempts(s.now(), scoring.Attempts(s.Questions, s.answers)...)
	}
	return res
}

func (s *PracticeSession) finishLocked(res *scoring.Result) {
	s.state = StateFinished
	s.finishedAt = s.now()
	s.result = res
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *PracticeSession) notifyFinish() {
	if s.onFinish != nil {
		s.onFinish(s)
	}
}

func cloneResult(r scoring.Result) scoring.Result {
	r.Wrong = questionbank.CloneAll(r.Wrong)
	return r
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
