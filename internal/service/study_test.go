package service_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/quizdrill/backend/internal/domain/examconfig"
	practicesession "github.com/quizdrill/backend/internal/domain/practice_session"
	"github.com/quizdrill/backend/internal/domain/questionbank"
	"github.com/quizdrill/backend/internal/domain/subject"
	"github.com/quizdrill/backend/internal/importer"
	"github.com/quizdrill/backend/internal/service"
	"github.com/quizdrill/backend/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(t *testing.T, st store.Store, opts service.Options) *service.StudyService {
	t.Helper()
	svc, err := service.NewStudyService(context.Background(), st, discardLogger(), opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(svc.Close)
	return svc
}

func seededService(t *testing.T) (*service.StudyService, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemory()
	return newService(t, st, service.Options{SeedBank: true}), st
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestNewStudyService_SeedsEmptyStore(t *testing.T) {
	svc, st := seededService(t)

	if got := len(svc.Questions("", nil)); got != len(questionbank.Seed()) {
		t.Fatalf("expected seeded bank, got %d questions", got)
	}
	stored, err := st.LoadBank(context.Background())
	if err != nil || len(stored) != len(questionbank.Seed()) {
		t.Errorf("expected seed to be persisted, got %d (%v)", len(stored), err)
	}
	if svc.ExamConfig() != examconfig.Default() {
		t.Errorf("expected default exam config, got %+v", svc.ExamConfig())
	}
}

func TestNewStudyService_NoSeed(t *testing.T) {
	svc := newService(t, store.NewMemory(), service.Options{})

	if got := len(svc.Questions("", nil)); got != 0 {
		t.Errorf("expected empty bank, got %d", got)
	}
	if _, err := svc.StartSession(service.StartRequest{}); !errors.Is(err, practicesession.ErrInsufficientPool) {
		t.Errorf("expected ErrInsufficientPool, got %v", err)
	}
}

func TestNewStudyService_LoadsExisting(t *testing.T) {
	st := store.NewMemory()
	ctx := context.Background()
	seed := questionbank.Seed()[:2]
	st.SaveBank(ctx, seed)
	st.SaveExamConfig(ctx, examconfig.Config{MockQuestionCount: 20, MockDurationMinutes: 30, PassScorePercent: 80})

	svc := newService(t, st, service.Options{SeedBank: true})

	if got := svc.Questions("", nil); len(got) != 2 || got[0].ID != seed[0].ID {
		t.Errorf("expected stored bank to win over the seed, got %d questions", len(got))
	}
	if svc.ExamConfig().PassScorePercent != 80 {
		t.Errorf("expected stored exam config, got %+v", svc.ExamConfig())
	}
}

func TestQuestionCRUD(t *testing.T) {
	svc, st := seededService(t)
	ctx := context.Background()

	q, err := questionbank.New(subject.Spreadsheet, "Functions", "What does VLOOKUP return?",
		[]string{"A value", "A row number"}, 0, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q.Attempts, q.Correct = 9, 9

	created, err := svc.CreateQuestion(ctx, q)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Attempts != 0 || created.Correct != 0 {
		t.Error("expected statistics to be ignored on create")
	}
	if first := svc.Questions("", nil)[0]; first.ID != q.ID {
		t.Error("expected new question first")
	}

	created.Prompt = "What does VLOOKUP return exactly?"
	if _, err := svc.UpdateQuestion(ctx, created); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := svc.Question(q.ID)
	if got.Prompt != created.Prompt {
		t.Errorf("expected updated prompt, got %q", got.Prompt)
	}

	marked, err := svc.ToggleBookmark(ctx, q.ID)
	if err != nil || !marked {
		t.Errorf("expected bookmark on, got %v (%v)", marked, err)
	}
	if len(svc.Review()) != 1 {
		t.Errorf("expected bookmarked question in review, got %d", len(svc.Review()))
	}

	if err := svc.DeleteQuestion(ctx, q.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Question(q.ID); !errors.Is(err, questionbank.ErrQuestionNotFound) {
		t.Errorf("expected ErrQuestionNotFound, got %v", err)
	}
	if err := svc.DeleteQuestion(ctx, q.ID); !errors.Is(err, questionbank.ErrQuestionNotFound) {
		t.Errorf("expected ErrQuestionNotFound on second delete, got %v", err)
	}

	stored, _ := st.LoadBank(ctx)
	if len(stored) != len(questionbank.Seed()) {
		t.Errorf("expected store to follow the bank, got %d", len(stored))
	}
}

func TestCreateQuestion_RejectsMalformed(t *testing.T) {
	svc, _ := seededService(t)
	q, _ := questionbank.New(subject.Database, "", "P", []string{"a", "b"}, 0, "")
	q.AnswerID = "missing"

	if _, err := svc.CreateQuestion(context.Background(), q); !errors.Is(err, questionbank.ErrMalformedQuestion) {
		t.Errorf("expected ErrMalformedQuestion, got %v", err)
	}
}

func TestSubjectStats_ListsEverySubject(t *testing.T) {
	svc := newService(t, store.NewMemory(), service.Options{})
	stats := svc.SubjectStats()
	for _, sub := range subject.All() {
		if _, ok := stats[sub]; !ok {
			t.Errorf("expected entry for %s", sub)
		}
	}
}

func TestImport_ReplacesBankAndPersists(t *testing.T) {
	svc, st := seededService(t)
	ctx := context.Background()

	csv := "subject,topic,prompt,choice1,choice2,choice3,choice4,answerIndex,explanation\n" +
		"Database,,Only row,A,B,,,1,\n"
	n, err := svc.ImportCSV(ctx, strings.NewReader(csv))
	if err != nil || n != 1 {
		t.Fatalf("expected 1 imported question, got %d (%v)", n, err)
	}
	stored, _ := st.LoadBank(ctx)
	if len(stored) != 1 {
		t.Errorf("expected persisted import, got %d", len(stored))
	}

	var buf bytes.Buffer
	if err := svc.Export(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, err = svc.ImportJSON(ctx, &buf)
	if err != nil || n != 1 {
		t.Fatalf("expected export to re-import, got %d (%v)", n, err)
	}
}

func TestImportJSON_FailureLeavesBank(t *testing.T) {
	svc, _ := seededService(t)
	before := len(svc.Questions("", nil))

	_, err := svc.ImportJSON(context.Background(), strings.NewReader(`{"not": "an array"}`))
	if !errors.Is(err, importer.ErrImport) {
		t.Fatalf("expected ErrImport, got %v", err)
	}
	if after := len(svc.Questions("", nil)); after != before {
		t.Errorf("expected bank untouched, got %d questions (was %d)", after, before)
	}
}

func TestImportJSON_RequirePolicy(t *testing.T) {
	svc := newService(t, store.NewMemory(), service.Options{AnswerPolicy: importer.AnswerPolicyRequire})
	payload := `[{"prompt": "P", "choices": [{"text": "a"}, {"text": "b"}]}]`

	if _, err := svc.ImportJSON(context.Background(), strings.NewReader(payload)); !errors.Is(err, questionbank.ErrMalformedQuestion) {
		t.Errorf("expected ErrMalformedQuestion, got %v", err)
	}
}

func TestUpdateExamConfig_Normalizes(t *testing.T) {
	svc, st := seededService(t)
	got, err := svc.UpdateExamConfig(context.Background(), examconfig.Config{MockQuestionCount: 500, MockDurationMinutes: 1, PassScorePercent: 70})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.MockQuestionCount != examconfig.MaxQuestionCount || got.MockDurationMinutes != examconfig.MinMinutes {
		t.Errorf("expected clamped config, got %+v", got)
	}
	stored, _ := st.LoadExamConfig(context.Background())
	if stored != got {
		t.Errorf("expected stored %+v, got %+v", got, stored)
	}
}

func TestMockSession_FinishPersistsOnce(t *testing.T) {
	svc, st := seededService(t)
	ctx := context.Background()

	sess, err := svc.StartSession(service.StartRequest{Mode: practicesession.ModeMock})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sess.Questions) != len(questionbank.Seed()) {
		t.Errorf("expected the whole seed bank, got %d", len(sess.Questions))
	}

	for _, q := range sess.Questions {
		if _, err := svc.SelectAnswer(sess.ID, q.ID, q.AnswerID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	snap, err := svc.Finish(sess.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Result == nil || snap.Result.Percent != 100 {
		t.Fatalf("expected 100%% result, got %+v", snap.Result)
	}
	svc.Finish(sess.ID)

	history, _ := svc.History(ctx, 0)
	if len(history) != 1 || !history[0].Passed || history[0].Mode != "mock" {
		t.Fatalf("expected one passed mock record, got %+v", history)
	}

	stored, _ := st.LoadBank(ctx)
	for _, q := range stored {
		if q.Attempts != 1 || q.Correct != 1 {
			t.Errorf("expected stats 1/1 persisted, got %d/%d", q.Correct, q.Attempts)
		}
	}

	if _, err := svc.Retry(sess.ID); !errors.Is(err, practicesession.ErrNothingToRetry) {
		t.Errorf("expected ErrNothingToRetry, got %v", err)
	}
}

func TestMockSession_RetryRegistersNewSession(t *testing.T) {
	svc, _ := seededService(t)

	sess, _ := svc.StartSession(service.StartRequest{Mode: practicesession.ModeMock})
	svc.Finish(sess.ID)

	retry, err := svc.Retry(sess.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if retry.RetryOf != sess.ID || len(retry.Questions) != len(sess.Questions) {
		t.Errorf("unexpected retry %+v", retry.Snapshot())
	}
	if _, err := svc.Session(retry.ID); err != nil {
		t.Errorf("expected retry to be registered, got %v", err)
	}
}

func TestPracticeSession_PersistsEachAnswer(t *testing.T) {
	svc, st := seededService(t)
	ctx := context.Background()

	sess, err := svc.StartSession(service.StartRequest{Mode: practicesession.ModePractice, MaxQuestions: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sess.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(sess.Questions))
	}

	q := sess.Questions[0]
	reveal, err := svc.SelectAnswer(sess.ID, q.ID, q.AnswerID)
	if err != nil || reveal == nil || !reveal.Correct {
		t.Fatalf("expected correct reveal, got %+v (%v)", reveal, err)
	}

	stored, _ := st.LoadBank(ctx)
	for _, s := range stored {
		if s.ID == q.ID && s.Attempts != 1 {
			t.Errorf("expected persisted attempt, got %d", s.Attempts)
		}
	}

	svc.Advance(sess.ID, practicesession.Forward)
	svc.Advance(sess.ID, practicesession.Forward)

	history, _ := svc.History(ctx, 0)
	if len(history) != 1 || history[0].Mode != "practice" || history[0].Correct != 1 || history[0].Passed {
		t.Errorf("unexpected practice history %+v", history)
	}
}

func TestStartSession_SubjectFilterAndUnknownMode(t *testing.T) {
	svc, _ := seededService(t)

	sess, err := svc.StartSession(service.StartRequest{Subjects: []subject.Subject{subject.Database}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, q := range sess.Questions {
		if q.Subject != subject.Database {
			t.Errorf("unexpected subject %s", q.Subject)
		}
	}

	if _, err := svc.StartSession(service.StartRequest{Mode: "exam"}); !errors.Is(err, service.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestSessionNotFound(t *testing.T) {
	svc, _ := seededService(t)

	if _, err := svc.Session("nope"); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := svc.Finish("nope"); !errors.Is(err, service.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestMockSession_ExpiresAndIsStored(t *testing.T) {
	c := &clock{now: time.UnixMilli(1_700_000_000_000)}
	svc := newService(t, store.NewMemory(), service.Options{
		SeedBank:     true,
		TickInterval: time.Millisecond,
		Clock:        c.Now,
	})

	sess, err := svc.StartSession(service.StartRequest{Mode: practicesession.ModeMock})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Advance(61 * time.Minute)

	waitFor(t, func() bool { return sess.State() == practicesession.StateFinished })
	waitFor(t, func() bool {
		history, _ := svc.History(context.Background(), 0)
		return len(history) == 1
	})

	if _, err := svc.SelectAnswer(sess.ID, sess.Questions[0].ID, sess.Questions[0].AnswerID); !errors.Is(err, practicesession.ErrNotInProgress) {
		t.Errorf("expected ErrNotInProgress after expiry, got %v", err)
	}
}

func TestPracticeAnswer_SurvivesExportImport(t *testing.T) {
	svc, _ := seededService(t)
	ctx := context.Background()

	sess, err := svc.StartSession(service.StartRequest{Mode: practicesession.ModePractice, MaxQuestions: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	q := sess.Questions[0]
	if _, err := svc.SelectAnswer(sess.ID, q.ID, q.AnswerID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	answered, err := svc.Question(q.ID)
	if err != nil || answered.LastSeen == nil {
		t.Fatalf("expected last seen to be recorded, got %+v (%v)", answered.LastSeen, err)
	}

	var buf bytes.Buffer
	if err := svc.Export(&buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.ImportJSON(ctx, &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	imported, err := svc.Question(q.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if imported.LastSeen == nil || !imported.LastSeen.Equal(*answered.LastSeen) {
		t.Errorf("expected last seen %v after import, got %v", answered.LastSeen, imported.LastSeen)
	}
	if imported.Attempts != 1 || imported.Correct != 1 {
		t.Errorf("expected stats 1/1 after import, got %d/%d", imported.Correct, imported.Attempts)
	}
}

func TestFinishedSessions_AreEvictedAfterRetention(t *testing.T) {
	c := &clock{now: time.UnixMilli(1_700_000_000_000)}
	svc := newService(t, store.NewMemory(), service.Options{
		SeedBank:         true,
		Clock:            c.Now,
		SessionRetention: 10 * time.Minute,
		SweepInterval:    time.Millisecond,
	})

	finished, _ := svc.StartSession(service.StartRequest{Mode: practicesession.ModeMock})
	if _, err := svc.Finish(finished.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	running, _ := svc.StartSession(service.StartRequest{Mode: practicesession.ModePractice})

	time.Sleep(20 * time.Millisecond)
	if _, err := svc.Session(finished.ID); err != nil {
		t.Fatalf("expected session kept during retention, got %v", err)
	}

	c.Advance(11 * time.Minute)
	waitFor(t, func() bool {
		_, err := svc.Session(finished.ID)
		return errors.Is(err, service.ErrSessionNotFound)
	})

	if _, err := svc.Session(running.ID); err != nil {
		t.Errorf("expected running session to stay, got %v", err)
	}
	history, _ := svc.History(context.Background(), 0)
	if len(history) != 1 || history[0].ID != finished.ID {
		t.Errorf("expected history to outlive the session, got %+v", history)
	}
}
