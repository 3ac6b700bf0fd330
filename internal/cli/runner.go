// Package cli runs practice and mock sessions in a terminal.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	practicesession "github.com/quizdrill/backend/internal/domain/practice_session"
	"github.com/quizdrill/backend/internal/domain/questionbank"
	"github.com/quizdrill/backend/internal/domain/scoring"
	"github.com/quizdrill/backend/internal/service"
)

type styles struct {
	header    lipgloss.Style
	correct   lipgloss.Style
	incorrect lipgloss.Style
	subtle    lipgloss.Style
	cursor    lipgloss.Style
	errorText lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		header:    r.NewStyle().Bold(true),
		correct:   r.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		incorrect: r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		subtle:    r.NewStyle().Foreground(lipgloss.Color("8")),
		cursor:    r.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		errorText: r.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

// Runner drives one session at a time over a line-oriented terminal.
type Runner struct {
	svc   *service.StudyService
	in    *bufio.Scanner
	out   io.Writer
	style styles
}

func NewRunner(svc *service.StudyService, in io.Reader, out io.Writer) *Runner {
	return &Runner{
		svc:   svc,
		in:    bufio.NewScanner(in),
		out:   out,
		style: newStyles(lipgloss.NewRenderer(out)),
	}
}

// Run starts a session and plays it until it finishes, the input ends or
// the user quits. Mock sessions offer a retry of the missed questions.
func (r *Runner) Run(ctx context.Context, req service.StartRequest) error {
	sess, err := r.svc.StartSession(req)
	if err != nil {
		return err
	}
	if sess.Mode == practicesession.ModeMock {
		return r.runMock(ctx, sess)
	}
	return r.runPractice(ctx, sess)
}

func (r *Runner) runPractice(ctx context.Context, sess *practicesession.PracticeSession) error {
	r.printf("%s\n", r.style.subtle.Render("Answer with the choice number. q quits."))

	for ctx.Err() == nil && sess.State() == practicesession.StateInProgress {
		q := sess.Current()
		r.renderQuestion(sess, q, "")

		line, ok := r.readLine()
		if !ok || line == "q" {
			break
		}
		choiceID, err := pickChoice(q, line)
		if err != nil {
			r.printf("%s\n", r.style.errorText.Render(err.Error()))
			continue
		}

		reveal, err := r.svc.SelectAnswer(sess.ID, q.ID, choiceID)
		if errors.Is(err, practicesession.ErrNotInProgress) {
			r.printf("%s\n", r.style.incorrect.Render("Time is up."))
			break
		}
		if err != nil {
			return err
		}
		r.renderReveal(q, reveal)

		err = r.svc.Advance(sess.ID, practicesession.Forward)
		if err != nil && !errors.Is(err, practicesession.ErrNotInProgress) {
			return err
		}
	}

	r.renderResult(practicesession.ModePractice, sess.Summary())
	return nil
}

func (r *Runner) runMock(ctx context.Context, sess *practicesession.PracticeSession) error {
	r.printf("%s\n", r.style.subtle.Render("Answer with the choice number. n next, p previous, f finish."))

loop:
	for ctx.Err() == nil && sess.State() == practicesession.StateInProgress {
		snap := sess.Snapshot()
		q := snap.Questions[snap.Index]
		r.renderQuestion(sess, q, snap.Answers[q.ID])

		line, ok := r.readLine()
		if !ok {
			break
		}

		var err error
		switch strings.ToLower(line) {
		case "f":
			break loop
		case "n", "":
			err = r.svc.Advance(sess.ID, practicesession.Forward)
		case "p":
			err = r.svc.Advance(sess.ID, practicesession.Backward)
		default:
			choiceID, perr := pickChoice(q, line)
			if perr != nil {
				r.printf("%s\n", r.style.errorText.Render(perr.Error()))
				continue
			}
			if _, err = r.svc.SelectAnswer(sess.ID, q.ID, choiceID); err == nil {
				err = r.svc.Advance(sess.ID, practicesession.Forward)
			}
		}
		if errors.Is(err, practicesession.ErrNotInProgress) {
			r.printf("%s\n", r.style.incorrect.Render("Time is up."))
			break
		}
		if err != nil {
			return err
		}
	}

	snap, err := r.svc.Finish(sess.ID)
	if err != nil {
		return err
	}
	res := sess.Summary()
	if snap.Result != nil {
		res = *snap.Result
	}
	r.renderResult(practicesession.ModeMock, res)

	if len(res.Wrong) == 0 || ctx.Err() != nil {
		return nil
	}
	r.printf("Retry the %d missed questions? [y/N] ", len(res.Wrong))
	if line, ok := r.readLine(); !ok || strings.ToLower(line) != "y" {
		return nil
	}
	next, err := r.svc.Retry(sess.ID)
	if err != nil {
		return err
	}
	return r.runMock(ctx, next)
}

func (r *Runner) renderQuestion(sess *practicesession.PracticeSession, q questionbank.Question, selected string) {
	header := fmt.Sprintf("[%d/%d] %s", sess.Index()+1, len(sess.Questions), q.Subject)
	if q.Topic != "" {
		header += " · " + q.Topic
	}
	r.printf("\n%s", r.style.header.Render(header))
	if remaining, timed := sess.Remaining(); timed {
		m, s := practicesession.Countdown(remaining)
		r.printf("  %s", r.style.subtle.Render(fmt.Sprintf("%02d:%02d left", m, s)))
	}
	r.printf("\n%s\n", q.Prompt)

	for i, c := range q.Choices {
		marker := " "
		if c.ID == selected {
			marker = r.style.cursor.Render(">")
		}
		r.printf("%s %d) %s\n", marker, i+1, c.Text)
	}
	r.printf("> ")
}

func (r *Runner) renderReveal(q questionbank.Question, reveal *practicesession.Reveal) {
	if reveal == nil {
		return
	}
	if reveal.Correct {
		r.printf("%s\n", r.style.correct.Render("Correct"))
	} else {
		answer := q.AnswerIndex() + 1
		r.printf("%s\n", r.style.incorrect.Render(fmt.Sprintf("Wrong, the answer is %d", answer)))
	}
	if reveal.Explanation != "" {
		r.printf("%s\n", r.style.subtle.Render(reveal.Explanation))
	}
}

func (r *Runner) renderResult(mode practicesession.Mode, res scoring.Result) {
	line := fmt.Sprintf("Score %d%% (%d/%d)", res.Percent, res.Correct, res.Total)
	r.printf("\n%s", r.style.header.Render(line))
	if mode == practicesession.ModeMock {
		if r.svc.Passed(res.Percent) {
			r.printf("  %s", r.style.correct.Render("PASS"))
		} else {
			r.printf("  %s", r.style.incorrect.Render("FAIL"))
		}
	}
	r.printf("\n")
}

func (r *Runner) readLine() (string, bool) {
	if !r.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(r.in.Text()), true
}

func (r *Runner) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

// pickChoice maps a 1-based choice number to its id.
func pickChoice(q questionbank.Question, line string) (string, error) {
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(q.Choices) {
		return "", fmt.Errorf("enter a number from 1 to %d", len(q.Choices))
	}
	return q.Choices[n-1].ID, nil
}
