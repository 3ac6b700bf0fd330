// Package scoring turns a finished queue and its answer map into a
// percentage and the subset of questions that were missed.
package scoring

import (
	"math"

	"github.com/quizdrill/backend/internal/domain/questionbank"
)

// Result is the outcome of scoring one queue.
type Result struct {
	Percent int
	Correct int
	Total   int
	// Wrong holds every queue entry answered incorrectly or left
	// unanswered, in queue order.
	Wrong []questionbank.Question
}

// Score grades answers (question id -> choice id) against queue. Neither
// argument is modified. An empty queue scores 0.
func Score(queue []questionbank.Question, answers map[string]string) Result {
	res := Result{
		Total: len(queue),
		Wrong: []questionbank.Question{},
	}

	for _, q := range queue {
		if chosen, ok := answers[q.ID]; ok && q.IsCorrect(chosen) {
			res.Correct++
			continue
		}
		res.Wrong = append(res.Wrong, q.Clone())
	}

	res.Percent = Percent(res.Correct, res.Total)
	return res
}

// Percent is round(correct/total*100), 0 for an empty total.
func Percent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// Attempts converts a scored queue into bank stat updates, one per question.
func Attempts(queue []questionbank.Question, answers map[string]string) []questionbank.Attempt {
	out := make([]questionbank.Attempt, 0, len(queue))
	for _, q := range queue {
		out = append(out, questionbank.Attempt{
			QuestionID: q.ID,
			Correct:    q.IsCorrect(answers[q.ID]),
		})
	}
	return out
}
