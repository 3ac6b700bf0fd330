package practicesession

import (
	"math/rand"

	"github.com/quizdrill/backend/internal/domain/questionbank"
)

// Sample returns min(n, len(pool)) distinct questions in uniformly random
// order. The pool is not modified; n <= 0 yields an empty slice.
func Sample(pool []questionbank.Question, n int) []questionbank.Question {
	if n <= 0 || len(pool) == 0 {
		return []questionbank.Question{}
	}

	questions := shuffleQuestions(pool)
	if n < len(questions) {
		questions = questions[:n]
	}
	return questions
}

// shuffleQuestions returns a new slice with questions in random order.
func shuffleQuestions(questions []questionbank.Question) []questionbank.Question {
	shuffled := questionbank.CloneAll(questions)

	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	return shuffled
}
