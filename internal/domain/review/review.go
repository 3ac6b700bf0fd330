package review

import (
	"sort"

	"github.com/quizdrill/backend/internal/domain/questionbank"
)

// WeakThreshold is the accuracy below which an attempted question needs review.
const WeakThreshold = 0.7

// NeedsReview reports whether a question is bookmarked or has demonstrated
// weakness. Unattempted questions are neither mastered nor weak.
func NeedsReview(q questionbank.Question) bool {
	if q.Bookmarked {
		return true
	}
	return q.Attempts > 0 && q.Accuracy() < WeakThreshold
}

// Select returns the review set, most recently seen first. Questions never
// seen sort last. The input is not modified.
func Select(bank []questionbank.Question) []questionbank.Question {
	out := make([]questionbank.Question, 0)
	for _, q := range bank {
		if NeedsReview(q) {
			out = append(out, q.Clone())
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].LastSeen, out[j].LastSeen
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	return out
}
