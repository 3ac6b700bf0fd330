package questionbank

import "time"

// Attempt is one scored answer to a question, applied to the bank in batches.
type Attempt struct {
	QuestionID string
	Correct    bool
}

// Accuracy is correct/attempts, or 0 for an unattempted question.
func (q Question) Accuracy() float64 {
	if q.Attempts == 0 {
		return 0
	}
	return float64(q.Correct) / float64(q.Attempts)
}

// Mastery is the accuracy expressed as a 0-100 percentage.
func (q Question) Mastery() int {
	if q.Attempts == 0 {
		return 0
	}
	mastery := int(q.Accuracy()*100 + 0.5)
	if mastery > 100 {
		mastery = 100
	}
	return mastery
}

func (q *Question) record(correct bool, at time.Time) {
	q.Attempts++
	if correct {
		q.Correct++
	}
	// exports carry epoch milliseconds
	ts := at.Truncate(time.Millisecond)
	q.LastSeen = &ts
}

// SubjectStats aggregates the bank per subject.
type SubjectStats struct {
	Questions int
	Attempts  int
	Correct   int
}

// Mastery is the aggregate accuracy across the subject as 0-100.
func (s SubjectStats) Mastery() int {
	if s.Attempts == 0 {
		return 0
	}
	return int(float64(s.Correct)/float64(s.Attempts)*100 + 0.5)
}
