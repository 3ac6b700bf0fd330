package questionbank

import "github.com/quizdrill/backend/internal/domain/subject"

type seedQuestion struct {
	subject     subject.Subject
	topic       string
	prompt      string
	choices     []string
	answer      int
	explanation string
	difficulty  int
}

// Sample items for a first run; they are practice material, not past exam
// questions.
var seedQuestions = []seedQuestion{
	{subject.ComputerGeneral, "Operating systems", "Which system software supports multitasking and is responsible for CPU scheduling and memory management?",
		[]string{"Operating system (OS)", "Compiler", "Printer driver", "Middleware"}, 0, "The operating system manages resources and scheduling.", 2},
	{subject.Spreadsheet, "Cell references", "Which of the following is an absolute reference?",
		[]string{"A1", "$A$1", "A$1", "$A1"}, 1, "A $ before the column and row fixes both.", 1},
	{subject.Database, "Keys", "Which is NOT a property of a primary key in a relational database?",
		[]string{"Uniquely identifies a tuple", "Allows NULL", "Does not allow duplicates", "Is one of the candidate keys"}, 1, "A primary key allows neither duplicates nor NULL.", 2},
	{subject.Spreadsheet, "Functions", "Which basic function computes a total?",
		[]string{"SUM", "COUNT", "AVERAGE", "MAX"}, 0, "=SUM(range)", 1},
	{subject.Database, "Normalization", "Which is furthest from the purpose of normalization?",
		[]string{"Reducing redundancy", "Minimizing anomalies", "Deliberately slowing queries", "Improving consistency"}, 2, "Normalization reduces redundancy and update anomalies.", 3},
	{subject.ComputerGeneral, "Networking", "Which are the representative transport layer protocols?",
		[]string{"TCP/UDP", "IP/ICMP", "HTTP/HTTPS", "ARP"}, 0, "End-to-end reliability and flow control.", 2},
}

// Seed returns freshly built sample questions with new ids.
func Seed() []Question {
	out := make([]Question, 0, len(seedQuestions))
	for _, s := range seedQuestions {
		q, err := New(s.subject, s.topic, s.prompt, s.choices, s.answer, s.explanation)
		if err != nil {
			panic("questionbank: invalid seed question: " + err.Error())
		}
		q.Difficulty = s.difficulty
		out = append(out, q)
	}
	return out
}
