// Package grading implements the pure scoring rules for exam submissions:
// per-question correctness, percentage, pass/fail, and letter grade. It has
// no persistence or transport dependencies so every rule is directly
// testable.
package grading

import (
	"fmt"
	"math"

	"github.com/examhub/examhub-backend/internal/model"
)

// QuestionResult is the graded outcome of one exam question.
type QuestionResult struct {
	QuestionID string `json:"question_id"`
	Selected   string `json:"selected,omitempty"` // "" when unanswered
	Correct    string `json:"correct"`
	IsCorrect  bool   `json:"is_correct"`
}

// Evaluation is the graded outcome of one full submission.
type Evaluation struct {
	Results        []QuestionResult `json:"results"`
	CorrectCount   int              `json:"correct_count"`
	TotalQuestions int              `json:"total_questions"`
	Percentage     int              `json:"percentage"`
}

// Evaluate grades a submitted answer set against the exam's question list.
//
// Grading iterates the exam's questions, not the submitted answers: a
// missing answer counts as incorrect, and answers for question ids that are
// not part of the exam are ignored. The answers map is questionID →
// selected option ID.
func Evaluate(questions []model.ExamQuestion, answers map[string]string) Evaluation {
	results := make([]QuestionResult, 0, len(questions))
	correct := 0

	for _, q := range questions {
		correctOption := q.CorrectOptionID()
		selected := answers[q.ID.String()]
		isCorrect := selected != "" && selected == correctOption
		if isCorrect {
			correct++
		}
		results = append(results, QuestionResult{
			QuestionID: q.ID.String(),
			Selected:   selected,
			Correct:    correctOption,
			IsCorrect:  isCorrect,
		})
	}

	return Evaluation{
		Results:        results,
		CorrectCount:   correct,
		TotalQuestions: len(questions),
		Percentage:     Percentage(correct, len(questions)),
	}
}

// Percentage converts a raw correct count into an integer percentage,
// rounding half away from zero (so 2/3 → 67). A zero total yields 0 rather
// than dividing by zero; exams are validated non-empty at creation, so that
// case only guards corrupted data.
func Percentage(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// GradeOf maps a percentage to a letter grade. Thresholds are inclusive at
// the lower bound of each band: >=90 A, >=80 B, >=70 C, >=60 D, else F.
func GradeOf(percentage int) string {
	switch {
	case percentage >= 90:
		return "A"
	case percentage >= 80:
		return "B"
	case percentage >= 70:
		return "C"
	case percentage >= 60:
		return "D"
	default:
		return "F"
	}
}

// Passed reports whether a percentage meets the exam's passing score.
// Equality passes.
func Passed(percentage, passingScore int) bool {
	return percentage >= passingScore
}

// Feedback renders the fixed feedback template for a result.
func Feedback(passed bool, percentage int) string {
	if passed {
		return fmt.Sprintf("Congratulations! You passed with %d%%.", percentage)
	}
	return fmt.Sprintf("You scored %d%%. Keep studying and try again!", percentage)
}
