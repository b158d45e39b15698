package grading

import (
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/examhub/examhub-backend/internal/model"
)

func makeQuestion(correctOption string) model.ExamQuestion {
	q := model.Question{
		ID:       uuid.New(),
		Text:     "placeholder",
		Category: "general",
		Options: []model.Option{
			{ID: "a", Text: "first"},
			{ID: "b", Text: "second"},
			{ID: "c", Text: "third"},
		},
		Difficulty: model.DifficultyEasy,
	}
	for i := range q.Options {
		q.Options[i].IsCorrect = q.Options[i].ID == correctOption
	}
	return model.ExamQuestion{Question: q}
}

func TestGradeOf(t *testing.T) {
	tests := []struct {
		percentage int
		want       string
	}{
		{100, "A"},
		{90, "A"},
		{89, "B"},
		{80, "B"},
		{79, "C"},
		{70, "C"},
		{69, "D"},
		{60, "D"},
		{59, "F"},
		{0, "F"},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("pct_%d", tc.percentage), func(t *testing.T) {
			if got := GradeOf(tc.percentage); got != tc.want {
				t.Fatalf("GradeOf(%d) = %s, want %s", tc.percentage, got, tc.want)
			}
		})
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		name    string
		correct int
		total   int
		want    int
	}{
		{"all correct", 5, 5, 100},
		{"none correct", 0, 5, 0},
		{"three of five", 3, 5, 60},
		{"rounds half up", 1, 8, 13},   // 12.5 → 13
		{"two thirds", 2, 3, 67},       // 66.67 → 67
		{"one third", 1, 3, 33},        // 33.33 → 33
		{"one of seven", 1, 7, 14},     // 14.29 → 14
		{"zero total guarded", 3, 0, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Percentage(tc.correct, tc.total); got != tc.want {
				t.Fatalf("Percentage(%d, %d) = %d, want %d", tc.correct, tc.total, got, tc.want)
			}
		})
	}
}

func TestPercentageBounds(t *testing.T) {
	for correct := 0; correct <= 10; correct++ {
		for total := 1; total <= 10; total++ {
			if correct > total {
				continue
			}
			got := Percentage(correct, total)
			if got < 0 || got > 100 {
				t.Fatalf("Percentage(%d, %d) = %d, out of [0,100]", correct, total, got)
			}
		}
	}
}

func TestPassedBoundary(t *testing.T) {
	if !Passed(60, 60) {
		t.Fatal("percentage equal to passing score must pass")
	}
	if Passed(59, 60) {
		t.Fatal("percentage below passing score must not pass")
	}
	if !Passed(100, 0) {
		t.Fatal("zero passing score must always pass")
	}
}

func TestEvaluateThreeOfFive(t *testing.T) {
	questions := []model.ExamQuestion{
		makeQuestion("a"),
		makeQuestion("b"),
		makeQuestion("c"),
		makeQuestion("a"),
		makeQuestion("b"),
	}

	answers := map[string]string{
		questions[0].ID.String(): "a", // correct
		questions[1].ID.String(): "b", // correct
		questions[2].ID.String(): "c", // correct
		questions[3].ID.String(): "b", // wrong
		questions[4].ID.String(): "c", // wrong
	}

	ev := Evaluate(questions, answers)
	if ev.CorrectCount != 3 {
		t.Fatalf("correct count = %d, want 3", ev.CorrectCount)
	}
	if ev.Percentage != 60 {
		t.Fatalf("percentage = %d, want 60", ev.Percentage)
	}
	if GradeOf(ev.Percentage) != "D" {
		t.Fatalf("grade = %s, want D", GradeOf(ev.Percentage))
	}
	if !Passed(ev.Percentage, 60) {
		t.Fatal("60 with passing score 60 must pass")
	}
}

func TestEvaluateEmptyAnswers(t *testing.T) {
	questions := []model.ExamQuestion{
		makeQuestion("a"),
		makeQuestion("b"),
	}

	ev := Evaluate(questions, map[string]string{})
	if ev.CorrectCount != 0 {
		t.Fatalf("correct count = %d, want 0", ev.CorrectCount)
	}
	if ev.Percentage != 0 {
		t.Fatalf("percentage = %d, want 0", ev.Percentage)
	}
	if GradeOf(ev.Percentage) != "F" {
		t.Fatalf("grade = %s, want F", GradeOf(ev.Percentage))
	}
	if Passed(ev.Percentage, 60) {
		t.Fatal("0 must not pass a 60 threshold")
	}

	// Missing answers are graded incorrect, never skipped.
	if len(ev.Results) != 2 {
		t.Fatalf("results len = %d, want 2", len(ev.Results))
	}
	for _, r := range ev.Results {
		if r.IsCorrect {
			t.Fatal("unanswered question marked correct")
		}
		if r.Selected != "" {
			t.Fatalf("unanswered question has selection %q", r.Selected)
		}
	}
}

func TestEvaluateIgnoresStrayAnswers(t *testing.T) {
	questions := []model.ExamQuestion{
		makeQuestion("a"),
		makeQuestion("b"),
	}

	answers := map[string]string{
		questions[0].ID.String(): "a",
		questions[1].ID.String(): "b",
		uuid.NewString():         "c", // not part of the exam
	}

	ev := Evaluate(questions, answers)
	if ev.TotalQuestions != 2 {
		t.Fatalf("total questions = %d, want 2", ev.TotalQuestions)
	}
	if ev.CorrectCount != 2 {
		t.Fatalf("correct count = %d, want 2", ev.CorrectCount)
	}
	if ev.Percentage != 100 {
		t.Fatalf("percentage = %d, want 100", ev.Percentage)
	}
}

func TestFeedbackTemplates(t *testing.T) {
	got := Feedback(true, 85)
	if got != "Congratulations! You passed with 85%." {
		t.Fatalf("unexpected pass feedback: %q", got)
	}
	got = Feedback(false, 40)
	if got != "You scored 40%. Keep studying and try again!" {
		t.Fatalf("unexpected fail feedback: %q", got)
	}
}
