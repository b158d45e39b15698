package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func sampleExamQuestions() (*Exam, []ExamQuestion) {
	exam := &Exam{
		ID:               uuid.New(),
		Title:            "Networking Basics",
		TimeLimitMinutes: 30,
		PassingScore:     60,
		IsActive:         true,
	}

	questions := []ExamQuestion{
		{
			Question: Question{
				ID:   uuid.New(),
				Text: "Which layer does TCP operate at?",
				Options: []Option{
					{ID: "a", Text: "Transport", IsCorrect: true},
					{ID: "b", Text: "Network"},
					{ID: "c", Text: "Physical"},
				},
				Explanation: "TCP is a transport layer protocol.",
				Category:    "networking",
				Difficulty:  DifficultyEasy,
			},
			OrderNum: 2,
		},
		{
			Question: Question{
				ID:   uuid.New(),
				Text: "What does DNS resolve?",
				Options: []Option{
					{ID: "a", Text: "MAC addresses"},
					{ID: "b", Text: "Hostnames", IsCorrect: true},
				},
				Explanation: "DNS maps hostnames to IP addresses.",
				Category:    "networking",
				Difficulty:  DifficultyMedium,
			},
			OrderNum: 1,
		},
	}

	return exam, questions
}

func TestBuildExamViewRedaction(t *testing.T) {
	exam, questions := sampleExamQuestions()

	view := BuildExamView(exam, questions, false)

	// The serialized redacted view must contain no correctness flags and no
	// explanations at all.
	raw, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("marshal view: %v", err)
	}
	if strings.Contains(string(raw), "is_correct") {
		t.Fatal("redacted view leaked is_correct")
	}
	if strings.Contains(string(raw), "explanation") {
		t.Fatal("redacted view leaked explanation")
	}

	for _, q := range view.Questions {
		if q.Explanation != "" {
			t.Fatal("redacted question carries explanation")
		}
		for _, opt := range q.Options {
			if opt.IsCorrect != nil {
				t.Fatal("redacted option carries correctness flag")
			}
		}
	}
}

func TestBuildExamViewReveal(t *testing.T) {
	exam, questions := sampleExamQuestions()

	view := BuildExamView(exam, questions, true)

	if view.TotalQuestions != 2 {
		t.Fatalf("total questions = %d, want 2", view.TotalQuestions)
	}

	for _, q := range view.Questions {
		if q.Explanation == "" {
			t.Fatal("revealed question missing explanation")
		}
		correct := 0
		for _, opt := range q.Options {
			if opt.IsCorrect == nil {
				t.Fatal("revealed option missing correctness flag")
			}
			if *opt.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			t.Fatalf("revealed question has %d correct options, want 1", correct)
		}
	}
}

func TestBuildExamViewOrdering(t *testing.T) {
	exam, questions := sampleExamQuestions()

	view := BuildExamView(exam, questions, false)

	if view.Questions[0].OrderNum != 1 || view.Questions[1].OrderNum != 2 {
		t.Fatalf("questions not sorted by order: %d, %d",
			view.Questions[0].OrderNum, view.Questions[1].OrderNum)
	}

	// Inputs must not be reordered in place.
	if questions[0].OrderNum != 2 {
		t.Fatal("BuildExamView mutated its input slice")
	}
}

func TestBuildExamViewIdempotent(t *testing.T) {
	exam, questions := sampleExamQuestions()

	first, err := json.Marshal(BuildExamView(exam, questions, true))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	second, err := json.Marshal(BuildExamView(exam, questions, true))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(first) != string(second) {
		t.Fatal("BuildExamView is not deterministic across calls")
	}
}

func TestExamAvailableAt(t *testing.T) {
	now := time.Now()
	from := now.Add(-time.Hour)
	until := now.Add(time.Hour)

	exam := &Exam{IsActive: true, AvailableFrom: &from, AvailableUntil: &until}
	if !exam.AvailableAt(now) {
		t.Fatal("exam inside window must be available")
	}
	if exam.AvailableAt(now.Add(2 * time.Hour)) {
		t.Fatal("exam after window must not be available")
	}
	if exam.AvailableAt(now.Add(-2 * time.Hour)) {
		t.Fatal("exam before window must not be available")
	}

	exam.IsActive = false
	if exam.AvailableAt(now) {
		t.Fatal("inactive exam must not be available")
	}

	open := &Exam{IsActive: true}
	if !open.AvailableAt(now) {
		t.Fatal("active exam without window must be available")
	}
}

func TestExamSubmittableAt(t *testing.T) {
	now := time.Now()
	from := now.Add(-2 * time.Hour)
	until := now.Add(-10 * time.Minute)

	exam := &Exam{IsActive: true, TimeLimitMinutes: 30, AvailableFrom: &from, AvailableUntil: &until}

	// A timer-expiry auto-submit may land up to one time limit past close.
	if !exam.SubmittableAt(now) {
		t.Fatal("submission within the grace window must be accepted")
	}
	if exam.SubmittableAt(until.Add(31 * time.Minute)) {
		t.Fatal("submission past the grace window must be rejected")
	}
	if exam.SubmittableAt(from.Add(-time.Minute)) {
		t.Fatal("submission before the window opens must be rejected")
	}

	exam.IsActive = false
	if exam.SubmittableAt(now) {
		t.Fatal("inactive exam must not accept submissions")
	}

	// Without a close time the grace window never applies; availability rules.
	open := &Exam{IsActive: true, TimeLimitMinutes: 30}
	if !open.SubmittableAt(now) {
		t.Fatal("active exam without window must accept submissions")
	}
}
