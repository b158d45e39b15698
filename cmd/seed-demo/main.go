package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/examhub/examhub-backend/internal/config"
	"github.com/examhub/examhub-backend/internal/database"
	"github.com/examhub/examhub-backend/internal/grading"
	"github.com/examhub/examhub-backend/internal/logger"
	"github.com/examhub/examhub-backend/internal/model"
	"github.com/examhub/examhub-backend/internal/repository"
)

// Seeds a demo dataset: one account per role, two small exams built from a
// JavaScript and a Python question set, and one graded attempt so the
// review and dashboard screens have data on a fresh install.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	examRepo := repository.NewExamRepository(pool)
	attemptRepo := repository.NewAttemptRepository(pool)

	fmt.Println("=== Seeding demo data ===")

	seedUser(ctx, userRepo, cfg.BcryptCost, "admin@example.com", "Admin User", "admin123", model.RoleAdmin, log)
	teacher := seedUser(ctx, userRepo, cfg.BcryptCost, "teacher@example.com", "John Teacher", "teacher123", model.RoleTeacher, log)
	student := seedUser(ctx, userRepo, cfg.BcryptCost, "student@example.com", "Jane Student", "student123", model.RoleStudent, log)
	fmt.Println("Users created")

	jsQuestions := seedQuestions(ctx, questionRepo, teacher.ID, javascriptQuestions(), log)
	fmt.Println("JavaScript questions created")

	pyQuestions := seedQuestions(ctx, questionRepo, teacher.ID, pythonQuestions(), log)
	fmt.Println("Python questions created")

	jsExam := &model.Exam{
		Title:            "JavaScript Fundamentals",
		Description:      "Test your knowledge of JavaScript basics including variables, functions, and data types.",
		TimeLimitMinutes: 30,
		PassingScore:     60,
		IsActive:         true,
		CreatedByID:      teacher.ID,
	}
	if err := examRepo.Create(ctx, jsExam, questionIDs(jsQuestions)); err != nil {
		log.Fatal().Err(err).Msg("Failed to create JavaScript exam")
	}

	pyExam := &model.Exam{
		Title:            "Python Basics",
		Description:      "Fundamental concepts of Python programming including syntax, data structures, and control flow.",
		TimeLimitMinutes: 25,
		PassingScore:     60,
		IsActive:         true,
		CreatedByID:      teacher.ID,
	}
	if err := examRepo.Create(ctx, pyExam, questionIDs(pyQuestions)); err != nil {
		log.Fatal().Err(err).Msg("Failed to create Python exam")
	}
	fmt.Println("Exams created")

	// One graded attempt on the JavaScript exam: 3 of 5 correct, a pass at
	// the 60% threshold.
	answers := map[string]string{
		jsQuestions[0].ID.String(): "a", // correct
		jsQuestions[1].ID.String(): "b", // incorrect (correct is c)
		jsQuestions[2].ID.String(): "c", // correct
		jsQuestions[3].ID.String(): "a", // correct
		jsQuestions[4].ID.String(): "a", // incorrect (correct is b)
	}

	examQuestions, err := questionRepo.ListByExam(ctx, jsExam.ID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load exam questions")
	}
	eval := grading.Evaluate(examQuestions, answers)
	passed := grading.Passed(eval.Percentage, jsExam.PassingScore)

	now := time.Now()
	attempt := &model.Attempt{
		StudentID: student.ID,
		ExamID:    jsExam.ID,
		StartTime: now.Add(-20 * time.Minute),
		EndTime:   &now,
		Answers:   answers,
		Score:     eval.CorrectCount,
		Status:    model.AttemptStatusCompleted,
	}
	result := &model.Result{
		StudentID:  student.ID,
		ExamID:     jsExam.ID,
		Score:      eval.CorrectCount,
		Percentage: eval.Percentage,
		Passed:     passed,
		Feedback:   grading.Feedback(passed, eval.Percentage),
	}
	if err := attemptRepo.SubmitCompleted(ctx, attempt, result, jsExam.MaxAttempts); err != nil {
		log.Fatal().Err(err).Msg("Failed to create sample attempt")
	}
	fmt.Println("Sample attempt and result created")

	fmt.Println("Demo seeding completed")
}

func seedUser(ctx context.Context, repo *repository.UserRepository, cost int, email, name, password string, role model.Role, log zerolog.Logger) *model.User {
	if existing, err := repo.GetByEmail(ctx, email); err == nil {
		fmt.Printf("User %s already exists, skipping\n", email)
		return existing
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	user := &model.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := repo.Create(ctx, user); err != nil {
		log.Fatal().Err(err).Str("email", email).Msg("Failed to create user")
	}
	return user
}

func seedQuestions(ctx context.Context, repo *repository.QuestionRepository, creatorID uuid.UUID, questions []model.Question, log zerolog.Logger) []model.Question {
	for i := range questions {
		questions[i].CreatedByID = creatorID
		if err := repo.Create(ctx, &questions[i]); err != nil {
			log.Fatal().Err(err).Str("text", questions[i].Text).Msg("Failed to create question")
		}
	}
	return questions
}

func questionIDs(questions []model.Question) []uuid.UUID {
	ids := make([]uuid.UUID, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	return ids
}

func javascriptQuestions() []model.Question {
	return []model.Question{
		{
			Text: "What is the correct way to declare a variable in JavaScript?",
			Options: []model.Option{
				{ID: "a", Text: "var myVariable;", IsCorrect: true},
				{ID: "b", Text: "variable myVariable;"},
				{ID: "c", Text: "v myVariable;"},
				{ID: "d", Text: "declare myVariable;"},
			},
			Explanation: "In JavaScript, variables can be declared using var, let, or const keywords. The var keyword is one of the traditional ways to declare variables.",
			Category:    "Variables",
			Difficulty:  model.DifficultyEasy,
		},
		{
			Text: "Which of the following is NOT a JavaScript data type?",
			Options: []model.Option{
				{ID: "a", Text: "String"},
				{ID: "b", Text: "Boolean"},
				{ID: "c", Text: "Float", IsCorrect: true},
				{ID: "d", Text: "Number"},
			},
			Explanation: "JavaScript has a Number type for all numeric values (integers and floating-point). There is no separate Float type like in some other languages.",
			Category:    "Data Types",
			Difficulty:  model.DifficultyMedium,
		},
		{
			Text: "What does the \"===\" operator do in JavaScript?",
			Options: []model.Option{
				{ID: "a", Text: "Assigns a value"},
				{ID: "b", Text: "Compares values only"},
				{ID: "c", Text: "Compares values and types", IsCorrect: true},
				{ID: "d", Text: "Declares a constant"},
			},
			Explanation: "The === operator performs strict equality comparison, checking both the value and the type. This is different from == which only compares values with type coercion.",
			Category:    "Operators",
			Difficulty:  model.DifficultyMedium,
		},
		{
			Text: "Which method is used to add an element to the end of an array?",
			Options: []model.Option{
				{ID: "a", Text: "push()", IsCorrect: true},
				{ID: "b", Text: "add()"},
				{ID: "c", Text: "append()"},
				{ID: "d", Text: "insert()"},
			},
			Explanation: "The push() method adds one or more elements to the end of an array and returns the new length of the array.",
			Category:    "Arrays",
			Difficulty:  model.DifficultyEasy,
		},
		{
			Text: "What is a closure in JavaScript?",
			Options: []model.Option{
				{ID: "a", Text: "A way to close the browser"},
				{ID: "b", Text: "A function that has access to outer scope variables", IsCorrect: true},
				{ID: "c", Text: "A method to end a loop"},
				{ID: "d", Text: "A type of error"},
			},
			Explanation: "A closure is a function that has access to variables in its outer (enclosing) scope even after the outer function has returned. This is a powerful feature in JavaScript.",
			Category:    "Functions",
			Difficulty:  model.DifficultyHard,
		},
	}
}

func pythonQuestions() []model.Question {
	return []model.Question{
		{
			Text: "Which of the following is the correct way to create a list in Python?",
			Options: []model.Option{
				{ID: "a", Text: "list = []", IsCorrect: true},
				{ID: "b", Text: "list = {}"},
				{ID: "c", Text: "list = ()"},
				{ID: "d", Text: "list = \"\""},
			},
			Explanation: "Square brackets [] are used to create lists in Python. Curly braces {} create dictionaries, parentheses () create tuples, and quotes create strings.",
			Category:    "Data Structures",
			Difficulty:  model.DifficultyEasy,
		},
		{
			Text: "What is the output of print(type(5.0))?",
			Options: []model.Option{
				{ID: "a", Text: "<class 'int'>"},
				{ID: "b", Text: "<class 'float'>", IsCorrect: true},
				{ID: "c", Text: "<class 'number'>"},
				{ID: "d", Text: "<class 'decimal'>"},
			},
			Explanation: "Numbers with decimal points (like 5.0) are automatically treated as float type in Python, even if the decimal part is zero.",
			Category:    "Data Types",
			Difficulty:  model.DifficultyEasy,
		},
	}
}
