package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	MinCategories      = 3
	MaxCategories      = 4
	QuizzesPerCategory = 5
	ChoicesPerQuiz     = 4
)

// CourseDraft is the structured course returned by the generative model.
type CourseDraft struct {
	CourseTitle string          `json:"course_title"`
	Categories  []CategoryDraft `json:"categories"`
}

type CategoryDraft struct {
	CategoryTitle string      `json:"category_title"`
	Quizzes       []QuizDraft `json:"quizzes"`
}

type QuizDraft struct {
	Question      string   `json:"question"`
	Choices       []string `json:"choices"`
	CorrectAnswer string   `json:"correct_answer"`
}

// SchemaError reports model output that does not match the course schema.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid course schema: %s", e.Reason)
	}
	return fmt.Sprintf("invalid course schema: %s: %s", e.Field, e.Reason)
}

// ParseCourseDraft decodes raw model output and validates it.
func ParseCourseDraft(raw []byte) (*CourseDraft, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, &SchemaError{Reason: "empty model output"}
	}

	var draft CourseDraft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, &SchemaError{Reason: fmt.Sprintf("malformed json: %v", err)}
	}

	if err := draft.Validate(); err != nil {
		return nil, err
	}

	return &draft, nil
}

func (d *CourseDraft) Validate() error {
	if strings.TrimSpace(d.CourseTitle) == "" {
		return &SchemaError{Field: "course_title", Reason: "is required"}
	}

	if n := len(d.Categories); n < MinCategories || n > MaxCategories {
		return &SchemaError{
			Field:  "categories",
			Reason: fmt.Sprintf("expected %d to %d categories, got %d", MinCategories, MaxCategories, n),
		}
	}

	for i, category := range d.Categories {
		field := fmt.Sprintf("categories[%d]", i)

		if strings.TrimSpace(category.CategoryTitle) == "" {
			return &SchemaError{Field: field + ".category_title", Reason: "is required"}
		}

		if n := len(category.Quizzes); n != QuizzesPerCategory {
			return &SchemaError{
				Field:  field + ".quizzes",
				Reason: fmt.Sprintf("expected %d quizzes, got %d", QuizzesPerCategory, n),
			}
		}

		for j, quiz := range category.Quizzes {
			if err := quiz.validate(fmt.Sprintf("%s.quizzes[%d]", field, j)); err != nil {
				return err
			}
		}
	}

	return nil
}

func (q *QuizDraft) validate(field string) error {
	if strings.TrimSpace(q.Question) == "" {
		return &SchemaError{Field: field + ".question", Reason: "is required"}
	}

	if n := len(q.Choices); n != ChoicesPerQuiz {
		return &SchemaError{
			Field:  field + ".choices",
			Reason: fmt.Sprintf("expected %d choices, got %d", ChoicesPerQuiz, n),
		}
	}

	if !q.HasCorrectChoice() {
		return &SchemaError{
			Field:  field + ".correct_answer",
			Reason: fmt.Sprintf("%q is not one of the choices", q.CorrectAnswer),
		}
	}

	return nil
}

// HasCorrectChoice reports whether the correct answer is byte-for-byte one of the choices.
func (q *QuizDraft) HasCorrectChoice() bool {
	for _, c := range q.Choices {
		if c == q.CorrectAnswer {
			return true
		}
	}
	return false
}

func (d *CourseDraft) QuizCount() int {
	var n int
	for _, c := range d.Categories {
		n += len(c.Quizzes)
	}
	return n
}
