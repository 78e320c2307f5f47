package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kurochkinivan/onboarding_ai/internal/domain"
)

const courseSchemaName = "onboarding_course"

const courseInstructions = `You are an expert HR instructional designer. Analyze the combined onboarding documents you are given.
Segment the content into 3 to 4 distinct categories (for example 'Payroll', 'Security', 'Collaboration').
For each category, write exactly 5 non-repetitive multiple-choice questions that test critical knowledge from the document text.
Every question has exactly 4 distinct choices, and correct_answer must repeat the text of one choice exactly.
Keep the categories relevant to HR content such as Financial Policies, Technical Setup or Workplace Conduct.`

type Synthesizer struct {
	log       *slog.Logger
	generator CourseGenerator
}

func NewSynthesizer(log *slog.Logger, generator CourseGenerator) *Synthesizer {
	return &Synthesizer{
		log:       log,
		generator: generator,
	}
}

// Synthesize asks the model for a course built from fullText. The output is never trusted:
// anything that fails domain.ParseCourseDraft is returned as a *domain.SchemaError.
func (s *Synthesizer) Synthesize(ctx context.Context, fullText string) (*domain.CourseDraft, error) {
	s.log.DebugContext(ctx, "requesting course from model", slog.Int("input_length", len(fullText)))

	raw, err := s.generator.GenerateJSON(ctx, courseInstructions, coursePrompt(fullText), courseSchemaName, courseSchema())
	if err != nil {
		return nil, fmt.Errorf("failed to generate course: %w", err)
	}

	draft, err := domain.ParseCourseDraft([]byte(raw))
	if err != nil {
		s.log.ErrorContext(ctx, "model output rejected", slog.String("err", err.Error()))
		return nil, err
	}

	s.log.InfoContext(ctx, "course synthesized",
		slog.String("course_title", draft.CourseTitle),
		slog.Int("categories", len(draft.Categories)),
		slog.Int("quizzes", draft.QuizCount()),
	)

	return draft, nil
}

func coursePrompt(fullText string) string {
	return "Documents Content:\n---\n" + fullText + "\n---\n"
}

func courseSchema() map[string]any {
	quiz := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":        "string",
				"description": "The multiple-choice question derived from the category content.",
			},
			"choices": map[string]any{
				"type":        "array",
				"description": "List of 4 distinct possible answers.",
				"items":       map[string]any{"type": "string"},
			},
			"correct_answer": map[string]any{
				"type":        "string",
				"description": "The exact text of the correct choice from the choices array.",
			},
		},
		"required":             []string{"question", "choices", "correct_answer"},
		"additionalProperties": false,
	}

	category := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"category_title": map[string]any{
				"type":        "string",
				"description": "A concise title for the topic.",
			},
			"quizzes": map[string]any{
				"type":        "array",
				"description": "5 non-repetitive multiple-choice questions for this category.",
				"items":       quiz,
			},
		},
		"required":             []string{"category_title", "quizzes"},
		"additionalProperties": false,
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"course_title": map[string]any{
				"type":        "string",
				"description": "A title for the combined material, like 'General New Hire Onboarding'.",
			},
			"categories": map[string]any{
				"type":        "array",
				"description": "3 to 4 primary categories derived from the documents.",
				"items":       category,
			},
		},
		"required":             []string{"course_title", "categories"},
		"additionalProperties": false,
	}
}
