package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kurochkinivan/onboarding_ai/internal/domain"
)

type Exporter struct {
	log             *slog.Logger
	courses         CourseReader
	reportGenerator ReportGenerator
}

func NewExporter(log *slog.Logger, courses CourseReader, reportGenerator ReportGenerator) *Exporter {
	return &Exporter{
		log:             log,
		courses:         courses,
		reportGenerator: reportGenerator,
	}
}

// Handout renders the course as a printable PDF with every question and its answer.
func (e *Exporter) Handout(ctx context.Context, courseID string) ([]byte, error) {
	course, categories, quizzes, err := e.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	log := e.log.With(
		slog.String("course_id", courseID),
		slog.Int("categories_count", len(categories)),
	)

	log.InfoContext(ctx, "generating course handout")

	data, err := e.reportGenerator.CourseHandout(course, categories, quizzes)
	if err != nil {
		log.ErrorContext(ctx, "failed to generate course handout", slog.String("err", err.Error()))
		return nil, fmt.Errorf("failed to generate handout: %w", err)
	}

	return data, nil
}

func (e *Exporter) QuizzesCSV(ctx context.Context, courseID string) ([]byte, error) {
	_, categories, quizzes, err := e.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	data, err := e.reportGenerator.QuizzesCSV(categories, quizzes)
	if err != nil {
		e.log.ErrorContext(ctx, "failed to generate quizzes csv",
			slog.String("course_id", courseID),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("failed to generate quizzes csv: %w", err)
	}

	return data, nil
}

func (e *Exporter) loadCourse(
	ctx context.Context,
	courseID string,
) (*domain.Course, []*domain.Category, []*domain.Quiz, error) {
	course, err := e.courses.Course(ctx, courseID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get course %s: %w", courseID, err)
	}

	categories, err := e.courses.CategoriesByCourse(ctx, courseID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get categories: %w", err)
	}

	quizzes, err := e.courses.QuizzesByCourse(ctx, courseID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get quizzes: %w", err)
	}

	return course, categories, quizzes, nil
}
