package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kurochkinivan/onboarding_ai/internal/domain"
)

type Writer struct {
	log             *slog.Logger
	courseSaver     CourseSaver
	importCompleter ImportCompleter
	transactor      Transactor
	now             func() time.Time
}

func NewWriter(
	log *slog.Logger,
	courseSaver CourseSaver,
	importCompleter ImportCompleter,
	transactor Transactor,
) *Writer {
	return &Writer{
		log:             log,
		courseSaver:     courseSaver,
		importCompleter: importCompleter,
		transactor:      transactor,
		now:             time.Now,
	}
}

// Persist writes the course tree built from draft and completes its source imports.
// Everything happens in one transaction, so a failure leaves no partial course behind.
// It returns nil without writing when there are no source records.
func (w *Writer) Persist(ctx context.Context, draft *domain.CourseDraft, sources []*domain.ImportRecord) (*domain.Course, error) {
	if len(sources) == 0 {
		w.log.WarnContext(ctx, "no source imports to associate with the course, skipping save")
		return nil, nil
	}

	first := sources[0]
	now := w.now()

	course := &domain.Course{
		ID:          first.ID,
		Title:       draft.CourseTitle,
		Source:      describeSources(sources),
		Status:      domain.CourseStatusReady,
		CreatorID:   first.OwnerUserID,
		CreatedAt:   first.Timestamp,
		GeneratedAt: now,
		CategoryIDs: []string{},
	}

	log := w.log.With(slog.String("course_id", course.ID))

	err := w.transactor.WithTransaction(ctx, func(ctx context.Context) error {
		if err := w.courseSaver.ReplaceCourse(ctx, course); err != nil {
			return fmt.Errorf("failed to save course: %w", err)
		}

		categoryIDs := make([]string, 0, len(draft.Categories))
		for i, categoryDraft := range draft.Categories {
			categoryID, err := w.saveCategory(ctx, course.ID, i, categoryDraft, now)
			if err != nil {
				return err
			}

			categoryIDs = append(categoryIDs, categoryID)
		}

		if err := w.courseSaver.AttachCategories(ctx, course.ID, categoryIDs); err != nil {
			return fmt.Errorf("failed to attach categories: %w", err)
		}
		course.CategoryIDs = categoryIDs

		ids := make([]string, 0, len(sources))
		for _, source := range sources {
			ids = append(ids, source.ID)
		}

		if err := w.importCompleter.CompleteImports(ctx, ids...); err != nil {
			return fmt.Errorf("failed to complete imports: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, source := range sources {
		source.Status = domain.StatusCompleted
	}

	log.InfoContext(ctx, "course saved",
		slog.Int("categories", len(course.CategoryIDs)),
		slog.Int("imports_completed", len(sources)),
	)

	return course, nil
}

func (w *Writer) saveCategory(
	ctx context.Context,
	courseID string,
	position int,
	draft domain.CategoryDraft,
	now time.Time,
) (string, error) {
	category := &domain.Category{
		ID:        uuid.NewString(),
		CourseID:  courseID,
		Title:     draft.CategoryTitle,
		Position:  position,
		QuizCount: len(draft.Quizzes),
		CreatedAt: now,
	}

	if err := w.courseSaver.SaveCategory(ctx, category); err != nil {
		return "", fmt.Errorf("failed to save category %q: %w", category.Title, err)
	}

	quizzes := make([]*domain.Quiz, 0, len(draft.Quizzes))
	for i, q := range draft.Quizzes {
		quizzes = append(quizzes, &domain.Quiz{
			ID:            uuid.NewString(),
			CategoryID:    category.ID,
			CourseID:      courseID,
			Position:      i,
			Question:      q.Question,
			Choices:       q.Choices,
			CorrectAnswer: q.CorrectAnswer,
			CreatedAt:     now,
		})
	}

	if err := w.courseSaver.SaveQuizzes(ctx, quizzes...); err != nil {
		return "", fmt.Errorf("failed to save quizzes of category %q: %w", category.Title, err)
	}

	return category.ID, nil
}

// describeSources lists the distinct upstream sources in order of appearance, e.g. "google_drive/notion".
func describeSources(sources []*domain.ImportRecord) string {
	seen := make(map[string]struct{}, 2)
	names := make([]string, 0, 2)

	for _, s := range sources {
		name := s.Source
		if name == "" {
			name = domain.SourceGoogleDrive
		}

		if _, ok := seen[name]; ok {
			continue
		}

		seen[name] = struct{}{}
		names = append(names, name)
	}

	return strings.Join(names, "/")
}
