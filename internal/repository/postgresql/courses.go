package postgresql

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kurochkinivan/onboarding_ai/internal/domain"
)

const (
	TableCourses    = "courses"
	TableCategories = "categories"
	TableQuizzes    = "quizzes"
)

var (
	courseColumns = []string{
		"id",
		"title",
		"source",
		"status",
		"creator_id",
		"created_at",
		"generated_at",
		"category_ids",
	}

	categoryColumns = []string{
		"id",
		"course_id",
		"title",
		"position",
		"quiz_count",
		"created_at",
	}

	quizColumns = []string{
		"id",
		"category_id",
		"course_id",
		"position",
		"question",
		"choices",
		"correct_answer",
		"created_at",
	}
)

type CoursesRepository struct {
	pool *pgxpool.Pool
	qb   sq.StatementBuilderType
}

func NewCoursesRepository(pool *pgxpool.Pool) *CoursesRepository {
	return &CoursesRepository{
		pool: pool,
		qb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// ReplaceCourse writes the course, dropping any earlier course with the same id
// together with its categories and quizzes.
func (r *CoursesRepository) ReplaceCourse(ctx context.Context, course *domain.Course) error {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Delete(TableCourses).
		Where(sq.Eq{"id": course.ID}).
		ToSql()
	if err != nil {
		return createQueryError(err)
	}

	if _, err := db.Exec(ctx, sql, args...); err != nil {
		return executeQueryError(err)
	}

	categoryIDs := course.CategoryIDs
	if categoryIDs == nil {
		categoryIDs = []string{}
	}

	sql, args, err = r.qb.
		Insert(TableCourses).
		Columns(courseColumns...).
		Values(
			course.ID,
			course.Title,
			course.Source,
			course.Status,
			course.CreatorID,
			course.CreatedAt,
			course.GeneratedAt,
			categoryIDs,
		).
		ToSql()
	if err != nil {
		return createQueryError(err)
	}

	if _, err := db.Exec(ctx, sql, args...); err != nil {
		return executeQueryError(err)
	}

	return nil
}

func (r *CoursesRepository) SaveCategory(ctx context.Context, category *domain.Category) error {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Insert(TableCategories).
		Columns(categoryColumns...).
		Values(
			category.ID,
			category.CourseID,
			category.Title,
			category.Position,
			category.QuizCount,
			category.CreatedAt,
		).
		ToSql()
	if err != nil {
		return createQueryError(err)
	}

	if _, err := db.Exec(ctx, sql, args...); err != nil {
		return executeQueryError(err)
	}

	return nil
}

func (r *CoursesRepository) SaveQuizzes(ctx context.Context, quizzes ...*domain.Quiz) error {
	db := extractDB(ctx, r.pool)

	copied, err := db.CopyFrom(ctx, pgx.Identifier{TableQuizzes}, quizColumns,
		pgx.CopyFromSlice(len(quizzes), func(i int) ([]any, error) {
			return []any{
				quizzes[i].ID,
				quizzes[i].CategoryID,
				quizzes[i].CourseID,
				quizzes[i].Position,
				quizzes[i].Question,
				quizzes[i].Choices,
				quizzes[i].CorrectAnswer,
				quizzes[i].CreatedAt,
			}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to save quizzes: %w", err)
	}

	if copied != int64(len(quizzes)) {
		return fmt.Errorf("failed to save quizzes: copied %d rows, expected %d", copied, len(quizzes))
	}

	return nil
}

func (r *CoursesRepository) AttachCategories(ctx context.Context, courseID string, categoryIDs []string) error {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Update(TableCourses).
		Set("category_ids", categoryIDs).
		Where(sq.Eq{"id": courseID}).
		ToSql()
	if err != nil {
		return createQueryError(err)
	}

	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return executeQueryError(err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// Courses returns one page of courses, newest first, with category titles in course order.
func (r *CoursesRepository) Courses(ctx context.Context, limit, offset uint64) ([]*domain.CourseSummary, int, error) {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Select("COUNT(*)").
		From(TableCourses).
		ToSql()
	if err != nil {
		return nil, -1, createQueryError(err)
	}

	var total int
	if err := db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return nil, -1, scanRowError(err)
	}

	columns := make([]string, 0, len(courseColumns)+1)
	for _, c := range courseColumns {
		columns = append(columns, "c."+c)
	}
	columns = append(columns, `COALESCE((
		SELECT array_agg(cat.title ORDER BY cat.position, cat.id)
		FROM categories cat
		WHERE cat.course_id = c.id
	), '{}') AS category_titles`)

	sql, args, err = r.qb.
		Select(columns...).
		From(TableCourses + " c").
		OrderBy("c.generated_at DESC", "c.id ASC").
		Limit(limit).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, -1, createQueryError(err)
	}

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, -1, executeQueryError(err)
	}

	courses, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByNameLax[domain.CourseSummary])
	if err != nil {
		return nil, -1, collectRowsError(err)
	}

	return courses, total, nil
}

func (r *CoursesRepository) Course(ctx context.Context, id string) (*domain.Course, error) {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Select(courseColumns...).
		From(TableCourses).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, createQueryError(err)
	}

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, executeQueryError(err)
	}

	course, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[domain.Course])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, collectRowsError(err)
	}

	return course, nil
}

func (r *CoursesRepository) CategoriesByCourse(ctx context.Context, courseID string) ([]*domain.Category, error) {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Select(categoryColumns...).
		From(TableCategories).
		Where(sq.Eq{"course_id": courseID}).
		OrderBy("position ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, createQueryError(err)
	}

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, executeQueryError(err)
	}

	categories, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[domain.Category])
	if err != nil {
		return nil, collectRowsError(err)
	}

	return categories, nil
}

// QuizzesByCourse returns the course quizzes grouped by category in course order.
func (r *CoursesRepository) QuizzesByCourse(ctx context.Context, courseID string) ([]*domain.Quiz, error) {
	db := extractDB(ctx, r.pool)

	columns := make([]string, 0, len(quizColumns))
	for _, c := range quizColumns {
		columns = append(columns, "q."+c)
	}

	sql, args, err := r.qb.
		Select(columns...).
		From(TableQuizzes + " q").
		Join(TableCategories + " cat ON cat.id = q.category_id").
		Where(sq.Eq{"q.course_id": courseID}).
		OrderBy("cat.position ASC", "q.category_id ASC", "q.position ASC").
		ToSql()
	if err != nil {
		return nil, createQueryError(err)
	}

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, executeQueryError(err)
	}

	quizzes, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[domain.Quiz])
	if err != nil {
		return nil, collectRowsError(err)
	}

	return quizzes, nil
}
