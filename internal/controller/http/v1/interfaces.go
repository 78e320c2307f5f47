package v1

import (
	"context"

	"github.com/kurochkinivan/onboarding_ai/internal/domain"
)

type CourseGenerator interface {
	Run(ctx context.Context) (string, error)
}

type CoursesRepository interface {
	Courses(ctx context.Context, limit, offset uint64) ([]*domain.CourseSummary, int, error)
	QuizzesByCourse(ctx context.Context, courseID string) ([]*domain.Quiz, error)
}

type CourseExporter interface {
	Handout(ctx context.Context, courseID string) ([]byte, error)
	QuizzesCSV(ctx context.Context, courseID string) ([]byte, error)
}

type Importer interface {
	ImportMetadata(ctx context.Context, record *domain.ImportRecord) error
	ImportDriveFolder(ctx context.Context, userID, accessToken, folderID string) ([]*domain.ImportRecord, error)
	DriveFolders(ctx context.Context, accessToken string) ([]*domain.SourceFile, error)
	NotionConfigured() bool
	ImportNotionPages(ctx context.Context, userID string) ([]*domain.ImportRecord, error)
	UserImports(ctx context.Context, userID string) ([]*domain.ImportRecord, error)
	RegisterTokens(ctx context.Context, tokens *domain.UserTokens) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}
