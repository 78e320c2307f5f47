package pipeline

import (
	"context"

	"github.com/kurochkinivan/onboarding_ai/internal/domain"
)

type ImportsProvider interface {
	PendingImports(ctx context.Context) ([]*domain.ImportRecord, error)
}

type ImportUpdater interface {
	UpdateImportStatus(ctx context.Context, id string, status domain.ImportStatus, errorMessage string) error
	UpdateImportAccessToken(ctx context.Context, id, accessToken string) error
}

type ImportCompleter interface {
	CompleteImports(ctx context.Context, ids ...string) error
}

type ImportSaver interface {
	SaveImport(ctx context.Context, record *domain.ImportRecord) error
}

type ImportsLister interface {
	ImportsByUser(ctx context.Context, userID string) ([]*domain.ImportRecord, error)
}

type TokensSaver interface {
	SaveTokens(ctx context.Context, tokens *domain.UserTokens) error
}

type TokensStore interface {
	UserTokens(ctx context.Context, userID string) (*domain.UserTokens, error)
	SaveAccessToken(ctx context.Context, userID, accessToken string) error
}

type TokenExchanger interface {
	Exchange(ctx context.Context, refreshToken string) (string, error)
}

type DocumentSource interface {
	Download(ctx context.Context, fileID, accessToken string) ([]byte, error)
	Export(ctx context.Context, fileID, mimeType, accessToken string) ([]byte, error)
}

type DriveLister interface {
	ListFiles(ctx context.Context, accessToken, folderID string) ([]*domain.SourceFile, error)
	ListFolders(ctx context.Context, accessToken string) ([]*domain.SourceFile, error)
}

type PageSource interface {
	PageText(ctx context.Context, pageID string) (string, error)
}

type PageSearcher interface {
	SearchPages(ctx context.Context) ([]*domain.SourceFile, error)
}

type CourseGenerator interface {
	GenerateJSON(ctx context.Context, instructions, input, schemaName string, schema map[string]any) (string, error)
}

type CourseSaver interface {
	ReplaceCourse(ctx context.Context, course *domain.Course) error
	SaveCategory(ctx context.Context, category *domain.Category) error
	SaveQuizzes(ctx context.Context, quizzes ...*domain.Quiz) error
	AttachCategories(ctx context.Context, courseID string, categoryIDs []string) error
}

type CourseReader interface {
	Course(ctx context.Context, id string) (*domain.Course, error)
	CategoriesByCourse(ctx context.Context, courseID string) ([]*domain.Category, error)
	QuizzesByCourse(ctx context.Context, courseID string) ([]*domain.Quiz, error)
}

type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type RunLocker interface {
	Lock(ctx context.Context) (unlock func(), err error)
}

type ReportGenerator interface {
	CourseHandout(course *domain.Course, categories []*domain.Category, quizzes []*domain.Quiz) ([]byte, error)
	QuizzesCSV(categories []*domain.Category, quizzes []*domain.Quiz) ([]byte, error)
}

type ContentExtractor interface {
	Extract(ctx context.Context, descriptor domain.FileDescriptor) (string, error)
}

type CredentialsRefresher interface {
	Refresh(ctx context.Context, userID, refreshToken string) (string, error)
}

type GenerationRunner interface {
	Run(ctx context.Context) (string, error)
}
