package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kurochkinivan/onboarding_ai/internal/domain"
)

// Importer queues documents for the next generation run.
type Importer struct {
	log          *slog.Logger
	importStatus domain.ImportStatus
	importSaver  ImportSaver
	imports      ImportsLister
	tokensSaver  TokensSaver
	drive        DriveLister
	pages        PageSearcher
	now          func() time.Time
}

// NewImporter builds an importer. pages may be nil when no Notion integration is configured.
func NewImporter(
	log *slog.Logger,
	importStatus domain.ImportStatus,
	importSaver ImportSaver,
	imports ImportsLister,
	tokensSaver TokensSaver,
	drive DriveLister,
	pages PageSearcher,
) *Importer {
	if !importStatus.IsPending() {
		importStatus = domain.StatusPendingAI
	}

	return &Importer{
		log:          log,
		importStatus: importStatus,
		importSaver:  importSaver,
		imports:      imports,
		tokensSaver:  tokensSaver,
		drive:        drive,
		pages:        pages,
		now:          time.Now,
	}
}

// ImportMetadata upserts one record keyed by its file id. Re-importing a file resets
// it to the import status, so a completed file can be queued again.
func (i *Importer) ImportMetadata(ctx context.Context, record *domain.ImportRecord) error {
	if record.ID == "" {
		record.ID = record.FileID
	}
	if record.Source == "" {
		record.Source = domain.SourceGoogleDrive
	}

	record.Status = i.importStatus
	record.Timestamp = i.now()
	record.ProcessedAt = nil
	record.CompletedAt = nil
	record.ErrorMessage = ""

	if err := i.importSaver.SaveImport(ctx, record); err != nil {
		return fmt.Errorf("failed to save import %s: %w", record.ID, err)
	}

	i.log.InfoContext(ctx, "import queued",
		slog.String("import_id", record.ID),
		slog.String("file_name", record.FileName),
		slog.String("status", string(record.Status)),
	)

	return nil
}

// ImportDriveFolder queues every importable file of the folder, or of the whole drive
// when folderID is empty. Files that fail to save are logged and skipped.
func (i *Importer) ImportDriveFolder(
	ctx context.Context,
	userID, accessToken, folderID string,
) ([]*domain.ImportRecord, error) {
	files, err := i.drive.ListFiles(ctx, accessToken, folderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list drive files: %w", err)
	}

	records := make([]*domain.ImportRecord, 0, len(files))
	for _, file := range files {
		if !domain.IsImportableMimeType(file.MimeType) {
			continue
		}

		record := &domain.ImportRecord{
			FileID:      file.ID,
			FileName:    file.Name,
			MimeType:    file.MimeType,
			Source:      domain.SourceGoogleDrive,
			OwnerUserID: userID,
			AccessToken: accessToken,
		}

		if err := i.ImportMetadata(ctx, record); err != nil {
			i.log.ErrorContext(ctx, "failed to import drive file, skipping",
				slog.String("file_id", file.ID),
				slog.String("err", err.Error()),
			)
			continue
		}

		records = append(records, record)
	}

	i.log.InfoContext(ctx, "drive folder imported",
		slog.String("folder_id", folderID),
		slog.Int("listed", len(files)),
		slog.Int("imported", len(records)),
	)

	return records, nil
}

func (i *Importer) DriveFolders(ctx context.Context, accessToken string) ([]*domain.SourceFile, error) {
	folders, err := i.drive.ListFolders(ctx, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to list drive folders: %w", err)
	}

	return folders, nil
}

func (i *Importer) NotionConfigured() bool {
	return i.pages != nil
}

// ImportNotionPages queues every page shared with the integration.
func (i *Importer) ImportNotionPages(ctx context.Context, userID string) ([]*domain.ImportRecord, error) {
	if i.pages == nil {
		return nil, domain.ErrNotionNotConfigured
	}

	pages, err := i.pages.SearchPages(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search notion pages: %w", err)
	}

	records := make([]*domain.ImportRecord, 0, len(pages))
	for _, page := range pages {
		record := &domain.ImportRecord{
			FileID:      page.ID,
			FileName:    page.Name,
			MimeType:    domain.MimeTypeNotionPage,
			Source:      domain.SourceNotion,
			OwnerUserID: userID,
		}

		if err := i.ImportMetadata(ctx, record); err != nil {
			i.log.ErrorContext(ctx, "failed to import notion page, skipping",
				slog.String("page_id", page.ID),
				slog.String("err", err.Error()),
			)
			continue
		}

		records = append(records, record)
	}

	return records, nil
}

func (i *Importer) UserImports(ctx context.Context, userID string) ([]*domain.ImportRecord, error) {
	records, err := i.imports.ImportsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get imports of user %s: %w", userID, err)
	}

	return records, nil
}

// RegisterTokens stores the Drive credentials the refresher uses for the user's imports.
func (i *Importer) RegisterTokens(ctx context.Context, tokens *domain.UserTokens) error {
	tokens.UpdatedAt = i.now()

	if err := i.tokensSaver.SaveTokens(ctx, tokens); err != nil {
		return fmt.Errorf("failed to save tokens of user %s: %w", tokens.UserID, err)
	}

	i.log.InfoContext(ctx, "user tokens registered",
		slog.String("user_id", tokens.UserID),
		slog.Bool("can_refresh", tokens.CanRefresh()),
	)

	return nil
}
