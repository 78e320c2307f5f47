package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kurochkinivan/onboarding_ai/internal/domain"
)

const chunkSeparator = "\n\n"

// refreshOutcome is the result of one refresh attempt for a user, reused for the rest of the run.
type refreshOutcome struct {
	accessToken string
	err         error
}

type Aggregator struct {
	log             *slog.Logger
	importsProvider ImportsProvider
	importUpdater   ImportUpdater
	tokens          TokensStore
	refresher       CredentialsRefresher
	extractor       ContentExtractor
}

func NewAggregator(
	log *slog.Logger,
	importsProvider ImportsProvider,
	importUpdater ImportUpdater,
	tokens TokensStore,
	refresher CredentialsRefresher,
	extractor ContentExtractor,
) *Aggregator {
	return &Aggregator{
		log:             log,
		importsProvider: importsProvider,
		importUpdater:   importUpdater,
		tokens:          tokens,
		refresher:       refresher,
		extractor:       extractor,
	}
}

// Pending returns the imports waiting for a generation run, oldest first.
func (a *Aggregator) Pending(ctx context.Context) ([]*domain.ImportRecord, error) {
	records, err := a.importsProvider.PendingImports(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending imports: %w", err)
	}

	return records, nil
}

// Aggregate extracts every record in order and frames the text of the ones that succeeded.
// A record that fails is marked as errored and left out; it never aborts the batch.
func (a *Aggregator) Aggregate(ctx context.Context, records []*domain.ImportRecord) (*domain.Aggregation, error) {
	if len(records) == 0 {
		return &domain.Aggregation{Text: domain.NoPendingDocuments}, nil
	}

	result := &domain.Aggregation{}
	chunks := make([]string, 0, len(records))
	refreshed := make(map[string]refreshOutcome)

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		log := a.log.With(
			slog.String("import_id", record.ID),
			slog.String("file_name", record.FileName),
		)

		text, err := a.processRecord(ctx, log, record, refreshed)
		if err != nil {
			log.ErrorContext(ctx, "failed to process import, skipping", slog.String("err", err.Error()))

			a.markFailed(ctx, log, record, err)
			result.Failed = append(result.Failed, domain.FailedImport{Record: record, Err: err})
			continue
		}

		chunks = append(chunks, frame(record.FileName, text))
		result.Succeeded = append(result.Succeeded, record)

		log.DebugContext(ctx, "import processed", slog.Int("text_length", len(text)))
	}

	result.Text = strings.Join(chunks, chunkSeparator)

	a.log.InfoContext(ctx, "aggregation finished",
		slog.Int("succeeded", len(result.Succeeded)),
		slog.Int("failed", len(result.Failed)),
	)

	return result, nil
}

func (a *Aggregator) processRecord(
	ctx context.Context,
	log *slog.Logger,
	record *domain.ImportRecord,
	refreshed map[string]refreshOutcome,
) (string, error) {
	if record.Source != domain.SourceNotion {
		if err := a.refreshAccessToken(ctx, log, record, refreshed); err != nil {
			return "", err
		}
	}

	text, err := a.extractor.Extract(ctx, record.Descriptor())
	if err != nil {
		return "", err
	}

	err = a.importUpdater.UpdateImportStatus(ctx, record.ID, domain.StatusProcessing, "")
	if err != nil {
		return "", fmt.Errorf("failed to mark import as processing: %w", err)
	}
	record.Status = domain.StatusProcessing

	return text, nil
}

// refreshAccessToken swaps in a fresh token when the owner has a refresh token on file.
// Tokens are refreshed once per user per run, and a failed refresh fails every record
// of that user without calling the token endpoint again. Owners without a refresh token
// keep the record's token.
func (a *Aggregator) refreshAccessToken(
	ctx context.Context,
	log *slog.Logger,
	record *domain.ImportRecord,
	refreshed map[string]refreshOutcome,
) error {
	outcome, ok := refreshed[record.OwnerUserID]
	if !ok {
		var err error
		outcome, err = a.refreshUser(ctx, record.OwnerUserID)
		if err != nil {
			return err
		}

		refreshed[record.OwnerUserID] = outcome
	}

	if outcome.err != nil {
		return outcome.err
	}

	// empty means the owner has nothing to refresh with
	if outcome.accessToken == "" || outcome.accessToken == record.AccessToken {
		return nil
	}

	if err := a.importUpdater.UpdateImportAccessToken(ctx, record.ID, outcome.accessToken); err != nil {
		return fmt.Errorf("failed to store refreshed access token: %w", err)
	}
	record.AccessToken = outcome.accessToken

	log.DebugContext(ctx, "using refreshed access token")

	return nil
}

// refreshUser returns an error only when the token lookup itself fails; refresh failures
// are carried in the outcome so they are cached.
func (a *Aggregator) refreshUser(ctx context.Context, userID string) (refreshOutcome, error) {
	tokens, err := a.tokens.UserTokens(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return refreshOutcome{}, fmt.Errorf("failed to get user tokens: %w", err)
	}

	if !tokens.CanRefresh() {
		return refreshOutcome{}, nil
	}

	accessToken, err := a.refresher.Refresh(ctx, userID, tokens.DriveRefreshToken)
	if err != nil {
		return refreshOutcome{err: fmt.Errorf("could not refresh access token: %w", err)}, nil
	}

	return refreshOutcome{accessToken: accessToken}, nil
}

func (a *Aggregator) markFailed(ctx context.Context, log *slog.Logger, record *domain.ImportRecord, cause error) {
	err := a.importUpdater.UpdateImportStatus(ctx, record.ID, domain.StatusError, cause.Error())
	if err != nil {
		log.ErrorContext(ctx, "failed to mark import as errored", slog.String("err", err.Error()))
		return
	}

	record.Status = domain.StatusError
	record.ErrorMessage = cause.Error()
}

func frame(fileName, text string) string {
	return fmt.Sprintf("--- FILE START: %s ---\n%s\n--- FILE END ---\n", fileName, text)
}
