package postgresql

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kurochkinivan/onboarding_ai/internal/domain"
)

const TableImportRecords = "import_records"

var importColumns = []string{
	"id",
	"file_id",
	"file_name",
	"mime_type",
	"source",
	"owner_user_id",
	"access_token",
	"status",
	"imported_at",
	"processed_at",
	"completed_at",
	"error_message",
}

type ImportsRepository struct {
	pool *pgxpool.Pool
	qb   sq.StatementBuilderType
	now  func() time.Time
}

func NewImportsRepository(pool *pgxpool.Pool) *ImportsRepository {
	return &ImportsRepository{
		pool: pool,
		qb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		now:  time.Now,
	}
}

// PendingImports returns records waiting for a generation run, oldest first.
func (r *ImportsRepository) PendingImports(ctx context.Context) ([]*domain.ImportRecord, error) {
	return r.selectImports(ctx, sq.Eq{"status": domain.PendingStatuses})
}

func (r *ImportsRepository) ImportsByUser(ctx context.Context, userID string) ([]*domain.ImportRecord, error) {
	return r.selectImports(ctx, sq.Eq{"owner_user_id": userID})
}

func (r *ImportsRepository) selectImports(ctx context.Context, where sq.Sqlizer) ([]*domain.ImportRecord, error) {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Select(importColumns...).
		From(TableImportRecords).
		Where(where).
		OrderBy("imported_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, createQueryError(err)
	}

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, executeQueryError(err)
	}

	records, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByNameLax[domain.ImportRecord])
	if err != nil {
		return nil, collectRowsError(err)
	}

	return records, nil
}

// SaveImport creates the record or overwrites the one with the same id.
func (r *ImportsRepository) SaveImport(ctx context.Context, record *domain.ImportRecord) error {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Insert(TableImportRecords).
		Columns(importColumns...).
		Values(
			record.ID,
			record.FileID,
			record.FileName,
			record.MimeType,
			record.Source,
			record.OwnerUserID,
			record.AccessToken,
			record.Status,
			record.Timestamp,
			record.ProcessedAt,
			record.CompletedAt,
			record.ErrorMessage,
		).
		Suffix(`ON CONFLICT (id) DO UPDATE SET
			file_id = EXCLUDED.file_id,
			file_name = EXCLUDED.file_name,
			mime_type = EXCLUDED.mime_type,
			source = EXCLUDED.source,
			owner_user_id = EXCLUDED.owner_user_id,
			access_token = EXCLUDED.access_token,
			status = EXCLUDED.status,
			imported_at = EXCLUDED.imported_at,
			processed_at = EXCLUDED.processed_at,
			completed_at = EXCLUDED.completed_at,
			error_message = EXCLUDED.error_message
		`).
		ToSql()
	if err != nil {
		return createQueryError(err)
	}

	_, err = db.Exec(ctx, sql, args...)
	if err != nil {
		return executeQueryError(err)
	}

	return nil
}

func (r *ImportsRepository) UpdateImportStatus(
	ctx context.Context,
	id string,
	status domain.ImportStatus,
	errorMessage string,
) error {
	query := r.qb.
		Update(TableImportRecords).
		Set("status", status).
		Set("error_message", errorMessage).
		Where(sq.Eq{"id": id})

	if status == domain.StatusProcessing {
		query = query.Set("processed_at", r.now())
	}

	return r.execUpdate(ctx, query)
}

func (r *ImportsRepository) UpdateImportAccessToken(ctx context.Context, id, accessToken string) error {
	return r.execUpdate(ctx, r.qb.
		Update(TableImportRecords).
		Set("access_token", accessToken).
		Where(sq.Eq{"id": id}),
	)
}

// CompleteImports marks all given records as completed in a single statement.
func (r *ImportsRepository) CompleteImports(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Update(TableImportRecords).
		Set("status", domain.StatusCompleted).
		Set("completed_at", r.now()).
		Set("error_message", "").
		Where(sq.Expr("id = ANY(?)", ids)).
		ToSql()
	if err != nil {
		return createQueryError(err)
	}

	_, err = db.Exec(ctx, sql, args...)
	if err != nil {
		return executeQueryError(err)
	}

	return nil
}

// ResetProcessingImports returns records left in processing by an interrupted run to the queue.
func (r *ImportsRepository) ResetProcessingImports(ctx context.Context) (int64, error) {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Update(TableImportRecords).
		Set("status", domain.StatusPendingAI).
		Where(sq.Eq{"status": domain.StatusProcessing}).
		ToSql()
	if err != nil {
		return 0, createQueryError(err)
	}

	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, executeQueryError(err)
	}

	return tag.RowsAffected(), nil
}

func (r *ImportsRepository) execUpdate(ctx context.Context, query sq.UpdateBuilder) error {
	db := extractDB(ctx, r.pool)

	sql, args, err := query.ToSql()
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
