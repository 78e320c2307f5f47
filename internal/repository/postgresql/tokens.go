package postgresql

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kurochkinivan/onboarding_ai/internal/domain"
)

const TableUserTokens = "user_tokens"

type TokensRepository struct {
	pool *pgxpool.Pool
	qb   sq.StatementBuilderType
	now  func() time.Time
}

func NewTokensRepository(pool *pgxpool.Pool) *TokensRepository {
	return &TokensRepository{
		pool: pool,
		qb:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		now:  time.Now,
	}
}

func (r *TokensRepository) UserTokens(ctx context.Context, userID string) (*domain.UserTokens, error) {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Select(
			"user_id",
			"drive_access_token",
			"drive_refresh_token",
			"updated_at",
		).
		From(TableUserTokens).
		Where(sq.Eq{"user_id": userID}).
		ToSql()
	if err != nil {
		return nil, createQueryError(err)
	}

	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, executeQueryError(err)
	}

	tokens, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[domain.UserTokens])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, collectRowsError(err)
	}

	return tokens, nil
}

func (r *TokensRepository) SaveTokens(ctx context.Context, tokens *domain.UserTokens) error {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Insert(TableUserTokens).
		Columns(
			"user_id",
			"drive_access_token",
			"drive_refresh_token",
			"updated_at",
		).
		Values(
			tokens.UserID,
			tokens.DriveAccessToken,
			tokens.DriveRefreshToken,
			tokens.UpdatedAt,
		).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
			drive_access_token = EXCLUDED.drive_access_token,
			drive_refresh_token = CASE
				WHEN EXCLUDED.drive_refresh_token = '' THEN user_tokens.drive_refresh_token
				ELSE EXCLUDED.drive_refresh_token
			END,
			updated_at = EXCLUDED.updated_at
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

// SaveAccessToken stores a refreshed access token, keeping the refresh token in place.
func (r *TokensRepository) SaveAccessToken(ctx context.Context, userID, accessToken string) error {
	db := extractDB(ctx, r.pool)

	sql, args, err := r.qb.
		Update(TableUserTokens).
		Set("drive_access_token", accessToken).
		Set("updated_at", r.now()).
		Where(sq.Eq{"user_id": userID}).
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
