package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kurochkinivan/onboarding_ai/internal/domain"
)

type CredentialRefresher struct {
	log       *slog.Logger
	exchanger TokenExchanger
	tokens    TokensStore
}

// NewCredentialRefresher builds a refresher. A nil exchanger makes every refresh fail
// with domain.ErrRefreshNotConfigured.
func NewCredentialRefresher(log *slog.Logger, exchanger TokenExchanger, tokens TokensStore) *CredentialRefresher {
	return &CredentialRefresher{
		log:       log,
		exchanger: exchanger,
		tokens:    tokens,
	}
}

// Refresh mints a new access token from the refresh token and stores it on the user's
// token record. Any error means the caller must not use a cached token.
func (r *CredentialRefresher) Refresh(ctx context.Context, userID, refreshToken string) (string, error) {
	log := r.log.With(slog.String("user_id", userID))

	if r.exchanger == nil {
		log.WarnContext(ctx, "cannot refresh access token", slog.String("err", domain.ErrRefreshNotConfigured.Error()))
		return "", domain.ErrRefreshNotConfigured
	}

	accessToken, err := r.exchanger.Exchange(ctx, refreshToken)
	if err != nil {
		log.ErrorContext(ctx, "failed to refresh access token", slog.String("err", err.Error()))
		return "", fmt.Errorf("failed to refresh access token: %w", err)
	}

	if err := r.tokens.SaveAccessToken(ctx, userID, accessToken); err != nil {
		log.ErrorContext(ctx, "failed to save refreshed access token", slog.String("err", err.Error()))
		return "", fmt.Errorf("failed to save access token: %w", err)
	}

	log.DebugContext(ctx, "access token refreshed")

	return accessToken, nil
}
