package oauth

import (
	"context"
	"fmt"

	"github.com/kurochkinivan/onboarding_ai/internal/config"
	"github.com/kurochkinivan/onboarding_ai/internal/domain"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const driveReadonlyScope = "https://www.googleapis.com/auth/drive.readonly"

// Exchanger mints Drive access tokens from refresh tokens with the Google OAuth client.
type Exchanger struct {
	cfg *oauth2.Config
}

// New returns domain.ErrRefreshNotConfigured when the OAuth client credentials are missing.
func New(cfg config.Google) (*Exchanger, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, domain.ErrRefreshNotConfigured
	}

	endpoint := google.Endpoint
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}

	return &Exchanger{
		cfg: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     endpoint,
			Scopes:       []string{driveReadonlyScope},
		},
	}, nil
}

func (e *Exchanger) Exchange(ctx context.Context, refreshToken string) (string, error) {
	token, err := e.cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return "", fmt.Errorf("failed to exchange refresh token: %w", err)
	}

	if token.AccessToken == "" {
		return "", fmt.Errorf("token endpoint returned no access token")
	}

	return token.AccessToken, nil
}
