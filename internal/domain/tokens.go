package domain

import "time"

type UserTokens struct {
	UserID            string    `db:"user_id"             json:"user_id"`
	DriveAccessToken  string    `db:"drive_access_token"  json:"-"`
	DriveRefreshToken string    `db:"drive_refresh_token" json:"-"`
	UpdatedAt         time.Time `db:"updated_at"          json:"updated_at"`
}

func (t *UserTokens) CanRefresh() bool {
	return t != nil && t.DriveRefreshToken != ""
}
