package repositories

import (
	"context"

	"github.com/pkg/errors"
	"github.com/velocityhr/scheduler/internal/clients/gcal"
	"github.com/velocityhr/scheduler/internal/entities"
	"gorm.io/gorm"
)

// Credentials is the calendar-token store behind the HR table. It implements
// gcal.CredentialStore.
type Credentials struct {
	db *gorm.DB
}

func NewCredentialsRepository(db *gorm.DB) *Credentials {
	return &Credentials{db: db}
}

// Get returns the HR's token pair, or gcal.ErrNotConnected when the account
// has no refresh token on record.
func (repo *Credentials) Get(ctx context.Context, hrID int) (gcal.Credentials, error) {

	var hr entities.HR
	err := repo.db.WithContext(ctx).First(&hr, "id = ?", hrID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return gcal.Credentials{}, gcal.ErrNotConnected
		}
		return gcal.Credentials{}, err
	}

	if hr.CalendarRefreshToken == "" {
		return gcal.Credentials{}, gcal.ErrNotConnected
	}

	return gcal.Credentials{
		AccessToken:  hr.CalendarAccessToken,
		RefreshToken: hr.CalendarRefreshToken,
		Expiry:       hr.CalendarTokenExpiry,
	}, nil
}

// Replace upserts the token pair after a refresh. The access token is always
// overwritten; the refresh token only when the provider rotated it, so a
// refresh response without one never clears the stored token.
func (repo *Credentials) Replace(ctx context.Context, hrID int, creds gcal.Credentials) error {

	updates := map[string]any{
		"calendar_access_token": creds.AccessToken,
		"calendar_token_expiry": creds.Expiry,
	}
	if creds.RefreshToken != "" {
		updates["calendar_refresh_token"] = creds.RefreshToken
	}

	return repo.db.WithContext(ctx).Model(&entities.HR{}).Where("id = ?", hrID).
		Updates(updates).Error
}

// Invalidate clears the token pair, turning the account back into
// "not connected". Used when the provider reports the grant as revoked.
func (repo *Credentials) Invalidate(ctx context.Context, hrID int) error {
	return repo.db.WithContext(ctx).Model(&entities.HR{}).Where("id = ?", hrID).
		Updates(map[string]any{
			"calendar_access_token":  "",
			"calendar_refresh_token": "",
		}).Error
}
