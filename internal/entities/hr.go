package entities

import "time"

// HR is a hiring-organization account. The calendar token pair is managed
// exclusively through repositories.Credentials; an empty refresh token means
// the account never connected its calendar (or the connection was revoked).
type HR struct {
	ID                   int
	Name                 string
	Email                string `gorm:"uniqueIndex"`
	CalendarAccessToken  string
	CalendarRefreshToken string
	CalendarTokenExpiry  time.Time
	CalendarEmail        string
	CreatedAt            time.Time
}
