package models

import "time"

// RefreshToken is a server-side record of an issued refresh token. The ID is
// the opaque token string handed to the client; presenting it proves
// possession, so only the ID is ever compared.
type RefreshToken struct {
	ID        string    `gorm:"primaryKey;type:char(72)" json:"id"`
	UserID    uint      `gorm:"index" json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

// NewRefreshToken builds a token record expiring ttlDays from now.
func NewRefreshToken(id string, userID uint, ttlDays int) *RefreshToken {
	return &RefreshToken{
		ID:        id,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Duration(ttlDays) * 24 * time.Hour),
	}
}
