package model

import "time"

// ShareLink grants conditional access to one file. A link is usable
// while it is active, unexpired and under its download quota; that
// predicate is re-checked atomically on every download, never cached.
type ShareLink struct {
	ID     string `gorm:"primaryKey" json:"id"`
	FileID string `gorm:"index" json:"file_id"`
	Token  string `gorm:"uniqueIndex;not null" json:"link_token"`

	// Independent secret, never the owner's account password
	PasswordHash string `json:"-"`

	ExpiresAt     time.Time `json:"expiry_date"`
	DownloadLimit int       `json:"download_limit"`
	DownloadCount int       `json:"downloads_count"`
	Active        bool      `gorm:"default:true" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}
