package model

import "time"

// AccessCode is a short-lived one-time code scoped to a purpose plus a
// scope key (link token for file access, email for password resets).
// Several live codes may coexist in one scope; consumption flips
// exactly the presented row and leaves siblings alone.
type AccessCode struct {
	ID        int    `gorm:"primaryKey;autoIncrement"`
	Purpose   string `gorm:"index:idx_code_scope"`
	ScopeKey  string `gorm:"index:idx_code_scope"`
	Code      string
	ExpiresAt time.Time
	Used      bool `gorm:"default:false"`
	CreatedAt time.Time
}
