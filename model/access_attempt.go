package model

import "time"

// Served values for AccessAttempt
const (
	ServedReal  = "real"
	ServedDecoy = "decoy"
)

// AccessAttempt is an append-only audit row, one per attempt. Only the
// notification delivery fields are ever updated after insert, from the
// detached alert task.
type AccessAttempt struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	FileID      string    `gorm:"index" json:"file_id"`
	LinkToken   string    `gorm:"index" json:"link_token"`
	AttemptedAt time.Time `gorm:"index" json:"attempted_at"`
	IPAddress   string    `json:"ip_address"`

	CodeVerified    bool   `json:"code_verified"`
	PasswordCorrect bool   `json:"password_correct"`
	Served          string `json:"file_type_served"`

	// Random code quoted in the intrusion alert so the owner can match
	// the mail to this row. Never validated against anything
	VerificationCode string `json:"verification_code,omitempty"`

	OwnerNotified bool `json:"owner_notified"`
	EmailSent     bool `json:"email_sent"`
}
