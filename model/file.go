// Package model defines database models
package model

import "time"

// File is one upload: a real document and the decoy served in its
// place on a failed password check. Both variants live encrypted in
// the vault under separate object keys, sealed with the same per-file
// encryption key. Rows are immutable after upload.
type File struct {
	ID     string `gorm:"primaryKey" json:"id"`
	UserID string `gorm:"index" json:"-"`

	// Original names shown to the downloader. The decoy keeps its own
	// name so the deception survives a "Save as" dialog
	RealName  string `json:"filename"`
	DecoyName string `json:"decoy_filename"`

	// Vault object keys, not filesystem paths
	RealKey  string `json:"-"`
	DecoyKey string `json:"-"`

	// Per-file AES key, base64. Never leaves the server
	EncryptionKey string `json:"-"`

	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}
