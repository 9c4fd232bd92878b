package service

import (
	"errors"
	"fmt"
	"time"

	"secureshare/file-api/model"
	"secureshare/file-api/security"
	"secureshare/file-api/util"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const linkTokenBytes = 32 // 256 bits

// LinkService owns the share link lifecycle. It is the only component
// that mutates link rows; the access engine goes through its atomic
// operations and never touches fields directly.
type LinkService struct {
	DB    *gorm.DB
	Argon *security.ArgonHash
}

// OwnedLink is a link row joined with the filename for dashboards
type OwnedLink struct {
	model.ShareLink
	Filename string `json:"filename"`
}

// Create registers a new share link for a file owned by ownerID. The
// link password is an independent secret and gets its own argon2 hash,
// it is never related to the owner's account password.
func (s *LinkService) Create(fileID, ownerID, password string, expiryHours, downloadLimit int) (*model.ShareLink, error) {
	var file model.File
	err := s.DB.
		Where("id = ? AND user_id = ?", fileID, ownerID).
		First(&file).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to look up file, %w", err)
	}

	if expiryHours <= 0 {
		expiryHours = 24
	}

	if downloadLimit <= 0 {
		downloadLimit = 10
	}

	hash, err := s.Argon.GenerateFromPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash link password, %w", err)
	}

	token, err := util.GenerateToken(linkTokenBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to generate link token, %w", err)
	}

	link := &model.ShareLink{
		ID:            uuid.NewString(),
		FileID:        fileID,
		Token:         token,
		PasswordHash:  hash,
		ExpiresAt:     time.Now().Add(time.Duration(expiryHours) * time.Hour),
		DownloadLimit: downloadLimit,
		DownloadCount: 0,
		Active:        true,
		CreatedAt:     time.Now(),
	}

	if err := s.DB.Create(link).Error; err != nil {
		return nil, fmt.Errorf("failed to store share link, %w", err)
	}

	return link, nil
}

func (s *LinkService) Resolve(token string) (*model.ShareLink, error) {
	var link model.ShareLink
	err := s.DB.
		Where("token = ?", token).
		First(&link).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("failed to resolve link, %w", err)
	}

	return &link, nil
}

// UsabilityErr evaluates the usability predicate against the current
// wall clock. Returns nil for a usable link, otherwise the distinct
// gate error so the caller can render a specific message.
func (s *LinkService) UsabilityErr(link *model.ShareLink) error {
	if time.Now().After(link.ExpiresAt) {
		return ErrLinkExpired
	}

	if link.DownloadCount >= link.DownloadLimit {
		return ErrLinkExhausted
	}

	if !link.Active {
		return ErrLinkDisabled
	}

	return nil
}

// RecordDownload increments the download counter. Usability is
// re-checked inside the same UPDATE, so two concurrent correct-password
// requests can never push the counter past the limit; the loser of the
// race gets ErrLinkExhausted.
func (s *LinkService) RecordDownload(token string) error {
	tx := s.DB.
		Model(model.ShareLink{}).
		Where("token = ? AND active = ? AND download_count < download_limit AND expires_at > ?",
			token, true, time.Now()).
		Update("download_count", gorm.Expr("download_count + 1"))
	if tx.Error != nil {
		return fmt.Errorf("failed to record download, %w", tx.Error)
	}

	if tx.RowsAffected == 0 {
		return ErrLinkExhausted
	}

	return nil
}

// Deactivate flips the active flag off. Idempotent, blocking an
// already blocked link is fine.
func (s *LinkService) Deactivate(token string) error {
	err := s.DB.
		Model(model.ShareLink{}).
		Where("token = ?", token).
		Update("active", false).
		Error
	if err != nil {
		return fmt.Errorf("failed to deactivate link, %w", err)
	}

	return nil
}

// ListForOwner returns all links for files owned by ownerID, newest
// first, joined with the real filename for display
func (s *LinkService) ListForOwner(ownerID string) ([]OwnedLink, error) {
	var links []OwnedLink

	err := s.DB.
		Model(model.ShareLink{}).
		Select("share_links.*, files.real_name AS filename").
		Joins("JOIN files ON files.id = share_links.file_id").
		Where("files.user_id = ?", ownerID).
		Order("share_links.created_at DESC").
		Scan(&links).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list share links, %w", err)
	}

	return links, nil
}
