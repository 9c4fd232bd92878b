package service

import (
	"errors"
	"fmt"

	"secureshare/file-api/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuditService persists the append-only attempt trail and handles the
// owner's view of it. Attempt rows are never mutated after insert
// except to attach notification delivery status.
type AuditService struct {
	DB    *gorm.DB
	Links *LinkService
}

// OwnedAttempt is an attempt row joined with the filename for display
type OwnedAttempt struct {
	model.AccessAttempt
	Filename string `json:"filename"`
}

func (s *AuditService) Record(a *model.AccessAttempt) error {
	if err := s.DB.Create(a).Error; err != nil {
		return fmt.Errorf("failed to record access attempt, %w", err)
	}

	return nil
}

// MarkNotified attaches the delivery outcome to an existing attempt.
// Called from the detached alert task, failures are logged only.
func (s *AuditService) MarkNotified(attemptID string, delivered bool) {
	err := s.DB.
		Model(model.AccessAttempt{}).
		Where("id = ?", attemptID).
		Updates(map[string]any{
			"owner_notified": true,
			"email_sent":     delivered,
		}).
		Error
	if err != nil {
		zap.L().Error("Failed to update attempt notification status",
			zap.Error(err),
			zap.String("attemptID", attemptID))
	}
}

// ListForOwner returns attempts against the owner's files, newest first
func (s *AuditService) ListForOwner(ownerID string) ([]OwnedAttempt, error) {
	var attempts []OwnedAttempt

	err := s.DB.
		Model(model.AccessAttempt{}).
		Select("access_attempts.*, files.real_name AS filename").
		Joins("JOIN files ON files.id = access_attempts.file_id").
		Where("files.user_id = ?", ownerID).
		Order("access_attempts.attempted_at DESC").
		Scan(&attempts).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list access attempts, %w", err)
	}

	return attempts, nil
}

// Block deactivates the link behind an attempt. Fails with
// ErrForbidden when the attempt's file is not owned by ownerID.
func (s *AuditService) Block(ownerID, attemptID string) error {
	var attempt model.AccessAttempt
	err := s.DB.
		Where("id = ?", attemptID).
		First(&attempt).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("failed to look up attempt, %w", err)
	}

	var count int64
	err = s.DB.
		Model(model.File{}).
		Where("id = ? AND user_id = ?", attempt.FileID, ownerID).
		Count(&count).
		Error
	if err != nil {
		return fmt.Errorf("failed to check file ownership, %w", err)
	}

	if count == 0 {
		return ErrForbidden
	}

	return s.Links.Deactivate(attempt.LinkToken)
}
