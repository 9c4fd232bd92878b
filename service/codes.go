package service

import (
	"fmt"
	"time"

	"secureshare/file-api/model"
	"secureshare/file-api/security"

	"gorm.io/gorm"
)

// Code purposes. The scope key is the link token for file access and
// the account email for password resets.
const (
	PurposeFileAccess    = "file_access"
	PurposePasswordReset = "password_reset"
)

const CodeTTL = 10 * time.Minute

// CodeService issues and consumes one-time codes. Several live codes
// may exist per scope (repeated requests); Consume matches the
// presented value and flips only that row.
type CodeService struct {
	DB *gorm.DB
}

// Issue generates a fresh 6-digit code for the scope and persists it
// with a 10 minute expiry. The code goes to the authorized party
// out-of-band, never to the requester.
func (s *CodeService) Issue(purpose, scopeKey string) (*model.AccessCode, error) {
	otp, err := security.GenerateOTP()
	if err != nil {
		return nil, fmt.Errorf("failed to generate code, %w", err)
	}

	code := &model.AccessCode{
		Purpose:   purpose,
		ScopeKey:  scopeKey,
		Code:      otp,
		ExpiresAt: time.Now().Add(CodeTTL),
		Used:      false,
		CreatedAt: time.Now(),
	}

	if err := s.DB.Create(code).Error; err != nil {
		return nil, fmt.Errorf("failed to store code, %w", err)
	}

	return code, nil
}

// Consume marks the presented code used. The check and the flip are a
// single guarded UPDATE so two requests racing on the same code see
// exactly one success. Returns ErrCodeExpired when the code matched
// but is past its expiry, ErrCodeInvalid otherwise.
func (s *CodeService) Consume(purpose, scopeKey, value string) error {
	now := time.Now()

	tx := s.DB.
		Model(model.AccessCode{}).
		Where("purpose = ? AND scope_key = ? AND code = ? AND used = ? AND expires_at >= ?",
			purpose, scopeKey, value, false, now).
		Update("used", true)
	if tx.Error != nil {
		return fmt.Errorf("failed to consume code, %w", tx.Error)
	}

	if tx.RowsAffected == 1 {
		return nil
	}

	// Distinguish an expired code from a wrong or spent one, the
	// requester gets different messages
	var expired int64
	err := s.DB.
		Model(model.AccessCode{}).
		Where("purpose = ? AND scope_key = ? AND code = ? AND used = ? AND expires_at < ?",
			purpose, scopeKey, value, false, now).
		Count(&expired).
		Error
	if err != nil {
		return fmt.Errorf("failed to check code expiry, %w", err)
	}

	if expired > 0 {
		return ErrCodeExpired
	}

	return ErrCodeInvalid
}
