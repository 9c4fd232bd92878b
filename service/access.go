package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"secureshare/file-api/model"
	"secureshare/file-api/security"
	"secureshare/file-api/storage"
	"secureshare/file-api/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const storageTimeout = 10 * time.Second

// AccessService runs one access attempt end to end: link gates, code
// consumption, the password branch point, variant selection and the
// audit/alert hand-off. It reads link and code state only through the
// atomic operations of LinkService and CodeService.
type AccessService struct {
	DB     *gorm.DB
	Argon  *security.ArgonHash
	Vault  *storage.Vault
	Links  *LinkService
	Codes  *CodeService
	Audit  *AuditService
	Mailer Notifier
}

// CodeRequestReply tells the requester where the code went, not what
// it is
type CodeRequestReply struct {
	MaskedOwner string
	ExpiresIn   int
}

// AccessResult is what a release looks like, real or decoy. The two
// variants are indistinguishable in shape on purpose.
type AccessResult struct {
	Served   string
	Filename string
	Content  []byte
}

// RequestCode issues a one-time code for the link and mails it to the
// file owner. The requester only learns a masked hint of the owner's
// address and the code lifetime.
func (s *AccessService) RequestCode(token string) (*CodeRequestReply, error) {
	link, err := s.Links.Resolve(token)
	if err != nil {
		return nil, err
	}

	if time.Now().After(link.ExpiresAt) {
		return nil, ErrLinkExpired
	}

	if !link.Active {
		return nil, ErrLinkDisabled
	}

	file, owner, err := s.fileAndOwner(link.FileID)
	if err != nil {
		return nil, err
	}

	code, err := s.Codes.Issue(PurposeFileAccess, token)
	if err != nil {
		return nil, err
	}

	// Delivery trouble is the owner's problem to notice, not the
	// requester's to probe
	subject, body := accessCodeMail(code.Code)
	if !s.Mailer.Send(owner.Email, subject, body) {
		zap.L().Warn("Failed to deliver access code to owner",
			zap.String("file", file.ID),
			zap.String("owner", owner.ID))
	}

	return &CodeRequestReply{
		MaskedOwner: util.MaskEmail(owner.Email),
		ExpiresIn:   int(CodeTTL.Seconds()),
	}, nil
}

// VerifyAndAccess runs the ordered gates for one attempt. Every gate
// failure after link resolution still writes an attempt row with the
// fields determined so far; a release (either variant) writes exactly
// one row and enqueues exactly one owner alert.
func (s *AccessService) VerifyAndAccess(ctx context.Context, token, code, password, ip string) (*AccessResult, error) {
	link, err := s.Links.Resolve(token)
	if err != nil {
		return nil, err
	}

	attempt := &model.AccessAttempt{
		ID:          uuid.NewString(),
		FileID:      link.FileID,
		LinkToken:   token,
		AttemptedAt: time.Now(),
		IPAddress:   ip,
	}

	if err := s.Links.UsabilityErr(link); err != nil {
		s.recordRejection(attempt)
		return nil, err
	}

	if err := s.Codes.Consume(PurposeFileAccess, token, code); err != nil {
		s.recordRejection(attempt)
		return nil, err
	}
	attempt.CodeVerified = true

	file, owner, err := s.fileAndOwner(link.FileID)
	if err != nil {
		s.recordRejection(attempt)
		return nil, err
	}

	match, err := s.Argon.VerifyPasswd(password, link.PasswordHash)
	if err != nil {
		// Corrupt hash is an internal fault, never a decoy trigger
		s.recordRejection(attempt)
		return nil, fmt.Errorf("failed to verify link password, %w", err)
	}
	attempt.PasswordCorrect = match

	key, err := base64.StdEncoding.DecodeString(file.EncryptionKey)
	if err != nil {
		s.recordRejection(attempt)
		return nil, fmt.Errorf("%w: bad file key", ErrStorageUnavailable)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, storageTimeout)
	defer cancel()

	var result *AccessResult

	if match {
		// The quota check and the increment are one atomic statement;
		// a concurrent winner leaves this request with ErrLinkExhausted
		if err := s.Links.RecordDownload(token); err != nil {
			s.recordRejection(attempt)
			return nil, err
		}

		content, err := s.Vault.Get(fetchCtx, file.RealKey, key)
		if err != nil {
			s.recordRejection(attempt)
			return nil, ErrStorageUnavailable
		}

		attempt.Served = model.ServedReal
		result = &AccessResult{
			Served:   model.ServedReal,
			Filename: file.RealName,
			Content:  content,
		}
	} else {
		// Decoy release: same response shape, own filename, no quota
		content, err := s.Vault.Get(fetchCtx, file.DecoyKey, key)
		if err != nil {
			s.recordRejection(attempt)
			return nil, ErrStorageUnavailable
		}

		verification, err := security.GenerateOTP()
		if err != nil {
			verification = "000000"
		}

		attempt.Served = model.ServedDecoy
		attempt.VerificationCode = verification
		result = &AccessResult{
			Served:   model.ServedDecoy,
			Filename: file.DecoyName,
			Content:  content,
		}
	}

	if err := s.Audit.Record(attempt); err != nil {
		// The release decision is already made; losing the audit row
		// must not release bytes, so this still fails closed
		return nil, err
	}

	s.notifyAsync(attempt, file, owner)

	if attempt.Served == model.ServedDecoy {
		zap.L().Warn("Intrusion detected, decoy served",
			zap.String("file", file.ID),
			zap.String("attemptID", attempt.ID),
			zap.String("verificationCode", attempt.VerificationCode))
	}

	return result, nil
}

// notifyAsync fires the owner alert on its own goroutine. The
// requester's response never waits on it and its outcome only lands on
// the attempt row.
func (s *AccessService) notifyAsync(attempt *model.AccessAttempt, file *model.File, owner *model.User) {
	var subject, body string
	if attempt.Served == model.ServedReal {
		subject, body = authorizedAlertMail(file.RealName, attempt.AttemptedAt)
	} else {
		subject, body = intrusionAlertMail(file.RealName, attempt.AttemptedAt, attempt.VerificationCode)
	}

	go func() {
		delivered := s.Mailer.Send(owner.Email, subject, body)
		s.Audit.MarkNotified(attempt.ID, delivered)
	}()
}

func (s *AccessService) recordRejection(attempt *model.AccessAttempt) {
	if err := s.Audit.Record(attempt); err != nil {
		zap.L().Error("Failed to record rejected attempt",
			zap.Error(err),
			zap.String("attemptID", attempt.ID))
	}
}

func (s *AccessService) fileAndOwner(fileID string) (*model.File, *model.User, error) {
	var file model.File
	err := s.DB.
		Where("id = ?", fileID).
		First(&file).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}

		return nil, nil, fmt.Errorf("failed to look up file, %w", err)
	}

	var owner model.User
	err = s.DB.
		Where("id = ?", file.UserID).
		First(&owner).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}

		return nil, nil, fmt.Errorf("failed to look up file owner, %w", err)
	}

	return &file, &owner, nil
}
