package service

import (
	"time"

	"secureshare/file-api/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CodeCleanup attaches a ticker that periodically deletes spent and
// long-expired one-time codes. Expired rows are harmless to
// correctness (consumption checks expiry itself) so this only keeps
// the table small.
func CodeCleanup(t time.Duration, db *gorm.DB) {
	ticker := time.NewTicker(t)

	zap.L().Debug("Code cleanup attached", zap.Duration("tick_every", t))

	go func() {
		for range ticker.C {
			err := db.
				Where("used = ? OR expires_at < ?", true, time.Now().Add(-24*time.Hour)).
				Delete(model.AccessCode{}).
				Error
			if err != nil {
				zap.L().Error("Failed to clean up old codes", zap.Error(err))
			}
		}
	}()
}
