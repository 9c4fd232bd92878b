package service

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"secureshare/file-api/model"
	"secureshare/file-api/security"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// One connection keeps concurrent test goroutines off SQLITE_BUSY
	// while still exercising the guarded UPDATEs
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		model.User{},
		model.File{},
		model.ShareLink{},
		model.AccessCode{},
		model.AccessAttempt{},
	))

	return db
}

// weak argon parameters so tests stay fast
func testArgon() *security.ArgonHash {
	return &security.ArgonHash{
		Memory:      8 * 1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type fakeNotifier struct {
	mu      sync.Mutex
	deliver bool
	sent    []sentMail
}

func (f *fakeNotifier) Send(to, subject, body string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sent = append(f.sent, sentMail{To: to, Subject: subject, Body: body})
	return f.deliver
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.sent)
}

func (f *fakeNotifier) last() sentMail {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.sent[len(f.sent)-1]
}

func seedUser(t *testing.T, db *gorm.DB, id, email string) *model.User {
	t.Helper()

	u := &model.User{
		ID:           id,
		Email:        email,
		Name:         "Test User",
		PasswordHash: "$argon2id$v=19$m=8192,t=1,p=1$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA",
		CreatedAt:    time.Now(),
	}
	require.NoError(t, db.Create(u).Error)

	return u
}
