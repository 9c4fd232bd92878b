package service

import (
	"sync"
	"testing"
	"time"

	"secureshare/file-api/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedFile(t *testing.T, db *gorm.DB, ownerID string) *model.File {
	t.Helper()

	f := &model.File{
		ID:            uuid.NewString(),
		UserID:        ownerID,
		RealName:      "report.pdf",
		DecoyName:     "notes.pdf",
		RealKey:       "ref-real",
		DecoyKey:      "ref-decoy",
		EncryptionKey: "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=",
		Size:          42,
		CreatedAt:     time.Now(),
	}
	require.NoError(t, db.Create(f).Error)

	return f
}

func newLinkService(t *testing.T) (*LinkService, *gorm.DB) {
	db := newTestDB(t)
	return &LinkService{DB: db, Argon: testArgon()}, db
}

func TestLinks_CreateRejectsForeignFile(t *testing.T) {
	links, db := newLinkService(t)
	seedUser(t, db, "owner", "owner@example.com")
	file := seedFile(t, db, "owner")

	_, err := links.Create(file.ID, "intruder", "secret-pw", 24, 10)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLinks_CreateHashesPasswordAndGeneratesToken(t *testing.T) {
	links, db := newLinkService(t)
	seedUser(t, db, "owner", "owner@example.com")
	file := seedFile(t, db, "owner")

	link, err := links.Create(file.ID, "owner", "secret-pw", 24, 5)
	require.NoError(t, err)

	assert.Len(t, link.Token, 64, "32 random bytes hex encoded")
	assert.NotContains(t, link.PasswordHash, "secret-pw")
	assert.Contains(t, link.PasswordHash, "$argon2id$")
	assert.Equal(t, 5, link.DownloadLimit)
	assert.True(t, link.Active)
	assert.Zero(t, link.DownloadCount)

	ok, err := links.Argon.VerifyPasswd("secret-pw", link.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLinks_ResolveUnknownToken(t *testing.T) {
	links, _ := newLinkService(t)

	_, err := links.Resolve("no-such-token")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLinks_UsabilityGates(t *testing.T) {
	links, _ := newLinkService(t)

	base := model.ShareLink{
		ExpiresAt:     time.Now().Add(time.Hour),
		DownloadLimit: 3,
		DownloadCount: 0,
		Active:        true,
	}

	usable := base
	assert.NoError(t, links.UsabilityErr(&usable))

	expired := base
	expired.ExpiresAt = time.Now().Add(-time.Second)
	assert.ErrorIs(t, links.UsabilityErr(&expired), ErrLinkExpired)

	// expiry wins regardless of the other fields
	expired.DownloadCount = 99
	expired.Active = false
	assert.ErrorIs(t, links.UsabilityErr(&expired), ErrLinkExpired)

	exhausted := base
	exhausted.DownloadCount = 3
	assert.ErrorIs(t, links.UsabilityErr(&exhausted), ErrLinkExhausted)

	disabled := base
	disabled.Active = false
	assert.ErrorIs(t, links.UsabilityErr(&disabled), ErrLinkDisabled)
}

func TestLinks_RecordDownloadStopsAtLimit(t *testing.T) {
	links, db := newLinkService(t)
	seedUser(t, db, "owner", "owner@example.com")
	file := seedFile(t, db, "owner")

	link, err := links.Create(file.ID, "owner", "secret-pw", 24, 2)
	require.NoError(t, err)

	require.NoError(t, links.RecordDownload(link.Token))
	require.NoError(t, links.RecordDownload(link.Token))
	assert.ErrorIs(t, links.RecordDownload(link.Token), ErrLinkExhausted)

	fresh, err := links.Resolve(link.Token)
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.DownloadCount, "counter never overshoots the limit")
}

func TestLinks_RecordDownloadConcurrentNoOvershoot(t *testing.T) {
	links, db := newLinkService(t)
	seedUser(t, db, "owner", "owner@example.com")
	file := seedFile(t, db, "owner")

	link, err := links.Create(file.ID, "owner", "secret-pw", 24, 1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]error, 2)

	for i := 0; i < 2; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = links.RecordDownload(link.Token)
		}()
	}
	wg.Wait()

	var ok int
	for _, err := range results {
		if err == nil {
			ok++
		}
	}
	assert.Equal(t, 1, ok)

	fresh, err := links.Resolve(link.Token)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.DownloadCount)
}

func TestLinks_DeactivateIsIdempotent(t *testing.T) {
	links, db := newLinkService(t)
	seedUser(t, db, "owner", "owner@example.com")
	file := seedFile(t, db, "owner")

	link, err := links.Create(file.ID, "owner", "secret-pw", 24, 10)
	require.NoError(t, err)

	require.NoError(t, links.Deactivate(link.Token))
	require.NoError(t, links.Deactivate(link.Token))

	fresh, err := links.Resolve(link.Token)
	require.NoError(t, err)
	assert.False(t, fresh.Active)
}

func TestLinks_ListForOwnerJoinsFilename(t *testing.T) {
	links, db := newLinkService(t)
	seedUser(t, db, "owner", "owner@example.com")
	seedUser(t, db, "other", "other@example.com")
	file := seedFile(t, db, "owner")
	foreign := seedFile(t, db, "other")

	_, err := links.Create(file.ID, "owner", "secret-pw", 24, 10)
	require.NoError(t, err)
	_, err = links.Create(foreign.ID, "other", "other-pw", 24, 10)
	require.NoError(t, err)

	owned, err := links.ListForOwner("owner")
	require.NoError(t, err)

	require.Len(t, owned, 1)
	assert.Equal(t, "report.pdf", owned[0].Filename)
	assert.Equal(t, file.ID, owned[0].FileID)
}
