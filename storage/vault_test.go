package storage

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVault(t *testing.T) *Vault {
	t.Helper()

	v, err := NewVault(t.TempDir())
	require.NoError(t, err)

	return v
}

func TestVault_PutGetRoundtrip(t *testing.T) {
	v := newTestVault(t)

	key, err := GenerateKey()
	require.NoError(t, err)

	content := []byte("confidential bytes")
	require.NoError(t, v.Put("obj1", content, key))

	got, err := v.Get(context.Background(), "obj1", key)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestVault_WrongKeyFails(t *testing.T) {
	v := newTestVault(t)

	key, err := GenerateKey()
	require.NoError(t, err)
	other, err := GenerateKey()
	require.NoError(t, err)

	require.NoError(t, v.Put("obj1", []byte("data"), key))

	_, err = v.Get(context.Background(), "obj1", other)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestVault_NothingStoredInPlaintext(t *testing.T) {
	v := newTestVault(t)

	key, err := GenerateKey()
	require.NoError(t, err)

	content := []byte("this must never hit disk readable")
	require.NoError(t, v.Put("obj1", content, key))

	raw, err := os.ReadFile(v.path("obj1"))
	require.NoError(t, err)
	assert.False(t, bytes.Contains(raw, content))
}

func TestVault_MissingObject(t *testing.T) {
	v := newTestVault(t)

	key, err := GenerateKey()
	require.NoError(t, err)

	_, err = v.Get(context.Background(), "ghost", key)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestVault_ExpiredContextFailsClosed(t *testing.T) {
	v := newTestVault(t)

	key, err := GenerateKey()
	require.NoError(t, err)
	require.NoError(t, v.Put("obj1", []byte("data"), key))

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err = v.Get(ctx, "obj1", key)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestVault_DeleteIsIdempotent(t *testing.T) {
	v := newTestVault(t)

	key, err := GenerateKey()
	require.NoError(t, err)
	require.NoError(t, v.Put("obj1", []byte("data"), key))

	require.NoError(t, v.Delete("obj1"))
	require.NoError(t, v.Delete("obj1"))

	_, err = v.Get(context.Background(), "obj1", key)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestVault_RefIsNotAPath(t *testing.T) {
	v := newTestVault(t)

	key, err := GenerateKey()
	require.NoError(t, err)

	require.NoError(t, v.Put("../../escape", []byte("data"), key))

	// the object is reachable under the sanitized ref, nothing was
	// written outside the vault directory
	got, err := v.Get(context.Background(), "escape", key)
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), got)
}
