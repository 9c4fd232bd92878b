package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgon_HashAndVerify(t *testing.T) {
	a := New()

	hash, err := a.GenerateFromPassword("hunter22")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
	assert.NotContains(t, hash, "hunter22")

	ok, err := a.VerifyPasswd("hunter22", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.VerifyPasswd("hunter23", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgon_SamePasswordDifferentHashes(t *testing.T) {
	a := New()

	h1, err := a.GenerateFromPassword("same password")
	require.NoError(t, err)
	h2, err := a.GenerateFromPassword("same password")
	require.NoError(t, err)

	// fresh salt every time, two hashes are never comparable
	assert.NotEqual(t, h1, h2)
}

func TestArgon_MalformedHash(t *testing.T) {
	a := New()

	_, err := a.VerifyPasswd("pw", "not-a-phc-string")
	assert.Error(t, err)

	_, err = a.VerifyPasswd("pw", "$argon2id$v=19$bogus$salt$hash")
	assert.Error(t, err)
}

func TestGenerateOTP_InRange(t *testing.T) {
	for n := 0; n < 200; n++ {
		otp, err := GenerateOTP()
		require.NoError(t, err)

		require.Len(t, otp, 6)
		assert.GreaterOrEqual(t, otp, "100000")
		assert.LessOrEqual(t, otp, "999999")
	}
}
