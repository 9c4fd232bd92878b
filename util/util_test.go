package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken_LengthAndUniqueness(t *testing.T) {
	t1, err := GenerateToken(32)
	require.NoError(t, err)
	t2, err := GenerateToken(32)
	require.NoError(t, err)

	assert.Len(t, t1, 64)
	assert.NotEqual(t, t1, t2)
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "own***@example.com", MaskEmail("owner@example.com"))
	assert.Equal(t, "ab***@x.io", MaskEmail("ab@x.io"))
	assert.Equal(t, "***", MaskEmail("not-an-email"))
	assert.Equal(t, "***", MaskEmail(""))
}

func TestRandStr(t *testing.T) {
	s := RandStr(10)
	assert.Len(t, s, 10)
}
