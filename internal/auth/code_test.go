package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVerificationCode(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		code, err := GenerateVerificationCode()
		require.NoError(t, err)
		require.Len(t, code, VerificationCodeLength)
		for _, ch := range code {
			assert.True(t, strings.ContainsRune(codeAlphabet, ch), "unexpected character %q", ch)
		}
		seen[code] = struct{}{}
	}
	// 100 draws from a 32^6 space should not all collide.
	assert.Greater(t, len(seen), 90)
}

func TestCodeAlphabetExcludesAmbiguousGlyphs(t *testing.T) {
	for _, ch := range "0O1I" {
		assert.False(t, strings.ContainsRune(codeAlphabet, ch))
	}
	assert.Len(t, codeAlphabet, 32)
}

func TestGenerateResetToken(t *testing.T) {
	first, err := GenerateResetToken()
	require.NoError(t, err)
	second, err := GenerateResetToken()
	require.NoError(t, err)

	assert.Len(t, first, 32) // 128 bits as hex
	assert.NotEqual(t, first, second)
}
