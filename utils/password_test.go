package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePassword_LengthAndAlphabet(t *testing.T) {
	password, err := GeneratePassword()
	require.NoError(t, err)
	assert.Len(t, password, PasswordLength)

	for _, r := range password {
		assert.True(t, strings.ContainsRune(passwordChars, r),
			"unexpected character %q in generated password", r)
	}
}

func TestGeneratePassword_NotRepeating(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 32; i++ {
		password, err := GeneratePassword()
		require.NoError(t, err)
		assert.False(t, seen[password], "password repeated after %d draws", i)
		seen[password] = true
	}
}
