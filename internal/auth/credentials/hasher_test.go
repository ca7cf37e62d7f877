package credentials

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, version, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	require.Equal(t, HashVersionBcrypt, version)
	require.NotEqual(t, "correct horse battery", hash)

	require.NoError(t, VerifyPassword(hash, "correct horse battery"))
	require.Error(t, VerifyPassword(hash, "wrong password"))
}

func TestHashPasswordTooShort(t *testing.T) {
	_, _, err := HashPassword("short")
	require.Error(t, err)
}
