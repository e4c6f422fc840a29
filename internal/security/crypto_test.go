package security

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecrypt(t *testing.T) {
	key := DeriveKey("pass", []byte("salt"))
	require.Len(t, key, 32)

	sealed, err := Encrypt([]byte("hello"), key)
	require.NoError(t, err)

	plain, err := Decrypt(sealed, key)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(plain))

	_, err = Decrypt(sealed, DeriveKey("other", []byte("salt")))
	assert.Error(t, err)

	_, err = Decrypt([]byte{1, 2}, key)
	assert.Error(t, err)
}

func TestTokenLocker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.dat")

	require.NoError(t, SaveToken(path, "tok_abc123", "secret"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	tok, err := LoadToken(path, "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok_abc123", tok)

	_, err = LoadToken(path, "wrong")
	assert.Error(t, err)
}

func TestLoadToken_NotLocker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.dat")
	require.NoError(t, os.WriteFile(path, []byte("HRDXBF02 something else entirely"), 0o600))

	_, err := LoadToken(path, "secret")
	assert.ErrorIs(t, err, ErrNotLocker)

	_, err = LoadToken(filepath.Join(t.TempDir(), "missing"), "secret")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
