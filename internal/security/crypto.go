package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"mealdiary/pkg/spec"

	"golang.org/x/crypto/pbkdf2"
)

var ErrNotLocker = errors.New("not a mealdiary token locker")

// DeriveKey returns a 32-byte key for a passphrase and salt.
func DeriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, spec.KDFIterations, spec.KeySize, sha256.New)
}

// Encrypt seals data with AES-GCM behind a random nonce.
func Encrypt(data []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, data, nil), nil
}

func Decrypt(data []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return nil, io.ErrUnexpectedEOF
	}
	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

// SaveToken writes the API session token encrypted under passphrase.
// Layout: magic | salt(16) | nonce+ciphertext.
func SaveToken(path, token, passphrase string) error {
	salt := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return err
	}
	sealed, err := Encrypt([]byte(token), DeriveKey(passphrase, salt))
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	out := make([]byte, 0, len(spec.TokenMagic)+len(salt)+len(sealed))
	out = append(out, spec.TokenMagic...)
	out = append(out, salt...)
	out = append(out, sealed...)
	return os.WriteFile(path, out, 0o600)
}

// LoadToken opens a locker written by SaveToken.
func LoadToken(path, passphrase string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	head := len(spec.TokenMagic)
	if len(data) < head+16 || string(data[:head]) != spec.TokenMagic {
		return "", ErrNotLocker
	}
	salt := data[head : head+16]
	plain, err := Decrypt(data[head+16:], DeriveKey(passphrase, salt))
	if err != nil {
		return "", fmt.Errorf("unlock token: %w", err)
	}
	return string(plain), nil
}
