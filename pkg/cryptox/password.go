package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/pbkdf2"
)

// Configuration for PBKDF2-HMAC-SHA256 hashing. These values are part of the
// stored row format and must not change without a migration.
const (
	iterations = 100_000 // PBKDF2 iteration count
	keyLength  = 32      // Length of the derived key (SHA-256 output size)
	saltLength = 16      // Random bytes before hex encoding
)

// ErrPasswordMismatch is returned by VerifyPassword when the digest differs.
var ErrPasswordMismatch = errors.New("password does not match")

// GenerateSalt returns a new hex encoded salt (32 chars).
func GenerateSalt() (string, error) {
	buf := make([]byte, saltLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// HashPassword derives a hex digest for password with a freshly generated
// salt and returns both.
func HashPassword(password string) (hash string, salt string, err error) {
	salt, err = GenerateSalt()
	if err != nil {
		return "", "", err
	}
	return HashPasswordWithSalt(password, salt), salt, nil
}

// HashPasswordWithSalt derives the hex digest for password using the bytes of
// the salt string (not its decoded form) as the KDF salt.
func HashPasswordWithSalt(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), iterations, keyLength, sha256.New)
	return hex.EncodeToString(key)
}

// VerifyPassword compares a plaintext password against a stored hex digest.
func VerifyPassword(password, storedHash, salt string) error {
	if storedHash == "" || salt == "" {
		return errors.New("invalid hash format: empty hash or salt")
	}

	computed := HashPasswordWithSalt(password, salt)
	if subtle.ConstantTimeCompare([]byte(computed), []byte(storedHash)) == 1 {
		return nil
	}
	return ErrPasswordMismatch
}

// GeneratePassword returns a random alphanumeric password of the given length.
func GeneratePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	if length <= 0 {
		return "", fmt.Errorf("password length must be positive, got %d", length)
	}

	password := make([]byte, length)
	for i := range password {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random password: %w", err)
		}
		password[i] = charset[n.Int64()]
	}
	return string(password), nil
}
