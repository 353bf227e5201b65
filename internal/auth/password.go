package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const pbkdf2Iterations = 100_000

// HashPassword returns a "salt:hash_hex" string, same format and
// iteration count as the original backend's hash_password.
func HashPassword(password string) (string, error) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	saltHex := hex.EncodeToString(salt)
	derived := pbkdf2.Key([]byte(password), []byte(saltHex), pbkdf2Iterations, sha256.Size, sha256.New)
	return saltHex + ":" + hex.EncodeToString(derived), nil
}

// VerifyPassword recomputes the PBKDF2 digest with the stored salt and
// compares in constant time.
func VerifyPassword(password, storedHash string) bool {
	salt, expectedHex, ok := strings.Cut(storedHash, ":")
	if !ok {
		return false
	}
	derived := pbkdf2.Key([]byte(password), []byte(salt), pbkdf2Iterations, sha256.Size, sha256.New)
	expected, err := hex.DecodeString(expectedHex)
	if err != nil {
		return false
	}
	return hmac.Equal(derived, expected)
}

var ErrMalformedHash = errors.New("auth: malformed password hash")
