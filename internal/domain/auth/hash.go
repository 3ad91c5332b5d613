package auth

import (
	"crypto/rand"
	"crypto/sha1"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// Key-derivation parameters. Fixed by the stored-credential format: changing
// any of them invalidates every existing hash.
const (
	saltBytes  = 16
	keyBytes   = 16
	iterations = 65536
)

// newSalt returns a fresh random salt.
func newSalt() ([]byte, error) {
	salt := make([]byte, saltBytes)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// deriveKey computes the PBKDF2-HMAC-SHA1 hash of the password under salt.
func deriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, iterations, keyBytes, sha1.New)
}
