package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"time"
)

// HashPassword hashes a password with the configured static salt,
// SHA-256, hex encoded. No per-user salt and no iterated KDF; stored
// hashes stay compatible across deployments sharing the salt.
func HashPassword(password, salt string) string {
	sum := sha256.Sum256([]byte(password + salt))
	return hex.EncodeToString(sum[:])
}

// CheckPassword reports whether the password matches the stored hash.
func CheckPassword(hash, password, salt string) bool {
	computed := HashPassword(password, salt)
	return subtle.ConstantTimeCompare([]byte(hash), []byte(computed)) == 1
}

// NewToken returns a 32-byte random session token, hex encoded.
// Tokens are opaque to clients and only meaningful against the
// session tables server-side.
func NewToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: token generation failed: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Expired reports whether a session expiry has passed. An expired
// session is treated identically to a missing one.
func Expired(expiresAt, now time.Time) bool {
	return !expiresAt.After(now)
}
