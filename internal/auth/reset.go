package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// ResetTokenTTL is how long a password reset token stays valid.
const ResetTokenTTL = time.Hour

// resetTokenLen is the random token size in bytes (64 hex chars).
const resetTokenLen = 32

// GenerateResetToken creates a password reset token. The plaintext goes
// into the email link; only the hash is stored.
func GenerateResetToken() (plaintext, hash string, err error) {
	buf := make([]byte, resetTokenLen)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generate reset token: %w", err)
	}
	plaintext = hex.EncodeToString(buf)
	return plaintext, HashToken(plaintext), nil
}

// HashToken returns the storage form of a reset token. SHA-256 is enough
// here: the token itself is high-entropy random data, unlike a password.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
