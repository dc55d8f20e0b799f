package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// NewResetToken returns a single-use password-reset token and the hash that
// gets persisted. Only the hash ever touches the database.
func NewResetToken() (raw string, hashed string, err error) {
	buf := make([]byte, 20)

	if _, err = rand.Read(buf); err != nil {
		return "", "", err
	}

	raw = hex.EncodeToString(buf)
	return raw, HashResetToken(raw), nil
}

func HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
