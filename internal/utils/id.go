package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateAPIKey creates a cryptographically secure opaque key, returned as
// a hex string twice the byte length (32 bytes gives the 64-char project key).
func GenerateAPIKey(length int) (string, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
