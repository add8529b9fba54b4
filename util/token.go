package util

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateToken returns n bytes from a CSPRNG, hex encoded. Share link
// tokens go through this and nothing else
func GenerateToken(n int) (string, error) {
	b := make([]byte, n)

	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
