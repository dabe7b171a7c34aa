package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// TokenBytes is the entropy of generated one-time tokens (256 bits)
const TokenBytes = 32

// GenerateToken returns TokenBytes of crypto random data, hex encoded
func GenerateToken() (string, error) {
	tokenBytes := make([]byte, TokenBytes)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(tokenBytes), nil
}
