package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// NewRememberToken returns 16 random bytes, URL-safe base64 without padding.
func NewRememberToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
