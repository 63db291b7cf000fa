package signing

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// DefaultTokenLength is the canonical signature token length.
const DefaultTokenLength = 32

// GenerateToken creates a random URL-safe signature token of the requested
// length. The alphabet is A-Z, a-z, 0-9, - and _ with no padding.
func GenerateToken(length int) (string, error) {
	if length <= 0 {
		length = DefaultTokenLength
	}

	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	token := base64.RawURLEncoding.EncodeToString(buf)
	return token[:length], nil
}
