package signing

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
)

// HashDocument returns the lowercase hex SHA-256 digest of the document
// bytes as they were received, before any marks are drawn.
func HashDocument(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// DisplayHash derives the SHA-512 line printed on the certificate page. It
// hashes the hex digest string, not the document bytes.
func DisplayHash(digestHex string) string {
	sum := sha512.Sum512([]byte(digestHex))
	return hex.EncodeToString(sum[:])
}
