package signing

import (
	"fmt"
	"strings"
)

// shortHashLen is how much of the digest is embedded in validation URLs.
const shortHashLen = 16

// BuildValidationURL assembles the public URL encoded into the QR code.
// Only a prefix of the digest travels in the URL.
func BuildValidationURL(baseURL, token, digestHex string) string {
	base := strings.TrimRight(baseURL, "/")
	short := digestHex
	if len(short) > shortHashLen {
		short = short[:shortHashLen]
	}
	return fmt.Sprintf("%s/validate?signature=%s&hash=%s", base, token, short)
}
