package signing

import (
	"time"
	"unicode/utf16"
)

// ValidationDetails explains the expected token shape to API clients.
type ValidationDetails struct {
	SignatureLength int    `json:"signatureLength"`
	ExpectedLength  int    `json:"expectedLength"`
	Format          string `json:"format"`
}

// ValidationResult is the verdict for a signature token.
type ValidationResult struct {
	Signature   string            `json:"signature"`
	Hash        string            `json:"hash"`
	IsValid     bool              `json:"isValid"`
	ValidatedAt string            `json:"validatedAt"`
	Message     string            `json:"message"`
	Details     ValidationDetails `json:"details"`
}

// Validate checks the token format. It does not verify document integrity;
// only the shape of the token is examined.
func Validate(token, hash string, now time.Time) ValidationResult {
	length := utf16Length(token)
	valid := token != "" && length == DefaultTokenLength

	msg := "Assinatura inválida ou corrompida."
	if valid {
		msg = "Assinatura válida! Este documento é autêntico."
	}

	if hash == "" {
		hash = "N/A"
	}

	return ValidationResult{
		Signature:   token,
		Hash:        hash,
		IsValid:     valid,
		ValidatedAt: now.UTC().Format(time.RFC3339),
		Message:     msg,
		Details: ValidationDetails{
			SignatureLength: length,
			ExpectedLength:  DefaultTokenLength,
			Format:          "URL-safe (A-Z, a-z, 0-9, -, _)",
		},
	}
}

// utf16Length measures a string in UTF-16 code units, so tokens coming from
// clients that count string length that way are judged consistently.
func utf16Length(s string) int {
	n := 0
	for _, r := range s {
		if len(utf16.Encode([]rune{r})) == 2 {
			n += 2
		} else {
			n++
		}
	}
	return n
}
