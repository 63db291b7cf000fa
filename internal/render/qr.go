package render

import (
	"fmt"

	qrcode "github.com/skip2/go-qrcode"
)

// qrPNG encodes the content as a medium error-correction QR code PNG.
func qrPNG(content string) ([]byte, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, 200)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}
