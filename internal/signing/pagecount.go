package signing

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// parsePageCount opens the document with a lightweight reader to prove it is
// a usable PDF before any token is minted. The reader panics on some
// malformed inputs, so the panic is folded into the error.
func parsePageCount(data []byte) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			n = 0
			err = fmt.Errorf("%w: %v", ErrMalformedInput, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	n = reader.NumPage()
	if n < 1 {
		return 0, fmt.Errorf("%w: document has no pages", ErrMalformedInput)
	}
	return n, nil
}

// CheckPDF reports the page count of a parseable PDF, or ErrMalformedInput.
func CheckPDF(data []byte) (int, error) {
	return parsePageCount(data)
}
