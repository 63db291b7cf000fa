// Package render draws signature marks onto PDF documents and produces the
// appended certificate page.
package render

import "context"

// StampInput carries everything the engine needs to mark a document.
type StampInput struct {
	Token            string
	DigestHex        string
	DisplayDigest    string
	ValidationURL    string
	OriginalFileName string

	SignerName  string
	SignerEmail string
	SignDate    string
	Reason      string
	Location    string

	PosX     float64
	PosY     float64
	FontSize float64
}

// Engine renders signature marks into PDF bytes.
type Engine interface {
	// PageCount reports the number of pages in the document.
	PageCount(data []byte) (int, error)
	// Stamp marks every page, adds the signature block to the first page
	// and appends a certificate page. It returns the complete new document.
	Stamp(ctx context.Context, data []byte, in StampInput) ([]byte, error)
}
