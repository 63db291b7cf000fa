package signing

import (
	"context"
	"fmt"
	"time"

	"github.com/adaosanto/sign-pdf/internal/render"
)

// Service contains the signing business logic.
type Service struct {
	Engine      render.Engine
	BaseURL     string
	TokenLength int
}

// Result is the outcome of a successful signing run.
type Result struct {
	Output        []byte
	Token         string
	DigestHex     string
	ValidationURL string
	InputPages    int
	OutputPages   int
}

// Sign marks the document and appends the certificate page. The input bytes
// are hashed before any mark is drawn. No token is minted for documents that
// fail the parse check.
func (s *Service) Sign(ctx context.Context, data []byte, fileName string, meta Metadata) (Result, error) {
	if len(data) == 0 {
		return Result{}, fmt.Errorf("%w: empty document", ErrInvalidInput)
	}

	pages, err := parsePageCount(data)
	if err != nil {
		return Result{}, err
	}

	length := s.TokenLength
	if length <= 0 {
		length = DefaultTokenLength
	}
	token, err := GenerateToken(length)
	if err != nil {
		return Result{}, err
	}

	digest := HashDocument(data)
	validationURL := BuildValidationURL(s.BaseURL, token, digest)

	meta = meta.withDefaults(time.Now())

	in := render.StampInput{
		Token:            token,
		DigestHex:        digest,
		DisplayDigest:    DisplayHash(digest),
		ValidationURL:    validationURL,
		OriginalFileName: fileName,
		SignerName:       meta.Name,
		SignerEmail:      meta.Email,
		SignDate:         meta.Date,
		Reason:           meta.Reason,
		Location:         meta.Location,
		PosX:             meta.Position.X,
		PosY:             meta.Position.Y,
		FontSize:         meta.FontSize,
	}

	out, err := s.Engine.Stamp(ctx, data, in)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrRendering, err)
	}

	return Result{
		Output:        out,
		Token:         token,
		DigestHex:     digest,
		ValidationURL: validationURL,
		InputPages:    pages,
		OutputPages:   pages + 1,
	}, nil
}
