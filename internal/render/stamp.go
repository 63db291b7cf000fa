package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// PDFEngine implements Engine on top of pdfcpu and gofpdf.
type PDFEngine struct {
	conf *model.Configuration
	now  func() time.Time
}

// NewEngine creates a ready-to-use PDF engine.
func NewEngine() *PDFEngine {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFEngine{conf: conf, now: time.Now}
}

// PageCount reports the number of pages in the document.
func (e *PDFEngine) PageCount(data []byte) (int, error) {
	n, err := pdfapi.PageCount(bytes.NewReader(data), e.conf)
	if err != nil {
		return 0, fmt.Errorf("page count: %w", err)
	}
	return n, nil
}

// Stamp marks every page with the token line and page marker, adds the
// signature block to the first page and appends the certificate page.
func (e *PDFEngine) Stamp(ctx context.Context, data []byte, in StampInput) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pages, err := e.PageCount(data)
	if err != nil {
		return nil, err
	}
	if pages == 0 {
		return nil, fmt.Errorf("document has no pages")
	}

	stamped, err := e.stampTokenLine(data, in.Token)
	if err != nil {
		return nil, err
	}

	stamped, err = e.stampPageMarkers(stamped, pages)
	if err != nil {
		return nil, err
	}

	stamped, err = e.stampSignatureBlock(stamped, in)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cert, err := e.renderCertificate(in, pages)
	if err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}

	var out bytes.Buffer
	readers := []io.ReadSeeker{bytes.NewReader(stamped), bytes.NewReader(cert)}
	if err := pdfapi.MergeRaw(readers, &out, false, e.conf); err != nil {
		return nil, fmt.Errorf("merge certificate page: %w", err)
	}
	return out.Bytes(), nil
}

// stampTokenLine writes the token near the bottom-left of every page.
func (e *PDFEngine) stampTokenLine(data []byte, token string) ([]byte, error) {
	text := fmt.Sprintf("Assinatura Digital: %s", token)
	desc := "fontname:Helvetica, points:9, scale:1 abs, pos:bl, off:20 30, rot:0, op:1, fillcolor:0.3 0.3 0.3"

	wm, err := pdfcpu.ParseTextWatermarkDetails(text, desc, true, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("parse token stamp: %w", err)
	}

	var out bytes.Buffer
	if err := pdfapi.AddWatermarks(bytes.NewReader(data), &out, nil, wm, e.conf); err != nil {
		return nil, fmt.Errorf("stamp token line: %w", err)
	}
	return out.Bytes(), nil
}

// stampPageMarkers writes "Pagina i de n" below the token line, one marker
// per page.
func (e *PDFEngine) stampPageMarkers(data []byte, pages int) ([]byte, error) {
	desc := "fontname:Helvetica, points:7, scale:1 abs, pos:bl, off:20 15, rot:0, op:1, fillcolor:0.5 0.5 0.5"

	markers := make(map[int]*model.Watermark, pages)
	for i := 1; i <= pages; i++ {
		text := fmt.Sprintf("Pagina %d de %d", i, pages)
		wm, err := pdfcpu.ParseTextWatermarkDetails(text, desc, true, types.POINTS)
		if err != nil {
			return nil, fmt.Errorf("parse page marker: %w", err)
		}
		markers[i] = wm
	}

	var out bytes.Buffer
	if err := pdfapi.AddWatermarksMap(bytes.NewReader(data), &out, markers, e.conf); err != nil {
		return nil, fmt.Errorf("stamp page markers: %w", err)
	}
	return out.Bytes(), nil
}

// stampSignatureBlock writes the signer details onto the first page at the
// requested position, measured from the top-left corner.
func (e *PDFEngine) stampSignatureBlock(data []byte, in StampInput) ([]byte, error) {
	shortHash := in.DigestHex
	if len(shortHash) > 16 {
		shortHash = shortHash[:16] + "..."
	}

	text := fmt.Sprintf("Assinado por: %s\nData: %s\nMotivo: %s\nHash: %s",
		in.SignerName, in.SignDate, in.Reason, shortHash)

	points := in.FontSize
	if points <= 0 {
		points = 12
	}
	desc := fmt.Sprintf(
		"fontname:Helvetica, points:%.0f, scale:1 abs, pos:tl, off:%.0f -%.0f, rot:0, op:1, fillcolor:0 0 0, bgcolor:0.95 0.95 0.95, border:2 round 0 0 0, margins:10",
		points, in.PosX, in.PosY)

	wm, err := pdfcpu.ParseTextWatermarkDetails(text, desc, true, types.POINTS)
	if err != nil {
		return nil, fmt.Errorf("parse signature block: %w", err)
	}

	var out bytes.Buffer
	if err := pdfapi.AddWatermarks(bytes.NewReader(data), &out, []string{"1"}, wm, e.conf); err != nil {
		return nil, fmt.Errorf("stamp signature block: %w", err)
	}
	return out.Bytes(), nil
}

var _ Engine = (*PDFEngine)(nil)
