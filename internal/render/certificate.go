package render

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
)

// A4 page size in points.
const (
	pageWidth  = 595.28
	pageHeight = 841.89
	margin     = 10.0
)

type opKind int

const (
	opText opKind = iota
	opLine
	opRect
	opImage
)

// drawOp is one drawing instruction for the certificate page. Coordinates
// are in points, measured from the top-left corner.
type drawOp struct {
	kind opKind

	text string
	x, y float64
	size float64
	bold bool
	gray int

	x2, y2 float64

	img  []byte
	w, h float64
}

func text(x, y float64, size float64, bold bool, gray int, s string) drawOp {
	return drawOp{kind: opText, x: x, y: y, size: size, bold: bold, gray: gray, text: s}
}

func divider(y float64) drawOp {
	return drawOp{kind: opLine, x: margin + 20, y: y, x2: pageWidth - margin - 20, y2: y, gray: 230}
}

// renderCertificate builds the certificate page layout and renders it to a
// single-page PDF.
func (e *PDFEngine) renderCertificate(in StampInput, documentPages int) ([]byte, error) {
	qr, err := qrPNG(in.ValidationURL)
	if err != nil {
		return nil, err
	}
	ops := certificateLayout(in, documentPages, qr, e.now())
	return renderOps(ops)
}

// certificateLayout lays the certificate out as a flat list of drawing
// instructions.
func certificateLayout(in StampInput, documentPages int, qr []byte, now time.Time) []drawOp {
	docUUID := uuid.NewString()
	date := ptBRDate(now)
	clock := now.Format("15:04:05")
	stampedAt := fmt.Sprintf("%s, %s", date, clock)

	title := in.OriginalFileName
	if title == "" {
		title = "Documento PDF"
	}

	left := margin + 20

	ops := []drawOp{
		{kind: opRect, x: margin, y: margin, w: pageWidth - 2*margin, h: pageHeight - 2*margin, gray: 230},

		text(pageWidth/2-150, 40, 12, false, 128,
			fmt.Sprintf("%d paginas - Datas e horarios baseados em Brasilia, Brasil", documentPages+1)),
		text(pageWidth/2-150, 52, 12, true, 128, "Sincronizado com o NTP.br e Observatorio Nacional (ON)"),
		text(pageWidth/2-150, 64, 10, false, 128, fmt.Sprintf("Gerado em %s", stampedAt)),
		divider(90),

		text(left, 145, 18, true, 51, title),
		text(left, 162, 12, false, 77, fmt.Sprintf("Codigo do documento %s", docUUID)),
		{kind: opImage, img: qr, x: pageWidth - margin - 90, y: 105, w: 70, h: 70},
		divider(195),

		text(left, 222, 16, true, 51, "Assinaturas"),
		text(left+10, 248, 12, true, 0, fmt.Sprintf("[OK] %s", in.SignerName)),
		text(left+40, 263, 10, false, 128, in.SignerEmail),
		text(left+40, 276, 9, false, 153, fmt.Sprintf("Assinado em: %s às %s", in.SignDate, clock)),
		divider(296),

		text(left, 322, 16, true, 51, "Registro de eventos"),
	}

	events := []struct {
		action  string
		details string
	}{
		{
			action:  fmt.Sprintf("Documento %s criado por %s", docUUID, in.SignerName),
			details: fmt.Sprintf("UUID: %s | Email: %s", uuid.NewString(), in.SignerEmail),
		},
		{
			action:  fmt.Sprintf("Assinaturas iniciadas por %s", in.SignerName),
			details: fmt.Sprintf("UUID: %s | Email: %s", uuid.NewString(), in.SignerEmail),
		},
		{
			action:  fmt.Sprintf("%s Assinou", in.SignerName),
			details: fmt.Sprintf("Email: %s | Local: %s", in.SignerEmail, in.Location),
		},
	}

	y := 348.0
	for _, ev := range events {
		ops = append(ops,
			text(left, y, 9, true, 0, stampedAt),
			text(left, y+13, 9, false, 0, ev.action),
			text(left, y+25, 8, false, 102, ev.details),
		)
		y += 48
	}

	ops = append(ops,
		divider(y),

		text(left, y+26, 10, true, 51, "Hash do documento original"),
		text(left, y+40, 8, false, 0, fmt.Sprintf("SHA256: %s", in.DigestHex)),
		text(left, y+52, 6, false, 0, fmt.Sprintf("SHA512: %s", in.DisplayDigest)),
		text(left, y+78, 14, false, 102, "Esse log pertence unica e exclusivamente aos documentos de hash acima"),
		divider(y+92),

		text(left+50, y+118, 12, true, 0, "Este documento esta assinado e certificado pela FluentSign"),
		text(left+50, y+133, 12, false, 0, "Integridade certificada no padrao ICP-BRASIL"),
		text(left+50, y+148, 12, false, 0, "Assinaturas eletronicas e fisicas tem igual validade legal,"),
		text(left+50, y+163, 12, false, 0, "conforme MP 2.200-2/2001 e Lei 14.063/2020."),
	)

	return ops
}

// renderOps draws the instruction list onto a fresh A4 page.
func renderOps(ops []drawOp) ([]byte, error) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	imgSeq := 0
	for _, op := range ops {
		switch op.kind {
		case opText:
			style := ""
			if op.bold {
				style = "B"
			}
			pdf.SetFont("Helvetica", style, op.size)
			pdf.SetTextColor(op.gray, op.gray, op.gray)
			pdf.Text(op.x, op.y, tr(op.text))
		case opLine:
			pdf.SetDrawColor(op.gray, op.gray, op.gray)
			pdf.SetLineWidth(2)
			pdf.Line(op.x, op.y, op.x2, op.y2)
		case opRect:
			pdf.SetDrawColor(op.gray, op.gray, op.gray)
			pdf.SetLineWidth(1)
			pdf.Rect(op.x, op.y, op.w, op.h, "D")
		case opImage:
			imgSeq++
			name := fmt.Sprintf("img%d", imgSeq)
			opts := gofpdf.ImageOptions{ImageType: "PNG"}
			pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(op.img))
			pdf.ImageOptions(name, op.x, op.y, op.w, op.h, false, opts, 0, "")
		}
	}

	if pdf.Err() {
		return nil, fmt.Errorf("draw certificate: %w", pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var ptBRMonths = [...]string{
	"jan", "fev", "mar", "abr", "mai", "jun",
	"jul", "ago", "set", "out", "nov", "dez",
}

// ptBRDate formats a date the way pt-BR locales abbreviate it.
func ptBRDate(t time.Time) string {
	return fmt.Sprintf("%02d de %s. de %d", t.Day(), ptBRMonths[t.Month()-1], t.Year())
}
