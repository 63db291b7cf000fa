package render

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jung-kurt/gofpdf"
)

func buildTestPDF(t *testing.T, pages int) []byte {
	t.Helper()

	pdf := gofpdf.New("P", "pt", "A4", "")
	for i := 0; i < pages; i++ {
		pdf.AddPage()
		pdf.SetFont("Helvetica", "", 12)
		pdf.Text(50, 50, "conteudo de teste")
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("build test pdf: %v", err)
	}
	return buf.Bytes()
}

func testStampInput() StampInput {
	return StampInput{
		Token:            "AbCdEfGhIjKlMnOpQrStUvWxYz012345",
		DigestHex:        strings.Repeat("ab", 32),
		DisplayDigest:    strings.Repeat("cd", 64),
		ValidationURL:    "http://localhost:3000/validate?signature=x&hash=y",
		OriginalFileName: "contrato.pdf",
		SignerName:       "Maria Silva",
		SignerEmail:      "maria@example.com",
		SignDate:         "29/08/2026",
		Reason:           "Documento aprovado",
		Location:         "Brasil",
		PosX:             50,
		PosY:             100,
		FontSize:         12,
	}
}

func TestPageCount(t *testing.T) {
	e := NewEngine()

	data := buildTestPDF(t, 3)
	n, err := e.PageCount(data)
	if err != nil {
		t.Fatalf("PageCount failed: %v", err)
	}
	if n != 3 {
		t.Fatalf("PageCount = %d, want 3", n)
	}
}

func TestPageCountRejectsGarbage(t *testing.T) {
	e := NewEngine()

	if _, err := e.PageCount([]byte("not a pdf at all")); err == nil {
		t.Fatalf("expected error for non-PDF input")
	}
}

func TestStampAppendsCertificatePage(t *testing.T) {
	e := NewEngine()

	data := buildTestPDF(t, 2)
	out, err := e.Stamp(context.Background(), data, testStampInput())
	if err != nil {
		t.Fatalf("Stamp failed: %v", err)
	}
	if len(out) == 0 {
		t.Fatalf("empty output")
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}

	n, err := e.PageCount(out)
	if err != nil {
		t.Fatalf("PageCount on output failed: %v", err)
	}
	if n != 3 {
		t.Fatalf("output pages = %d, want 3", n)
	}
}

func TestStampHonorsContextCancellation(t *testing.T) {
	e := NewEngine()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.Stamp(ctx, buildTestPDF(t, 1), testStampInput()); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}

func TestCertificateLayoutContent(t *testing.T) {
	in := testStampInput()
	now := time.Date(2026, time.August, 29, 10, 30, 0, 0, time.UTC)

	ops := certificateLayout(in, 2, []byte("png"), now)

	var all strings.Builder
	for _, op := range ops {
		all.WriteString(op.text)
		all.WriteString("\n")
	}
	got := all.String()

	for _, want := range []string{
		"3 paginas",
		"contrato.pdf",
		"Codigo do documento",
		"Maria Silva",
		"SHA256: " + in.DigestHex,
		"SHA512: " + in.DisplayDigest,
		"MP 2.200-2/2001 e Lei 14.063/2020",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("certificate layout missing %q", want)
		}
	}
}

func TestPtBRDate(t *testing.T) {
	d := time.Date(2026, time.February, 3, 0, 0, 0, 0, time.UTC)
	if got := ptBRDate(d); got != "03 de fev. de 2026" {
		t.Fatalf("ptBRDate = %q", got)
	}
}
