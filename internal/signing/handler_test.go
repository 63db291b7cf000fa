package signing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/adaosanto/sign-pdf/internal/render"
	"github.com/adaosanto/sign-pdf/internal/shared/server/middleware"
	"github.com/adaosanto/sign-pdf/internal/shared/storage/object/local"
)

func newTestRouter(t *testing.T, engine render.Engine, maxBytes int64) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	h := &Handler{
		Service: &Service{
			Engine:      engine,
			BaseURL:     "http://localhost:3000",
			TokenLength: 32,
		},
		Store:            local.New(dir),
		MaxFileSizeBytes: maxBytes,
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	RegisterRoutes(r.Group("/api/pdf"), h)
	r.GET("/validate", h.Validate)
	return r, dir
}

func multipartBody(t *testing.T, filename, contentType string, content []byte, extra map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="pdf"; filename="%s"`, filename))
	hdr.Set("Content-Type", contentType)
	part, err := w.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	for k, v := range extra {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()

	n := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", dir, err)
	}
	return n
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()

	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode error body %s: %v", body, err)
	}
	return payload.Error.Code
}

func TestSignEndpoint(t *testing.T) {
	engine := &stubEngine{out: []byte("%PDF-signed-output")}
	r, dir := newTestRouter(t, engine, 10<<20)

	body, contentType := multipartBody(t, "contrato.pdf", "application/pdf",
		buildTestPDF(t, 1), map[string]string{"name": "Maria Silva"})

	req := httptest.NewRequest(http.MethodPost, "/api/pdf/sign", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type = %q", ct)
	}
	cd := w.Header().Get("Content-Disposition")
	if !strings.Contains(cd, "contrato-signed-") || !strings.Contains(cd, ".pdf") {
		t.Fatalf("content disposition = %q", cd)
	}
	if !bytes.Equal(w.Body.Bytes(), engine.out) {
		t.Fatalf("body is not the rendered document")
	}
	if engine.lastIn.SignerName != "Maria Silva" {
		t.Fatalf("form metadata not forwarded: %q", engine.lastIn.SignerName)
	}
	if n := countFiles(t, dir); n != 0 {
		t.Fatalf("%d temp files left behind", n)
	}
}

// cancelingEngine cancels the request context while rendering, the way a
// client disconnect surfaces mid-request.
type cancelingEngine struct {
	cancel context.CancelFunc
}

func (e *cancelingEngine) PageCount([]byte) (int, error) { return 1, nil }

func (e *cancelingEngine) Stamp(ctx context.Context, _ []byte, _ render.StampInput) ([]byte, error) {
	e.cancel()
	return nil, ctx.Err()
}

func TestSignEndpointCleansUpAfterClientDisconnect(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine := &cancelingEngine{cancel: cancel}
	r, dir := newTestRouter(t, engine, 10<<20)

	body, contentType := multipartBody(t, "doc.pdf", "application/pdf",
		buildTestPDF(t, 1), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/pdf/sign", body).WithContext(ctx)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if n := countFiles(t, dir); n != 0 {
		t.Fatalf("%d temp files left after canceled request", n)
	}
}

func TestSignEndpointRejectsGarbage(t *testing.T) {
	engine := &stubEngine{out: []byte("%PDF")}
	r, dir := newTestRouter(t, engine, 10<<20)

	body, contentType := multipartBody(t, "x.pdf", "application/pdf",
		[]byte("not a pdf"), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/pdf/sign", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if code := errorCode(t, w.Body.Bytes()); code != "invalid_pdf" {
		t.Fatalf("code = %q", code)
	}
	if engine.stamped {
		t.Fatalf("engine invoked for garbage input")
	}
	if n := countFiles(t, dir); n != 0 {
		t.Fatalf("%d temp files left behind", n)
	}
}

func TestSignEndpointMissingFile(t *testing.T) {
	r, _ := newTestRouter(t, &stubEngine{}, 10<<20)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/pdf/sign", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if code := errorCode(t, rec.Body.Bytes()); code != "validation_error" {
		t.Fatalf("code = %q", code)
	}
}

func TestSignEndpointRejectsWrongExtension(t *testing.T) {
	r, _ := newTestRouter(t, &stubEngine{}, 10<<20)

	body, contentType := multipartBody(t, "notes.txt", "application/pdf",
		buildTestPDF(t, 1), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/pdf/sign", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestSignEndpointRejectsWrongMime(t *testing.T) {
	r, _ := newTestRouter(t, &stubEngine{}, 10<<20)

	body, contentType := multipartBody(t, "doc.pdf", "image/png",
		buildTestPDF(t, 1), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/pdf/sign", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestSignEndpointRejectsOversizedUpload(t *testing.T) {
	r, dir := newTestRouter(t, &stubEngine{}, 100)

	body, contentType := multipartBody(t, "big.pdf", "application/pdf",
		bytes.Repeat([]byte("a"), 10<<10), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/pdf/sign", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d", w.Code)
	}
	if n := countFiles(t, dir); n != 0 {
		t.Fatalf("%d temp files left behind", n)
	}
}

func TestSignEndpointRejectsBadPosition(t *testing.T) {
	r, dir := newTestRouter(t, &stubEngine{}, 10<<20)

	body, contentType := multipartBody(t, "doc.pdf", "application/pdf",
		buildTestPDF(t, 1), map[string]string{"position": "{not json"})

	req := httptest.NewRequest(http.MethodPost, "/api/pdf/sign", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if n := countFiles(t, dir); n != 0 {
		t.Fatalf("%d temp files left behind", n)
	}
}

func TestUploadEndpoint(t *testing.T) {
	r, dir := newTestRouter(t, &stubEngine{}, 10<<20)

	content := buildTestPDF(t, 1)
	body, contentType := multipartBody(t, "meu contrato.pdf", "application/pdf", content, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/pdf/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp uploadResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != "PDF enviado com sucesso" {
		t.Fatalf("message = %q", resp.Message)
	}
	if resp.File.OriginalName != "meu contrato.pdf" {
		t.Fatalf("originalName = %q", resp.File.OriginalName)
	}
	if resp.File.Size != int64(len(content)) {
		t.Fatalf("size = %d, want %d", resp.File.Size, len(content))
	}
	if resp.File.Filename == "" || strings.Contains(resp.File.Filename, " ") {
		t.Fatalf("filename = %q", resp.File.Filename)
	}
	if n := countFiles(t, dir); n != 0 {
		t.Fatalf("%d temp files left behind", n)
	}
}

func TestUploadEndpointRejectsGarbage(t *testing.T) {
	r, dir := newTestRouter(t, &stubEngine{}, 10<<20)

	body, contentType := multipartBody(t, "x.pdf", "application/pdf",
		[]byte("garbage"), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/pdf/upload", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if code := errorCode(t, w.Body.Bytes()); code != "invalid_pdf" {
		t.Fatalf("code = %q", code)
	}
	if n := countFiles(t, dir); n != 0 {
		t.Fatalf("%d temp files left behind", n)
	}
}

func TestValidateEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, &stubEngine{}, 10<<20)

	token, _ := GenerateToken(32)
	for _, path := range []string{"/api/pdf/validate", "/validate"} {
		req := httptest.NewRequest(http.MethodGet, path+"?signature="+token+"&hash=ab12", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("%s status = %d", path, w.Code)
		}
		var res ValidationResult
		if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !res.IsValid || res.Signature != token || res.Hash != "ab12" {
			t.Fatalf("%s unexpected result %+v", path, res)
		}
	}
}

func TestValidateEndpointRequiresSignature(t *testing.T) {
	r, _ := newTestRouter(t, &stubEngine{}, 10<<20)

	req := httptest.NewRequest(http.MethodGet, "/validate", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	if code := errorCode(t, w.Body.Bytes()); code != "validation_error" {
		t.Fatalf("code = %q", code)
	}
}

func TestInfoEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, &stubEngine{}, 10<<20)

	req := httptest.NewRequest(http.MethodGet, "/api/pdf/info", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var info struct {
		Name   string `json:"name"`
		Limits struct {
			MaxFileSize string `json:"maxFileSize"`
		} `json:"limits"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.Name != "PDF Signer API" {
		t.Fatalf("name = %q", info.Name)
	}
	if info.Limits.MaxFileSize != "10MB" {
		t.Fatalf("maxFileSize = %q", info.Limits.MaxFileSize)
	}
}
