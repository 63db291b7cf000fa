package signing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adaosanto/sign-pdf/internal/shared/metrics"
	"github.com/adaosanto/sign-pdf/internal/shared/server/middleware"
	"github.com/adaosanto/sign-pdf/internal/shared/server/respond"
	"github.com/adaosanto/sign-pdf/internal/shared/storage/object"
	"github.com/adaosanto/sign-pdf/internal/shared/telemetry"
)

// Handler exposes the signing endpoints.
type Handler struct {
	Service          *Service
	Store            object.ObjectStore
	MaxFileSizeBytes int64
}

// RegisterRoutes mounts the signing endpoints on the group.
func RegisterRoutes(rg *gin.RouterGroup, h *Handler) {
	rg.POST("/sign", h.sign)
	rg.POST("/upload", h.upload)
	rg.GET("/validate", h.Validate)
	rg.GET("/info", h.info)
}

type uploadedFile struct {
	data         []byte
	originalName string
	storageKey   string
	mimeType     string
	size         int64
}

// intake reads and stores the multipart PDF. On failure the response has
// already been written.
func (h *Handler) intake(c *gin.Context) (uploadedFile, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxFileSizeBytes)

	fileHeader, err := c.FormFile("pdf")
	if err != nil {
		if isBodyTooLarge(err) {
			h.tooLarge(c)
			return uploadedFile{}, false
		}
		respond.Error(c, http.StatusBadRequest, "validation_error",
			"Nenhum arquivo enviado", "Por favor, envie um arquivo PDF")
		return uploadedFile{}, false
	}

	if !strings.EqualFold(filepath.Ext(fileHeader.Filename), ".pdf") {
		respond.Error(c, http.StatusBadRequest, "validation_error",
			"Apenas arquivos PDF são permitidos", nil)
		return uploadedFile{}, false
	}
	if ct := fileHeader.Header.Get("Content-Type"); ct != "" && ct != "application/pdf" {
		respond.Error(c, http.StatusBadRequest, "validation_error",
			"Apenas arquivos PDF são permitidos", nil)
		return uploadedFile{}, false
	}
	if fileHeader.Size > h.MaxFileSizeBytes {
		h.tooLarge(c)
		return uploadedFile{}, false
	}

	f, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error",
			"Falha ao ler o arquivo enviado", nil)
		return uploadedFile{}, false
	}
	defer f.Close()

	key, size, mimeType, err := h.Store.Save(c.Request.Context(),
		middleware.RequestIDFromContext(c), fileHeader.Filename, f)
	if err != nil {
		if isBodyTooLarge(err) {
			h.tooLarge(c)
			return uploadedFile{}, false
		}
		telemetry.Error("signing.intake.store_failed", map[string]any{
			"err":        err.Error(),
			"fileName":   fileHeader.Filename,
			"request_id": middleware.RequestIDFromContext(c),
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error",
			"Falha ao armazenar o arquivo enviado", nil)
		return uploadedFile{}, false
	}

	data, err := h.readStored(c, key)
	if err != nil {
		h.removeTemp(c, key)
		respond.Error(c, http.StatusInternalServerError, "internal_error",
			"Falha ao ler o arquivo enviado", nil)
		return uploadedFile{}, false
	}

	return uploadedFile{
		data:         data,
		originalName: fileHeader.Filename,
		storageKey:   key,
		mimeType:     mimeType,
		size:         size,
	}, true
}

// readStored streams the stored upload back into memory for signing.
func (h *Handler) readStored(c *gin.Context, storageKey string) ([]byte, error) {
	rc, err := h.Store.Open(c.Request.Context(), storageKey)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// removeTemp deletes the stored upload. Runs on every exit path, including
// after a client disconnect, so it detaches from request cancellation.
func (h *Handler) removeTemp(c *gin.Context, storageKey string) {
	if storageKey == "" {
		return
	}
	ctx := context.WithoutCancel(c.Request.Context())
	if err := h.Store.Remove(ctx, storageKey); err != nil {
		telemetry.Warn("signing.cleanup.failed", map[string]any{
			"err":        err.Error(),
			"storageKey": storageKey,
			"request_id": middleware.RequestIDFromContext(c),
		})
	}
}

func (h *Handler) tooLarge(c *gin.Context) {
	respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large",
		fmt.Sprintf("Arquivo muito grande. Tamanho máximo: %dMB", h.MaxFileSizeBytes>>20), nil)
}

func (h *Handler) sign(c *gin.Context) {
	start := time.Now()
	metrics.IncSignStarted()

	up, ok := h.intake(c)
	if !ok {
		metrics.IncSignFailed()
		return
	}
	defer h.removeTemp(c, up.storageKey)

	meta, ok := parseMetadata(c)
	if !ok {
		metrics.IncSignFailed()
		return
	}

	result, err := h.Service.Sign(c.Request.Context(), up.data, up.originalName, meta)
	if err != nil {
		metrics.IncSignFailed()
		switch {
		case errors.Is(err, ErrMalformedInput):
			respond.Error(c, http.StatusBadRequest, "invalid_pdf",
				"O arquivo enviado não é um PDF válido", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error",
				"Requisição inválida", nil)
		default:
			telemetry.Error("signing.sign.failed", map[string]any{
				"err":        err.Error(),
				"fileName":   up.originalName,
				"request_id": middleware.RequestIDFromContext(c),
			})
			respond.Error(c, http.StatusInternalServerError, "internal_error",
				"Falha ao processar PDF", nil)
		}
		return
	}

	metrics.IncSignCompleted()
	metrics.ObserveSignDurationMs(float64(time.Since(start).Milliseconds()))
	c.Set("signatureToken", result.Token)
	telemetry.Info("signing.sign.completed", map[string]any{
		"fileName":    up.originalName,
		"inputPages":  result.InputPages,
		"outputPages": result.OutputPages,
		"durationMs":  time.Since(start).Milliseconds(),
		"request_id":  middleware.RequestIDFromContext(c),
	})

	name := signedFileName(up.originalName, time.Now())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Header("Content-Length", strconv.Itoa(len(result.Output)))
	c.Data(http.StatusOK, "application/pdf", result.Output)
}

func (h *Handler) upload(c *gin.Context) {
	up, ok := h.intake(c)
	if !ok {
		return
	}
	defer h.removeTemp(c, up.storageKey)

	if _, err := CheckPDF(up.data); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_pdf",
			"O arquivo enviado não é um PDF válido", nil)
		return
	}

	c.JSON(http.StatusOK, uploadResponse{
		Message: "PDF enviado com sucesso",
		File: fileInfo{
			OriginalName: up.originalName,
			Filename:     filepath.Base(up.storageKey),
			Size:         up.size,
			Mimetype:     up.mimeType,
		},
	})
}

// Validate answers signature format checks. Exported so the router can also
// mount it at the top-level /validate path.
func (h *Handler) Validate(c *gin.Context) {
	metrics.IncValidateRequest()

	sig := c.Query("signature")
	if sig == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error",
			"Assinatura não fornecida",
			"Por favor, forneça uma assinatura digital para validação")
		return
	}

	c.JSON(http.StatusOK, Validate(sig, c.Query("hash"), time.Now()))
}

func (h *Handler) info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        "PDF Signer API",
		"version":     "1.0.0",
		"description": "API para assinar PDFs digitalmente",
		"endpoints": gin.H{
			"sign": gin.H{
				"method":      "POST",
				"path":        "/api/pdf/sign",
				"description": "Assina um PDF enviado via upload",
				"body": gin.H{
					"pdf":      "Arquivo PDF (multipart/form-data)",
					"name":     "Nome do assinante (opcional)",
					"date":     "Data da assinatura (opcional)",
					"reason":   "Motivo da assinatura (opcional)",
					"location": "Local da assinatura (opcional)",
					"position": "Posição da assinatura em JSON (opcional)",
					"fontSize": "Tamanho da fonte (opcional)",
				},
			},
			"upload": gin.H{
				"method":      "POST",
				"path":        "/api/pdf/upload",
				"description": "Apenas faz upload do PDF para validação",
				"body": gin.H{
					"pdf": "Arquivo PDF (multipart/form-data)",
				},
			},
			"validate": gin.H{
				"method":      "GET",
				"path":        "/api/pdf/validate",
				"description": "Valida o formato de uma assinatura digital (não verifica a integridade do documento)",
				"query": gin.H{
					"signature": "Assinatura digital (32 caracteres)",
					"hash":      "Hash do documento (opcional)",
				},
			},
		},
		"limits": gin.H{
			"maxFileSize":  fmt.Sprintf("%dMB", h.MaxFileSizeBytes>>20),
			"allowedTypes": []string{"application/pdf"},
			"maxFiles":     1,
		},
	})
}

func parseMetadata(c *gin.Context) (Metadata, bool) {
	meta := Metadata{
		Name:     firstNonEmpty(c.PostForm("name"), c.PostForm("signerName")),
		Date:     c.PostForm("date"),
		Reason:   firstNonEmpty(c.PostForm("reason"), c.PostForm("purpose")),
		Location: c.PostForm("location"),
		Email:    c.PostForm("email"),
	}

	if raw := c.PostForm("position"); raw != "" {
		var pos Position
		if err := json.Unmarshal([]byte(raw), &pos); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error",
				"position deve ser um JSON com os campos x e y", nil)
			return Metadata{}, false
		}
		meta.Position = &pos
	}

	if raw := c.PostForm("fontSize"); raw != "" {
		size, err := strconv.ParseFloat(raw, 64)
		if err != nil || size <= 0 {
			respond.Error(c, http.StatusBadRequest, "validation_error",
				"fontSize deve ser um número positivo", nil)
			return Metadata{}, false
		}
		meta.FontSize = size
	}

	return meta, true
}

func signedFileName(originalName string, now time.Time) string {
	base := strings.TrimSuffix(filepath.Base(originalName), filepath.Ext(originalName))
	ts := strings.NewReplacer(":", "-", ".", "-").
		Replace(now.UTC().Format("2006-01-02T15:04:05.000Z"))
	return fmt.Sprintf("%s-signed-%s.pdf", base, ts)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
