package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/debt-tracker/constants"
	"github.com/joseph-ayodele/debt-tracker/internal/common"
	"github.com/joseph-ayodele/debt-tracker/internal/export"
	"github.com/joseph-ayodele/debt-tracker/internal/jobs"
	"github.com/joseph-ayodele/debt-tracker/internal/logger"
)

var pdfMagic = []byte("%PDF-")

type Handler struct {
	store     *jobs.Store
	queue     jobs.Queue
	exporter  *export.Service
	uploadDir string
	maxUpload int64
	logger    *slog.Logger
}

type HandlerConfig struct {
	UploadDir   string
	MaxUploadMB int
}

func NewHandler(store *jobs.Store, queue jobs.Queue, exporter *export.Service, cfg HandlerConfig, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if exporter == nil {
		exporter = export.NewService(logger)
	}
	if cfg.MaxUploadMB <= 0 {
		cfg.MaxUploadMB = constants.MaxUploadMBDefault
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = os.TempDir()
	}
	return &Handler{
		store:     store,
		queue:     queue,
		exporter:  exporter,
		uploadDir: cfg.UploadDir,
		maxUpload: int64(cfg.MaxUploadMB) << 20,
		logger:    logger,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// CreateExtraction accepts a multipart "file" field holding a PDF and queues it.
func (h *Handler) CreateExtraction(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.logger)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.error(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d MB", h.maxUpload>>20))
			return
		}
		h.error(c, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()

	if !constants.IsAllowedExt(filepath.Ext(header.Filename)) {
		h.error(c, http.StatusBadRequest, "only PDF files are allowed")
		return
	}
	head := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(file, head); err != nil || !strings.HasPrefix(string(head), string(pdfMagic)) {
		h.error(c, http.StatusBadRequest, "file is not a PDF")
		return
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		h.error(c, http.StatusInternalServerError, "failed to read upload")
		return
	}

	job := h.store.Create(filepath.Base(header.Filename), header.Size)
	path := filepath.Join(h.uploadDir, job.ID.String()+".pdf")
	if err := c.SaveUploadedFile(header, path); err != nil {
		log.Error("http.upload.save_failed", "job_id", job.ID, "error", err)
		_ = h.store.Fail(job.ID, "failed to store upload")
		h.error(c, http.StatusInternalServerError, "failed to store upload")
		return
	}

	err = h.queue.Enqueue(c.Request.Context(), jobs.Job{
		ID:          job.ID,
		Path:        path,
		SubmittedAt: time.Now(),
		RequestID:   GetRequestID(c),
	})
	if err != nil {
		log.Warn("http.upload.enqueue_failed", "job_id", job.ID, "error", err)
		_ = h.store.Fail(job.ID, "service is not accepting work")
		_ = os.Remove(path)
		h.error(c, http.StatusServiceUnavailable, "service is not accepting work")
		return
	}

	log.Info("http.upload.queued", "job_id", job.ID, "size", header.Size)
	c.Header("Location", "/v1/extractions/"+job.ID.String())
	c.JSON(http.StatusAccepted, job)
}

func (h *Handler) ListExtractions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"extractions": h.store.List()})
}

func (h *Handler) GetExtraction(c *gin.Context) {
	id, ok := h.jobID(c)
	if !ok {
		return
	}
	job, err := h.store.Get(id)
	if err != nil {
		h.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// ExportExtraction streams a finished job's records as xlsx (default) or csv.
func (h *Handler) ExportExtraction(c *gin.Context) {
	id, ok := h.jobID(c)
	if !ok {
		return
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		h.error(c, http.StatusBadRequest, "format must be xlsx or csv")
		return
	}
	job, err := h.store.Get(id)
	if err != nil {
		h.storeError(c, err)
		return
	}
	if !job.Status.Terminal() {
		h.error(c, http.StatusConflict, "extraction is still "+strings.ToLower(string(job.Status)))
		return
	}

	data, err := h.exporter.Export(job.Records, format)
	if err != nil {
		logger.WithContext(c.Request.Context(), h.logger).Error("http.export.failed", "job_id", id, "error", err)
		h.error(c, http.StatusInternalServerError, "export failed")
		return
	}
	name := strings.TrimSuffix(job.FileName, filepath.Ext(job.FileName)) + "-inadimplentes" + format.Ext()
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, format.ContentType(), data)
}

func (h *Handler) jobID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.Param("id")
	v := common.NewValidator().Field("id", raw, common.Required, common.UUID)
	if v.HasErrors() {
		h.error(c, http.StatusBadRequest, v.ErrorMessage())
		return uuid.Nil, false
	}
	return uuid.MustParse(raw), true
}

func (h *Handler) storeError(c *gin.Context, err error) {
	if errors.Is(err, common.ErrNotFound) {
		h.error(c, http.StatusNotFound, "extraction not found")
		return
	}
	h.error(c, http.StatusInternalServerError, "internal error")
}

func (h *Handler) error(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, gin.H{"error": msg, "request_id": GetRequestID(c)})
}
