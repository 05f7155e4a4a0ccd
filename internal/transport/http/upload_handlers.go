package http

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/konect-chat/konect-server/internal/store"
)

// UploadHandlers provides HTTP handlers for file uploads.
type UploadHandlers struct {
	store     store.UploadStore
	uploadDir string
	log       *zerolog.Logger
}

// NewUploadHandlers creates a new upload handlers instance.
func NewUploadHandlers(st store.UploadStore, uploadDir string, logger *zerolog.Logger) *UploadHandlers {
	return &UploadHandlers{
		store:     st,
		uploadDir: uploadDir,
		log:       logger,
	}
}

// UploadResponse represents the upload response body.
type UploadResponse struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
	Size     int64  `json:"size"`
}

// Upload stores a multipart file under a generated ID and records its
// metadata.
// POST /api/upload
func (h *UploadHandlers) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "no file provided"})
		return
	}

	id := uuid.NewString()
	// Files are stored under their ID, never the client-supplied name.
	dst := filepath.Join(h.uploadDir, id)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		h.log.Error().Err(err).Str("upload_id", id).Msg("failed to save uploaded file")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	upload, err := h.store.SaveUpload(c.Request.Context(), id, file.Filename, file.Size)
	if err != nil {
		h.log.Error().Err(err).Str("upload_id", id).Msg("failed to record upload")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Info().Str("upload_id", upload.ID).Str("filename", upload.Filename).Int64("size", upload.Size).Msg("file uploaded")
	c.JSON(http.StatusOK, UploadResponse{
		ID:       upload.ID,
		Filename: upload.Filename,
		URL:      "/api/files/" + upload.ID,
		Size:     upload.Size,
	})
}

// Download streams a previously uploaded file under its original name.
// GET /api/files/:file_id
func (h *UploadHandlers) Download(c *gin.Context) {
	id := c.Param("file_id")

	upload, err := h.store.GetUpload(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "file not found"})
			return
		}
		h.log.Error().Err(err).Str("upload_id", id).Msg("failed to load upload")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	c.FileAttachment(filepath.Join(h.uploadDir, upload.ID), upload.Filename)
}
