package ingestion

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	httperr "github.com/cdr-lab/cdr-service/internal/core/errors"
	"github.com/cdr-lab/cdr-service/internal/core/storage"
)

const (
	msgFileMissing     = "File not selected"
	msgFileTooLarge    = "Uploaded file exceeds maximum allowed size"
	msgMalformedHeader = "Malformed CSV header"
	msgDuplicateRecord = "Call record already exists"
	msgUploadFailed    = "Error occurred while uploading file"
)

// UploadHandler handles HTTP POST requests for CSV uploads.
//
// 400 for a missing/empty file or unreadable header, 409 when a record's
// reference is already stored, 500 for validation and storage failures.
// The original cause is logged, never returned to the caller.
func (s *Service) UploadHandler(c *gin.Context) {
	uploadID := uuid.NewString()

	fileHeader, err := c.FormFile("file")
	if err != nil || fileHeader.Size == 0 {
		slog.Warn("File not selected for upload", "upload_id", uploadID)
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidUploadError,
			Message:   msgFileMissing,
		})
		return
	}

	if fileHeader.Size > s.maxUploadBytes {
		slog.Warn("Upload exceeds maximum size",
			"upload_id", uploadID,
			"size", fileHeader.Size,
			"max", s.maxUploadBytes)
		c.JSON(http.StatusRequestEntityTooLarge, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidUploadError,
			Message:   msgFileTooLarge,
			Details: map[string]interface{}{
				"max_size_mb": s.maxUploadBytes / (1024 * 1024),
			},
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		slog.Error("Failed to open uploaded file", "upload_id", uploadID, "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   msgUploadFailed,
		})
		return
	}
	defer file.Close()

	slog.Info("Received CDR upload",
		"upload_id", uploadID,
		"filename", fileHeader.Filename,
		"size", fileHeader.Size)

	parser, err := NewParser(file)
	if err != nil {
		slog.Warn("Rejected upload with unreadable header", "upload_id", uploadID, "error", err)
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidUploadError,
			Message:   msgMalformedHeader,
		})
		return
	}

	count, err := NewPipeline(s.store, s.batchSize).Run(c.Request.Context(), parser)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			slog.Info("Duplicate call record rejected", "upload_id", uploadID, "error", err)
			c.JSON(http.StatusConflict, httperr.ErrorResponse{
				ErrorType: httperr.HttpDuplicateRecordError,
				Message:   msgDuplicateRecord,
			})
			return
		}

		slog.Error("Error occurred while uploading file", "upload_id", uploadID, "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   msgUploadFailed,
		})
		return
	}

	slog.Info("File uploaded successfully", "upload_id", uploadID, "records", count)
	c.JSON(http.StatusOK, gin.H{
		"message":         "File uploaded successfully",
		"recordsIngested": count,
	})
}
