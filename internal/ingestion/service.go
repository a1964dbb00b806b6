package ingestion

import (
	"github.com/gin-gonic/gin"

	"github.com/cdr-lab/cdr-service/internal/core/storage"
)

// Service owns the upload side of the API: multipart CSV in, batched
// commits out.
type Service struct {
	store          storage.CallRecordStore
	batchSize      int
	maxUploadBytes int64
}

func NewService(store storage.CallRecordStore, batchSize, maxUploadSizeMB int) *Service {
	if store == nil {
		panic("ingestion: store must not be nil")
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if maxUploadSizeMB <= 0 {
		maxUploadSizeMB = 10 // default to 10MB
	}
	return &Service{
		store:          store,
		batchSize:      batchSize,
		maxUploadBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// RegisterRoutes registers the ingestion service routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.POST("/v1/cdr/upload", s.UploadHandler)
}
