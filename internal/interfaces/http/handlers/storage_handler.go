package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainerrors "wealthline.backend/internal/domain/errors"
	"wealthline.backend/internal/infrastructure/storage"
	"wealthline.backend/internal/interfaces/http/response"
)

type signedObjectStore interface {
	VerifySignedToken(token, bucket, objectPath string) error
	Open(ctx context.Context, bucket, objectPath string) (io.ReadCloser, error)
}

// StorageHandler serves objects behind signed URLs
type StorageHandler struct {
	store signedObjectStore
}

func NewStorageHandler(store *storage.BlobStore) *StorageHandler {
	return &StorageHandler{store: store}
}

// ServeSigned streams an object when its token matches
// GET /storage/v1/object/sign/:bucket/*path?token=...
func (h *StorageHandler) ServeSigned(c *gin.Context) {
	bucket := c.Param("bucket")
	objectPath := strings.TrimPrefix(c.Param("path"), "/")

	if err := h.store.VerifySignedToken(c.Query("token"), bucket, objectPath); err != nil {
		response.Error(c, domainerrors.Forbidden("Invalid or expired link."))
		return
	}

	obj, err := h.store.Open(c.Request.Context(), bucket, objectPath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectMissing) || errors.Is(err, storage.ErrInvalidPath) {
			response.Error(c, domainerrors.NotFound("Object not found."))
			return
		}
		response.Error(c, err)
		return
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "private, max-age=60")
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}
