package ginserver

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"spotaway/internal/infra/storage/s3"
)

type UploadHTTP interface {
	Upload(c *gin.Context)
}

// UploadHandler streams multipart image uploads to object storage and hands
// back the public URL for use in image-attachment requests.
type UploadHandler struct {
	Uploader s3.Uploader
}

func (h UploadHandler) Upload(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	if h.Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "uploads unavailable"})
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "image file is required"})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "image file is required"})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		c.JSON(http.StatusBadRequest, gin.H{"message": "only image uploads are accepted"})
		return
	}

	key := fmt.Sprintf("users/%d/%s%s", user.ID, uuid.NewString(), filepath.Ext(header.Filename))
	url, err := h.Uploader.Upload(c.Request.Context(), key, file, contentType)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "upload failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

var _ UploadHTTP = UploadHandler{}
