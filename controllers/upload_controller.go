package controllers

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/restaurant-oms/oms-api/utils"
)

// UploadController serves product images stored on local disk.
type UploadController struct {
	dir string
}

// NewUploadController serves files from dir.
func NewUploadController(dir string) *UploadController {
	return &UploadController{dir: dir}
}

// GetUploadedImage handles GET /api/v1/uploads/:filename - serves uploaded product images
func (uc *UploadController) GetUploadedImage(c *gin.Context) {
	filename := c.Param("filename")

	// Security: Prevent directory traversal attacks
	if err := utils.ValidateFilename(filename); err != nil {
		respondFail(c, http.StatusBadRequest, "INVALID_FILENAME", "Invalid filename")
		return
	}

	contentType, ok := utils.ImageContentType(filename)
	if !ok {
		respondFail(c, http.StatusBadRequest, "INVALID_FILE_TYPE", "Only PNG, JPEG and WebP images are supported")
		return
	}

	filePath := filepath.Join(uc.dir, filename)
	if info, err := os.Stat(filePath); err != nil || info.IsDir() {
		respondFail(c, http.StatusNotFound, "FILE_NOT_FOUND", "Image not found")
		return
	}

	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "public, max-age=86400") // Cache for 24 hours
	c.File(filePath)
}
