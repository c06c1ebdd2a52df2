package utils

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

const (
	// MaxFileSize is 10MB in bytes
	MaxFileSize = 10 * 1024 * 1024
)

// imageContentTypes maps the accepted product image extensions to their MIME types.
var imageContentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ImageContentType returns the MIME type for an accepted image filename.
func ImageContentType(filename string) (string, bool) {
	ct, ok := imageContentTypes[strings.ToLower(filepath.Ext(filename))]
	return ct, ok
}

// ValidateImageFile validates the uploaded file format and size
func ValidateImageFile(fileHeader *multipart.FileHeader) error {
	if fileHeader == nil {
		return &FileUploadError{Code: "NO_FILE", Message: "No file was uploaded"}
	}

	// Check file size
	if fileHeader.Size > MaxFileSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxFileSize/(1024*1024)),
		}
	}

	if _, ok := ImageContentType(fileHeader.Filename); !ok {
		return &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: "Only PNG, JPEG and WebP images are allowed",
		}
	}

	return nil
}

// ValidateFilename rejects names that could escape the upload directory.
func ValidateFilename(filename string) error {
	if filename == "" || strings.Contains(filename, "..") || strings.ContainsAny(filename, `/\`) {
		return &FileUploadError{Code: "INVALID_FILENAME", Message: "Invalid filename"}
	}
	return nil
}

// SaveUploadedFile saves the uploaded file to the local filesystem
// Returns the generated filename, relative to uploadDir
func SaveUploadedFile(fileHeader *multipart.FileHeader, uploadDir string) (filename string, err error) {
	// Create uploads directory if it doesn't exist
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return "", errors.Wrap(err, "failed to create upload directory")
	}

	// Generate unique filename to prevent collisions
	filename = fmt.Sprintf("%s%s", uuid.NewString(), strings.ToLower(filepath.Ext(fileHeader.Filename)))
	fullPath := filepath.Join(uploadDir, filename)

	src, err := fileHeader.Open()
	if err != nil {
		return "", errors.Wrap(err, "failed to open uploaded file")
	}
	defer src.Close()

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", errors.Wrap(err, "failed to create destination file")
	}
	defer func() {
		if closeErr := dst.Close(); closeErr != nil && err == nil {
			err = errors.Wrap(closeErr, "failed to close destination file")
		}
	}()

	if _, err := io.Copy(dst, src); err != nil {
		return "", errors.Wrap(err, "failed to save file")
	}

	return filename, nil
}

// RemoveUploadedFile deletes a previously saved file. A missing file is not an error.
func RemoveUploadedFile(filename, uploadDir string) error {
	if filename == "" {
		return nil
	}
	if err := ValidateFilename(filename); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(uploadDir, filename)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove file")
	}
	return nil
}

// GetImageURL returns the URL path for accessing the uploaded image
func GetImageURL(filename string) string {
	if filename == "" {
		return ""
	}
	return fmt.Sprintf("/api/v1/uploads/%s", filename)
}
