package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// MaxFileSize is 10MB in bytes
const MaxFileSize = 10 * 1024 * 1024

// allowedImageTypes maps accepted extensions to their content type
var allowedImageTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

var unsafeKeyChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidateImageFile validates the uploaded file format and size
func ValidateImageFile(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxFileSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxFileSize/(1024*1024)),
		}
	}

	if _, ok := ImageContentType(fileHeader.Filename); !ok {
		return &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: "Only .png, .jpg and .jpeg files are allowed",
		}
	}

	return nil
}

// ImageContentType returns the content type for an accepted image filename
func ImageContentType(filename string) (string, bool) {
	ct, ok := allowedImageTypes[strings.ToLower(filepath.Ext(filename))]
	return ct, ok
}

// ImageKey builds a unique object key under folder for the uploaded filename
func ImageKey(folder, filename string, now time.Time) string {
	base := unsafeKeyChars.ReplaceAllString(filepath.Base(filename), "_")
	return fmt.Sprintf("%s/%d_%s", strings.Trim(folder, "/"), now.UnixNano(), base)
}

// ValidImageKey rejects keys that could escape the upload prefix
func ValidImageKey(key string) bool {
	if key == "" || strings.Contains(key, "..") || strings.Contains(key, "\\") || strings.HasPrefix(key, "/") {
		return false
	}
	_, ok := ImageContentType(key)
	return ok
}
