package utils

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestFileHeader creates a mock multipart.FileHeader for testing
func createTestFileHeader(filename string, size int64, content []byte) *multipart.FileHeader {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	h.Set("Content-Type", "image/png")
	part, _ := writer.CreatePart(h)
	part.Write(content)
	writer.Close()

	reader := multipart.NewReader(body, writer.Boundary())
	form, _ := reader.ReadForm(int64(len(content)) + 1024)
	defer form.RemoveAll()

	if len(form.File["image"]) > 0 {
		fileHeader := form.File["image"][0]
		// Override size for testing purposes
		fileHeader.Size = size
		return fileHeader
	}

	return nil
}

func TestValidateImageFile_AcceptedFormats(t *testing.T) {
	for _, name := range []string{"panel.png", "panel.jpg", "panel.jpeg", "PANEL.PNG"} {
		t.Run(name, func(t *testing.T) {
			content := []byte("fake image content")
			fileHeader := createTestFileHeader(name, int64(len(content)), content)
			require.NotNil(t, fileHeader)

			assert.NoError(t, ValidateImageFile(fileHeader))
		})
	}
}

func TestValidateImageFile_FileTooLarge(t *testing.T) {
	content := []byte("fake png content")
	fileHeader := createTestFileHeader("large.png", 11*1024*1024, content)
	require.NotNil(t, fileHeader)

	err := ValidateImageFile(fileHeader)
	assert.Error(t, err)

	fileErr, ok := err.(*FileUploadError)
	require.True(t, ok, "Error should be of type FileUploadError")
	assert.Equal(t, "FILE_TOO_LARGE", fileErr.Code)
	assert.Contains(t, fileErr.Message, "File size exceeds maximum allowed size")
}

func TestValidateImageFile_InvalidFormat(t *testing.T) {
	for _, name := range []string{"test.gif", "test.webp", "testfile"} {
		t.Run(name, func(t *testing.T) {
			content := []byte("fake content")
			fileHeader := createTestFileHeader(name, int64(len(content)), content)
			require.NotNil(t, fileHeader)

			err := ValidateImageFile(fileHeader)
			fileErr, ok := err.(*FileUploadError)
			require.True(t, ok, "Error should be of type FileUploadError")
			assert.Equal(t, "INVALID_FILE_FORMAT", fileErr.Code)
		})
	}
}

func TestImageContentType(t *testing.T) {
	ct, ok := ImageContentType("a.JPG")
	assert.True(t, ok)
	assert.Equal(t, "image/jpeg", ct)

	ct, ok = ImageContentType("a.png")
	assert.True(t, ok)
	assert.Equal(t, "image/png", ct)

	_, ok = ImageContentType("a.svg")
	assert.False(t, ok)
}

func TestImageKey(t *testing.T) {
	now := time.Unix(0, 1700000000000000000)

	key := ImageKey("/products/", "../my panel.png", now)

	assert.True(t, strings.HasPrefix(key, "products/1700000000000000000_"))
	assert.True(t, strings.HasSuffix(key, "my_panel.png"))
	assert.True(t, ValidImageKey(key))
}

func TestValidImageKey(t *testing.T) {
	tests := []struct {
		key   string
		valid bool
	}{
		{"products/1_panel.png", true},
		{"", false},
		{"../secret.png", false},
		{"/etc/passwd.png", false},
		{"products\\x.png", false},
		{"products/1_notes.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidImageKey(tt.key))
		})
	}
}

func TestFileUploadError_Error(t *testing.T) {
	err := &FileUploadError{
		Code:    "TEST_CODE",
		Message: "Test error message",
	}

	assert.Equal(t, "Test error message", err.Error())
}
