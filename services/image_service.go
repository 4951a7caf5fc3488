package services

import (
	"context"
	"mime/multipart"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/solarhub/solarhub-api/apperrors"
	"github.com/solarhub/solarhub-api/utils"
)

// ImagePathPrefix is the public route images are served under
const ImagePathPrefix = "/api/v1/images/"

// ImageService validates catalog images and stores them in object storage
type ImageService struct {
	store  ObjectStore
	logger *zap.Logger
	now    func() time.Time
}

// NewImageService creates an image service on top of store
func NewImageService(store ObjectStore, logger *zap.Logger) *ImageService {
	return &ImageService{store: store, logger: logger, now: time.Now}
}

// Upload validates the file and stores it under folder. It returns the object key.
func (s *ImageService) Upload(ctx context.Context, folder string, fh *multipart.FileHeader) (string, error) {
	if err := utils.ValidateImageFile(fh); err != nil {
		return "", apperrors.Validation("%s", err.Error())
	}
	contentType, _ := utils.ImageContentType(fh.Filename)

	file, err := fh.Open()
	if err != nil {
		return "", apperrors.Validation("Unable to read uploaded file")
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			s.logger.Warn("Failed to close upload", zap.Error(closeErr))
		}
	}()

	key := utils.ImageKey(folder, fh.Filename, s.now())
	if err := s.store.Put(ctx, key, contentType, file); err != nil {
		return "", apperrors.ExternalService(err, "Image storage unavailable")
	}
	s.logger.Info("Image uploaded", zap.String("key", key), zap.Int64("size", fh.Size))
	return key, nil
}

// URL returns the stable public path of an uploaded key
func (s *ImageService) URL(key string) string {
	return ImagePathPrefix + key
}

// Resolve returns a short-lived download link for key
func (s *ImageService) Resolve(ctx context.Context, key string) (string, error) {
	if !utils.ValidImageKey(key) {
		return "", apperrors.Validation("Invalid image key")
	}
	url, err := s.store.PresignGet(ctx, key)
	if err != nil {
		return "", apperrors.ExternalService(errors.Wrap(err, "resolve image"), "Image storage unavailable")
	}
	return url, nil
}

// Delete removes an uploaded image
func (s *ImageService) Delete(ctx context.Context, key string) error {
	if !utils.ValidImageKey(key) {
		return apperrors.Validation("Invalid image key")
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return apperrors.ExternalService(err, "Image storage unavailable")
	}
	return nil
}
