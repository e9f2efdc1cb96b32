package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"hrcms/internal/apperror"
	"hrcms/internal/models"
	"hrcms/internal/storage"
)

// sniffLen is how many leading bytes are inspected to detect the file type.
const sniffLen = 3072

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type UploadService interface {
	UploadImage(ctx context.Context, file io.Reader, size int64, fileName string) (*models.UploadResult, error)
}

type uploadService struct {
	storage storage.Storage
	maxSize int64
	logger  *zap.Logger
	now     func() time.Time
}

func NewUploadService(store storage.Storage, maxSize int64, logger *zap.Logger) UploadService {
	return &uploadService{
		storage: store,
		maxSize: maxSize,
		logger:  logger.Named("upload"),
		now:     utcNow,
	}
}

func (s *uploadService) UploadImage(ctx context.Context, file io.Reader, size int64, fileName string) (*models.UploadResult, error) {
	if size <= 0 {
		return nil, apperror.Validation("file is empty")
	}
	if size > s.maxSize {
		return nil, apperror.Validation(fmt.Sprintf("file exceeds the %d byte limit", s.maxSize))
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "read upload")
	}
	head = head[:n]

	mtype := mimetype.Detect(head)
	ext, ok := allowedImageTypes[mtype.String()]
	if !ok {
		return nil, apperror.Validation("only jpeg, png, gif and webp images are allowed",
			apperror.FieldError{Field: "image", Message: "unsupported type " + mtype.String()})
	}

	now := s.now()
	objectName := fmt.Sprintf("blog/%04d/%02d/%s%s", now.Year(), int(now.Month()), uuid.New().String(), ext)

	url, err := s.storage.Upload(ctx, objectName, io.MultiReader(bytes.NewReader(head), file), size, mtype.String(),
		map[string]string{
			"original-filename": filepath.Base(fileName),
			"uploaded-at":       now.Format(time.RFC3339),
		})
	if err != nil {
		return nil, errors.Wrap(err, "store image")
	}

	s.logger.Info("image uploaded", zap.String("object", objectName), zap.Int64("size", size))
	return &models.UploadResult{
		URL:        url,
		ObjectName: objectName,
		Size:       size,
		MimeType:   mtype.String(),
	}, nil
}
