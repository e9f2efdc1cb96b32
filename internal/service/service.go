package service

import (
	"time"

	"github.com/Laisky/errors/v2"
	"go.uber.org/zap"

	"hrcms/internal/apperror"
	"hrcms/internal/config"
	"hrcms/internal/repository"
	"hrcms/internal/storage"
	"hrcms/internal/validation"
)

type Service struct {
	Post     PostService
	Category CategoryService
	Comment  CommentService
	Stats    StatsService
	Upload   UploadService
}

func NewService(rep *repository.Repository, cfg *config.Config, store storage.Storage, logger *zap.Logger) *Service {
	validate := validation.New()
	sanitize := validation.NewSanitizer()

	return &Service{
		Post:     NewPostService(rep.Post, rep.Category, rep.Comment, validate, sanitize, logger),
		Category: NewCategoryService(rep.Category, rep.Post, validate, logger),
		Comment:  NewCommentService(rep.Comment, rep.Post, validate, sanitize, logger),
		Stats:    NewStatsService(rep.Post, rep.Comment),
		Upload:   NewUploadService(store, cfg.Server.MaxUploadSize, logger),
	}
}

// notFoundAs turns a repository miss into a client facing 404 with msg.
func notFoundAs(err error, msg string) error {
	if errors.Is(err, apperror.ErrNotFound) {
		return apperror.NotFound(msg)
	}
	return err
}

func utcNow() time.Time {
	return time.Now().UTC()
}
