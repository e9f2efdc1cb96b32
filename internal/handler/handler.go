package handlers

import (
	"go.uber.org/zap"

	"hrcms/internal/config"
	"hrcms/internal/database"
	"hrcms/internal/service"
)

type Handlers struct {
	PostService     service.PostService
	CategoryService service.CategoryService
	CommentService  service.CommentService
	StatsService    service.StatsService
	UploadService   service.UploadService
	Store           database.Store
	Cfg             *config.Config
	Logger          *zap.Logger
}

func NewHandlers(services *service.Service, store database.Store, cfg *config.Config, logger *zap.Logger) *Handlers {
	return &Handlers{
		PostService:     services.Post,
		CategoryService: services.Category,
		CommentService:  services.Comment,
		StatsService:    services.Stats,
		UploadService:   services.Upload,
		Store:           store,
		Cfg:             cfg,
		Logger:          logger.Named("http"),
	}
}
