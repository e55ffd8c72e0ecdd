package db

import (
	"context"
	"strings"

	"github.com/userdesk/backend/internal/core/ports"
	"github.com/userdesk/backend/internal/domain"
	"github.com/userdesk/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

func lowerPattern(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

type infoViewRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewInfoViewRepository(db *gorm.DB, log *logger.Logger) ports.InfoViewRepository {
	return &infoViewRepository{db: db, log: log}
}

func (r *infoViewRepository) List(ctx context.Context, offset, limit int) ([]domain.InfoView, error) {
	var views []domain.InfoView
	if err := r.db.WithContext(ctx).Order("id").Offset(offset).Limit(limit).Find(&views).Error; err != nil {
		r.log.Errorw("info_view_repo_list_failed", "offset", offset, "limit", limit, "error", err)
		return nil, err
	}
	return views, nil
}

func (r *infoViewRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.InfoView{}).Count(&count).Error; err != nil {
		r.log.Errorw("info_view_repo_count_failed", "error", err)
		return 0, err
	}
	return count, nil
}
