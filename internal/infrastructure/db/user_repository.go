package db

import (
	"context"

	"github.com/userdesk/backend/internal/core/ports"
	"github.com/userdesk/backend/internal/domain"
	"github.com/userdesk/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

type userRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepository(db *gorm.DB, log *logger.Logger) ports.UserRepository {
	return &userRepository{db: db, log: log}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		r.log.Errorw("user_repo_create_failed", "name", user.Name, "error", err)
		return err
	}
	r.log.Infow("user_repo_create_ok", "id", user.ID, "name", user.Name)
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		r.log.Errorw("user_repo_get_failed", "id", id, "error", err)
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, offset, limit int, name string) ([]domain.User, error) {
	var users []domain.User
	query := r.db.WithContext(ctx).Model(&domain.User{}).Order("id")
	if name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+lowerPattern(name)+"%")
	}
	if err := query.Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		r.log.Errorw("user_repo_list_failed", "offset", offset, "limit", limit, "error", err)
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Count(ctx context.Context, name string) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&domain.User{})
	if name != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+lowerPattern(name)+"%")
	}
	if err := query.Count(&count).Error; err != nil {
		r.log.Errorw("user_repo_count_failed", "error", err)
		return 0, err
	}
	return count, nil
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.User{}, id)
	if result.Error != nil {
		r.log.Errorw("user_repo_delete_failed", "id", id, "error", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.log.Infow("user_repo_delete_ok", "id", id)
	return nil
}
