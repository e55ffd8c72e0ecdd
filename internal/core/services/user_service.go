package services

import (
	"context"
	"errors"
	"strings"

	"github.com/userdesk/backend/internal/core/ports"
	"github.com/userdesk/backend/internal/domain"
	"github.com/userdesk/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

const defaultPageSize = 10

type userService struct {
	repo   ports.UserRepository
	logger *logger.Logger
}

type UserServiceConfig struct {
	Repository ports.UserRepository
	Logger     *logger.Logger
}

func NewUserService(cfg UserServiceConfig) ports.UserService {
	return &userService{repo: cfg.Repository, logger: cfg.Logger}
}

func (s *userService) CreateUser(ctx context.Context, input ports.CreateUserInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrUserInvalidInput
	}

	user := &domain.User{Name: name}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) GetUsers(ctx context.Context, input ports.ListUsersInput) ([]domain.User, int64, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	pageSize := input.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	name := strings.TrimSpace(input.Name)
	total, err := s.repo.Count(ctx, name)
	if err != nil {
		return nil, 0, err
	}

	users, err := s.repo.List(ctx, (page-1)*pageSize, pageSize, name)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// ==================== Info Views ====================

type infoViewService struct {
	repo   ports.InfoViewRepository
	logger *logger.Logger
}

func NewInfoViewService(repo ports.InfoViewRepository, logger *logger.Logger) ports.InfoViewService {
	return &infoViewService{repo: repo, logger: logger}
}

func (s *infoViewService) GetInfoViews(ctx context.Context, page, pageSize int) ([]domain.InfoView, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.repo.List(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}
