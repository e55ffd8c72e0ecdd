package dto

import (
	"strings"
	"time"

	"github.com/userdesk/backend/internal/domain"
)

type CreateUserRequest struct {
	Name string `json:"name" validate:"required"`
}

func (r *CreateUserRequest) Validate() []string {
	var errors []string
	if strings.TrimSpace(r.Name) == "" {
		errors = append(errors, "name is required")
	}
	return errors
}

type UserResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func UserToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

type UserListResponse struct {
	Data     []UserResponse `json:"data"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

func UsersToResponse(users []domain.User, total int64, page, pageSize int) UserListResponse {
	responses := make([]UserResponse, len(users))
	for i, user := range users {
		responses[i] = UserToResponse(&user)
	}
	return UserListResponse{Data: responses, Total: total, Page: page, PageSize: pageSize}
}

type InfoViewResponse struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type InfoViewListResponse struct {
	Data     []InfoViewResponse `json:"data"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
}

func InfoViewsToResponse(views []domain.InfoView, total int64, page, pageSize int) InfoViewListResponse {
	responses := make([]InfoViewResponse, len(views))
	for i, view := range views {
		responses[i] = InfoViewResponse{
			ID:        view.ID,
			Title:     view.Title,
			Content:   view.Content,
			CreatedAt: view.CreatedAt,
		}
	}
	return InfoViewListResponse{Data: responses, Total: total, Page: page, PageSize: pageSize}
}

type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string `json:"message"`
}
