package ports

import (
	"context"

	"github.com/userdesk/backend/internal/domain"
)

type UserService interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error)
	GetUsers(ctx context.Context, input ListUsersInput) ([]domain.User, int64, error)
	GetUserByID(ctx context.Context, id uint) (*domain.User, error)
	DeleteUser(ctx context.Context, id uint) error
}

type CreateUserInput struct {
	Name string
}

type ListUsersInput struct {
	Page     int
	PageSize int
	Name     string
}

type InfoViewService interface {
	GetInfoViews(ctx context.Context, page, pageSize int) ([]domain.InfoView, int64, error)
}

type ExportService interface {
	// CreateExportTask validates the input, creates a pending task and
	// dispatches the export producer in the background. It returns as
	// soon as the task exists.
	CreateExportTask(ctx context.Context, input CreateExportInput) (*domain.Task, error)
	GetTask(ctx context.Context, taskID string) (*domain.Task, error)
	// GenerateTemplate renders a small sample import file in the given
	// format.
	GenerateTemplate(format domain.TaskFormat) (fileName string, data []byte, err error)
}

type CreateExportInput struct {
	Format string
	Name   string
}

type ImportService interface {
	// CreateImportTask parses the uploaded file synchronously, rejects
	// unparseable input request-time, then creates a pending task and
	// dispatches the import producer in the background.
	CreateImportTask(ctx context.Context, input CreateImportInput) (*domain.Task, int, error)
	GetTask(ctx context.Context, taskID string) (*domain.Task, error)
}

type CreateImportInput struct {
	FilePath string
	FileName string
}
