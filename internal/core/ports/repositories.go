package ports

import (
	"context"
	"time"

	"github.com/userdesk/backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	// List returns a page of users; a non-empty name is matched as a
	// case-insensitive substring.
	List(ctx context.Context, offset, limit int, name string) ([]domain.User, error)
	Count(ctx context.Context, name string) (int64, error)
	Delete(ctx context.Context, id uint) error
}

type InfoViewRepository interface {
	List(ctx context.Context, offset, limit int) ([]domain.InfoView, error)
	Count(ctx context.Context) (int64, error)
}

// TaskUpdate is a partial-field merge applied to a stored task. Nil
// fields are left untouched. When Progress is nil but counters are
// given, the store recomputes progress from the merged counters.
type TaskUpdate struct {
	Status           *domain.TaskStatus
	Progress         *int
	TotalRecords     *int
	ProcessedRecords *int
	SuccessRecords   *int
	FailedRecords    *int
	FileName         *string
	FilePath         *string
	Error            *string
}

// TaskStore is durable keyed storage for task records. Any number of
// stateless handlers may read a task while its single owning producer
// writes it; each update is atomic with respect to concurrent readers.
type TaskStore interface {
	Create(ctx context.Context, task *domain.Task) error
	Get(ctx context.Context, id string) (*domain.Task, error)
	Update(ctx context.Context, id string, update TaskUpdate) (*domain.Task, error)
	// AppendError appends a per-record failure message and increments
	// the failed counter.
	AppendError(ctx context.Context, id string, message string) error
	// CleanupExpired deletes tasks created before the cutoff, skipping
	// tasks still in processing.
	CleanupExpired(ctx context.Context, olderThan time.Time) (int64, error)
}
