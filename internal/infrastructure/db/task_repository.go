package db

import (
	"context"
	"errors"
	"time"

	"github.com/userdesk/backend/internal/core/ports"
	"github.com/userdesk/backend/internal/domain"
	"github.com/userdesk/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

const (
	storeRetryAttempts = 3
	storeRetryDelay    = 100 * time.Millisecond
)

// taskRepository persists tasks as single keyed rows so any stateless
// handler instance can read a task while its owning producer writes it.
// Transient backend failures are retried internally; callers only see
// the closed error set from ports.
type taskRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskRepository(db *gorm.DB, log *logger.Logger) ports.TaskStore {
	return &taskRepository{db: db, log: log}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	err := r.withRetry(func() error {
		return r.db.WithContext(ctx).Create(task).Error
	})
	if err != nil {
		r.log.Errorw("task_repo_create_failed", "task_id", task.ID, "error", err)
		return err
	}
	r.log.Infow("task_repo_create_ok", "task_id", task.ID, "kind", task.Kind)
	return nil
}

func (r *taskRepository) Get(ctx context.Context, id string) (*domain.Task, error) {
	var task domain.Task
	err := r.withRetry(func() error {
		return r.db.WithContext(ctx).First(&task, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) Update(ctx context.Context, id string, update ports.TaskUpdate) (*domain.Task, error) {
	var updated *domain.Task
	err := r.withRetry(func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var current domain.Task
			if err := tx.First(&current, "id = ?", id).Error; err != nil {
				return err
			}

			merged, fields, err := mergeTaskUpdate(&current, update)
			if err != nil {
				return err
			}

			// A single UPDATE keeps the whole field set atomic for
			// concurrent pollers.
			if len(fields) > 0 {
				if err := tx.Model(&domain.Task{}).Where("id = ?", id).Updates(fields).Error; err != nil {
					return err
				}
			}
			updated = merged
			return nil
		})
	})
	if err != nil {
		if !errors.Is(err, ports.ErrTaskNotFound) && !errors.Is(err, ports.ErrTaskFinished) &&
			!errors.Is(err, ports.ErrInvalidTransition) {
			r.log.Errorw("task_repo_update_failed", "task_id", id, "error", err)
		}
		return nil, err
	}
	return updated, nil
}

func (r *taskRepository) AppendError(ctx context.Context, id string, message string) error {
	err := r.withRetry(func() error {
		return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var current domain.Task
			if err := tx.First(&current, "id = ?", id).Error; err != nil {
				return err
			}
			if current.Status.Terminal() {
				return ports.ErrTaskFinished
			}

			errs := append(current.Errors, message)
			return tx.Model(&domain.Task{}).Where("id = ?", id).Updates(map[string]interface{}{
				"errors":         errs,
				"failed_records": current.FailedRecords + 1,
			}).Error
		})
	})
	if err != nil && !errors.Is(err, ports.ErrTaskNotFound) && !errors.Is(err, ports.ErrTaskFinished) {
		r.log.Errorw("task_repo_append_error_failed", "task_id", id, "error", err)
	}
	return err
}

func (r *taskRepository) CleanupExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	var deleted int64
	err := r.withRetry(func() error {
		result := r.db.WithContext(ctx).
			Where("created_at < ? AND status <> ?", olderThan, domain.TaskStatusProcessing).
			Delete(&domain.Task{})
		deleted = result.RowsAffected
		return result.Error
	})
	if err != nil {
		r.log.Errorw("task_repo_cleanup_failed", "error", err)
		return 0, err
	}
	if deleted > 0 {
		r.log.Infow("task_repo_cleanup_ok", "deleted", deleted)
	}
	return deleted, nil
}

// withRetry retries transient backend failures a bounded number of
// times before classifying them as ErrStoreUnavailable. Logical
// failures (not found, terminal state) pass through untouched.
func (r *taskRepository) withRetry(op func() error) error {
	var err error
	for attempt := 0; attempt < storeRetryAttempts; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.ErrTaskNotFound
		}
		if errors.Is(err, ports.ErrTaskFinished) || errors.Is(err, ports.ErrInvalidTransition) {
			return err
		}
		time.Sleep(storeRetryDelay)
	}
	return errors.Join(ports.ErrStoreUnavailable, err)
}

// mergeTaskUpdate applies a partial update to a snapshot, enforcing the
// forward-only state machine and recomputing progress from counters
// when the caller did not pass an explicit value. Derived progress is
// held below 100 until the update that completes the task.
func mergeTaskUpdate(current *domain.Task, update ports.TaskUpdate) (*domain.Task, map[string]interface{}, error) {
	if current.Status.Terminal() {
		return nil, nil, ports.ErrTaskFinished
	}

	merged := *current
	fields := map[string]interface{}{}

	if update.Status != nil {
		if !current.Status.CanTransition(*update.Status) {
			return nil, nil, ports.ErrInvalidTransition
		}
		merged.Status = *update.Status
		fields["status"] = merged.Status
	}
	if update.TotalRecords != nil {
		merged.TotalRecords = *update.TotalRecords
		fields["total_records"] = merged.TotalRecords
	}
	if update.ProcessedRecords != nil {
		merged.ProcessedRecords = *update.ProcessedRecords
		fields["processed_records"] = merged.ProcessedRecords
	}
	if update.SuccessRecords != nil {
		merged.SuccessRecords = *update.SuccessRecords
		fields["success_records"] = merged.SuccessRecords
	}
	if update.FailedRecords != nil {
		merged.FailedRecords = *update.FailedRecords
		fields["failed_records"] = merged.FailedRecords
	}
	if update.FileName != nil {
		merged.FileName = *update.FileName
		fields["file_name"] = merged.FileName
	}
	if update.FilePath != nil {
		merged.FilePath = *update.FilePath
		fields["file_path"] = merged.FilePath
	}
	if update.Error != nil {
		merged.Error = *update.Error
		fields["error"] = merged.Error
	}

	switch {
	case merged.Status == domain.TaskStatusCompleted:
		merged.Progress = 100
	case update.Progress != nil:
		merged.Progress = *update.Progress
	case update.ProcessedRecords != nil || update.TotalRecords != nil:
		merged.Progress = domain.ComputeProgress(merged.ProcessedRecords, merged.TotalRecords)
	}
	if merged.Status != domain.TaskStatusCompleted {
		// Counter-derived progress rounds to 0 on large totals, which
		// would regress below an earlier explicit marker. Progress
		// never goes backwards and never reaches 100 before the
		// completing update.
		if merged.Progress < current.Progress {
			merged.Progress = current.Progress
		}
		if merged.Progress > 99 {
			merged.Progress = 99
		}
	}
	if merged.Progress != current.Progress || merged.Status == domain.TaskStatusCompleted {
		fields["progress"] = merged.Progress
	}

	return &merged, fields, nil
}
