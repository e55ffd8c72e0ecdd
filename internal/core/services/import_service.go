package services

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/userdesk/backend/internal/codec"
	"github.com/userdesk/backend/internal/core/ports"
	"github.com/userdesk/backend/internal/domain"
	"github.com/userdesk/backend/internal/infrastructure/logger"
)

type importService struct {
	users  ports.UserRepository
	tasks  ports.TaskStore
	logger *logger.Logger
}

type ImportServiceConfig struct {
	UserRepo  ports.UserRepository
	TaskStore ports.TaskStore
	Logger    *logger.Logger
}

func NewImportService(cfg ImportServiceConfig) ports.ImportService {
	return &importService{users: cfg.UserRepo, tasks: cfg.TaskStore, logger: cfg.Logger}
}

// CreateImportTask parses the whole upload synchronously so unparseable
// files are rejected request-time instead of surfacing later as failed
// tasks. Only after the record count is known does a task exist.
func (s *importService) CreateImportTask(ctx context.Context, input ports.CreateImportInput) (*domain.Task, int, error) {
	format, err := codec.FormatFromFileName(input.FileName)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrImportUnsupported, err)
	}

	data, err := os.ReadFile(input.FilePath)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrImportFileUnreadable, err)
	}

	records, err := codec.ParseUsers(format, data)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrImportInvalidFile, err)
	}
	if len(records) == 0 {
		return nil, 0, ErrImportEmptyFile
	}

	task := domain.NewTask(domain.TaskKindImport, format)
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, 0, err
	}

	s.logger.Infow("import_task_created", "task_id", task.ID, "format", format, "records", len(records))

	go s.runImport(task.ID, input.FilePath, records)

	return task, len(records), nil
}

func (s *importService) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	return s.tasks.Get(ctx, taskID)
}

func (s *importService) runImport(taskID, filePath string, records []codec.ImportRecord) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorw("import_panic", "task_id", taskID, "panic", r)
			s.failTask(taskID, fmt.Sprintf("import panic: %v", r))
		}
	}()

	// The upload has been fully parsed; drop the temporary file whatever
	// the outcome. Removal failures are logged, not escalated.
	defer func() {
		if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
			s.logger.Warnw("import_upload_cleanup_failed", "task_id", taskID, "path", filePath, "error", err)
		}
	}()

	ctx := context.Background()
	total := len(records)

	if _, err := s.tasks.Update(ctx, taskID, ports.TaskUpdate{
		Status:           ptrStatus(domain.TaskStatusProcessing),
		TotalRecords:     ptrInt(total),
		ProcessedRecords: ptrInt(0),
		Progress:         ptrInt(1),
	}); err != nil {
		s.logger.Errorw("import_start_update_failed", "task_id", taskID, "error", err)
		s.failTask(taskID, "failed to start import: "+err.Error())
		return
	}

	success := 0
	for i, record := range records {
		name := strings.TrimSpace(record.Name)
		if name == "" {
			s.appendRecordError(ctx, taskID, record.Position, "name is required")
		} else if err := s.users.Create(ctx, &domain.User{Name: name}); err != nil {
			s.appendRecordError(ctx, taskID, record.Position, err.Error())
		} else {
			success++
		}

		if _, err := s.tasks.Update(ctx, taskID, ports.TaskUpdate{
			ProcessedRecords: ptrInt(i + 1),
			SuccessRecords:   ptrInt(success),
		}); err != nil {
			s.logger.Warnw("import_progress_update_failed", "task_id", taskID, "record", i+1, "error", err)
		}
	}

	// Partial success is a normal completion; only fatal pre-processing
	// conditions fail the task itself.
	if _, err := s.tasks.Update(ctx, taskID, ports.TaskUpdate{
		Status:           ptrStatus(domain.TaskStatusCompleted),
		ProcessedRecords: ptrInt(total),
		SuccessRecords:   ptrInt(success),
	}); err != nil {
		s.logger.Errorw("import_complete_update_failed", "task_id", taskID, "error", err)
		return
	}

	s.logger.Infow("import_task_completed", "task_id", taskID, "total", total, "success", success, "failed", total-success)
}

func (s *importService) appendRecordError(ctx context.Context, taskID string, position int, reason string) {
	message := fmt.Sprintf("record %d: %s", position, reason)
	if err := s.tasks.AppendError(ctx, taskID, message); err != nil {
		s.logger.Warnw("import_append_error_failed", "task_id", taskID, "error", err)
	}
}

func (s *importService) failTask(taskID, message string) {
	ctx := context.Background()
	if _, err := s.tasks.Update(ctx, taskID, ports.TaskUpdate{
		Status: ptrStatus(domain.TaskStatusFailed),
		Error:  &message,
	}); err != nil {
		s.logger.Errorw("import_fail_update_failed", "task_id", taskID, "error", err)
	}
}
