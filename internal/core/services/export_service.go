package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/userdesk/backend/internal/codec"
	"github.com/userdesk/backend/internal/core/ports"
	"github.com/userdesk/backend/internal/domain"
	"github.com/userdesk/backend/internal/infrastructure/logger"
)

// fetchPhaseMax caps progress during the batched fetch so the
// serialization phase has visible room before 100.
const fetchPhaseMax = 95

type exportService struct {
	users     ports.UserRepository
	tasks     ports.TaskStore
	logger    *logger.Logger
	exportDir string
	batchSize int
}

type ExportServiceConfig struct {
	UserRepo  ports.UserRepository
	TaskStore ports.TaskStore
	Logger    *logger.Logger
	ExportDir string
	BatchSize int
}

func NewExportService(cfg ExportServiceConfig) ports.ExportService {
	batchSize := cfg.BatchSize
	if batchSize < 1 {
		batchSize = 1000
	}
	return &exportService{
		users:     cfg.UserRepo,
		tasks:     cfg.TaskStore,
		logger:    cfg.Logger,
		exportDir: cfg.ExportDir,
		batchSize: batchSize,
	}
}

func (s *exportService) CreateExportTask(ctx context.Context, input ports.CreateExportInput) (*domain.Task, error) {
	format, ok := domain.ParseTaskFormat(input.Format)
	if !ok {
		return nil, fmt.Errorf("%w: %q (valid formats: %s)",
			ErrExportInvalidFormat, input.Format, strings.Join(domain.ValidTaskFormats, ", "))
	}

	task := domain.NewTask(domain.TaskKindExport, format)
	name := strings.TrimSpace(input.Name)
	if name != "" {
		task.SearchName = &name
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}

	s.logger.Infow("export_task_created", "task_id", task.ID, "format", format, "search_name", name)

	// Detached producer: the request returns with the task handle while
	// the export runs to a terminal state on its own.
	go s.runExport(task.ID, format, name)

	return task, nil
}

func (s *exportService) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	return s.tasks.Get(ctx, taskID)
}

func (s *exportService) GenerateTemplate(format domain.TaskFormat) (string, []byte, error) {
	data, err := codec.GenerateTemplate(format)
	if err != nil {
		return "", nil, err
	}
	return "user_import_template" + codec.FileExtension(format), data, nil
}

func (s *exportService) runExport(taskID string, format domain.TaskFormat, name string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorw("export_panic", "task_id", taskID, "panic", r)
			s.failTask(taskID, fmt.Sprintf("export panic: %v", r))
		}
	}()

	ctx := context.Background()

	// Early nonzero marker so pollers can tell "confirmed running" from
	// "accepted but not yet started".
	if _, err := s.tasks.Update(ctx, taskID, ports.TaskUpdate{
		Status:   ptrStatus(domain.TaskStatusProcessing),
		Progress: ptrInt(1),
	}); err != nil {
		s.logger.Errorw("export_start_update_failed", "task_id", taskID, "error", err)
		s.failTask(taskID, "failed to start export: "+err.Error())
		return
	}

	count, err := s.users.Count(ctx, name)
	if err != nil {
		s.failTask(taskID, "failed to count records: "+err.Error())
		return
	}
	total := int(count)

	if _, err := s.tasks.Update(ctx, taskID, ports.TaskUpdate{
		TotalRecords:     ptrInt(total),
		ProcessedRecords: ptrInt(0),
		Progress:         ptrInt(1),
	}); err != nil {
		s.failTask(taskID, "failed to update task: "+err.Error())
		return
	}

	users := make([]domain.User, 0, total)
	for offset := 0; offset < total; offset += s.batchSize {
		batch, err := s.users.List(ctx, offset, s.batchSize, name)
		if err != nil {
			s.failTask(taskID, fmt.Sprintf("failed to fetch records at offset %d: %v", offset, err))
			return
		}
		users = append(users, batch...)

		processed := len(users)
		if _, err := s.tasks.Update(ctx, taskID, ports.TaskUpdate{
			ProcessedRecords: ptrInt(processed),
			Progress:         ptrInt(domain.ComputePhaseProgress(processed, total, fetchPhaseMax)),
		}); err != nil {
			s.failTask(taskID, "failed to update progress: "+err.Error())
			return
		}
	}

	// Write phase: fixed checkpoints give pollers visible motion while
	// the file is produced.
	s.updateProgress(ctx, taskID, 96)
	data, err := codec.EncodeUsers(format, users)
	if err != nil {
		s.failTask(taskID, "failed to serialize records: "+err.Error())
		return
	}
	s.updateProgress(ctx, taskID, 97)

	fileName := fmt.Sprintf("users_export_%s%s", time.Now().Format("20060102_150405"), codec.FileExtension(format))
	filePath := filepath.Join(s.exportDir, taskID+codec.FileExtension(format))
	if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
		s.failTask(taskID, "failed to prepare export directory: "+err.Error())
		return
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		s.failTask(taskID, "failed to write export file: "+err.Error())
		return
	}
	s.updateProgress(ctx, taskID, 98)

	if _, err := s.tasks.Update(ctx, taskID, ports.TaskUpdate{
		Status:           ptrStatus(domain.TaskStatusCompleted),
		ProcessedRecords: ptrInt(total),
		FileName:         &fileName,
		FilePath:         &filePath,
	}); err != nil {
		s.logger.Errorw("export_complete_update_failed", "task_id", taskID, "error", err)
		return
	}

	s.logger.Infow("export_task_completed", "task_id", taskID, "total", total, "file", fileName)
}

func (s *exportService) updateProgress(ctx context.Context, taskID string, progress int) {
	if _, err := s.tasks.Update(ctx, taskID, ports.TaskUpdate{Progress: ptrInt(progress)}); err != nil {
		s.logger.Warnw("export_progress_update_failed", "task_id", taskID, "progress", progress, "error", err)
	}
}

func (s *exportService) failTask(taskID, message string) {
	ctx := context.Background()
	if _, err := s.tasks.Update(ctx, taskID, ports.TaskUpdate{
		Status: ptrStatus(domain.TaskStatusFailed),
		Error:  &message,
	}); err != nil {
		s.logger.Errorw("export_fail_update_failed", "task_id", taskID, "error", err)
	}
}

func ptrInt(v int) *int                            { return &v }
func ptrStatus(v domain.TaskStatus) *domain.TaskStatus { return &v }
