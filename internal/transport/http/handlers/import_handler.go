package handlers

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/userdesk/backend/internal/core/ports"
	"github.com/userdesk/backend/internal/core/services"
	"github.com/userdesk/backend/internal/infrastructure/logger"
	"github.com/userdesk/backend/internal/transport/http/dto"
)

type ImportHandler struct {
	service   ports.ImportService
	logger    *logger.Logger
	uploadDir string
}

func NewImportHandler(service ports.ImportService, logger *logger.Logger, uploadDir string) *ImportHandler {
	return &ImportHandler{service: service, logger: logger, uploadDir: uploadDir}
}

func (h *ImportHandler) CreateImport(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.logger.Warnw("import_create_missing_file", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "missing uploaded file: expected multipart field \"file\"",
		})
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		h.logger.Errorw("import_upload_dir_failed", "dir", h.uploadDir, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "failed to store upload"})
	}

	savedPath := filepath.Join(h.uploadDir, uuid.New().String()+filepath.Ext(fileHeader.Filename))
	if err := c.SaveFile(fileHeader, savedPath); err != nil {
		h.logger.Errorw("import_upload_save_failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "failed to store upload"})
	}

	task, recordCount, err := h.service.CreateImportTask(c.Context(), ports.CreateImportInput{
		FilePath: savedPath,
		FileName: fileHeader.Filename,
	})
	if err != nil {
		// Rejected before any task existed; nothing owns the file now.
		if removeErr := os.Remove(savedPath); removeErr != nil {
			h.logger.Warnw("import_upload_cleanup_failed", "path", savedPath, "error", removeErr)
		}
		switch {
		case errors.Is(err, services.ErrImportUnsupported),
			errors.Is(err, services.ErrImportInvalidFile),
			errors.Is(err, services.ErrImportEmptyFile):
			h.logger.Warnw("import_create_rejected", "file", fileHeader.Filename, "error", err)
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
		default:
			h.logger.Errorw("import_create_failed", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
		}
	}

	h.logger.Infow("import_create_accepted", "task_id", task.ID, "records", recordCount)
	return c.Status(fiber.StatusAccepted).JSON(dto.TaskCreatedResponse{
		TaskID:      task.ID,
		Status:      string(task.Status),
		Format:      string(task.Format),
		RecordCount: recordCount,
	})
}
