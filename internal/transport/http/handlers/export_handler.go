package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/userdesk/backend/internal/codec"
	"github.com/userdesk/backend/internal/core/ports"
	"github.com/userdesk/backend/internal/core/services"
	"github.com/userdesk/backend/internal/domain"
	"github.com/userdesk/backend/internal/infrastructure/logger"
	"github.com/userdesk/backend/internal/transport/http/dto"
)

type ExportHandler struct {
	service ports.ExportService
	logger  *logger.Logger
}

func NewExportHandler(service ports.ExportService, logger *logger.Logger) *ExportHandler {
	return &ExportHandler{service: service, logger: logger}
}

func (h *ExportHandler) CreateExport(c *fiber.Ctx) error {
	var req dto.CreateExportRequest
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warnw("export_create_body_parse_failed", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid request body",
		})
	}

	task, err := h.service.CreateExportTask(c.Context(), ports.CreateExportInput{
		Format: req.Format,
		Name:   req.Name,
	})
	if err != nil {
		if errors.Is(err, services.ErrExportInvalidFormat) {
			h.logger.Warnw("export_create_invalid_format", "format", req.Format)
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: err.Error()})
		}
		h.logger.Errorw("export_create_failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	h.logger.Infow("export_create_accepted", "task_id", task.ID, "format", task.Format)
	return c.Status(fiber.StatusAccepted).JSON(dto.TaskCreatedResponse{
		TaskID: task.ID,
		Status: string(task.Status),
		Format: string(task.Format),
	})
}

// DownloadTemplate serves a freshly generated sample import file.
func (h *ExportHandler) DownloadTemplate(c *fiber.Ctx) error {
	format, ok := domain.ParseTaskFormat(c.Query("format", "csv"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid format: valid formats are json, csv, xlsx, excel",
		})
	}

	fileName, data, err := h.service.GenerateTemplate(format)
	if err != nil {
		h.logger.Errorw("template_generate_failed", "format", format, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	c.Set(fiber.HeaderContentType, codec.ContentType(format))
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return c.Send(data)
}
