package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/userdesk/backend/internal/core/ports"
	"github.com/userdesk/backend/internal/infrastructure/logger"
	"github.com/userdesk/backend/internal/transport/http/dto"
)

type InfoViewHandler struct {
	service ports.InfoViewService
	logger  *logger.Logger
}

func NewInfoViewHandler(service ports.InfoViewService, logger *logger.Logger) *InfoViewHandler {
	return &InfoViewHandler{service: service, logger: logger}
}

func (h *InfoViewHandler) GetInfoViews(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	pageSize := c.QueryInt("page_size", 10)

	views, total, err := h.service.GetInfoViews(c.Context(), page, pageSize)
	if err != nil {
		h.logger.Errorw("info_views_list_failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.InfoViewsToResponse(views, total, page, pageSize))
}
