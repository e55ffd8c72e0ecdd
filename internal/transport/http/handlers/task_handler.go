package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/userdesk/backend/internal/codec"
	"github.com/userdesk/backend/internal/core/ports"
	"github.com/userdesk/backend/internal/domain"
	"github.com/userdesk/backend/internal/infrastructure/logger"
	"github.com/userdesk/backend/internal/transport/http/dto"
)

type TaskHandler struct {
	store  ports.TaskStore
	logger *logger.Logger
}

func NewTaskHandler(store ports.TaskStore, logger *logger.Logger) *TaskHandler {
	return &TaskHandler{store: store, logger: logger}
}

func (h *TaskHandler) GetTask(c *fiber.Ctx) error {
	taskID := c.Params("id")

	task, err := h.store.Get(c.Context(), taskID)
	if err != nil {
		if errors.Is(err, ports.ErrTaskNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "task not found"})
		}
		h.logger.Errorw("task_get_failed", "task_id", taskID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(dto.TaskToResponse(task))
}

// DownloadResult streams a completed task's file with the MIME type and
// attachment name stored on the task.
func (h *TaskHandler) DownloadResult(c *fiber.Ctx) error {
	taskID := c.Params("id")

	task, err := h.store.Get(c.Context(), taskID)
	if err != nil {
		if errors.Is(err, ports.ErrTaskNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "task not found"})
		}
		h.logger.Errorw("task_download_get_failed", "task_id", taskID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	if task.Status != domain.TaskStatusCompleted {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: fmt.Sprintf("task is not completed yet (status: %s, progress: %d%%)", task.Status, task.Progress),
		})
	}

	if task.FilePath == "" {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "task has no result file"})
	}
	if _, err := os.Stat(task.FilePath); err != nil {
		h.logger.Warnw("task_download_file_missing", "task_id", taskID, "path", task.FilePath)
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "result file no longer available"})
	}

	c.Set(fiber.HeaderContentType, codec.ContentType(task.Format))
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+task.FileName+`"`)
	return c.SendFile(task.FilePath)
}

// StreamProgress pushes task snapshots over a websocket until the task
// reaches a terminal state, sparing clients the polling loop.
func (h *TaskHandler) StreamProgress(c *websocket.Conn) {
	taskID := c.Params("id")
	defer c.Close()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		task, err := h.store.Get(context.Background(), taskID)
		if err != nil {
			if errors.Is(err, ports.ErrTaskNotFound) {
				c.WriteMessage(websocket.TextMessage, []byte(`{"error":"task not found"}`))
				return
			}
			h.logger.Errorw("task_ws_get_failed", "task_id", taskID, "error", err)
			return
		}

		payload, err := json.Marshal(dto.TaskToResponse(task))
		if err != nil {
			return
		}
		if err := c.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
		if task.Status.Terminal() {
			return
		}
		<-ticker.C
	}
}
