package dto

import (
	"time"

	"github.com/userdesk/backend/internal/domain"
)

type CreateExportRequest struct {
	Format string `json:"format" validate:"required"`
	Name   string `json:"name,omitempty"`
}

// TaskCreatedResponse is the immediate reply to a task-creating
// request; the caller polls for everything else.
type TaskCreatedResponse struct {
	TaskID      string `json:"task_id"`
	Status      string `json:"status"`
	Format      string `json:"format,omitempty"`
	RecordCount int    `json:"record_count,omitempty"`
}

type TaskResponse struct {
	TaskID           string            `json:"task_id"`
	Kind             domain.TaskKind   `json:"kind"`
	Status           domain.TaskStatus `json:"status"`
	Progress         int               `json:"progress"`
	Format           domain.TaskFormat `json:"format"`
	TotalRecords     int               `json:"total_records"`
	ProcessedRecords int               `json:"processed_records"`
	SuccessRecords   int               `json:"success_records,omitempty"`
	FailedRecords    int               `json:"failed_records,omitempty"`
	Errors           []string          `json:"errors,omitempty"`
	FileName         string            `json:"file_name,omitempty"`
	Error            string            `json:"error,omitempty"`
	SearchName       *string           `json:"search_name,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}

func TaskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		TaskID:           task.ID,
		Kind:             task.Kind,
		Status:           task.Status,
		Progress:         task.Progress,
		Format:           task.Format,
		TotalRecords:     task.TotalRecords,
		ProcessedRecords: task.ProcessedRecords,
		SuccessRecords:   task.SuccessRecords,
		FailedRecords:    task.FailedRecords,
		Errors:           task.Errors,
		FileName:         task.FileName,
		Error:            task.Error,
		SearchName:       task.SearchName,
		CreatedAt:        task.CreatedAt,
	}
}
