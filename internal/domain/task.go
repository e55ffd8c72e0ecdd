package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type TaskKind string

const (
	TaskKindExport TaskKind = "export"
	TaskKindImport TaskKind = "import"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Terminal reports whether no further transition may leave the status.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// CanTransition enforces the forward-only task state machine:
// pending -> processing -> completed|failed.
func (s TaskStatus) CanTransition(to TaskStatus) bool {
	if s == to {
		return true
	}
	switch s {
	case TaskStatusPending:
		return to == TaskStatusProcessing || to == TaskStatusCompleted || to == TaskStatusFailed
	case TaskStatusProcessing:
		return to == TaskStatusCompleted || to == TaskStatusFailed
	default:
		return false
	}
}

type TaskFormat string

const (
	TaskFormatJSON TaskFormat = "json"
	TaskFormatCSV  TaskFormat = "csv"
	TaskFormatXLSX TaskFormat = "xlsx"
)

// ValidTaskFormats is the accepted set for task creation, in the order
// surfaced to callers on validation failure. "excel" and "xls" are
// accepted as spellings of xlsx.
var ValidTaskFormats = []string{"json", "csv", "xlsx", "excel"}

// ParseTaskFormat normalizes a caller-supplied format string.
func ParseTaskFormat(raw string) (TaskFormat, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "json":
		return TaskFormatJSON, true
	case "csv":
		return TaskFormatCSV, true
	case "xlsx", "xls", "excel":
		return TaskFormatXLSX, true
	default:
		return "", false
	}
}

// Task is a unit of background work (export or import) with persisted,
// pollable state. One row per task; tasks never join to anything.
type Task struct {
	ID        string    `gorm:"primaryKey;size:64" json:"task_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Kind     TaskKind   `gorm:"size:20;not null;index" json:"kind"`
	Status   TaskStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	Progress int        `gorm:"not null;default:0" json:"progress"`
	Format   TaskFormat `gorm:"size:10;not null" json:"format"`

	TotalRecords     int `gorm:"not null;default:0" json:"total_records"`
	ProcessedRecords int `gorm:"not null;default:0" json:"processed_records"`
	SuccessRecords   int `gorm:"not null;default:0" json:"success_records"`
	FailedRecords    int `gorm:"not null;default:0" json:"failed_records"`

	Errors StringList `gorm:"type:jsonb" json:"errors,omitempty"`

	FileName string `gorm:"size:255" json:"file_name,omitempty"`
	FilePath string `gorm:"size:512" json:"-"`

	Error      string  `gorm:"type:text" json:"error,omitempty"`
	SearchName *string `gorm:"size:255" json:"search_name,omitempty"`
}

// NewTaskID allocates a human-sortable, collision-resistant task id
// without a central counter: kind + millisecond timestamp + random suffix.
func NewTaskID(kind TaskKind) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("%s_%d_%s", kind, time.Now().UnixMilli(), suffix)
}

// NewTask builds a pending task record ready for insertion.
func NewTask(kind TaskKind, format TaskFormat) *Task {
	return &Task{
		ID:       NewTaskID(kind),
		Kind:     kind,
		Status:   TaskStatusPending,
		Progress: 0,
		Format:   format,
	}
}
