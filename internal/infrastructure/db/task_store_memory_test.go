package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userdesk/backend/internal/core/ports"
	"github.com/userdesk/backend/internal/domain"
)

func ptr[T any](v T) *T { return &v }

func newStoredTask(t *testing.T, store *MemoryTaskStore, kind domain.TaskKind) *domain.Task {
	t.Helper()
	task := domain.NewTask(kind, domain.TaskFormatJSON)
	require.NoError(t, store.Create(context.Background(), task))
	return task
}

func TestMemoryTaskStoreGet(t *testing.T) {
	store := NewMemoryTaskStore()
	ctx := context.Background()

	t.Run("unknown id returns not found", func(t *testing.T) {
		_, err := store.Get(ctx, "nonexistent")
		assert.ErrorIs(t, err, ports.ErrTaskNotFound)
	})

	t.Run("created task is readable", func(t *testing.T) {
		task := newStoredTask(t, store, domain.TaskKindExport)
		got, err := store.Get(ctx, task.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.TaskStatusPending, got.Status)
		assert.Equal(t, 0, got.Progress)
	})
}

func TestMemoryTaskStoreUpdateMerge(t *testing.T) {
	store := NewMemoryTaskStore()
	ctx := context.Background()
	task := newStoredTask(t, store, domain.TaskKindExport)

	updated, err := store.Update(ctx, task.ID, ports.TaskUpdate{
		Status:       ptr(domain.TaskStatusProcessing),
		TotalRecords: ptr(200),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusProcessing, updated.Status)
	assert.Equal(t, 200, updated.TotalRecords)

	// Counters alone recompute progress; untouched fields survive.
	updated, err = store.Update(ctx, task.ID, ports.TaskUpdate{ProcessedRecords: ptr(100)})
	require.NoError(t, err)
	assert.Equal(t, 50, updated.Progress)
	assert.Equal(t, 200, updated.TotalRecords)
	assert.Equal(t, domain.TaskStatusProcessing, updated.Status)
}

func TestMemoryTaskStoreProgressMonotone(t *testing.T) {
	store := NewMemoryTaskStore()
	ctx := context.Background()
	task := newStoredTask(t, store, domain.TaskKindImport)

	_, err := store.Update(ctx, task.ID, ports.TaskUpdate{
		Status:       ptr(domain.TaskStatusProcessing),
		TotalRecords: ptr(1000),
	})
	require.NoError(t, err)

	prev := 0
	for processed := 0; processed <= 1000; processed += 100 {
		updated, err := store.Update(ctx, task.ID, ports.TaskUpdate{ProcessedRecords: ptr(processed)})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, updated.Progress, prev)
		prev = updated.Progress
	}

	// Derived progress stays below 100 until the completing update.
	assert.Equal(t, 99, prev)
	updated, err := store.Update(ctx, task.ID, ports.TaskUpdate{Status: ptr(domain.TaskStatusCompleted)})
	require.NoError(t, err)
	assert.Equal(t, 100, updated.Progress)
}

func TestMemoryTaskStoreProgressNeverRegressesBelowMarker(t *testing.T) {
	store := NewMemoryTaskStore()
	ctx := context.Background()
	task := newStoredTask(t, store, domain.TaskKindImport)

	// The producer's start update writes an explicit nonzero marker.
	_, err := store.Update(ctx, task.ID, ports.TaskUpdate{
		Status:       ptr(domain.TaskStatusProcessing),
		TotalRecords: ptr(300),
		Progress:     ptr(1),
	})
	require.NoError(t, err)

	// The first counters-only update derives 1/300 -> 0, which must not
	// win over the marker.
	updated, err := store.Update(ctx, task.ID, ports.TaskUpdate{ProcessedRecords: ptr(1)})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Progress)

	// Once the derived value overtakes the marker it takes over.
	updated, err = store.Update(ctx, task.ID, ports.TaskUpdate{ProcessedRecords: ptr(150)})
	require.NoError(t, err)
	assert.Equal(t, 50, updated.Progress)
}

func TestMemoryTaskStoreInvalidTransition(t *testing.T) {
	store := NewMemoryTaskStore()
	ctx := context.Background()
	task := newStoredTask(t, store, domain.TaskKindExport)

	_, err := store.Update(ctx, task.ID, ports.TaskUpdate{Status: ptr(domain.TaskStatusProcessing)})
	require.NoError(t, err)

	// Backwards moves from a non-terminal state are rejected with their
	// own error, not the terminal one.
	_, err = store.Update(ctx, task.ID, ports.TaskUpdate{Status: ptr(domain.TaskStatusPending)})
	assert.ErrorIs(t, err, ports.ErrInvalidTransition)
	assert.NotErrorIs(t, err, ports.ErrTaskFinished)

	got, err := store.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusProcessing, got.Status)
}

func TestMemoryTaskStoreTerminalImmutability(t *testing.T) {
	store := NewMemoryTaskStore()
	ctx := context.Background()

	task := newStoredTask(t, store, domain.TaskKindExport)
	_, err := store.Update(ctx, task.ID, ports.TaskUpdate{Status: ptr(domain.TaskStatusCompleted)})
	require.NoError(t, err)

	_, err = store.Update(ctx, task.ID, ports.TaskUpdate{Status: ptr(domain.TaskStatusProcessing)})
	assert.ErrorIs(t, err, ports.ErrTaskFinished)

	_, err = store.Update(ctx, task.ID, ports.TaskUpdate{ProcessedRecords: ptr(5)})
	assert.ErrorIs(t, err, ports.ErrTaskFinished)

	err = store.AppendError(ctx, task.ID, "too late")
	assert.ErrorIs(t, err, ports.ErrTaskFinished)

	got, err := store.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusCompleted, got.Status)
	assert.Equal(t, 100, got.Progress)
}

func TestMemoryTaskStoreAppendError(t *testing.T) {
	store := NewMemoryTaskStore()
	ctx := context.Background()
	task := newStoredTask(t, store, domain.TaskKindImport)

	require.NoError(t, store.AppendError(ctx, task.ID, "record 3: name is required"))
	require.NoError(t, store.AppendError(ctx, task.ID, "record 7: name is required"))

	got, err := store.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StringList{"record 3: name is required", "record 7: name is required"}, got.Errors)
	assert.Equal(t, 2, got.FailedRecords)

	assert.ErrorIs(t, store.AppendError(ctx, "nonexistent", "x"), ports.ErrTaskNotFound)
}

func TestMemoryTaskStoreCleanupExpired(t *testing.T) {
	store := NewMemoryTaskStore()
	ctx := context.Background()

	old := domain.NewTask(domain.TaskKindExport, domain.TaskFormatCSV)
	old.CreatedAt = time.Now().Add(-48 * time.Hour)
	require.NoError(t, store.Create(ctx, old))

	fresh := newStoredTask(t, store, domain.TaskKindExport)

	stuck := domain.NewTask(domain.TaskKindImport, domain.TaskFormatJSON)
	stuck.CreatedAt = time.Now().Add(-48 * time.Hour)
	stuck.Status = domain.TaskStatusProcessing
	require.NoError(t, store.Create(ctx, stuck))

	deleted, err := store.CleanupExpired(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	_, err = store.Get(ctx, old.ID)
	assert.ErrorIs(t, err, ports.ErrTaskNotFound)

	_, err = store.Get(ctx, fresh.ID)
	assert.NoError(t, err)

	// Processing tasks are never swept, whatever their age.
	_, err = store.Get(ctx, stuck.ID)
	assert.NoError(t, err)
}
