package services_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userdesk/backend/internal/core/ports"
	"github.com/userdesk/backend/internal/core/services"
	"github.com/userdesk/backend/internal/domain"
	"github.com/userdesk/backend/internal/infrastructure/db"
)

func newImportService(t *testing.T, repo *fakeUserRepo, store ports.TaskStore) ports.ImportService {
	t.Helper()
	return services.NewImportService(services.ImportServiceConfig{
		UserRepo:  repo,
		TaskStore: store,
		Logger:    newTestLogger(t),
	})
}

func writeUpload(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportPartialFailureStillCompletes(t *testing.T) {
	// 10 records; 3 and 7 have empty names and must fail individually
	// without failing the task.
	content := `[`
	for i := 1; i <= 10; i++ {
		if i > 1 {
			content += ","
		}
		if i == 3 || i == 7 {
			content += `{"name":"  "}`
		} else {
			content += fmt.Sprintf(`{"name":"User %d"}`, i)
		}
	}
	content += `]`

	store := db.NewMemoryTaskStore()
	repo := newFakeUserRepo()
	svc := newImportService(t, repo, store)

	path := writeUpload(t, "users.json", content)
	task, count, err := svc.CreateImportTask(context.Background(), ports.CreateImportInput{
		FilePath: path,
		FileName: "users.json",
	})
	require.NoError(t, err)
	assert.Equal(t, 10, count)
	assert.Equal(t, domain.TaskStatusPending, task.Status)

	final := waitForTerminal(t, store, task.ID)
	assert.Equal(t, domain.TaskStatusCompleted, final.Status)
	assert.Equal(t, 100, final.Progress)
	assert.Equal(t, 10, final.TotalRecords)
	assert.Equal(t, 10, final.ProcessedRecords)
	assert.Equal(t, 8, final.SuccessRecords)
	assert.Equal(t, 2, final.FailedRecords)
	require.Len(t, final.Errors, 2)
	assert.Contains(t, final.Errors[0], "record 3")
	assert.Contains(t, final.Errors[1], "record 7")
}

func TestImportStoreErrorsAreRecordedPerRecord(t *testing.T) {
	store := db.NewMemoryTaskStore()
	repo := newFakeUserRepo()
	repo.failNames["Broken"] = fmt.Errorf("duplicate key")
	svc := newImportService(t, repo, store)

	path := writeUpload(t, "users.csv", "name\nAlice\nBroken\nBob\n")
	task, count, err := svc.CreateImportTask(context.Background(), ports.CreateImportInput{
		FilePath: path,
		FileName: "users.csv",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	final := waitForTerminal(t, store, task.ID)
	assert.Equal(t, domain.TaskStatusCompleted, final.Status)
	assert.Equal(t, 2, final.SuccessRecords)
	assert.Equal(t, 1, final.FailedRecords)
	require.Len(t, final.Errors, 1)
	assert.Contains(t, final.Errors[0], "record 2")
	assert.Contains(t, final.Errors[0], "duplicate key")
}

func TestImportRejectsBeforeTaskCreation(t *testing.T) {
	store := db.NewMemoryTaskStore()
	svc := newImportService(t, newFakeUserRepo(), store)
	ctx := context.Background()

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeUpload(t, "users.pdf", "whatever")
		_, _, err := svc.CreateImportTask(ctx, ports.CreateImportInput{FilePath: path, FileName: "users.pdf"})
		assert.ErrorIs(t, err, services.ErrImportUnsupported)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := writeUpload(t, "users.json", "{broken")
		_, _, err := svc.CreateImportTask(ctx, ports.CreateImportInput{FilePath: path, FileName: "users.json"})
		assert.ErrorIs(t, err, services.ErrImportInvalidFile)
	})

	t.Run("missing name column", func(t *testing.T) {
		path := writeUpload(t, "users.csv", "id,email\n1,a@b.c\n")
		_, _, err := svc.CreateImportTask(ctx, ports.CreateImportInput{FilePath: path, FileName: "users.csv"})
		assert.ErrorIs(t, err, services.ErrImportInvalidFile)
	})

	t.Run("empty record set", func(t *testing.T) {
		path := writeUpload(t, "users.json", "[]")
		_, _, err := svc.CreateImportTask(ctx, ports.CreateImportInput{FilePath: path, FileName: "users.json"})
		assert.ErrorIs(t, err, services.ErrImportEmptyFile)
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := svc.CreateImportTask(ctx, ports.CreateImportInput{FilePath: "/nonexistent/users.json", FileName: "users.json"})
		assert.ErrorIs(t, err, services.ErrImportFileUnreadable)
	})
}

func TestImportRemovesUploadedFile(t *testing.T) {
	store := db.NewMemoryTaskStore()
	svc := newImportService(t, newFakeUserRepo(), store)

	path := writeUpload(t, "users.json", `[{"name":"Alice"}]`)
	task, _, err := svc.CreateImportTask(context.Background(), ports.CreateImportInput{
		FilePath: path,
		FileName: "users.json",
	})
	require.NoError(t, err)

	waitForTerminal(t, store, task.ID)

	// The file-removal defer runs just after the terminal update lands.
	require.Eventually(t, func() bool {
		_, statErr := os.Stat(path)
		return os.IsNotExist(statErr)
	}, 2*time.Second, 10*time.Millisecond, "uploaded file should be removed after processing")
}
