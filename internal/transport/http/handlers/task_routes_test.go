package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/userdesk/backend/internal/config"
	"github.com/userdesk/backend/internal/core/ports"
	"github.com/userdesk/backend/internal/core/services"
	"github.com/userdesk/backend/internal/domain"
	"github.com/userdesk/backend/internal/infrastructure/db"
	"github.com/userdesk/backend/internal/infrastructure/logger"
	"github.com/userdesk/backend/internal/transport/http/dto"
	"github.com/userdesk/backend/internal/transport/http/handlers"
)

type stubUserRepo struct {
	users []domain.User
}

func (r *stubUserRepo) Create(ctx context.Context, user *domain.User) error {
	user.ID = uint(len(r.users) + 1)
	r.users = append(r.users, *user)
	return nil
}

func (r *stubUserRepo) GetByID(ctx context.Context, id uint) (*domain.User, error) {
	for i := range r.users {
		if r.users[i].ID == id {
			user := r.users[i]
			return &user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) List(ctx context.Context, offset, limit int, name string) ([]domain.User, error) {
	if offset >= len(r.users) {
		return nil, nil
	}
	end := offset + limit
	if end > len(r.users) {
		end = len(r.users)
	}
	return r.users[offset:end], nil
}

func (r *stubUserRepo) Count(ctx context.Context, name string) (int64, error) {
	return int64(len(r.users)), nil
}

func (r *stubUserRepo) Delete(ctx context.Context, id uint) error {
	return nil
}

type testEnv struct {
	app   *fiber.App
	store ports.TaskStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log, err := logger.New(config.LoggerConfig{
		Level:            "error",
		Encoding:         "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
	require.NoError(t, err)

	store := db.NewMemoryTaskStore()
	repo := &stubUserRepo{users: []domain.User{{ID: 1, Name: "Alice"}, {ID: 2, Name: "Bob"}}}

	exportService := services.NewExportService(services.ExportServiceConfig{
		UserRepo:  repo,
		TaskStore: store,
		Logger:    log,
		ExportDir: t.TempDir(),
		BatchSize: 100,
	})

	exportHandler := handlers.NewExportHandler(exportService, log)
	taskHandler := handlers.NewTaskHandler(store, log)

	app := fiber.New()
	api := app.Group("/api/v1")
	api.Post("/export", exportHandler.CreateExport)
	api.Get("/import/template", exportHandler.DownloadTemplate)
	api.Get("/tasks/:id", taskHandler.GetTask)
	api.Get("/tasks/:id/download", taskHandler.DownloadResult)

	return &testEnv{app: app, store: store}
}

func (e *testEnv) postJSON(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(fiber.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := e.app.Test(httptest.NewRequest(fiber.MethodGet, path, nil), -1)
	require.NoError(t, err)
	return resp
}

func decodeJSON[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestCreateExportRejectsUnknownFormat(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/v1/export", dto.CreateExportRequest{Format: "pdf"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	body := decodeJSON[dto.ErrorResponse](t, resp)
	assert.Contains(t, body.Error, "pdf")
	assert.Contains(t, body.Error, "json")
	assert.Contains(t, body.Error, "csv")
	assert.Contains(t, body.Error, "xlsx")
}

func TestCreateExportAcceptedAndDownloadable(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/v1/export", dto.CreateExportRequest{Format: "json"})
	require.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	created := decodeJSON[dto.TaskCreatedResponse](t, resp)
	require.NotEmpty(t, created.TaskID)
	assert.Equal(t, "json", created.Format)

	require.Eventually(t, func() bool {
		task, err := env.store.Get(context.Background(), created.TaskID)
		return err == nil && task.Status == domain.TaskStatusCompleted
	}, 5*time.Second, 10*time.Millisecond)

	statusResp := env.get(t, "/api/v1/tasks/"+created.TaskID)
	require.Equal(t, fiber.StatusOK, statusResp.StatusCode)
	status := decodeJSON[dto.TaskResponse](t, statusResp)
	assert.Equal(t, domain.TaskStatusCompleted, status.Status)
	assert.Equal(t, 100, status.Progress)
	assert.Equal(t, 2, status.TotalRecords)

	download := env.get(t, "/api/v1/tasks/"+created.TaskID+"/download")
	require.Equal(t, fiber.StatusOK, download.StatusCode)
	assert.Contains(t, download.Header.Get(fiber.HeaderContentType), "application/json")
	assert.Contains(t, download.Header.Get(fiber.HeaderContentDisposition), "attachment")

	defer download.Body.Close()
	data, err := io.ReadAll(download.Body)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Alice")
	assert.Contains(t, string(data), "Bob")
}

func TestGetTaskNotFound(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/api/v1/tasks/export_0_missing")
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDownloadResultConflictWhileRunning(t *testing.T) {
	env := newTestEnv(t)

	task := domain.NewTask(domain.TaskKindExport, domain.TaskFormatCSV)
	require.NoError(t, env.store.Create(context.Background(), task))

	resp := env.get(t, "/api/v1/tasks/"+task.ID+"/download")
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)

	body := decodeJSON[dto.ErrorResponse](t, resp)
	assert.Contains(t, body.Error, string(domain.TaskStatusPending))
}

func TestDownloadTemplateCSV(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/api/v1/import/template?format=csv")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/csv")
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), ".csv")

	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "name"))
}
