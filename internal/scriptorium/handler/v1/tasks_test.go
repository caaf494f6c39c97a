package v1

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/scrivener/internal/scriptorium/service/exec/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/exec/domain/service"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/exec/pkg/errno"
	"github.com/kiosk404/scrivener/pkg/utils/json"
)

// stubMonitor returns canned answers so handler behavior can be tested
// without the scheduler.
type stubMonitor struct {
	submitTask *entity.Task
	submitErr  error
}

func (s *stubMonitor) Submit(_ entity.Request) (*entity.Task, error) {
	return s.submitTask, s.submitErr
}

func (s *stubMonitor) Get(id string) (*entity.Task, error) {
	if s.submitTask != nil && s.submitTask.ID == id {
		return s.submitTask, nil
	}
	return nil, errno.ErrTaskNotFound
}

func (s *stubMonitor) Cancel(string) (*entity.Task, error)     { return nil, errno.ErrTaskNotFound }
func (s *stubMonitor) List() []*entity.Task                    { return nil }
func (s *stubMonitor) History(int) ([]*entity.Task, error)     { return nil, nil }
func (s *stubMonitor) Statistics() (*entity.Statistics, error) { return &entity.Statistics{}, nil }
func (s *stubMonitor) RegisterCallback(service.TaskCallback)   {}
func (s *stubMonitor) Close()                                  {}

func newTaskRouter(m service.Monitor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewTaskHandler(m)
	r.POST("/api/execute/script", h.Submit)
	r.GET("/api/execute/task/:id", h.Get)
	return r
}

func TestTaskHandler_SubmitPolicyDenialReturnsTaskID(t *testing.T) {
	denied := &entity.Task{
		ID:          "denied-task",
		State:       entity.StateFailed,
		SubmittedAt: time.Now().UTC(),
		FinishedAt:  time.Now().UTC(),
		Result: &entity.Result{
			ExitCode:  -1,
			ErrorKind: entity.ErrPolicyDenied,
			Message:   `blocked by policy: recursive delete of the filesystem root (matched "rm -rf /") is never permitted`,
		},
	}
	r := newTaskRouter(&stubMonitor{submitTask: denied, submitErr: errno.ErrPolicyDenied})

	body := `{"script":"rm -rf /","platform":"bash","policy":"safe"}`
	req := httptest.NewRequest(http.MethodPost, "/api/execute/script", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		TaskID string `json:"taskId"`
		State  string `json:"state"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "denied-task", resp.TaskID)
	assert.Equal(t, string(entity.StateFailed), resp.State)

	// The denied task is pollable like any other.
	req = httptest.NewRequest(http.MethodGet, "/api/execute/task/denied-task", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var task TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &task))
	assert.Equal(t, string(entity.StateFailed), task.State)
	require.NotNil(t, task.Result)
	assert.Equal(t, entity.ErrPolicyDenied, task.Result.ErrorKind)
	assert.Contains(t, task.Result.Message, "rm -rf")
}

func TestTaskHandler_SubmitConfirmRequiredIsAnError(t *testing.T) {
	r := newTaskRouter(&stubMonitor{submitErr: errno.ErrConfirmRequired})

	body := `{"script":"echo hi","platform":"bash","policy":"elevated"}`
	req := httptest.NewRequest(http.MethodPost, "/api/execute/script", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "confirmation")
}
