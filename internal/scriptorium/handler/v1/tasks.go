package v1

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kiosk404/scrivener/internal/pkg/core"
	codegenentity "github.com/kiosk404/scrivener/internal/scriptorium/service/codegen/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/exec/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/exec/domain/service"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/exec/pkg/errno"
	safetyentity "github.com/kiosk404/scrivener/internal/scriptorium/service/safety/domain/entity"
	"github.com/kiosk404/scrivener/pkg/errorx"
)

const defaultHistoryLimit = 50

// TaskHandler handles script execution endpoints.
type TaskHandler struct {
	monitor service.Monitor
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(monitor service.Monitor) *TaskHandler {
	return &TaskHandler{monitor: monitor}
}

// Submit handles POST /api/execute/script.
func (h *TaskHandler) Submit(c *gin.Context) {
	var req ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrBind, "bind execute request"), nil)
		return
	}

	platform, err := codegenentity.ParsePlatform(req.Platform)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrPlatformNotSupported, "platform %q not supported", req.Platform), nil)
		return
	}
	policy, err := safetyentity.ParsePolicy(req.Policy)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrValidation, "invalid policy %q", req.Policy), nil)
		return
	}

	task, err := h.monitor.Submit(entity.Request{
		Platform:       platform,
		Script:         req.Script,
		Policy:         policy,
		Priority:       entity.ParsePriority(req.Priority),
		WorkingDir:     req.WorkingDir,
		Env:            req.Env,
		TimeoutSeconds: req.TimeoutSeconds,
		Parameters:     req.Parameters,
		ConfirmToken:   req.ConfirmToken,
	})
	if err != nil {
		switch {
		case errors.Is(err, errno.ErrPolicyDenied):
			// A denial is a first-class outcome: the task exists in state
			// failed and can be polled like any other.
			core.WriteResponse(c, nil, gin.H{"taskId": task.ID, "state": task.State})
		case errors.Is(err, errno.ErrConfirmRequired):
			core.WriteResponse(c, errorx.WrapC(err, ErrConfirmRequired, "elevated execution requires confirmation"), nil)
		default:
			core.WriteResponse(c, errorx.WrapC(err, ErrTaskSubmit, "submit task"), nil)
		}
		return
	}
	core.WriteResponse(c, nil, gin.H{"taskId": task.ID, "state": task.State})
}

// Get handles GET /api/execute/task/:id.
func (h *TaskHandler) Get(c *gin.Context) {
	id := c.Param("id")
	task, err := h.monitor.Get(id)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrTaskNotFound, "task %q not found", id), nil)
		return
	}
	core.WriteResponse(c, nil, toTaskResponse(task))
}

// Cancel handles DELETE /api/execute/task/:id.
func (h *TaskHandler) Cancel(c *gin.Context) {
	id := c.Param("id")
	task, err := h.monitor.Cancel(id)
	if err != nil {
		switch {
		case errors.Is(err, errno.ErrTaskNotFound):
			core.WriteResponse(c, errorx.WrapC(err, ErrTaskNotFound, "task %q not found", id), nil)
		default:
			core.WriteResponse(c, errorx.WrapC(err, ErrTaskCancel, "cancel task %q", id), nil)
		}
		return
	}
	core.WriteResponse(c, nil, gin.H{"status": "cancelled", "task": toTaskResponse(task)})
}

// Running handles GET /api/execute/running.
func (h *TaskHandler) Running(c *gin.Context) {
	tasks := h.monitor.List()
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	core.WriteResponse(c, nil, gin.H{"data": out})
}

// History handles GET /api/execute/history?status=&limit=&offset=.
func (h *TaskHandler) History(c *gin.Context) {
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			core.WriteResponse(c, errorx.WithCode(ErrValidation, "invalid limit %q", raw), nil)
			return
		}
		limit = n
	}
	offset := 0
	if raw := c.Query("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			core.WriteResponse(c, errorx.WithCode(ErrValidation, "invalid offset %q", raw), nil)
			return
		}
		offset = n
	}
	status := entity.TaskState(c.Query("status"))

	// Filtering and paging happen here; the repository only knows newest-first.
	tasks, err := h.monitor.History(0)
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrTaskSubmit, "load task history"), nil)
		return
	}
	if status != "" {
		filtered := tasks[:0]
		for _, t := range tasks {
			if t.State == status {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}
	if offset >= len(tasks) {
		tasks = nil
	} else {
		tasks = tasks[offset:]
	}
	if len(tasks) > limit {
		tasks = tasks[:limit]
	}

	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	core.WriteResponse(c, nil, gin.H{"data": out})
}

// Statistics handles GET /api/execute/statistics.
func (h *TaskHandler) Statistics(c *gin.Context) {
	stats, err := h.monitor.Statistics()
	if err != nil {
		core.WriteResponse(c, errorx.WrapC(err, ErrTaskSubmit, "compute statistics"), nil)
		return
	}
	core.WriteResponse(c, nil, stats)
}
