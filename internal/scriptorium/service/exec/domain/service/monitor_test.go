package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	codegen "github.com/kiosk404/scrivener/internal/scriptorium/service/codegen/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/exec/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/exec/pkg/errno"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/exec/store/inmemory"
	safetyentity "github.com/kiosk404/scrivener/internal/scriptorium/service/safety/domain/entity"
	safetyservice "github.com/kiosk404/scrivener/internal/scriptorium/service/safety/domain/service"
)

// fakeExecutor records dispatch order and optionally blocks until released.
type fakeExecutor struct {
	mu    sync.Mutex
	order []string

	// gate, when non-nil, blocks every Execute until it is closed.
	gate chan struct{}
}

func (f *fakeExecutor) Execute(ctx context.Context, task *entity.Task, abort *AbortController) (*entity.Result, *entity.Metrics, error) {
	f.mu.Lock()
	f.order = append(f.order, task.Request.Script)
	f.mu.Unlock()

	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			kind := entity.ErrTimedOut
			if abort != nil && abort.Aborted() {
				kind = entity.ErrCancelled
			}
			return &entity.Result{ExitCode: -1, ErrorKind: kind}, &entity.Metrics{}, nil
		}
	}
	return &entity.Result{ExitCode: 0, Stdout: "ok"}, &entity.Metrics{WallTimeMs: 5}, nil
}

func (f *fakeExecutor) started() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

func testMonitorConfig() MonitorConfig {
	return MonitorConfig{
		MaxConcurrent:          2,
		DefaultTimeout:         30 * time.Second,
		MaxTimeout:             time.Minute,
		RequireConfirmElevated: true,
	}
}

// newTestMonitor wires a monitor over the fake executor and returns a channel
// of terminal task snapshots.
func newTestMonitor(t *testing.T, cfg MonitorConfig, exec *fakeExecutor) (Monitor, <-chan *entity.Task) {
	m := NewMonitor(cfg, safetyservice.NewValidator(), exec, inmemory.NewTaskStore(100))
	t.Cleanup(m.Close)

	terminal := make(chan *entity.Task, 16)
	m.RegisterCallback(func(task *entity.Task) {
		if task.State.IsTerminal() {
			terminal <- task
		}
	})
	return m, terminal
}

func waitTerminal(t *testing.T, ch <-chan *entity.Task, id string) *entity.Task {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case task := <-ch:
			if task.ID == id {
				return task
			}
		case <-deadline:
			t.Fatalf("task %s did not reach a terminal state", id)
			return nil
		}
	}
}

func okRequest(script string) entity.Request {
	return entity.Request{
		Platform:       codegen.PlatformBash,
		Script:         script,
		Policy:         safetyentity.PolicySafe,
		TimeoutSeconds: 10,
	}
}

func TestMonitor_SubmitRejectsEmptyScript(t *testing.T) {
	m, _ := newTestMonitor(t, testMonitorConfig(), &fakeExecutor{})

	_, err := m.Submit(entity.Request{Platform: codegen.PlatformBash, Script: "   "})
	assert.ErrorIs(t, err, errno.ErrInvalidRequest)

	_, err = m.Submit(entity.Request{Script: "echo hi"})
	assert.ErrorIs(t, err, errno.ErrInvalidRequest)
}

func TestMonitor_SubmitRejectsOversizedTimeout(t *testing.T) {
	m, _ := newTestMonitor(t, testMonitorConfig(), &fakeExecutor{})

	req := okRequest("echo hi")
	req.TimeoutSeconds = 3600
	_, err := m.Submit(req)
	assert.ErrorIs(t, err, errno.ErrTimeoutTooLarge)
}

func TestMonitor_SubmitElevatedNeedsConfirmToken(t *testing.T) {
	m, events := newTestMonitor(t, testMonitorConfig(), &fakeExecutor{})

	req := okRequest("echo hi")
	req.Policy = safetyentity.PolicyElevated
	_, err := m.Submit(req)
	assert.ErrorIs(t, err, errno.ErrConfirmRequired)

	req.ConfirmToken = "yes-i-am-sure"
	task, err := m.Submit(req)
	require.NoError(t, err)
	waitTerminal(t, events, task.ID)
}

func TestMonitor_SubmitAppliesDefaults(t *testing.T) {
	m, events := newTestMonitor(t, testMonitorConfig(), &fakeExecutor{})

	task, err := m.Submit(entity.Request{
		Platform: codegen.PlatformBash,
		Script:   "echo hi",
	})
	require.NoError(t, err)
	assert.Equal(t, 30, task.Request.TimeoutSeconds)
	assert.Equal(t, entity.PriorityNormal, task.Request.Priority)
	assert.Equal(t, safetyentity.PolicyStandard, task.Request.Policy)
	waitTerminal(t, events, task.ID)
}

func TestMonitor_PolicyDenialRecordsTerminalTask(t *testing.T) {
	m, _ := newTestMonitor(t, testMonitorConfig(), &fakeExecutor{})

	task, err := m.Submit(okRequest("rm -rf /"))
	assert.ErrorIs(t, err, errno.ErrPolicyDenied)
	require.NotNil(t, task)
	assert.Equal(t, entity.StateFailed, task.State)
	require.NotNil(t, task.Result)
	assert.Equal(t, entity.ErrPolicyDenied, task.Result.ErrorKind)
	assert.Contains(t, task.Result.Message, "blocked by policy")
	assert.Contains(t, task.Result.Message, "rm -rf")

	// Denied tasks land in history without ever being queued.
	got, err := m.Get(task.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StateFailed, got.State)
	assert.Empty(t, m.List())
}

func TestMonitor_TaskRunsToCompletion(t *testing.T) {
	exec := &fakeExecutor{}
	m, events := newTestMonitor(t, testMonitorConfig(), exec)

	task, err := m.Submit(okRequest("echo hi"))
	require.NoError(t, err)
	assert.Equal(t, entity.StateQueued, task.State)

	done := waitTerminal(t, events, task.ID)
	assert.Equal(t, entity.StateCompleted, done.State)
	require.NotNil(t, done.Result)
	assert.Equal(t, 0, done.Result.ExitCode)
	require.NotNil(t, done.Metrics)
	assert.Equal(t, int64(5), done.Metrics.WallTimeMs)

	got, err := m.Get(task.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StateCompleted, got.State)
}

func TestMonitor_ConcurrencyCap(t *testing.T) {
	exec := &fakeExecutor{gate: make(chan struct{})}
	cfg := testMonitorConfig()
	cfg.MaxConcurrent = 1
	m, events := newTestMonitor(t, cfg, exec)

	first, err := m.Submit(okRequest("echo first"))
	require.NoError(t, err)
	second, err := m.Submit(okRequest("echo second"))
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(exec.started()) == 1 }, time.Second, 10*time.Millisecond)

	stats, err := m.Statistics()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Running)
	assert.Equal(t, 1, stats.Queued)

	close(exec.gate)
	waitTerminal(t, events, first.ID)
	waitTerminal(t, events, second.ID)
	assert.Len(t, exec.started(), 2)
}

func TestMonitor_HighPriorityDispatchedFirst(t *testing.T) {
	exec := &fakeExecutor{gate: make(chan struct{})}
	cfg := testMonitorConfig()
	cfg.MaxConcurrent = 1
	m, events := newTestMonitor(t, cfg, exec)

	blocker, err := m.Submit(okRequest("echo blocker"))
	require.NoError(t, err)

	low := okRequest("echo low")
	low.Priority = entity.PriorityLow
	lowTask, err := m.Submit(low)
	require.NoError(t, err)

	high := okRequest("echo high")
	high.Priority = entity.PriorityHigh
	highTask, err := m.Submit(high)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(exec.started()) == 1 }, time.Second, 10*time.Millisecond)
	close(exec.gate)

	waitTerminal(t, events, blocker.ID)
	waitTerminal(t, events, highTask.ID)
	waitTerminal(t, events, lowTask.ID)

	assert.Equal(t, []string{"echo blocker", "echo high", "echo low"}, exec.started())
}

func TestMonitor_AgingPromotesOneLevel(t *testing.T) {
	exec := &fakeExecutor{gate: make(chan struct{})}
	cfg := testMonitorConfig()
	cfg.MaxConcurrent = 1
	cfg.AgingThreshold = 50 * time.Millisecond
	m, events := newTestMonitor(t, cfg, exec)

	blocker, err := m.Submit(okRequest("echo blocker"))
	require.NoError(t, err)

	low := okRequest("echo low")
	low.Priority = entity.PriorityLow
	lowTask, err := m.Submit(low)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(exec.started()) == 1 }, time.Second, 10*time.Millisecond)

	// Let the low task age past the threshold, then submit a fresh normal
	// one. The aged task now ties at normal weight and wins on submit time.
	time.Sleep(120 * time.Millisecond)
	normalTask, err := m.Submit(okRequest("echo normal"))
	require.NoError(t, err)

	close(exec.gate)
	waitTerminal(t, events, blocker.ID)
	waitTerminal(t, events, lowTask.ID)
	waitTerminal(t, events, normalTask.ID)

	assert.Equal(t, []string{"echo blocker", "echo low", "echo normal"}, exec.started())
}

func TestMonitor_AgingNeverOutranksHighPriority(t *testing.T) {
	exec := &fakeExecutor{gate: make(chan struct{})}
	cfg := testMonitorConfig()
	cfg.MaxConcurrent = 1
	cfg.AgingThreshold = 20 * time.Millisecond
	m, events := newTestMonitor(t, cfg, exec)

	blocker, err := m.Submit(okRequest("echo blocker"))
	require.NoError(t, err)

	low := okRequest("echo low")
	low.Priority = entity.PriorityLow
	lowTask, err := m.Submit(low)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(exec.started()) == 1 }, time.Second, 10*time.Millisecond)

	// Many thresholds pass, but the bump is one level capped at high, so a
	// fresh high-priority submission still runs first.
	time.Sleep(150 * time.Millisecond)
	high := okRequest("echo high")
	high.Priority = entity.PriorityHigh
	highTask, err := m.Submit(high)
	require.NoError(t, err)

	close(exec.gate)
	waitTerminal(t, events, blocker.ID)
	waitTerminal(t, events, highTask.ID)
	waitTerminal(t, events, lowTask.ID)

	assert.Equal(t, []string{"echo blocker", "echo high", "echo low"}, exec.started())
}

func TestMonitor_CancelQueuedTask(t *testing.T) {
	exec := &fakeExecutor{gate: make(chan struct{})}
	cfg := testMonitorConfig()
	cfg.MaxConcurrent = 1
	m, events := newTestMonitor(t, cfg, exec)

	blocker, err := m.Submit(okRequest("echo blocker"))
	require.NoError(t, err)
	queued, err := m.Submit(okRequest("echo queued"))
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(exec.started()) == 1 }, time.Second, 10*time.Millisecond)

	cancelled, err := m.Cancel(queued.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StateCancelled, cancelled.State)
	require.NotNil(t, cancelled.Result)
	assert.Equal(t, entity.ErrCancelled, cancelled.Result.ErrorKind)

	close(exec.gate)
	waitTerminal(t, events, blocker.ID)
	assert.Equal(t, []string{"echo blocker"}, exec.started())
}

func TestMonitor_CancelRunningTask(t *testing.T) {
	exec := &fakeExecutor{gate: make(chan struct{})}
	m, events := newTestMonitor(t, testMonitorConfig(), exec)

	task, err := m.Submit(okRequest("echo long"))
	require.NoError(t, err)
	require.Eventually(t, func() bool { return len(exec.started()) == 1 }, time.Second, 10*time.Millisecond)

	_, err = m.Cancel(task.ID)
	require.NoError(t, err)

	done := waitTerminal(t, events, task.ID)
	assert.Equal(t, entity.StateCancelled, done.State)
}

func TestMonitor_CancelFinishedTask(t *testing.T) {
	m, events := newTestMonitor(t, testMonitorConfig(), &fakeExecutor{})

	task, err := m.Submit(okRequest("echo hi"))
	require.NoError(t, err)
	waitTerminal(t, events, task.ID)

	got, err := m.Cancel(task.ID)
	assert.ErrorIs(t, err, errno.ErrAlreadyTerminal)
	require.NotNil(t, got)
	assert.Equal(t, entity.StateCompleted, got.State)
}

func TestMonitor_CancelUnknownTask(t *testing.T) {
	m, _ := newTestMonitor(t, testMonitorConfig(), &fakeExecutor{})

	_, err := m.Cancel("no-such-task")
	assert.ErrorIs(t, err, errno.ErrTaskNotFound)
}

func TestMonitor_HistoryNewestFirst(t *testing.T) {
	m, events := newTestMonitor(t, testMonitorConfig(), &fakeExecutor{})

	first, err := m.Submit(okRequest("echo one"))
	require.NoError(t, err)
	waitTerminal(t, events, first.ID)

	second, err := m.Submit(okRequest("echo two"))
	require.NoError(t, err)
	waitTerminal(t, events, second.ID)

	history, err := m.History(0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)

	limited, err := m.History(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestMonitor_Statistics(t *testing.T) {
	m, events := newTestMonitor(t, testMonitorConfig(), &fakeExecutor{})

	ok, err := m.Submit(okRequest("echo hi"))
	require.NoError(t, err)
	waitTerminal(t, events, ok.ID)

	_, err = m.Submit(okRequest("rm -rf /"))
	assert.ErrorIs(t, err, errno.ErrPolicyDenied)

	stats, err := m.Statistics()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 1, stats.Failed)
	assert.InDelta(t, 0.5, stats.SuccessRate24h, 1e-9)
	assert.Equal(t, int64(5), stats.AvgWallTimeMs[string(codegen.PlatformBash)])
}

func TestMonitor_StatisticsSeededFromHistory(t *testing.T) {
	store := inmemory.NewTaskStore(100)
	now := time.Now().UTC()
	require.NoError(t, store.Save(&entity.Task{
		ID:          "historical",
		Request:     okRequest("echo old"),
		State:       entity.StateCompleted,
		SubmittedAt: now.Add(-time.Minute),
		FinishedAt:  now.Add(-30 * time.Second),
		Result:      &entity.Result{ExitCode: 0},
		Metrics:     &entity.Metrics{WallTimeMs: 7},
	}))

	m := NewMonitor(testMonitorConfig(), safetyservice.NewValidator(), &fakeExecutor{}, store)
	t.Cleanup(m.Close)

	stats, err := m.Statistics()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Completed)
	assert.InDelta(t, 1.0, stats.SuccessRate24h, 1e-9)
	assert.Equal(t, int64(7), stats.AvgWallTimeMs[string(codegen.PlatformBash)])
}
