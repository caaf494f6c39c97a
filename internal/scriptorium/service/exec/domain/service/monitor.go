package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"

	codegen "github.com/kiosk404/scrivener/internal/scriptorium/service/codegen/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/exec/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/exec/domain/repo"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/exec/pkg/errno"
	safetyentity "github.com/kiosk404/scrivener/internal/scriptorium/service/safety/domain/entity"
	safetyservice "github.com/kiosk404/scrivener/internal/scriptorium/service/safety/domain/service"
	"github.com/kiosk404/scrivener/pkg/logger"
	"github.com/kiosk404/scrivener/pkg/utils/safego"
)

const (
	pruneInterval    = time.Hour
	historyRetention = 7 * 24 * time.Hour
	statsWindow      = 24 * time.Hour
)

// TaskCallback observes task state transitions. Callbacks run in
// registration order on the scheduler goroutine; keep them fast.
type TaskCallback func(task *entity.Task)

// MonitorConfig carries the scheduler knobs.
type MonitorConfig struct {
	MaxConcurrent          int
	DefaultTimeout         time.Duration
	MaxTimeout             time.Duration
	AgingThreshold         time.Duration
	RequireConfirmElevated bool
}

// Monitor schedules, runs and tracks script executions.
type Monitor interface {
	// Submit validates, screens and enqueues a request. A policy denial
	// records a terminal task and returns errno.ErrPolicyDenied.
	Submit(req entity.Request) (*entity.Task, error)

	// Get returns a snapshot of a live or historical task.
	Get(id string) (*entity.Task, error)

	// Cancel stops a queued or running task. Cancelling a finished task
	// returns errno.ErrAlreadyTerminal.
	Cancel(id string) (*entity.Task, error)

	// List snapshots all queued and running tasks, queued in dispatch order.
	List() []*entity.Task

	// History returns finished tasks, newest first.
	History(limit int) ([]*entity.Task, error)

	// Statistics aggregates live and recent-history counters.
	Statistics() (*entity.Statistics, error)

	// RegisterCallback subscribes to task state transitions.
	RegisterCallback(cb TaskCallback)

	// Close cancels running tasks and waits for them to wind down.
	Close()
}

type runningTask struct {
	task  *entity.Task
	abort *AbortController
}

type monitor struct {
	mu sync.Mutex

	cfg       MonitorConfig
	validator safetyservice.Validator
	executor  Executor
	history   repo.TaskRepository

	queue   []*entity.Task
	running map[string]*runningTask

	// Terminal counters maintained on state transitions, so Statistics never
	// rescans the history store.
	completed  int
	failed     int
	cancelled  int
	timedOut   int
	wallSums   map[string]int64
	wallCounts map[string]int64
	window     []windowSample

	callbacks []TaskCallback

	baseCtx context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	closed  bool
}

// windowSample records one terminal outcome for the rolling success rate.
type windowSample struct {
	at time.Time
	ok bool
}

// NewMonitor creates and starts the scheduler. Statistics counters are seeded
// from the persisted history, and the background pruner keeps history inside
// the retention window.
func NewMonitor(cfg MonitorConfig, validator safetyservice.Validator, executor Executor, history repo.TaskRepository) Monitor {
	ctx, cancel := context.WithCancel(context.Background())
	m := &monitor{
		cfg:        cfg,
		validator:  validator,
		executor:   executor,
		history:    history,
		running:    make(map[string]*runningTask),
		wallSums:   make(map[string]int64),
		wallCounts: make(map[string]int64),
		baseCtx:    ctx,
		cancel:     cancel,
	}
	if finished, err := history.List(0); err != nil {
		logger.Error("[Monitor] seed statistics from history: %v", err)
	} else {
		for _, t := range finished {
			m.countTerminalLocked(t)
		}
	}
	m.wg.Add(1)
	safego.Go(func() {
		defer m.wg.Done()
		m.pruneLoop(ctx)
	})
	return m
}

func (m *monitor) RegisterCallback(cb TaskCallback) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, cb)
}

func (m *monitor) notify(task *entity.Task) {
	m.mu.Lock()
	cbs := make([]TaskCallback, len(m.callbacks))
	copy(cbs, m.callbacks)
	m.mu.Unlock()

	snapshot, err := snapshotTask(task)
	if err != nil {
		logger.Error("[Monitor] snapshot for callback failed: %v", err)
		return
	}
	for _, cb := range cbs {
		cb(snapshot)
	}
}

func snapshotTask(task *entity.Task) (*entity.Task, error) {
	out := &entity.Task{}
	if err := copier.CopyWithOption(out, task, copier.Option{DeepCopy: true}); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *monitor) Submit(req entity.Request) (*entity.Task, error) {
	if strings.TrimSpace(req.Script) == "" || req.Platform == "" {
		return nil, errno.ErrInvalidRequest
	}
	if req.TimeoutSeconds <= 0 {
		req.TimeoutSeconds = int(m.cfg.DefaultTimeout.Seconds())
	}
	if time.Duration(req.TimeoutSeconds)*time.Second > m.cfg.MaxTimeout {
		return nil, errno.ErrTimeoutTooLarge
	}
	if req.Policy == "" {
		req.Policy = safetyentity.PolicyStandard
	}
	req.Priority = entity.ParsePriority(string(req.Priority))
	if m.cfg.RequireConfirmElevated && req.Policy == safetyentity.PolicyElevated && req.ConfirmToken == "" {
		return nil, errno.ErrConfirmRequired
	}

	now := time.Now().UTC()
	task := &entity.Task{
		ID:                uuid.New().String(),
		Request:           req,
		State:             entity.StateQueued,
		EffectivePriority: req.Priority.Weight(),
		SubmittedAt:       now,
	}

	task.Safety = m.validator.Validate(req.Script, req.Platform, req.Policy)
	if !task.Safety.Allowed {
		task.State = entity.StateFailed
		task.FinishedAt = now
		task.Result = &entity.Result{
			ExitCode:  -1,
			ErrorKind: entity.ErrPolicyDenied,
			Message:   denialSummary(task.Safety),
		}
		if err := m.history.Save(task); err != nil {
			logger.Error("[Monitor] save denied task %s: %v", task.ID, err)
		}
		m.mu.Lock()
		m.countTerminalLocked(task)
		m.mu.Unlock()
		m.notify(task)
		snapshot, _ := snapshotTask(task)
		return snapshot, errno.ErrPolicyDenied
	}

	m.mu.Lock()
	m.queue = append(m.queue, task)
	m.mu.Unlock()
	logger.Info("[Monitor] task %s queued (priority=%s policy=%s)", task.ID, req.Priority, req.Policy)

	m.notify(task)
	m.tick()

	return snapshotTask(task)
}

func denialSummary(report *codegen.ValidationReport) string {
	var parts []string
	for _, issue := range report.Issues {
		if issue.Severity == codegen.SeverityError {
			parts = append(parts, issue.Message)
		}
	}
	return "blocked by policy: " + strings.Join(parts, "; ")
}

// tick dispatches queued tasks while capacity allows. Queue order is
// effective priority descending, then submission time ascending; a task aged
// past the threshold rises one priority level, capped at high, so low-priority
// work cannot starve yet never outranks a fresh high-priority submission.
func (m *monitor) tick() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}

	now := time.Now()
	maxWeight := entity.PriorityHigh.Weight()
	for _, t := range m.queue {
		weight := t.Request.Priority.Weight()
		if m.cfg.AgingThreshold > 0 && now.Sub(t.SubmittedAt) >= m.cfg.AgingThreshold && weight < maxWeight {
			weight++
		}
		t.EffectivePriority = weight
	}
	sort.SliceStable(m.queue, func(i, j int) bool {
		if m.queue[i].EffectivePriority != m.queue[j].EffectivePriority {
			return m.queue[i].EffectivePriority > m.queue[j].EffectivePriority
		}
		return m.queue[i].SubmittedAt.Before(m.queue[j].SubmittedAt)
	})

	for len(m.queue) > 0 && len(m.running) < m.cfg.MaxConcurrent {
		task := m.queue[0]
		m.queue = m.queue[1:]
		m.startLocked(task)
	}
}

func (m *monitor) startLocked(task *entity.Task) {
	task.State = entity.StatePreparing
	abort := NewAbortController(m.baseCtx, task.ID,
		time.Duration(task.Request.TimeoutSeconds)*time.Second)
	m.running[task.ID] = &runningTask{task: task, abort: abort}

	m.wg.Add(1)
	safego.Go(func() {
		defer m.wg.Done()
		m.run(task, abort)
	})
}

func (m *monitor) run(task *entity.Task, abort *AbortController) {
	defer abort.CleanUp()

	m.mu.Lock()
	task.State = entity.StateRunning
	task.StartedAt = time.Now().UTC()
	m.mu.Unlock()
	m.notify(task)

	result, metrics, err := m.executor.Execute(abort.Context(), task, abort)

	m.mu.Lock()
	task.FinishedAt = time.Now().UTC()
	if err != nil {
		task.State = entity.StateFailed
		task.Result = &entity.Result{ExitCode: -1, ErrorKind: entity.ErrInternal, Message: err.Error()}
	} else {
		task.Result = result
		task.Metrics = metrics
		task.State = stateForResult(result)
	}
	delete(m.running, task.ID)
	m.countTerminalLocked(task)
	m.mu.Unlock()

	if err := m.history.Save(task); err != nil {
		logger.Error("[Monitor] save task %s: %v", task.ID, err)
	}
	logger.Info("[Monitor] task %s finished: %s", task.ID, task.State)
	m.notify(task)
	m.tick()
}

func stateForResult(result *entity.Result) entity.TaskState {
	switch result.ErrorKind {
	case "":
		return entity.StateCompleted
	case entity.ErrTimedOut:
		return entity.StateTimedOut
	case entity.ErrCancelled:
		return entity.StateCancelled
	default:
		return entity.StateFailed
	}
}

func (m *monitor) Get(id string) (*entity.Task, error) {
	m.mu.Lock()
	if rt, ok := m.running[id]; ok {
		snapshot, err := snapshotTask(rt.task)
		m.mu.Unlock()
		return snapshot, err
	}
	for _, t := range m.queue {
		if t.ID == id {
			snapshot, err := snapshotTask(t)
			m.mu.Unlock()
			return snapshot, err
		}
	}
	m.mu.Unlock()

	task, err := m.history.Get(id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, errno.ErrTaskNotFound
	}
	return task, nil
}

func (m *monitor) Cancel(id string) (*entity.Task, error) {
	m.mu.Lock()
	if rt, ok := m.running[id]; ok {
		m.mu.Unlock()
		rt.abort.Abort()
		return snapshotTask(rt.task)
	}
	for i, t := range m.queue {
		if t.ID != id {
			continue
		}
		m.queue = append(m.queue[:i], m.queue[i+1:]...)
		t.State = entity.StateCancelled
		t.FinishedAt = time.Now().UTC()
		t.Result = &entity.Result{ExitCode: -1, ErrorKind: entity.ErrCancelled, Message: "cancelled while queued"}
		m.countTerminalLocked(t)
		m.mu.Unlock()

		if err := m.history.Save(t); err != nil {
			logger.Error("[Monitor] save cancelled task %s: %v", t.ID, err)
		}
		m.notify(t)
		return snapshotTask(t)
	}
	m.mu.Unlock()

	task, err := m.history.Get(id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, errno.ErrTaskNotFound
	}
	return task, errno.ErrAlreadyTerminal
}

func (m *monitor) List() []*entity.Task {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*entity.Task, 0, len(m.running)+len(m.queue))
	for _, rt := range m.running {
		if snapshot, err := snapshotTask(rt.task); err == nil {
			out = append(out, snapshot)
		}
	}
	for _, t := range m.queue {
		if snapshot, err := snapshotTask(t); err == nil {
			out = append(out, snapshot)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out
}

func (m *monitor) History(limit int) ([]*entity.Task, error) {
	return m.history.List(limit)
}

// countTerminalLocked folds one terminal task into the statistics counters.
// Callers hold m.mu (or own the monitor exclusively during construction).
func (m *monitor) countTerminalLocked(t *entity.Task) {
	switch t.State {
	case entity.StateCompleted:
		m.completed++
	case entity.StateFailed:
		m.failed++
	case entity.StateCancelled:
		m.cancelled++
	case entity.StateTimedOut:
		m.timedOut++
	default:
		return
	}
	if t.FinishedAt.After(time.Now().Add(-statsWindow)) {
		m.window = append(m.window, windowSample{at: t.FinishedAt, ok: t.State == entity.StateCompleted})
	}
	if t.State == entity.StateCompleted && t.Metrics != nil {
		key := string(t.Request.Platform)
		m.wallSums[key] += t.Metrics.WallTimeMs
		m.wallCounts[key]++
	}
}

func (m *monitor) pruneWindowLocked(now time.Time) {
	cutoff := now.Add(-statsWindow)
	kept := m.window[:0]
	for _, s := range m.window {
		if s.at.After(cutoff) {
			kept = append(kept, s)
		}
	}
	m.window = kept
}

func (m *monitor) Statistics() (*entity.Statistics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pruneWindowLocked(time.Now())

	stats := &entity.Statistics{
		Queued:        len(m.queue),
		Running:       len(m.running),
		Completed:     m.completed,
		Failed:        m.failed,
		Cancelled:     m.cancelled,
		TimedOut:      m.timedOut,
		AvgWallTimeMs: make(map[string]int64, len(m.wallSums)),
	}
	windowOK := 0
	for _, s := range m.window {
		if s.ok {
			windowOK++
		}
	}
	if len(m.window) > 0 {
		stats.SuccessRate24h = float64(windowOK) / float64(len(m.window))
	}
	for platform, sum := range m.wallSums {
		stats.AvgWallTimeMs[platform] = sum / m.wallCounts[platform]
	}
	return stats, nil
}

func (m *monitor) pruneLoop(ctx context.Context) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-historyRetention)
			if removed, err := m.history.PruneBefore(cutoff); err != nil {
				logger.Error("[Monitor] history prune failed: %v", err)
			} else if removed > 0 {
				logger.Info("[Monitor] pruned %d historical tasks", removed)
			}
		}
	}
}

func (m *monitor) Close() {
	m.mu.Lock()
	m.closed = true
	aborts := make([]*AbortController, 0, len(m.running))
	for _, rt := range m.running {
		aborts = append(aborts, rt.abort)
	}
	m.mu.Unlock()

	for _, abort := range aborts {
		abort.Abort()
	}
	m.cancel()
	m.wg.Wait()
}
