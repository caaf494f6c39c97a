package entity

import (
	"time"

	codegen "github.com/kiosk404/scrivener/internal/scriptorium/service/codegen/domain/entity"
	safety "github.com/kiosk404/scrivener/internal/scriptorium/service/safety/domain/entity"
)

// TaskState is the lifecycle state of a scheduled execution.
type TaskState string

const (
	StateQueued    TaskState = "queued"
	StatePreparing TaskState = "preparing"
	StateRunning   TaskState = "running"
	StateCompleted TaskState = "completed"
	StateFailed    TaskState = "failed"
	StateCancelled TaskState = "cancelled"
	StateTimedOut  TaskState = "timedOut"
)

// IsTerminal reports whether the state admits no further transitions.
func (s TaskState) IsTerminal() bool {
	switch s {
	case StateCompleted, StateFailed, StateCancelled, StateTimedOut:
		return true
	}
	return false
}

// CanTransition reports whether moving from s to next is legal.
func (s TaskState) CanTransition(next TaskState) bool {
	if s.IsTerminal() {
		return false
	}
	switch s {
	case StateQueued:
		return next == StatePreparing || next == StateCancelled
	case StatePreparing:
		return next == StateRunning || next == StateFailed || next == StateCancelled
	case StateRunning:
		return next.IsTerminal()
	}
	return false
}

// Priority orders queued tasks. Higher runs first.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Weight maps the priority to its scheduling weight.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 2
	case PriorityLow:
		return 0
	default:
		return 1
	}
}

// ParsePriority normalizes a priority name. Empty means normal.
func ParsePriority(s string) Priority {
	switch s {
	case string(PriorityHigh):
		return PriorityHigh
	case string(PriorityLow):
		return PriorityLow
	default:
		return PriorityNormal
	}
}

// Request describes one execution ask.
type Request struct {
	Platform       codegen.Platform  `json:"platform"`
	Script         string            `json:"script"`
	Policy         safety.Policy     `json:"policy"`
	Priority       Priority          `json:"priority"`
	WorkingDir     string            `json:"workingDir,omitempty"`
	Env            map[string]string `json:"env,omitempty"`
	TimeoutSeconds int               `json:"timeoutSeconds,omitempty"`
	Parameters     map[string]string `json:"parameters,omitempty"`

	// ConfirmToken acknowledges an elevated-policy run when the server
	// requires explicit confirmation.
	ConfirmToken string `json:"confirmToken,omitempty"`
}

// ErrorKind classifies why a task did not complete successfully.
type ErrorKind string

const (
	ErrNonZeroExit  ErrorKind = "nonZeroExit"
	ErrTimedOut     ErrorKind = "timedOut"
	ErrCancelled    ErrorKind = "cancelled"
	ErrSpawnFailed  ErrorKind = "spawnFailed"
	ErrPolicyDenied ErrorKind = "policyDenied"
	ErrInternal     ErrorKind = "internal"
)

// Result carries the observable outcome of a finished run.
type Result struct {
	ExitCode  int       `json:"exitCode"`
	Stdout    string    `json:"stdout"`
	Stderr    string    `json:"stderr"`
	ErrorKind ErrorKind `json:"errorKind,omitempty"`
	Message   string    `json:"message,omitempty"`
}

// Metrics are resource figures sampled while the task ran.
type Metrics struct {
	WallTimeMs      int64   `json:"wallTimeMs"`
	PeakMemoryBytes uint64  `json:"peakMemoryBytes,omitempty"`
	CPUPercentPeak  float64 `json:"cpuPercentPeak,omitempty"`
	IOBytesRead     uint64  `json:"ioBytesRead,omitempty"`
	IOBytesWritten  uint64  `json:"ioBytesWritten,omitempty"`
}

// Task is the full record of one scheduled execution.
type Task struct {
	ID      string    `json:"id"`
	Request Request   `json:"request"`
	State   TaskState `json:"state"`

	// EffectivePriority starts at the request weight and rises with queue age.
	EffectivePriority int `json:"effectivePriority"`

	SubmittedAt time.Time `json:"submittedAt"`
	StartedAt   time.Time `json:"startedAt,omitempty"`
	FinishedAt  time.Time `json:"finishedAt,omitempty"`

	Result  *Result  `json:"result,omitempty"`
	Metrics *Metrics `json:"metrics,omitempty"`

	// Safety is the pre-execution screening outcome.
	Safety *codegen.ValidationReport `json:"safety,omitempty"`
}

// Statistics is the scheduler's aggregate view.
type Statistics struct {
	Queued    int `json:"queued"`
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
	Cancelled int `json:"cancelled"`
	TimedOut  int `json:"timedOut"`

	// SuccessRate24h is completed / terminal over the last 24 hours.
	SuccessRate24h float64 `json:"successRate24h"`

	// AvgWallTimeMs maps platform to mean wall time of completed runs.
	AvgWallTimeMs map[string]int64 `json:"avgWallTimeMs,omitempty"`
}
