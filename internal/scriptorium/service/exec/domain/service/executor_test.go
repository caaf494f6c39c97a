package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	codegen "github.com/kiosk404/scrivener/internal/scriptorium/service/codegen/domain/entity"
	"github.com/kiosk404/scrivener/internal/scriptorium/service/exec/domain/entity"
)

func bashTask(id, script string) *entity.Task {
	return &entity.Task{
		ID: id,
		Request: entity.Request{
			Platform: codegen.PlatformBash,
			Script:   script,
		},
	}
}

func newTestExecutor(t *testing.T) Executor {
	return NewExecutor(t.TempDir(), 2*time.Second, 50*time.Millisecond)
}

func TestExecutor_HappyPath(t *testing.T) {
	e := newTestExecutor(t)
	task := bashTask("t-ok", "echo hello stdout\necho hello stderr >&2\n")

	abort := NewAbortController(context.Background(), task.ID, 10*time.Second)
	defer abort.CleanUp()

	result, metrics, err := e.Execute(abort.Context(), task, abort)
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Empty(t, result.ErrorKind)
	assert.Contains(t, result.Stdout, "hello stdout")
	assert.Contains(t, result.Stderr, "hello stderr")
	require.NotNil(t, metrics)
	assert.GreaterOrEqual(t, metrics.WallTimeMs, int64(0))
}

func TestExecutor_SetsExecutionEnv(t *testing.T) {
	e := newTestExecutor(t)
	task := bashTask("t-env", "echo \"$SCRIPTORIUM_EXECUTION\"\n")
	task.Request.Env = map[string]string{"EXTRA_VAR": "extra-value"}
	task.Request.Script = "echo \"$SCRIPTORIUM_EXECUTION\"\necho \"$EXTRA_VAR\"\n"

	abort := NewAbortController(context.Background(), task.ID, 10*time.Second)
	defer abort.CleanUp()

	result, _, err := e.Execute(abort.Context(), task, abort)
	require.NoError(t, err)
	assert.Contains(t, result.Stdout, "true")
	assert.Contains(t, result.Stdout, "extra-value")
}

func TestExecutor_PassesParameters(t *testing.T) {
	e := newTestExecutor(t)
	task := bashTask("t-args", "echo \"$1=$2\"\n")
	task.Request.Parameters = map[string]string{"target": "/tmp/out"}

	abort := NewAbortController(context.Background(), task.ID, 10*time.Second)
	defer abort.CleanUp()

	result, _, err := e.Execute(abort.Context(), task, abort)
	require.NoError(t, err)
	assert.Contains(t, result.Stdout, "--target=/tmp/out")
}

func TestExecutor_NonZeroExit(t *testing.T) {
	e := newTestExecutor(t)
	task := bashTask("t-fail", "echo before failure\nexit 3\n")

	abort := NewAbortController(context.Background(), task.ID, 10*time.Second)
	defer abort.CleanUp()

	result, _, err := e.Execute(abort.Context(), task, abort)
	require.NoError(t, err)
	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, entity.ErrNonZeroExit, result.ErrorKind)
	assert.Contains(t, result.Stdout, "before failure")
}

func TestExecutor_Timeout(t *testing.T) {
	e := newTestExecutor(t)
	task := bashTask("t-slow", "sleep 30\n")

	abort := NewAbortController(context.Background(), task.ID, 300*time.Millisecond)
	defer abort.CleanUp()

	result, _, err := e.Execute(abort.Context(), task, abort)
	require.NoError(t, err)
	assert.Equal(t, entity.ErrTimedOut, result.ErrorKind)
	assert.Equal(t, -1, result.ExitCode)
}

func TestExecutor_Abort(t *testing.T) {
	e := newTestExecutor(t)
	task := bashTask("t-abort", "sleep 30\n")

	abort := NewAbortController(context.Background(), task.ID, 10*time.Second)
	defer abort.CleanUp()

	go func() {
		time.Sleep(200 * time.Millisecond)
		abort.Abort()
	}()

	result, _, err := e.Execute(abort.Context(), task, abort)
	require.NoError(t, err)
	assert.Equal(t, entity.ErrCancelled, result.ErrorKind)
}

func TestExecutor_SpawnFailure(t *testing.T) {
	e := NewExecutor(t.TempDir(), time.Second, 50*time.Millisecond)
	task := bashTask("t-spawn", "echo never runs\n")
	task.Request.WorkingDir = "/nonexistent/working/dir"

	abort := NewAbortController(context.Background(), task.ID, 5*time.Second)
	defer abort.CleanUp()

	result, _, err := e.Execute(abort.Context(), task, abort)
	require.NoError(t, err)
	assert.Equal(t, entity.ErrSpawnFailed, result.ErrorKind)
	assert.Equal(t, -1, result.ExitCode)
}
