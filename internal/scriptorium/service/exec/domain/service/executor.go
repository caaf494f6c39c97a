package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/kiosk404/scrivener/internal/scriptorium/service/exec/domain/entity"
	"github.com/kiosk404/scrivener/pkg/logger"
)

const (
	// maxCapturedOutput bounds each of stdout and stderr.
	maxCapturedOutput = 1 << 20

	envExecutionFlag = "SCRIPTORIUM_EXECUTION"
	envTimestamp     = "SCRIPTORIUM_TIMESTAMP"
)

// Executor runs one script to completion under an abort controller.
type Executor interface {
	// Execute writes the script to disk, spawns the interpreter and waits.
	// Script-level failures are reported in the Result; the error return is
	// reserved for infrastructure problems (temp dir unwritable, etc).
	Execute(ctx context.Context, task *entity.Task, abort *AbortController) (*entity.Result, *entity.Metrics, error)
}

type executor struct {
	scriptsDir     string
	gracePeriod    time.Duration
	sampleInterval time.Duration
}

// NewExecutor creates the process-spawning executor. Scripts are written
// under scriptsDir for the lifetime of the run.
func NewExecutor(scriptsDir string, gracePeriod, sampleInterval time.Duration) Executor {
	return &executor{
		scriptsDir:     scriptsDir,
		gracePeriod:    gracePeriod,
		sampleInterval: sampleInterval,
	}
}

func (e *executor) Execute(ctx context.Context, task *entity.Task, abort *AbortController) (*entity.Result, *entity.Metrics, error) {
	path, err := e.writeScript(task)
	if err != nil {
		return nil, nil, fmt.Errorf("write script: %w", err)
	}
	defer os.Remove(path)

	interpreter, args := task.Request.Platform.Interpreter()
	args = append(args, path)
	for k, v := range task.Request.Parameters {
		args = append(args, "--"+k, v)
	}

	cmd := exec.CommandContext(ctx, interpreter, args...)
	cmd.Dir = task.Request.WorkingDir
	cmd.Env = e.buildEnv(task)

	stdout := newCapBuffer(maxCapturedOutput)
	stderr := newCapBuffer(maxCapturedOutput)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	// Run the interpreter in its own process group so cancellation reaches
	// any children it spawned.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
	}
	cmd.WaitDelay = e.gracePeriod

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return &entity.Result{
			ExitCode:  -1,
			ErrorKind: entity.ErrSpawnFailed,
			Message:   err.Error(),
		}, &entity.Metrics{}, nil
	}

	sampler := newResourceSampler(cmd.Process.Pid, e.sampleInterval)
	samplerCtx, stopSampler := context.WithCancel(context.Background())
	var samplerDone sync.WaitGroup
	samplerDone.Add(1)
	go func() {
		defer samplerDone.Done()
		sampler.run(samplerCtx)
	}()

	waitErr := cmd.Wait()
	stopSampler()
	samplerDone.Wait()

	metrics := &entity.Metrics{WallTimeMs: time.Since(start).Milliseconds()}
	sampler.fill(metrics)

	result := &entity.Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	e.classify(ctx, abort, waitErr, result)

	if result.ErrorKind != "" {
		logger.Info("[Executor] task %s finished with %s (exit=%d)", task.ID, result.ErrorKind, result.ExitCode)
	}
	return result, metrics, nil
}

// classify fills ExitCode/ErrorKind from the wait outcome. Context causes
// take precedence because the kill signal also surfaces as an exit error.
func (e *executor) classify(ctx context.Context, abort *AbortController, waitErr error, result *entity.Result) {
	switch {
	case waitErr == nil:
		result.ExitCode = 0
		return
	case ctx.Err() != nil:
		result.ExitCode = -1
		if abort != nil && abort.Aborted() {
			result.ErrorKind = entity.ErrCancelled
			result.Message = "cancelled by request"
		} else if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			result.ErrorKind = entity.ErrTimedOut
			result.Message = "timed out"
		} else {
			result.ErrorKind = entity.ErrCancelled
			result.Message = "cancelled"
		}
		return
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		result.ErrorKind = entity.ErrNonZeroExit
		result.Message = fmt.Sprintf("exited with code %d", result.ExitCode)
		return
	}
	result.ExitCode = -1
	result.ErrorKind = entity.ErrInternal
	result.Message = waitErr.Error()
}

func (e *executor) writeScript(task *entity.Task) (string, error) {
	if err := os.MkdirAll(e.scriptsDir, 0o755); err != nil {
		return "", err
	}
	pattern := task.ID + "-*" + task.Request.Platform.Extension()
	f, err := os.CreateTemp(e.scriptsDir, pattern)
	if err != nil {
		return "", err
	}
	if _, err := f.WriteString(task.Request.Script); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	if err := os.Chmod(f.Name(), 0o700); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

func (e *executor) buildEnv(task *entity.Task) []string {
	env := os.Environ()
	env = append(env,
		envExecutionFlag+"=true",
		envTimestamp+"="+strconv.FormatInt(time.Now().Unix(), 10),
	)
	for k, v := range task.Request.Env {
		env = append(env, k+"="+v)
	}
	return env
}
