package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultPollInterval is how often a running command is checked against
	// its deadline.
	DefaultPollInterval = 100 * time.Millisecond
	// DefaultTimeout applies when the caller passes a non-positive timeout.
	DefaultTimeout = 3 * time.Second
	// DefaultKillGrace bounds the wait for a killed command to be reaped.
	DefaultKillGrace = time.Second
)

// ErrSpawn is returned when the command shell itself could not be started.
var ErrSpawn = errors.New("cannot start shell")

// Output is the result of re-running a command. When TimedOut is set the
// command was killed and Text is empty.
type Output struct {
	Text     string
	TimedOut bool
}

// shellArgv returns the interpreter used to run scripts.
var shellArgv = defaultShellArgv

// Runner re-executes commands to capture what they print.
type Runner struct {
	// Env is added to the inherited environment, replacing existing keys.
	Env map[string]string
	// PollInterval defaults to DefaultPollInterval.
	PollInterval time.Duration
	// KillGrace defaults to DefaultKillGrace.
	KillGrace time.Duration

	logger *zap.Logger
}

// NewRunner returns a Runner that adds env to every command it runs.
func NewRunner(env map[string]string, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		Env:          env,
		PollInterval: DefaultPollInterval,
		KillGrace:    DefaultKillGrace,
		logger:       logger,
	}
}

// GetOutput runs expanded (or script, when expanded is empty) under the
// system shell and returns its combined stdout and stderr. A command that
// exits non-zero is not an error. If the command is still running once
// timeout has elapsed, its process group is killed and the result has
// TimedOut set.
//
// The returned error wraps ErrSpawn when the shell could not be started and
// is ctx.Err() when ctx ends first.
func (r *Runner) GetOutput(ctx context.Context, script, expanded string, timeout time.Duration) (Output, error) {
	if expanded == "" {
		expanded = script
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	poll := r.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}
	logger := r.log().With(zap.String("script", script), zap.Duration("timeout", timeout))

	name, flag := shellArgv()
	cmd := exec.Command(name, flag, expanded)
	cmd.Env = mergeEnv(os.Environ(), r.Env)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	cmd.WaitDelay = r.grace()
	setProcessGroup(cmd)

	logger.Debug("Re-running command", zap.String("expanded", expanded))
	start := time.Now()
	if err := cmd.Start(); err != nil {
		return Output{}, fmt.Errorf("%w: %s: %v", ErrSpawn, name, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case err := <-done:
			var exitErr *exec.ExitError
			if err != nil && !errors.As(err, &exitErr) {
				logger.Debug("Command finished with error", zap.Error(err))
			}
			logger.Debug("Received output", zap.Int("bytes", buf.Len()), zap.Duration("elapsed", time.Since(start)))
			return Output{Text: buf.String()}, nil

		case <-ctx.Done():
			r.stop(cmd, done, logger)
			return Output{}, ctx.Err()

		case <-ticker.C:
			if time.Since(start) >= timeout {
				r.stop(cmd, done, logger)
				logger.Debug("Command timed out")
				return Output{TimedOut: true}, nil
			}
		}
	}
}

// stop kills the command's process group and waits a bounded time for it
// to be reaped.
func (r *Runner) stop(cmd *exec.Cmd, done <-chan error, logger *zap.Logger) {
	if err := killProcessGroup(cmd); err != nil {
		logger.Warn("Failed to kill command", zap.Error(err))
	}
	select {
	case <-done:
	case <-time.After(r.grace()):
		logger.Warn("Command did not exit after kill", zap.Int("pid", cmd.Process.Pid))
	}
}

func (r *Runner) grace() time.Duration {
	if r.KillGrace <= 0 {
		return DefaultKillGrace
	}
	return r.KillGrace
}

func (r *Runner) log() *zap.Logger {
	if r.logger == nil {
		return zap.NewNop()
	}
	return r.logger
}

// mergeEnv drops inherited entries for keys in overrides and appends the
// overrides in key order.
func mergeEnv(base []string, overrides map[string]string) []string {
	env := make([]string, 0, len(base)+len(overrides))
	for _, e := range base {
		key, _, _ := strings.Cut(e, "=")
		if _, ok := overrides[key]; ok {
			continue
		}
		env = append(env, e)
	}

	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+overrides[k])
	}
	return env
}
