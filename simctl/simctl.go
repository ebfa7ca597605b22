package simctl

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/simfarm/simctl-provider/executor"
	"github.com/simfarm/simctl-provider/logger"
	"github.com/simfarm/simctl-provider/models"
	"github.com/simfarm/simctl-provider/util"
)

// Caller-supplied environment overrides are prefixed with this tag so the
// external tool threads them through to processes it spawns itself.
const childEnvPrefix = "SIMCTL_CHILD_"

const simctlCommand = "simctl"

const (
	DefaultTimeout = 30 * time.Second

	launchRetryAttempts = 5
	launchRetryDelay    = 1000 * time.Millisecond

	// Erase is known to be flaky right after device creation. The wall-clock
	// budget is split into short retry slots while each individual attempt
	// gets a generous execution timeout because erase itself can be slow.
	eraseTimeoutBudget  = 1000 * time.Millisecond
	eraseRetryDelay     = 200 * time.Millisecond
	eraseAttemptTimeout = 10000 * time.Millisecond
)

// PathCollaborator allocates scoped temporary paths and does the file I/O
// around them. The default is util.LocalFiles.
type PathCollaborator interface {
	TempPath(prefix, suffix string) string
	ReadFile(path string) ([]byte, error)
	Remove(path string) error
}

// Tuning holds the timeout and retry settings an invocation snapshots once
// at its start. Updates replace the whole value, they never mutate one a
// running operation might be reading.
type Tuning struct {
	Timeout             time.Duration
	LaunchRetryAttempts int
	LaunchRetryDelay    time.Duration
	EraseTimeoutBudget  time.Duration
}

// TuningFromConfig overlays the set values of the simctl config section on
// base.
func TuningFromConfig(cfg models.SimctlConfig, base Tuning) Tuning {
	if cfg.DefaultTimeoutMs > 0 {
		base.Timeout = time.Duration(cfg.DefaultTimeoutMs) * time.Millisecond
	}
	if cfg.LaunchRetryAttempts > 0 {
		base.LaunchRetryAttempts = cfg.LaunchRetryAttempts
	}
	if cfg.LaunchRetryDelayMs > 0 {
		base.LaunchRetryDelay = time.Duration(cfg.LaunchRetryDelayMs) * time.Millisecond
	}
	if cfg.EraseTimeoutBudgetMs > 0 {
		base.EraseTimeoutBudget = time.Duration(cfg.EraseTimeoutBudgetMs) * time.Millisecond
	}
	return base
}

// Client drives the external simulator-management tool. It holds no state
// across calls, every invocation builds a fresh argument vector and
// environment overlay so concurrent callers do not interfere. The tuning
// settings are behind an atomic pointer so a config reload cannot race
// handlers using the client concurrently.
type Client struct {
	Tool    string
	Logger  *logger.CustomLogger
	Runner  executor.Executor
	Spawner executor.Executor
	Paths   PathCollaborator

	tuning atomic.Pointer[Tuning]
}

func New(log *logger.CustomLogger) *Client {
	client := &Client{
		Tool:    "xcrun",
		Logger:  log,
		Runner:  executor.NewBlocking(),
		Spawner: executor.NewNonBlocking(),
		Paths:   util.LocalFiles{},
	}
	client.SetTuning(Tuning{
		Timeout:             DefaultTimeout,
		LaunchRetryAttempts: launchRetryAttempts,
		LaunchRetryDelay:    launchRetryDelay,
		EraseTimeoutBudget:  eraseTimeoutBudget,
	})
	return client
}

// NewFromConfig applies the simctl section of the provider config on top of
// the defaults.
func NewFromConfig(log *logger.CustomLogger, cfg models.SimctlConfig) *Client {
	client := New(log)
	if cfg.ToolName != "" {
		client.Tool = cfg.ToolName
	}
	client.SetTuning(TuningFromConfig(cfg, client.Tuning()))
	return client
}

// Tuning returns the current timeout and retry settings.
func (c *Client) Tuning() Tuning {
	return *c.tuning.Load()
}

// SetTuning swaps in new timeout and retry settings. In-flight operations
// keep the snapshot they started with, subsequent ones pick up the new
// values.
func (c *Client) SetTuning(t Tuning) {
	c.tuning.Store(&t)
}

// Invoke runs a simctl subcommand to completion with the default blocking
// executor and error logging on.
func (c *Client) Invoke(spec models.CommandSpec, timeout time.Duration) (models.ExecutionResult, error) {
	return c.invoke(c.Runner, spec, timeout, true)
}

func (c *Client) invoke(exec executor.Executor, spec models.CommandSpec, timeout time.Duration, logErrors bool) (models.ExecutionResult, error) {
	argv := make([]string, 0, len(spec.Args)+2)
	argv = append(argv, simctlCommand, spec.Subcommand)
	argv = append(argv, spec.Args...)

	env := make(map[string]string, len(spec.Env))
	for key, value := range spec.Env {
		env[childEnvPrefix+key] = value
	}

	result, err := exec.Exec(c.Tool, argv, env, timeout)
	if err == nil {
		return result, nil
	}

	// The caller opted out of logging because the failure is an expected
	// outcome for it, e.g. an app container lookup for a missing bundle.
	// The error still propagates.
	if !logErrors {
		return result, err
	}

	if stderr := strings.TrimSpace(result.Stderr); stderr != "" {
		invocationErr := &ToolInvocationError{Subcommand: spec.Subcommand, Stderr: stderr}
		c.Logger.LogError("simctl_invoke", invocationErr.Error())
		return result, invocationErr
	}

	c.Logger.LogError("simctl_invoke", fmt.Sprintf("Failed executing simctl `%s` - %v", spec.Subcommand, err))
	return result, err
}
