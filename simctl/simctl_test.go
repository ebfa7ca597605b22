package simctl

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/simfarm/simctl-provider/logger"
	"github.com/simfarm/simctl-provider/models"
)

type execCall struct {
	tool    string
	args    []string
	env     map[string]string
	timeout time.Duration
}

type execResponse struct {
	result models.ExecutionResult
	err    error
}

// fakeExecutor replays scripted responses, repeating the last one once the
// script runs out.
type fakeExecutor struct {
	calls  []execCall
	script []execResponse
}

func (f *fakeExecutor) Exec(tool string, args []string, env map[string]string, timeout time.Duration) (models.ExecutionResult, error) {
	f.calls = append(f.calls, execCall{tool: tool, args: args, env: env, timeout: timeout})
	if len(f.script) == 0 {
		return models.ExecutionResult{}, nil
	}
	response := f.script[0]
	if len(f.script) > 1 {
		f.script = f.script[1:]
	}
	return response.result, response.err
}

func newTestClient(exec *fakeExecutor) *Client {
	client := New(logger.CreateWriterLogger(io.Discard, "error"))
	client.Runner = exec
	client.Spawner = exec
	tuning := client.Tuning()
	tuning.LaunchRetryDelay = time.Millisecond
	client.SetTuning(tuning)
	return client
}

func TestInvokeBuildsArgumentVectorAndEnv(t *testing.T) {
	exec := &fakeExecutor{}
	client := newTestClient(exec)

	_, err := client.Invoke(models.CommandSpec{
		Subcommand: "boot",
		Args:       []string{"SOME-UDID"},
		Env:        map[string]string{"FOO": "bar", "BAZ": "1"},
	}, time.Second)
	if err != nil {
		t.Fatalf("invoke: %v", err)
	}

	if len(exec.calls) != 1 {
		t.Fatalf("expected 1 executor call, got %d", len(exec.calls))
	}
	call := exec.calls[0]
	if call.tool != "xcrun" {
		t.Fatalf("expected tool xcrun, got %q", call.tool)
	}
	wantArgs := []string{"simctl", "boot", "SOME-UDID"}
	if len(call.args) != len(wantArgs) {
		t.Fatalf("unexpected args: %v", call.args)
	}
	for i := range wantArgs {
		if call.args[i] != wantArgs[i] {
			t.Fatalf("args mismatch at %d: got=%v want=%v", i, call.args, wantArgs)
		}
	}
	if call.timeout != time.Second {
		t.Fatalf("expected 1s timeout, got %v", call.timeout)
	}

	if len(call.env) != 2 {
		t.Fatalf("expected 2 env overrides, got %v", call.env)
	}
	if call.env["SIMCTL_CHILD_FOO"] != "bar" || call.env["SIMCTL_CHILD_BAZ"] != "1" {
		t.Fatalf("env overrides not prefixed correctly: %v", call.env)
	}
}

func TestInvokeEnvDoesNotLeakBetweenCalls(t *testing.T) {
	exec := &fakeExecutor{}
	client := newTestClient(exec)

	client.Invoke(models.CommandSpec{Subcommand: "boot", Env: map[string]string{"FIRST": "1"}}, time.Second)
	client.Invoke(models.CommandSpec{Subcommand: "shutdown"}, time.Second)

	if _, ok := exec.calls[1].env["SIMCTL_CHILD_FIRST"]; ok {
		t.Fatalf("env override leaked into second invocation: %v", exec.calls[1].env)
	}
}

func TestInvokeClassifiesStderrFailure(t *testing.T) {
	exec := &fakeExecutor{script: []execResponse{{
		result: models.ExecutionResult{Stderr: " Unable to boot device in current state: Booted \n"},
		err:    errors.New("exit status 149"),
	}}}
	client := newTestClient(exec)

	_, err := client.Invoke(models.CommandSpec{Subcommand: "boot", Args: []string{"SOME-UDID"}}, time.Second)
	if err == nil {
		t.Fatal("expected an error")
	}

	var invocationErr *ToolInvocationError
	if !errors.As(err, &invocationErr) {
		t.Fatalf("expected a ToolInvocationError, got %T", err)
	}
	if invocationErr.Subcommand != "boot" {
		t.Fatalf("expected subcommand boot, got %q", invocationErr.Subcommand)
	}
	if invocationErr.Stderr != "Unable to boot device in current state: Booted" {
		t.Fatalf("stderr not trimmed: %q", invocationErr.Stderr)
	}
	if !strings.Contains(err.Error(), "boot") {
		t.Fatalf("error message does not name the subcommand: %v", err)
	}
}

func TestInvokeOpaqueFailurePassesThrough(t *testing.T) {
	execErr := errors.New("fork/exec xcrun: no such file or directory")
	exec := &fakeExecutor{script: []execResponse{{err: execErr}}}
	client := newTestClient(exec)

	_, err := client.Invoke(models.CommandSpec{Subcommand: "boot"}, time.Second)
	if !errors.Is(err, execErr) {
		t.Fatalf("expected the underlying error unchanged, got %v", err)
	}
}

func TestTuningFromConfigOverlaysSetValues(t *testing.T) {
	base := Tuning{
		Timeout:             DefaultTimeout,
		LaunchRetryAttempts: 5,
		LaunchRetryDelay:    time.Second,
		EraseTimeoutBudget:  time.Second,
	}

	tuning := TuningFromConfig(models.SimctlConfig{DefaultTimeoutMs: 15000, LaunchRetryAttempts: 3}, base)
	if tuning.Timeout != 15*time.Second || tuning.LaunchRetryAttempts != 3 {
		t.Fatalf("config values not applied: %+v", tuning)
	}
	if tuning.LaunchRetryDelay != time.Second || tuning.EraseTimeoutBudget != time.Second {
		t.Fatalf("unset config values must keep the base settings: %+v", tuning)
	}
}

func TestTuningReloadDuringRequests(t *testing.T) {
	exec := &fakeExecutor{script: []execResponse{{
		result: models.ExecutionResult{Stdout: "-- iOS 14.4 --\n    iPhone 11 (63E1A0D3-1A2B-4C5D-8E9F-0A1B2C3D4E5F) (Booted)\n"},
	}}}
	client := newTestClient(exec)

	// Config reloads swap tuning while requests are in flight, the way the
	// file watcher does against the HTTP handlers.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			client.SetTuning(TuningFromConfig(models.SimctlConfig{DefaultTimeoutMs: 1000 + i}, client.Tuning()))
		}
	}()

	for i := 0; i < 200; i++ {
		if _, err := client.ListDevices(); err != nil {
			t.Fatalf("list devices during reload: %v", err)
		}
	}
	<-done

	if tuning := client.Tuning(); tuning.Timeout != 1199*time.Millisecond {
		t.Fatalf("final tuning not applied: %+v", tuning)
	}
}

func TestInvokeWithoutLoggingStillPropagates(t *testing.T) {
	execErr := errors.New("exit status 2")
	exec := &fakeExecutor{script: []execResponse{{
		result: models.ExecutionResult{Stderr: "No such file or directory\n"},
		err:    execErr,
	}}}
	client := newTestClient(exec)

	_, err := client.invoke(client.Runner, models.CommandSpec{Subcommand: "get_app_container"}, time.Second, false)
	if !errors.Is(err, execErr) {
		t.Fatalf("expected the raw error when logging is opted out, got %v", err)
	}
}
