package executor

import (
	"bytes"
	"time"

	sh "github.com/codeskyblue/go-sh"

	"github.com/simfarm/simctl-provider/models"
)

// Executor runs an external tool with a per-call environment overlay.
// Timeout enforcement lives here, callers never race their own timers
// against a running command.
type Executor interface {
	Exec(tool string, args []string, env map[string]string, timeout time.Duration) (models.ExecutionResult, error)
}

// Blocking runs the command to completion and captures stdout/stderr
// separately. On a non-zero exit or timeout the captured output is still
// returned alongside the error so callers can classify the failure.
type Blocking struct{}

func NewBlocking() Blocking {
	return Blocking{}
}

func (Blocking) Exec(tool string, args []string, env map[string]string, timeout time.Duration) (models.ExecutionResult, error) {
	session := sh.NewSession()
	for key, value := range env {
		session.SetEnv(key, value)
	}
	if timeout > 0 {
		session.SetTimeout(timeout)
	}

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	err := session.Command(tool, args).Run()
	result := models.ExecutionResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		return result, err
	}
	return result, nil
}

// NonBlocking starts the command and returns as soon as the child process
// handle exists, without waiting for it to exit. Used for long-running
// executables spawned inside a simulator. A goroutine reaps the process
// so it does not linger as a zombie.
type NonBlocking struct{}

func NewNonBlocking() NonBlocking {
	return NonBlocking{}
}

func (NonBlocking) Exec(tool string, args []string, env map[string]string, timeout time.Duration) (models.ExecutionResult, error) {
	session := sh.NewSession()
	for key, value := range env {
		session.SetEnv(key, value)
	}

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	if err := session.Command(tool, args).Start(); err != nil {
		return models.ExecutionResult{Stderr: stderr.String()}, err
	}
	go session.Wait()

	return models.ExecutionResult{}, nil
}
