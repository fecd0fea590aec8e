package clusterctl

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

const DefaultBinary = "dcos"

// Result holds the outcome of a single cluster CLI invocation
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Succeeded reports a zero exit code
func (r Result) Succeeded() bool {
	return r.ExitCode == 0
}

// Runner invokes the cluster CLI. A non-zero exit code is not an error, it is
// reported in the Result. Errors are reserved for commands that could not be run.
type Runner interface {
	Run(ctx context.Context, args ...string) (Result, error)
}

var _ Runner = &ExecRunner{}

type ExecRunner struct {
	binary string
	logger *logrus.Logger
}

func NewExecRunner(binary string, logger *logrus.Logger) *ExecRunner {
	if logger == nil {
		panic("logger not set")
	}
	if binary == "" {
		binary = DefaultBinary
	}
	return &ExecRunner{
		binary: binary,
		logger: logger,
	}
}

func (e *ExecRunner) Run(ctx context.Context, args ...string) (Result, error) {
	e.logger.Debugln("Executing ", e.binary, strings.Join(args, " "))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.binary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	result := Result{}
	err := cmd.Run()
	result.Stdout = strings.TrimRight(stdout.String(), " \t\r\n")
	result.Stderr = strings.TrimRight(stderr.String(), " \t\r\n")

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	default:
		return result, err
	}

	e.logger.Tracef("exit=%d stdout=[%s] stderr=[%s]", result.ExitCode, result.Stdout, result.Stderr)
	return result, nil
}

// MustSucceed runs the command and returns its stdout, failing on a non-zero exit code.
func MustSucceed(ctx context.Context, runner Runner, args ...string) (string, error) {
	result, err := runner.Run(ctx, args...)
	if err != nil {
		return "", err
	}
	if !result.Succeeded() {
		return result.Stdout, &CommandError{Args: args, Result: result}
	}
	return result.Stdout, nil
}
