// Package poll retries a cluster CLI command until its outcome satisfies a condition.
package poll

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/perdasilva/stubuniverse/internal/clusterctl"
	"github.com/sirupsen/logrus"
)

const (
	DefaultDelay   = 5 * time.Second
	DefaultTimeout = 5 * time.Minute
)

var ErrConditionNotMet = errors.New("condition not met before deadline")

// Check decides whether a command outcome is the one being waited for
type Check func(result clusterctl.Result) bool

type config struct {
	delay   time.Duration
	timeout time.Duration
	logger  *logrus.Logger
}

type Option func(*config)

func WithDelay(delay time.Duration) Option {
	return func(c *config) {
		c.delay = delay
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.timeout = timeout
	}
}

func WithLogger(logger *logrus.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// UntilCondition runs the command with a fixed delay between attempts until check
// returns true or the timeout elapses.
func UntilCondition(ctx context.Context, runner clusterctl.Runner, check Check, args []string, options ...Option) error {
	cfg := &config{
		delay:   DefaultDelay,
		timeout: DefaultTimeout,
	}
	for _, opt := range options {
		opt(cfg)
	}
	if cfg.delay <= 0 {
		return fmt.Errorf("poll delay must be positive, got %s", cfg.delay)
	}

	deadlineCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	command := strings.Join(args, " ")
	attempts := uint(cfg.timeout/cfg.delay) + 1

	var last clusterctl.Result
	err := retry.Do(func() error {
		result, err := runner.Run(deadlineCtx, args...)
		if err != nil {
			return err
		}
		last = result
		if !check(result) {
			return fmt.Errorf("unexpected outcome (exit code %d)", result.ExitCode)
		}
		return nil
	},
		retry.Context(deadlineCtx),
		retry.Attempts(attempts),
		retry.Delay(cfg.delay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			if cfg.logger != nil {
				cfg.logger.Debugf("'%s' attempt %d: %v", command, n+1, err)
			}
		}),
	)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("%w: '%s' after %s: %v (last stdout=[%s], stderr=[%s])",
		ErrConditionNotMet, command, cfg.timeout, err, last.Stdout, last.Stderr)
}

// ExitCode checks for a specific exit code
func ExitCode(code int) Check {
	return func(result clusterctl.Result) bool {
		return result.ExitCode == code
	}
}

// ExitCodeAndStderr checks for a specific exit code with stderr containing msg
func ExitCodeAndStderr(code int, msg string) Check {
	return func(result clusterctl.Result) bool {
		return result.ExitCode == code && strings.Contains(result.Stderr, msg)
	}
}
