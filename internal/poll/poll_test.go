package poll_test

import (
	"context"
	"testing"
	"time"

	"github.com/perdasilva/stubuniverse/internal/clusterctl"
	"github.com/perdasilva/stubuniverse/internal/clusterctl/clusterctltest"
	"github.com/perdasilva/stubuniverse/internal/poll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUntilCondition_SucceedsAfterRetries(t *testing.T) {
	t.Parallel()

	runner := clusterctltest.NewFakeRunner().On("package repo add",
		clusterctl.Result{ExitCode: 1, Stderr: "not ready"},
		clusterctl.Result{ExitCode: 1, Stderr: "not ready"},
		clusterctl.Result{ExitCode: 0},
	)

	err := poll.UntilCondition(context.Background(), runner, poll.ExitCode(0),
		[]string{"package", "repo", "add", "r", "http://x"},
		poll.WithDelay(time.Millisecond), poll.WithTimeout(5*time.Second))
	require.NoError(t, err)
	assert.Len(t, runner.Calls(), 3)
}

func TestUntilCondition_StopsAtDeadline(t *testing.T) {
	t.Parallel()

	runner := clusterctltest.NewFakeRunner().On("registry describe", clusterctl.Result{ExitCode: 0})

	start := time.Now()
	err := poll.UntilCondition(context.Background(), runner, poll.ExitCodeAndStderr(1, "not found"),
		[]string{"registry", "describe"},
		poll.WithDelay(10*time.Millisecond), poll.WithTimeout(100*time.Millisecond))
	require.ErrorIs(t, err, poll.ErrConditionNotMet)
	assert.Less(t, time.Since(start), 2*time.Second)

	calls := len(runner.Calls())
	assert.GreaterOrEqual(t, calls, 2)
	assert.LessOrEqual(t, calls, 11)
}

func TestUntilCondition_ParentContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := clusterctltest.NewFakeRunner()
	err := poll.UntilCondition(ctx, runner, poll.ExitCode(0), []string{"package", "list"},
		poll.WithDelay(time.Millisecond), poll.WithTimeout(time.Second))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestUntilCondition_RejectsNonPositiveDelay(t *testing.T) {
	t.Parallel()

	err := poll.UntilCondition(context.Background(), clusterctltest.NewFakeRunner(), poll.ExitCode(0),
		[]string{"package", "list"}, poll.WithDelay(0))
	assert.Error(t, err)
}

func TestExitCodeAndStderr(t *testing.T) {
	t.Parallel()

	check := poll.ExitCodeAndStderr(1, "Version [world] of package [hello] not found")
	assert.True(t, check(clusterctl.Result{ExitCode: 1, Stderr: "Error: Version [world] of package [hello] not found"}))
	assert.False(t, check(clusterctl.Result{ExitCode: 0, Stderr: "Version [world] of package [hello] not found"}))
	assert.False(t, check(clusterctl.Result{ExitCode: 1, Stderr: "connection refused"}))
}
