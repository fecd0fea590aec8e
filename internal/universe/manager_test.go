package universe_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/perdasilva/stubuniverse/internal/clusterctl"
	"github.com/perdasilva/stubuniverse/internal/clusterctl/clusterctltest"
	"github.com/perdasilva/stubuniverse/internal/universe"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type recordingTracker struct {
	tracked universe.Repos
}

func (r *recordingTracker) Track(name string, url string) error {
	if r.tracked == nil {
		r.tracked = universe.Repos{}
	}
	r.tracked[name] = url
	return nil
}

func TestManager_AddStubURLsEmpty(t *testing.T) {
	t.Parallel()

	runner := clusterctltest.NewFakeRunner()
	repos, err := universe.NewManager(runner, newLogger()).AddStubURLs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, repos)
	assert.Empty(t, runner.Calls())
}

func TestManager_AddStubURLsRemovesDuplicates(t *testing.T) {
	t.Parallel()

	runner := clusterctltest.NewFakeRunner().
		On("package repo list --json", clusterctl.Result{
			Stdout: `{"repositories":[
				{"name":"Universe","uri":"https://universe.mesosphere.com/repo"},
				{"name":"old-stub","uri":"http://stub/a"}]}`,
		}).
		On("package repo remove", clusterctl.Result{}).
		On("package repo add", clusterctl.Result{})

	repos, err := universe.NewManager(runner, newLogger()).
		AddStubURLs(context.Background(), []string{"http://stub/a", "http://stub/b"})
	require.NoError(t, err)

	require.Len(t, repos, 2)
	urls := []string{}
	for _, name := range repos.Names() {
		assert.True(t, strings.HasPrefix(name, "testpkg-"))
		urls = append(urls, repos[name])
	}
	assert.ElementsMatch(t, []string{"http://stub/a", "http://stub/b"}, urls)

	assert.Equal(t, []string{"package repo remove old-stub"}, runner.CallsWithPrefix("package repo remove"))

	adds := runner.CallsWithPrefix("package repo add")
	require.Len(t, adds, 2)
	for _, name := range repos.Names() {
		assert.Contains(t, adds, "package repo add --index=0 "+name+" "+repos[name])
	}

	calls := runner.Calls()
	assert.Equal(t, "package repo remove old-stub", calls[1], "duplicates are removed before adding")
}

func TestManager_AddFailsOnStderr(t *testing.T) {
	t.Parallel()

	runner := clusterctltest.NewFakeRunner().
		On("package repo add", clusterctl.Result{Stderr: "some warning"})
	tracker := &recordingTracker{}

	err := universe.NewManager(runner, newLogger()).WithTracker(tracker).
		Add(context.Background(), "testpkg-x", "http://stub/a")

	var cmdErr *clusterctl.CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Contains(t, err.Error(), "failed to add stub repo testpkg-x (http://stub/a)")
	assert.Equal(t, universe.Repos{"testpkg-x": "http://stub/a"}, tracker.tracked)
}

func TestManager_AddStubURLsReturnsPartialOnFailure(t *testing.T) {
	t.Parallel()

	runner := clusterctltest.NewFakeRunner().
		On("package repo list --json", clusterctl.Result{Stdout: `{"repositories":[]}`}).
		On("package repo add",
			clusterctl.Result{},
			clusterctl.Result{ExitCode: 1, Stderr: "boom"})
	tracker := &recordingTracker{}

	added, err := universe.NewManager(runner, newLogger()).WithTracker(tracker).
		AddStubURLs(context.Background(), []string{"http://stub/a", "http://stub/b"})
	require.Error(t, err)
	assert.Len(t, added, 1)
	assert.Len(t, tracker.tracked, 2)
}

func TestManager_RemoveToleratesMissingRepo(t *testing.T) {
	t.Parallel()

	runner := clusterctltest.NewFakeRunner().
		On("package repo remove", clusterctl.Result{
			ExitCode: 1,
			Stderr:   "The repository 'testpkg-x' is not present in the list",
		})

	err := universe.NewManager(runner, newLogger()).Remove(context.Background(), "testpkg-x")
	assert.NoError(t, err)
}

func TestManager_RemoveAllFailsOnOtherErrors(t *testing.T) {
	t.Parallel()

	runner := clusterctltest.NewFakeRunner().
		On("package repo remove testpkg-a", clusterctl.Result{}).
		On("package repo remove testpkg-b", clusterctl.Result{ExitCode: 1, Stderr: "unauthorized"})

	err := universe.NewManager(runner, newLogger()).RemoveAll(context.Background(), universe.Repos{
		"testpkg-a": "http://stub/a",
		"testpkg-b": "http://stub/b",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unauthorized")
	assert.Len(t, runner.CallsWithPrefix("package repo remove"), 2)
}

func TestManager_ListParsesRepositories(t *testing.T) {
	t.Parallel()

	runner := clusterctltest.NewFakeRunner().
		On("package repo list --json", clusterctl.Result{
			Stdout: `{"repositories":[{"name":"Universe","uri":"https://universe.mesosphere.com/repo"}]}`,
		})

	repos, err := universe.NewManager(runner, newLogger()).List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []universe.Repository{{Name: "Universe", URI: "https://universe.mesosphere.com/repo"}}, repos)
}

func TestManager_RemoveAllAttemptsEveryRepo(t *testing.T) {
	t.Parallel()

	runner := clusterctltest.NewFakeRunner().
		On("package repo remove testpkg-a", clusterctl.Result{ExitCode: 1, Stderr: "unauthorized"}).
		On("package repo remove testpkg-b", clusterctl.Result{}).
		On("package repo remove testpkg-c", clusterctl.Result{ExitCode: 1, Stderr: "timed out"})

	err := universe.NewManager(runner, newLogger()).RemoveAll(context.Background(), universe.Repos{
		"testpkg-a": "http://stub/a",
		"testpkg-b": "http://stub/b",
		"testpkg-c": "http://stub/c",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unauthorized")
	assert.Contains(t, err.Error(), "timed out")
	assert.Equal(t, []string{
		"package repo remove testpkg-a",
		"package repo remove testpkg-b",
		"package repo remove testpkg-c",
	}, runner.CallsWithPrefix("package repo remove"))
}
