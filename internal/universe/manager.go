package universe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/perdasilva/stubuniverse/internal/clusterctl"
	"github.com/sirupsen/logrus"
	"k8s.io/apimachinery/pkg/util/sets"
)

const (
	stubNamePrefix = "testpkg"
	notPresentMsg  = "is not present in the list"
)

type Repository struct {
	Name string `json:"name"`
	URI  string `json:"uri"`
}

type repositoryList struct {
	Repositories []Repository `json:"repositories"`
}

// Tracker is told about every repository name before it is added, so that
// teardown can remove it even if the add never completes.
type Tracker interface {
	Track(name string, url string) error
}

// Manager adds and removes package repositories through the cluster CLI
type Manager struct {
	runner  clusterctl.Runner
	logger  *logrus.Logger
	tracker Tracker
}

func NewManager(runner clusterctl.Runner, logger *logrus.Logger) *Manager {
	if logger == nil {
		panic("no logger specified")
	}
	return &Manager{
		runner: runner,
		logger: logger,
	}
}

func (m *Manager) WithTracker(tracker Tracker) *Manager {
	m.tracker = tracker
	return m
}

func (m *Manager) List(ctx context.Context) ([]Repository, error) {
	out, err := clusterctl.MustSucceed(ctx, m.runner, "package", "repo", "list", "--json")
	if err != nil {
		return nil, err
	}
	var list repositoryList
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		return nil, fmt.Errorf("error parsing repository list: %w", err)
	}
	return list.Repositories, nil
}

// AddStubURLs registers each URL under a freshly generated name, first removing
// any existing repository that already points at one of the URLs.
func (m *Manager) AddStubURLs(ctx context.Context, urls []string) (Repos, error) {
	repos := Repos{}
	if len(urls) == 0 {
		return repos, nil
	}

	m.logger.Infof("Adding stub URLs: %v", urls)
	for idx, url := range urls {
		m.logger.Infof("URL %d: %q", idx, url)
		repos[RandomName(stubNamePrefix)] = url
	}

	if err := m.removeDuplicates(ctx, sets.NewString(urls...)); err != nil {
		return nil, err
	}

	added := Repos{}
	for _, name := range repos.Names() {
		if err := m.Add(ctx, name, repos[name]); err != nil {
			return added, err
		}
		added[name] = repos[name]
	}

	m.logger.Info("Finished adding universe repos")
	return added, nil
}

func (m *Manager) removeDuplicates(ctx context.Context, urls sets.String) error {
	current, err := m.List(ctx)
	if err != nil {
		return err
	}
	for _, repo := range current {
		if !urls.Has(repo.URI) {
			continue
		}
		m.logger.Infof("Removing duplicate stub URL: %s", repo.URI)
		if _, err := clusterctl.MustSucceed(ctx, m.runner, "package", "repo", "remove", repo.Name); err != nil {
			return err
		}
	}
	return nil
}

// Add registers a repository at the front of the repository list
func (m *Manager) Add(ctx context.Context, name string, url string) error {
	if m.tracker != nil {
		if err := m.tracker.Track(name, url); err != nil {
			return fmt.Errorf("error tracking repo %s: %w", name, err)
		}
	}

	m.logger.Infof("Adding stub repo %s URL: %s", name, url)
	args := []string{"package", "repo", "add", "--index=0", name, url}
	result, err := m.runner.Run(ctx, args...)
	if err != nil {
		return err
	}
	if !result.Succeeded() || result.Stderr != "" {
		return &clusterctl.CommandError{
			Args:   args,
			Result: result,
			Reason: fmt.Sprintf("failed to add stub repo %s (%s)", name, url),
		}
	}
	return nil
}

// Remove deletes a repository by name. A repository that is already gone is not an error.
func (m *Manager) Remove(ctx context.Context, name string) error {
	args := []string{"package", "repo", "remove", name}
	result, err := m.runner.Run(ctx, args...)
	if err != nil {
		return err
	}
	if result.Succeeded() && result.Stderr == "" {
		return nil
	}
	if strings.HasSuffix(result.Stderr, notPresentMsg) {
		m.logger.Debugf("repo %s was already removed", name)
		return nil
	}
	return &clusterctl.CommandError{
		Args:   args,
		Result: result,
		Reason: "failed to remove stub repo",
	}
}

// RemoveAll attempts to remove every repository in repos and reports all failures
func (m *Manager) RemoveAll(ctx context.Context, repos Repos) error {
	m.logger.Info("Removing universe repos")
	var errs []error
	for _, name := range repos.Names() {
		m.logger.Infof("Removing stub URL: %s", repos[name])
		if err := m.Remove(ctx, name); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	m.logger.Info("Finished removing universe repos")
	return nil
}
