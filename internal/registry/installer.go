package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/perdasilva/stubuniverse/internal/clusterctl"
	"github.com/perdasilva/stubuniverse/internal/poll"
	"github.com/perdasilva/stubuniverse/internal/universe"
	"github.com/sirupsen/logrus"
)

const (
	PackageName = "package-registry"

	// DefaultRepoURL is where the registry serves its packages once installed
	DefaultRepoURL = "https://registry.marathon.l4lb.thisdcos.directory/repo"

	repoNamePrefix  = "package-registry-repo"
	notInstalledMsg = "is not installed"

	probePackageName    = "hello"
	probePackageVersion = "world"
)

type serviceOptions struct {
	Registry registryOptions `json:"registry"`
}

type registryOptions struct {
	ServiceAccountSecretPath string `json:"service-account-secret-path"`
}

// Installer installs the package registry service and waits for it to become writable
type Installer struct {
	runner      clusterctl.Runner
	tracker     universe.Tracker
	logger      *logrus.Logger
	workDir     string
	repoURL     string
	pollOptions []poll.Option
}

func NewInstaller(runner clusterctl.Runner, workDir string, logger *logrus.Logger, pollOptions ...poll.Option) *Installer {
	if logger == nil {
		panic("no logger specified")
	}
	return &Installer{
		runner:      runner,
		logger:      logger,
		workDir:     workDir,
		repoURL:     DefaultRepoURL,
		pollOptions: append([]poll.Option{poll.WithLogger(logger)}, pollOptions...),
	}
}

func (i *Installer) WithTracker(tracker universe.Tracker) *Installer {
	i.tracker = tracker
	return i
}

// Install installs the registry with the given service account secret, adds
// its repository once reachable and waits until the describe endpoint answers.
func (i *Installer) Install(ctx context.Context, secretPath string) (universe.Repos, error) {
	optionsFile, err := writeJSONTempFile(i.workDir, serviceOptions{
		Registry: registryOptions{ServiceAccountSecretPath: secretPath},
	})
	if err != nil {
		return nil, fmt.Errorf("error writing registry options: %w", err)
	}

	i.logger.Infof("Installing %s", PackageName)
	if _, err := clusterctl.MustSucceed(ctx, i.runner,
		"package", "install", PackageName, "--options="+optionsFile, "--yes"); err != nil {
		return nil, err
	}

	repoName := universe.RandomName(repoNamePrefix)
	repos := universe.Repos{repoName: i.repoURL}
	if i.tracker != nil {
		if err := i.tracker.Track(repoName, i.repoURL); err != nil {
			return nil, err
		}
	}

	i.logger.Infof("Waiting for registry repo %s to be added", repoName)
	err = poll.UntilCondition(ctx, i.runner, poll.ExitCode(0),
		[]string{"package", "repo", "add", "--index=0", repoName, i.repoURL}, i.pollOptions...)
	if err != nil {
		return repos, err
	}

	// a describe of an unknown package only fails this way once the registry is writable
	expected := fmt.Sprintf("Version [%s] of package [%s] not found", probePackageVersion, probePackageName)
	i.logger.Info("Waiting for registry describe endpoint")
	err = poll.UntilCondition(ctx, i.runner, poll.ExitCodeAndStderr(1, expected),
		[]string{"registry", "describe",
			"--package-name=" + probePackageName,
			"--package-version=" + probePackageVersion}, i.pollOptions...)
	if err != nil {
		return repos, err
	}
	return repos, nil
}

// Uninstall removes every registry instance and waits for it to disappear from the package list
func (i *Installer) Uninstall(ctx context.Context) error {
	i.logger.Info("Uninstalling package registry")
	args := []string{"package", "uninstall", PackageName, "--yes", "--all"}
	result, err := i.runner.Run(ctx, args...)
	if err != nil {
		return err
	}
	if !result.Succeeded() {
		if strings.Contains(result.Stderr, notInstalledMsg) {
			i.logger.Debugf("%s is not installed", PackageName)
			return nil
		}
		return &clusterctl.CommandError{Args: args, Result: result}
	}

	return poll.UntilCondition(ctx, i.runner, func(result clusterctl.Result) bool {
		if !result.Succeeded() {
			return false
		}
		installed, err := packageInstalled(result.Stdout, PackageName)
		return err == nil && !installed
	}, []string{"package", "list", "--json"}, i.pollOptions...)
}

func packageInstalled(listJSON string, name string) (bool, error) {
	var packages []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(listJSON), &packages); err != nil {
		return false, err
	}
	for _, p := range packages {
		if p.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func writeJSONTempFile(dir string, value interface{}) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	f, err := os.CreateTemp(dir, "*.json")
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return "", err
	}
	return f.Name(), nil
}
