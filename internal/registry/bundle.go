package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/perdasilva/stubuniverse/internal/clusterctl"
	"github.com/sirupsen/logrus"
)

const (
	BundleExtension = ".dcos"

	alreadyExistsMsg = "already exists"
)

// ClusterVersioner resolves the version of the target cluster
type ClusterVersioner interface {
	ClusterVersion(ctx context.Context) (string, error)
}

// BundleBuilder turns universe package definitions into registry bundle files
// and uploads them to the registry.
type BundleBuilder struct {
	runner  clusterctl.Runner
	client  *http.Client
	version ClusterVersioner
	logger  *logrus.Logger
	workDir string
}

func NewBundleBuilder(runner clusterctl.Runner, client *http.Client, version ClusterVersioner, workDir string, logger *logrus.Logger) *BundleBuilder {
	if logger == nil {
		panic("no logger specified")
	}
	return &BundleBuilder{
		runner:  runner,
		client:  client,
		version: version,
		logger:  logger,
		workDir: workDir,
	}
}

// BundlePath is where the build step writes the bundle for name and version
func BundlePath(outputDir string, name string, version string) string {
	return filepath.Join(outputDir, fmt.Sprintf("%s-%s%s", name, version, BundleExtension))
}

// BuildFromStubs builds a bundle for every package served by the given repositories
func (b *BundleBuilder) BuildFromStubs(ctx context.Context, repoURLs []string, outputDir string) ([]string, error) {
	if len(repoURLs) == 0 {
		return nil, nil
	}

	clusterVersion, err := b.version.ClusterVersion(ctx)
	if err != nil {
		return nil, err
	}

	var bundles []string
	for _, repoURL := range repoURLs {
		repo, err := FetchRepo(ctx, b.client, repoURL, universeHeaders(clusterVersion))
		if err != nil {
			return bundles, err
		}
		for _, pkg := range repo.Packages {
			bundle, err := b.Build(ctx, pkg, outputDir)
			if err != nil {
				return bundles, err
			}
			bundles = append(bundles, bundle)
		}
	}
	return bundles, nil
}

// Build writes the package build definition to a temporary file and runs the
// registry build step. A bundle left over from an earlier build is reused.
func (b *BundleBuilder) Build(ctx context.Context, pkg Package, outputDir string) (string, error) {
	if pkg.Name() == "" || pkg.Version() == "" {
		return "", fmt.Errorf("package definition is missing name or version")
	}

	definitionFile, err := writeJSONTempFile(b.workDir, pkg.BuildDefinition())
	if err != nil {
		return "", fmt.Errorf("error writing build definition for %s: %w", pkg.Name(), err)
	}

	target := BundlePath(outputDir, pkg.Name(), pkg.Version())
	b.logger.Debugf("Building %s", target)

	args := []string{
		"registry", "build",
		"--build-definition-file=" + definitionFile,
		"--output-directory=" + outputDir,
		"--json",
	}
	result, err := b.runner.Run(ctx, args...)
	if err != nil {
		return "", err
	}
	if !(result.ExitCode == 0 || (result.ExitCode == 1 && strings.Contains(result.Stdout, alreadyExistsMsg))) {
		return "", &clusterctl.CommandError{Args: args, Result: result}
	}

	if info, err := os.Stat(target); err != nil || info.IsDir() {
		return "", fmt.Errorf("expected bundle file %s was not created", target)
	}
	return target, nil
}

// AddToRegistry uploads each bundle file to the registry
func (b *BundleBuilder) AddToRegistry(ctx context.Context, bundles []string) error {
	for _, bundle := range bundles {
		b.logger.Infof("Adding %s to registry", bundle)
		args := []string{"registry", "add", "--dcos-file=" + bundle, "--json"}
		out, err := clusterctl.MustSucceed(ctx, b.runner, args...)
		if err != nil {
			return err
		}

		added := struct {
			Packages []json.RawMessage `json:"packages"`
		}{}
		if err := json.Unmarshal([]byte(out), &added); err != nil {
			return fmt.Errorf("error parsing registry add output for %s: %w", bundle, err)
		}
		if len(added.Packages) == 0 {
			return &clusterctl.CommandError{
				Args:   args,
				Result: clusterctl.Result{Stdout: out},
				Reason: "no packages were added",
			}
		}
	}
	return nil
}
