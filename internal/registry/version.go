package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/blang/semver/v4"
	"github.com/perdasilva/stubuniverse/internal/clusterctl"
)

const versionMetadataPath = "/dcos-metadata/dcos-version.json"

var _ ClusterVersioner = &VersionSource{}

// CheckSupported fails when clusterVersion is older than minVersion
func CheckSupported(clusterVersion string, minVersion string) error {
	current, err := parseVersion(clusterVersion)
	if err != nil {
		return fmt.Errorf("invalid cluster version %q: %w", clusterVersion, err)
	}
	required, err := parseVersion(minVersion)
	if err != nil {
		return fmt.Errorf("invalid minimum version %q: %w", minVersion, err)
	}
	if current.LT(required) {
		return fmt.Errorf("DC/OS %s does not support package registry. Minimum required %s", clusterVersion, minVersion)
	}
	return nil
}

// parseVersion accepts short forms and drops any pre-release suffix,
// so "1.12-dev" compares as 1.12.0.
func parseVersion(version string) (semver.Version, error) {
	version = strings.TrimSpace(version)
	if idx := strings.IndexAny(version, "-+"); idx >= 0 {
		version = version[:idx]
	}
	return semver.ParseTolerant(version)
}

// VersionSource resolves the version of the cluster the CLI is attached to
type VersionSource struct {
	runner  clusterctl.Runner
	client  *http.Client
	version string
}

func NewVersionSource(runner clusterctl.Runner, client *http.Client) *VersionSource {
	return &VersionSource{
		runner: runner,
		client: client,
	}
}

// ClusterVersion reads the version from the cluster metadata endpoint once and caches it.
func (v *VersionSource) ClusterVersion(ctx context.Context) (string, error) {
	if v.version != "" {
		return v.version, nil
	}

	clusterURL, err := clusterctl.MustSucceed(ctx, v.runner, "config", "show", "core.dcos_url")
	if err != nil {
		return "", fmt.Errorf("error resolving cluster url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(clusterURL, "/")+versionMetadataPath, nil)
	if err != nil {
		return "", err
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error fetching cluster version: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("error fetching cluster version: %s", resp.Status)
	}

	metadata := struct {
		Version string `json:"version"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&metadata); err != nil {
		return "", fmt.Errorf("error decoding cluster version: %w", err)
	}
	if metadata.Version == "" {
		return "", fmt.Errorf("cluster version metadata is empty")
	}
	v.version = metadata.Version
	return v.version, nil
}
