package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	universeRepoMediaType = "application/vnd.dcos.universe.repo+json;charset=utf-8;version=v4"

	releaseVersionKey = "releaseVersion"
	selectedKey       = "selected"
)

// Package is a universe package definition as served by a repository. It is
// kept as a raw document since it is handed back to the CLI almost untouched.
type Package map[string]interface{}

func (p Package) Name() string {
	return p.stringField("name")
}

func (p Package) Version() string {
	return p.stringField("version")
}

func (p Package) MinReleaseVersion() string {
	return p.stringField("minDcosReleaseVersion")
}

func (p Package) stringField(key string) string {
	if value, ok := p[key].(string); ok {
		return value
	}
	return ""
}

// BuildDefinition strips the repository-only fields, leaving a definition
// the registry build step accepts.
func (p Package) BuildDefinition() Package {
	definition := make(Package, len(p))
	for key, value := range p {
		definition[key] = value
	}
	delete(definition, releaseVersionKey)
	delete(definition, selectedKey)
	return definition
}

type Repo struct {
	Packages []Package `json:"packages"`
}

// FetchRepo downloads and decodes a repository document
func FetchRepo(ctx context.Context, client *http.Client, url string, headers map[string]string) (*Repo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("error fetching %s: %s: %s", url, resp.Status, string(body))
	}

	repo := &Repo{}
	if err := json.NewDecoder(resp.Body).Decode(repo); err != nil {
		return nil, fmt.Errorf("error decoding repository %s: %w", url, err)
	}
	return repo, nil
}

func universeHeaders(clusterVersion string) map[string]string {
	return map[string]string{
		"User-Agent": "dcos/" + clusterVersion,
		"Accept":     universeRepoMediaType,
	}
}
