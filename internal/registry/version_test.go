package registry_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/perdasilva/stubuniverse/internal/clusterctl"
	"github.com/perdasilva/stubuniverse/internal/clusterctl/clusterctltest"
	"github.com/perdasilva/stubuniverse/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionSource_ClusterVersion(t *testing.T) {
	t.Parallel()

	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		if r.URL.Path != "/dcos-metadata/dcos-version.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, `{"version":"1.12.3","dcos-image-commit":"abc"}`)
	}))
	defer server.Close()

	runner := clusterctltest.NewFakeRunner().On("config show core.dcos_url", clusterctl.Result{Stdout: server.URL + "/"})
	source := registry.NewVersionSource(runner, server.Client())

	version, err := source.ClusterVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.12.3", version)

	_, err = source.ClusterVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))
	assert.Len(t, runner.Calls(), 1)
}

func TestVersionSource_MissingClusterURL(t *testing.T) {
	t.Parallel()

	runner := clusterctltest.NewFakeRunner().On("config show", clusterctl.Result{ExitCode: 1, Stderr: "Property 'core.dcos_url' doesn't exist"})
	_, err := registry.NewVersionSource(runner, http.DefaultClient).ClusterVersion(context.Background())
	assert.ErrorContains(t, err, "error resolving cluster url")
}
