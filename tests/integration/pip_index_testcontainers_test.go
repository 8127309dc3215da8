//go:build integration

package integration

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"debforge/internal/adapters"
	"debforge/internal/core"
	"debforge/internal/types"
	"debforge/tests/testutil"
)

type indexedSdist struct {
	name     string
	version  string
	requires []string
}

var indexedSdists = []indexedSdist{
	{name: "alpha", version: "1.0", requires: []string{"beta>=2.0"}},
	{name: "beta", version: "2.0"},
}

func TestPipSourcesFromIndexWithTestcontainers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testcontainers integration in short mode")
	}
	requireHostPip(t)

	ctx := t.Context()
	indexURL, host, cleanup := startPipIndex(ctx, t)
	t.Cleanup(cleanup)

	cacheDir := filepath.Join(t.TempDir(), "sdists")
	resolver := adapters.PipSourceAdapter{Python: "python3", CacheDir: cacheDir, Diagnostics: io.Discard}
	req := types.RequirementSet{
		Requirements: []string{"alpha==1.0"},
		PipArgs:      []string{"--index-url", indexURL, "--trusted-host", host, "--no-build-isolation"},
		Content:      types.InlineRequirementContent([]string{"alpha==1.0"}),
	}

	_, err := resolver.Unpack(ctx, req, t.TempDir())
	require.ErrorIs(t, err, types.ErrDistributionNotFound, "empty cache must report a missing distribution")

	dists, err := core.NewFetcher(resolver).Fetch(ctx, req, t.TempDir())
	require.NoError(t, err)
	require.Len(t, dists, 2)

	byName := map[string]types.SourceDist{}
	for _, dist := range dists {
		byName[dist.Name] = dist
		assert.FileExists(t, filepath.Join(dist.Directory, "setup.py"))
	}
	assert.Equal(t, "1.0", byName["alpha"].Version)
	assert.Equal(t, []string{"beta>=2.0"}, byName["alpha"].Requires)
	assert.Equal(t, "2.0", byName["beta"].Version)

	cached, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	assert.Len(t, cached, 2)
}

func requireHostPip(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("python3"); err != nil {
		t.Skip("python3 not available")
	}
	if out, err := exec.Command("python3", "-c", "import pip, setuptools").CombinedOutput(); err != nil {
		t.Skipf("pip or setuptools not available: %s", out)
	}
}

// startPipIndex serves a PEP 503 simple index holding the fixture source
// distributions from a python container.
func startPipIndex(ctx context.Context, t *testing.T) (string, string, func()) {
	t.Helper()
	root := t.TempDir()
	var files []testcontainers.ContainerFile
	var rootIndex string
	for _, sdist := range indexedSdists {
		archive := testutil.WriteSdist(t, root, sdist.name, sdist.version, sdist.requires)
		base := filepath.Base(archive)
		page := filepath.Join(root, sdist.name+".html")
		require.NoError(t, os.WriteFile(page, []byte(fmt.Sprintf(`<a href="/files/%s">%s</a>`, base, base)), 0o644))
		rootIndex += fmt.Sprintf(`<a href="/simple/%s/">%s</a>`, sdist.name, sdist.name)
		files = append(files,
			testcontainers.ContainerFile{HostFilePath: archive, ContainerFilePath: "/srv/files/" + base, FileMode: 0o644},
			testcontainers.ContainerFile{HostFilePath: page, ContainerFilePath: "/srv/simple/" + sdist.name + "/index.html", FileMode: 0o644},
		)
	}
	indexPage := filepath.Join(root, "index.html")
	require.NoError(t, os.WriteFile(indexPage, []byte(rootIndex), 0o644))
	files = append(files, testcontainers.ContainerFile{HostFilePath: indexPage, ContainerFilePath: "/srv/simple/index.html", FileMode: 0o644})

	req := testcontainers.ContainerRequest{
		Image:        "python:3.12-alpine",
		ExposedPorts: []string{"8080/tcp"},
		Files:        files,
		Cmd:          []string{"python", "-m", "http.server", "8080", "--directory", "/srv"},
		WaitingFor:   wait.ForListeningPort("8080/tcp").WithStartupTimeout(30 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "8080/tcp")
	require.NoError(t, err)

	indexURL := fmt.Sprintf("http://%s:%s/simple/", host, port.Port())
	cleanup := func() {
		_ = container.Terminate(ctx)
	}
	return indexURL, host, cleanup
}
