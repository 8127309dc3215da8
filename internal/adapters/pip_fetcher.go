package adapters

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"debforge/internal/ports"
	"debforge/internal/shared"
	"debforge/internal/types"
)

// notFoundMarkers identify pip failures caused by a distribution missing
// from the local source cache.
var notFoundMarkers = []string{
	"No matching distribution found",
	"Could not find a version that satisfies",
}

// PipSourceAdapter resolves requirement sets with pip. Unpack works offline
// against CacheDir; Download fills CacheDir from the configured index.
type PipSourceAdapter struct {
	Python   string
	CacheDir string
	// Diagnostics receives pip output. It must never be the stream results
	// are reported on.
	Diagnostics io.Writer
}

func NewPipSourceAdapter(cacheDir string) PipSourceAdapter {
	return PipSourceAdapter{
		Python:      "python3",
		CacheDir:    cacheDir,
		Diagnostics: os.Stderr,
	}
}

func (a PipSourceAdapter) Unpack(ctx context.Context, req types.RequirementSet, buildDir string) ([]types.SourceDist, error) {
	if strings.TrimSpace(buildDir) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("build directory is empty")
	}
	if err := os.MkdirAll(a.CacheDir, 0o750); err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create pip cache directory").
			WithCause(err)
	}
	downloads, err := os.MkdirTemp(buildDir, ".sdists-")
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create download directory").
			WithCause(err)
	}
	defer os.RemoveAll(downloads)

	args := []string{"-m", "pip", "download", "--no-binary", ":all:", "--no-index", "--find-links", a.CacheDir, "--dest", downloads}
	args = append(args, pipRequirementArgs(req)...)
	output, err := a.run(ctx, args)
	if err != nil {
		if isDistributionNotFound(output) {
			return nil, fmt.Errorf("%w: %s", types.ErrDistributionNotFound, strings.TrimSpace(lastLine(output)))
		}
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("pip download failed").
			WithCause(shared.CommandError(output, err))
	}

	archives, err := listArchives(downloads)
	if err != nil {
		return nil, err
	}
	dists := make([]types.SourceDist, 0, len(archives))
	for _, archive := range archives {
		dir, err := extractArchive(archive, buildDir)
		if err != nil {
			return nil, err
		}
		dist, err := readSourceDist(dir)
		if err != nil {
			return nil, err
		}
		log.Ctx(ctx).Debug().
			Str("name", dist.Name).
			Str("version", dist.Version).
			Str("dir", dist.Directory).
			Msg("source distribution unpacked")
		dists = append(dists, dist)
	}
	return dists, nil
}

func (a PipSourceAdapter) Download(ctx context.Context, req types.RequirementSet) error {
	if err := os.MkdirAll(a.CacheDir, 0o750); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create pip cache directory").
			WithCause(err)
	}
	args := []string{"-m", "pip", "download", "--no-binary", ":all:", "--dest", a.CacheDir}
	args = append(args, pipRequirementArgs(req)...)
	output, err := a.run(ctx, args)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("pip download into source cache failed").
			WithCause(shared.CommandError(output, err))
	}
	return nil
}

// run executes pip with its output captured and mirrored to Diagnostics.
func (a PipSourceAdapter) run(ctx context.Context, args []string) ([]byte, error) {
	python := a.Python
	if python == "" {
		python = "python3"
	}
	log.Ctx(ctx).Debug().Str("command", python+" "+strings.Join(args, " ")).Msg("running pip")
	var buf bytes.Buffer
	var sink io.Writer = &buf
	if a.Diagnostics != nil {
		sink = io.MultiWriter(&buf, a.Diagnostics)
	}
	cmd := exec.CommandContext(ctx, python, args...)
	cmd.Stdout = sink
	cmd.Stderr = sink
	cmd.Env = append(os.Environ(), "PIP_DISABLE_PIP_VERSION_CHECK=1")
	err := cmd.Run()
	return buf.Bytes(), err
}

func pipRequirementArgs(req types.RequirementSet) []string {
	var args []string
	args = append(args, req.PipArgs...)
	if strings.TrimSpace(req.File) != "" {
		args = append(args, "--requirement", req.File)
	}
	for _, requirement := range req.Requirements {
		if strings.TrimSpace(requirement) == "" {
			continue
		}
		args = append(args, requirement)
	}
	return args
}

func isDistributionNotFound(output []byte) bool {
	for _, marker := range notFoundMarkers {
		if bytes.Contains(output, []byte(marker)) {
			return true
		}
	}
	return false
}

func lastLine(output []byte) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	return lines[len(lines)-1]
}

// listArchives returns the source archives in dir sorted by file name.
func listArchives(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read download directory").
			WithCause(err)
	}
	var archives []string
	for _, entry := range entries {
		if entry.IsDir() || archiveKind(entry.Name()) == "" {
			continue
		}
		archives = append(archives, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(archives)
	return archives, nil
}

var _ ports.SourceResolverPort = PipSourceAdapter{}
