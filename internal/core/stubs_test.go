package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"debforge/internal/types"
)

// stubToolchain imitates stdeb and dpkg-buildpackage on the filesystem.
// Build writes "<Package>_<version>_all.deb" next to the source tree.
type stubToolchain struct {
	versions     map[string]string
	debianized   []string
	scripts      []string
	builds       []map[string]string
	buildErr     error
	lintErr      error
	linted       []string
	skipArtifact bool
}

func (s *stubToolchain) Debianize(_ context.Context, dir string, _ bool) error {
	s.debianized = append(s.debianized, dir)
	name := filepath.Base(dir)
	control := fmt.Sprintf("Source: %s\nMaintainer: Test <test@example.com>\n\nPackage: python-%s\nArchitecture: all\nDepends: ${misc:Depends}\nDescription: %s\n", name, name, name)
	if err := os.MkdirAll(filepath.Join(dir, "debian"), 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "debian", "control"), []byte(control), 0o644)
}

func (s *stubToolchain) RunScript(_ context.Context, _ string, script string) error {
	s.scripts = append(s.scripts, script)
	return nil
}

func (s *stubToolchain) Build(_ context.Context, dir string, env map[string]string) error {
	s.builds = append(s.builds, env)
	if s.buildErr != nil {
		return s.buildErr
	}
	if s.skipArtifact {
		return nil
	}
	data, err := os.ReadFile(filepath.Join(dir, "debian", "control"))
	if err != nil {
		return err
	}
	paragraphs, err := ParseControl(data)
	if err != nil {
		return err
	}
	name, _ := paragraphs[1].Get("Package")
	version := s.versions[filepath.Base(dir)]
	deb := filepath.Join(filepath.Dir(dir), fmt.Sprintf("%s_%s_all.deb", name, version))
	return os.WriteFile(deb, data, 0o644)
}

func (s *stubToolchain) Lint(_ context.Context, path string) (string, error) {
	s.linted = append(s.linted, path)
	if s.lintErr != nil {
		return "E: native-alpha: bad-package-name", s.lintErr
	}
	return "", nil
}

type stubSystem struct {
	installed [][]string
	err       error
}

func (s *stubSystem) Install(_ context.Context, names []string) error {
	s.installed = append(s.installed, names)
	return s.err
}

// stubArtifacts is a flat directory repository without version ordering.
type stubArtifacts struct {
	dir string
}

func (s stubArtifacts) Find(nativeName string) (string, bool, error) {
	return s.Locate(s.dir, nativeName)
}

func (s stubArtifacts) Locate(dir string, nativeName string) (string, bool, error) {
	matches, err := filepath.Glob(filepath.Join(dir, nativeName+"_*.deb"))
	if err != nil {
		return "", false, err
	}
	if len(matches) == 0 {
		return "", false, nil
	}
	sort.Strings(matches)
	return matches[len(matches)-1], true, nil
}

func (s stubArtifacts) Import(path string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}
	dest := filepath.Join(s.dir, filepath.Base(path))
	return dest, os.Rename(path, dest)
}

// stubInspector reads name and version from the artifact file name.
type stubInspector struct{}

func (stubInspector) Inspect(path string) (types.BuildArtifact, error) {
	parts := strings.Split(strings.TrimSuffix(filepath.Base(path), ".deb"), "_")
	if len(parts) != 3 {
		return types.BuildArtifact{}, fmt.Errorf("unexpected artifact name %s", path)
	}
	return types.BuildArtifact{Path: path, Package: parts[0], Version: parts[1], Architecture: parts[2]}, nil
}

type stubResolver struct {
	failures  int
	calls     int
	downloads int
	dists     []types.SourceDist
	err       error
}

func (s *stubResolver) Unpack(_ context.Context, _ types.RequirementSet, _ string) ([]types.SourceDist, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if s.calls <= s.failures {
		return nil, fmt.Errorf("%w: alpha", types.ErrDistributionNotFound)
	}
	return s.dists, nil
}

func (s *stubResolver) Download(_ context.Context, _ types.RequirementSet) error {
	s.downloads++
	return nil
}
