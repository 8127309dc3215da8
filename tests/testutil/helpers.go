// Package testutil provides shared test helpers used across integration,
// e2e, and unit test packages.
package testutil

import (
	"archive/tar"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

// RepoRoot returns the absolute path to the repository root by walking
// up from the current working directory. It fails the test if the
// working directory cannot be determined.
func RepoRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(dir, "..", ".."))
}

// DebControl renders a minimal binary package control paragraph.
func DebControl(name string, version string, arch string) string {
	return fmt.Sprintf("Package: %s\nVersion: %s\nArchitecture: %s\nMaintainer: Test <test@example.com>\nDescription: %s\n", name, version, arch, name)
}

// WriteDeb writes "<name>_<version>_<arch>.deb" into dir and returns its
// path. The archive carries a gzip compressed control member.
func WriteDeb(t *testing.T, dir string, name string, version string, arch string) string {
	t.Helper()
	path := filepath.Join(dir, fmt.Sprintf("%s_%s_%s.deb", name, version, arch))
	require.NoError(t, os.WriteFile(path, BuildDeb(t, DebControl(name, version, arch)), 0o644))
	return path
}

// BuildDeb assembles a Debian binary archive around control.
func BuildDeb(t *testing.T, control string) []byte {
	t.Helper()
	controlTar := TarGz(t, map[string]string{"./control": control})
	dataTar := TarGz(t, map[string]string{})

	var buf bytes.Buffer
	buf.WriteString("!<arch>\n")
	writeArMember(&buf, "debian-binary", []byte("2.0\n"))
	writeArMember(&buf, "control.tar.gz", controlTar)
	writeArMember(&buf, "data.tar.gz", dataTar)
	return buf.Bytes()
}

func writeArMember(buf *bytes.Buffer, name string, data []byte) {
	fmt.Fprintf(buf, "%-16s%-12d%-6d%-6d%-8s%-10d`\n", name, 0, 0, 0, "100644", len(data))
	buf.Write(data)
	if len(data)%2 == 1 {
		buf.WriteByte('\n')
	}
}

// TarGz builds a gzip compressed tarball from a name to content map.
// Names ending in "/" become directories.
func TarGz(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, name := range sortedNames(files) {
		if strings.HasSuffix(name, "/") {
			require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Mode: 0o755, Typeflag: tar.TypeDir}))
			continue
		}
		content := files[name]
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Mode: 0o644, Size: int64(len(content)), Typeflag: tar.TypeReg}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

// SdistFiles returns the members of a setuptools source distribution named
// "<name>-<version>/".
func SdistFiles(name string, version string, requires []string) map[string]string {
	root := fmt.Sprintf("%s-%s/", name, version)
	module := strings.ReplaceAll(name, "-", "_")
	egg := root + module + ".egg-info/"
	return map[string]string{
		root + "PKG-INFO":              fmt.Sprintf("Metadata-Version: 1.1\nName: %s\nVersion: %s\nSummary: %s\n", name, version, name),
		root + "setup.py":              setupPy(name, version, module, requires),
		root + module + "/__init__.py": fmt.Sprintf("__version__ = %q\n", version),
		egg + "PKG-INFO":               fmt.Sprintf("Metadata-Version: 1.1\nName: %s\nVersion: %s\n", name, version),
		egg + "requires.txt":           strings.Join(requires, "\n") + "\n",
		egg + "top_level.txt":          module + "\n",
	}
}

func setupPy(name string, version string, module string, requires []string) string {
	return fmt.Sprintf("from setuptools import setup\nsetup(name=%q, version=%q, packages=[%q], install_requires=%s)\n",
		name, version, module, pythonList(requires))
}

// WriteSdist writes "<name>-<version>.tar.gz" into dir and returns its path.
func WriteSdist(t *testing.T, dir string, name string, version string, requires []string) string {
	t.Helper()
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.tar.gz", name, version))
	require.NoError(t, os.WriteFile(path, TarGz(t, SdistFiles(name, version, requires)), 0o644))
	return path
}

func pythonList(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, value := range values {
		quoted = append(quoted, fmt.Sprintf("%q", value))
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func sortedNames(files map[string]string) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
