package adapters

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/ZanzyTHEbar/errbuilder-go"
	debversion "github.com/knqyf263/go-deb-version"

	"debforge/internal/ports"
)

const debExtension = ".deb"

// ArtifactRepositoryAdapter stores built .deb files in a flat directory.
type ArtifactRepositoryAdapter struct {
	Dir string
}

func NewArtifactRepositoryAdapter(dir string) ArtifactRepositoryAdapter {
	return ArtifactRepositoryAdapter{Dir: dir}
}

// Find returns the highest versioned build of nativeName in the repository.
// A missing repository directory is a miss, not an error.
func (a ArtifactRepositoryAdapter) Find(nativeName string) (string, bool, error) {
	return a.Locate(a.Dir, nativeName)
}

func (a ArtifactRepositoryAdapter) Locate(dir string, nativeName string) (string, bool, error) {
	if strings.TrimSpace(nativeName) == "" {
		return "", false, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("native package name is empty")
	}
	matches, err := matchArtifacts(dir, nativeName)
	if err != nil {
		return "", false, err
	}
	path, ok := selectNewestArtifact(matches)
	return path, ok, nil
}

// Import moves path into the repository, replacing a previous file of the
// same name.
func (a ArtifactRepositoryAdapter) Import(path string) (string, error) {
	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create repository directory").
			WithCause(err)
	}
	dest := filepath.Join(a.Dir, filepath.Base(path))
	if filepath.Clean(path) == filepath.Clean(dest) {
		return dest, nil
	}
	err := os.Rename(path, dest)
	if err == nil {
		return dest, nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to move %s into repository", filepath.Base(path))).
			WithCause(err)
	}
	if err := copyDebFile(path, dest); err != nil {
		return "", err
	}
	if err := os.Remove(path); err != nil {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to remove moved deb").
			WithCause(err)
	}
	return dest, nil
}

// matchArtifacts lists files in dir matching "<nativeName>_*.deb".
func matchArtifacts(dir string, nativeName string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg(fmt.Sprintf("failed to read %s", dir)).
			WithCause(err)
	}
	pattern := nativeName + "_*" + debExtension
	var matches []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ok, err := filepath.Match(pattern, entry.Name())
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid artifact pattern %s", pattern)).
				WithCause(err)
		}
		if ok {
			matches = append(matches, filepath.Join(dir, entry.Name()))
		}
	}
	return matches, nil
}

// artifactVersion extracts the version from a "<name>_<version>_<arch>.deb"
// file name.
func artifactVersion(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), debExtension)
	parts := strings.Split(base, "_")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// selectNewestArtifact picks the artifact with the highest Debian version.
// Equal or unparseable versions fall back to the lexicographically highest
// file name so the choice never depends on directory listing order.
func selectNewestArtifact(paths []string) (string, bool) {
	if len(paths) == 0 {
		return "", false
	}
	versions := map[string]*debversion.Version{}
	for _, path := range paths {
		if parsed, err := debversion.NewVersion(artifactVersion(path)); err == nil {
			versions[path] = &parsed
		}
	}
	sorted := append([]string{}, paths...)
	sort.Slice(sorted, func(i, j int) bool {
		vi, vj := versions[sorted[i]], versions[sorted[j]]
		switch {
		case vi != nil && vj == nil:
			return true
		case vi == nil && vj != nil:
			return false
		case vi != nil && vj != nil:
			if cmp := vi.Compare(*vj); cmp != 0 {
				return cmp > 0
			}
		}
		return filepath.Base(sorted[i]) > filepath.Base(sorted[j])
	})
	return sorted[0], true
}

func copyDebFile(srcPath string, destPath string) error {
	srcFile, err := os.Open(srcPath)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to open source deb").
			WithCause(err)
	}
	defer srcFile.Close()
	destFile, err := os.Create(destPath)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create destination deb").
			WithCause(err)
	}
	defer destFile.Close()
	if _, err := io.Copy(destFile, srcFile); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to copy deb").
			WithCause(err)
	}
	return nil
}

var _ ports.ArtifactRepositoryPort = ArtifactRepositoryAdapter{}
