package adapters

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"debforge/internal/types"
)

// requiresGlobs locate the requires.txt written by setuptools, in the
// order they are tried.
var requiresGlobs = []string{
	filepath.Join("pip-egg-info", "*.egg-info", "requires.txt"),
	filepath.Join("*.egg-info", "requires.txt"),
	filepath.Join("src", "*.egg-info", "requires.txt"),
}

type sdistMetadata struct {
	Name         string
	Version      string
	RequiresDist []string
}

// readSourceDist reads the name, version and declared requirements of an
// unpacked source distribution.
func readSourceDist(dir string) (types.SourceDist, error) {
	content, err := os.ReadFile(filepath.Join(dir, "PKG-INFO"))
	if err != nil {
		return types.SourceDist{}, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("PKG-INFO not found in %s", filepath.Base(dir))).
			WithCause(err)
	}
	meta := parsePkgInfo(content)
	if strings.TrimSpace(meta.Name) == "" || strings.TrimSpace(meta.Version) == "" {
		return types.SourceDist{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("PKG-INFO in %s lacks name or version", filepath.Base(dir)))
	}

	lines, found, err := readEggRequires(dir)
	if err != nil {
		return types.SourceDist{}, err
	}
	if !found {
		lines = unconditionalRequires(meta.RequiresDist)
	}
	return types.SourceDist{
		Name:      meta.Name,
		Version:   meta.Version,
		Directory: dir,
		Requires:  lines,
	}, nil
}

func parsePkgInfo(content []byte) sdistMetadata {
	var meta sdistMetadata
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			// The header block ends at the first blank line; the long
			// description follows.
			break
		}
		switch {
		case strings.HasPrefix(line, "Name:"):
			meta.Name = strings.TrimSpace(strings.TrimPrefix(line, "Name:"))
		case strings.HasPrefix(line, "Version:"):
			meta.Version = strings.TrimSpace(strings.TrimPrefix(line, "Version:"))
		case strings.HasPrefix(line, "Requires-Dist:"):
			meta.RequiresDist = append(meta.RequiresDist, strings.TrimSpace(strings.TrimPrefix(line, "Requires-Dist:")))
		}
	}
	return meta
}

// readEggRequires returns the unconditional requirement lines of the first
// requires.txt found. Sections such as "[extra]" end the list.
func readEggRequires(dir string) ([]string, bool, error) {
	for _, pattern := range requiresGlobs {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, false, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("invalid requires.txt pattern").
				WithCause(err)
		}
		if len(matches) == 0 {
			continue
		}
		sort.Strings(matches)
		content, err := os.ReadFile(matches[0])
		if err != nil {
			return nil, false, errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("failed to read requires.txt").
				WithCause(err)
		}
		var lines []string
		for _, line := range strings.Split(string(content), "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if strings.HasPrefix(trimmed, "[") {
				break
			}
			lines = append(lines, trimmed)
		}
		return lines, true, nil
	}
	return nil, false, nil
}

// unconditionalRequires drops Requires-Dist entries that only apply to an
// extra.
func unconditionalRequires(values []string) []string {
	var lines []string
	for _, value := range values {
		if _, marker, ok := strings.Cut(value, ";"); ok && strings.Contains(marker, "extra") {
			continue
		}
		lines = append(lines, value)
	}
	return lines
}
