package core

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"debforge/internal/shared"
	"debforge/internal/types"
)

// NativeName derives the Debian package name for an ecosystem package. The
// result only depends on its inputs so repository lookups by filename stay
// stable across runs.
func NativeName(prefix string, name string) string {
	normalized := normalizeDebName(name)
	prefix = normalizeDebName(prefix)
	if prefix == "" {
		return normalized
	}
	if normalized == "" {
		return prefix
	}
	return prefix + "-" + normalized
}

// NewPackage turns a fetched source distribution into a pipeline package.
// Duplicate requirements keep their first declaration.
func NewPackage(dist types.SourceDist, prefix string) (types.Package, error) {
	name := shared.NormalizePipName(dist.Name)
	seen := map[string]struct{}{}
	var deps []types.Dependency
	for _, line := range dist.Requires {
		dep, err := ParseRequirement(line)
		if err != nil {
			return types.Package{}, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg(fmt.Sprintf("invalid requirement declared by %s", name)).
				WithCause(err)
		}
		if _, dup := seen[dep.Name]; dup || dep.Name == name {
			continue
		}
		seen[dep.Name] = struct{}{}
		deps = append(deps, dep)
	}
	return types.Package{
		Name:         name,
		Version:      strings.TrimSpace(dist.Version),
		Directory:    dist.Directory,
		NativeName:   NativeName(prefix, name),
		Dependencies: deps,
	}, nil
}

// normalizeDebName maps a name onto the Debian package name alphabet:
// lowercase alphanumerics plus '+', '-' and '.', with underscores and any
// other character folded into single hyphens.
func normalizeDebName(value string) string {
	var builder strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '+', r == '.':
			builder.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen && builder.Len() > 0 {
				builder.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimRight(builder.String(), "-")
}
