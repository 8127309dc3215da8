package core

import (
	"context"

	"github.com/rs/zerolog/log"

	"debforge/internal/shared"
	"debforge/internal/types"
)

// GraphResolver selects the candidates that have to be built. Ignore lists
// names dropped without propagation.
type GraphResolver struct {
	Ignore []string
}

func NewGraphResolver(ignore []string) GraphResolver {
	return GraphResolver{Ignore: ignore}
}

// Resolve returns the build set in discovery order. Every candidate listed
// in replacements is excluded together with the closure of its candidate
// dependencies. Candidates are expected to be unique by name; later
// duplicates are dropped.
func (r GraphResolver) Resolve(ctx context.Context, candidates []types.Package, replacements map[string]string) []types.Package {
	index := make(map[string]types.Package, len(candidates))
	var ordered []types.Package
	for _, pkg := range candidates {
		if _, exists := index[pkg.Name]; exists {
			continue
		}
		index[pkg.Name] = pkg
		ordered = append(ordered, pkg)
	}

	toIgnore := map[string]struct{}{}
	for _, pkg := range ordered {
		if _, replaced := replacements[pkg.Name]; !replaced {
			continue
		}
		for _, name := range relatedPackages(pkg.Name, index) {
			toIgnore[name] = struct{}{}
		}
	}
	ignored := map[string]struct{}{}
	for _, name := range r.Ignore {
		ignored[shared.NormalizePipName(name)] = struct{}{}
	}

	var build []types.Package
	for _, pkg := range ordered {
		if _, skip := toIgnore[pkg.Name]; skip {
			log.Ctx(ctx).Warn().Str("package", pkg.Name).Msg("package is replaced and will not be built")
			continue
		}
		if _, skip := ignored[pkg.Name]; skip {
			log.Ctx(ctx).Warn().Str("package", pkg.Name).Msg("package is in the ignore list and will not be built")
			continue
		}
		build = append(build, pkg)
	}
	log.Ctx(ctx).Debug().Int("candidates", len(ordered)).Int("build", len(build)).Msg("build set resolved")
	return build
}

// relatedPackages returns name and every candidate reachable through
// declared dependencies, in depth-first discovery order. The visited set
// makes dependency cycles terminate.
func relatedPackages(name string, index map[string]types.Package) []string {
	var related []string
	visited := map[string]struct{}{}
	stack := []string{name}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := visited[current]; seen {
			continue
		}
		pkg, ok := index[current]
		if !ok {
			continue
		}
		visited[current] = struct{}{}
		related = append(related, current)
		deps := pkg.DependencyNames()
		for i := len(deps) - 1; i >= 0; i-- {
			if _, seen := visited[deps[i]]; !seen {
				stack = append(stack, deps[i])
			}
		}
	}
	return related
}
