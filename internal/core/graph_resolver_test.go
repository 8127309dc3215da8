package core

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"

	"debforge/internal/types"
)

func candidate(name string, deps ...string) types.Package {
	pkg := types.Package{Name: name, Version: "1.0", NativeName: NativeName("python", name)}
	for _, dep := range deps {
		pkg.Dependencies = append(pkg.Dependencies, types.Dependency{Name: dep})
	}
	return pkg
}

func packageNames(pkgs []types.Package) []string {
	names := make([]string, 0, len(pkgs))
	for _, pkg := range pkgs {
		names = append(names, pkg.Name)
	}
	return names
}

func TestGraphResolverKeepsDiscoveryOrder(t *testing.T) {
	candidates := []types.Package{
		candidate("zeta", "alpha"),
		candidate("alpha"),
		candidate("mu", "zeta"),
	}
	resolver := NewGraphResolver(nil)
	got := resolver.Resolve(context.Background(), candidates, nil)
	if diff := cmp.Diff([]string{"zeta", "alpha", "mu"}, packageNames(got)); diff != "" {
		t.Fatalf("unexpected build set (-want +got):\n%s", diff)
	}
}

func TestGraphResolverIsDeterministic(t *testing.T) {
	candidates := []types.Package{
		candidate("app", "web", "db"),
		candidate("web", "util"),
		candidate("db", "util"),
		candidate("util"),
		candidate("extra"),
	}
	replacements := map[string]string{"web": "python-web"}
	resolver := NewGraphResolver(nil)
	first := resolver.Resolve(context.Background(), candidates, replacements)
	for i := 0; i < 10; i++ {
		again := resolver.Resolve(context.Background(), candidates, replacements)
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("resolve is not deterministic (-first +again):\n%s", diff)
		}
	}
}

func TestGraphResolverReplacementExcludesClosure(t *testing.T) {
	tests := []struct {
		name         string
		candidates   []types.Package
		replacements map[string]string
		ignore       []string
		want         []string
	}{
		{
			name: "replaced package and its dependencies",
			candidates: []types.Package{
				candidate("app", "pil"),
				candidate("pil", "olefile"),
				candidate("olefile"),
			},
			replacements: map[string]string{"pil": "python-imaging"},
			want:         []string{"app"},
		},
		{
			name: "dependency shared with a kept package is excluded too",
			candidates: []types.Package{
				candidate("app", "pil", "six"),
				candidate("pil", "six"),
				candidate("six"),
			},
			replacements: map[string]string{"pil": "python-imaging"},
			want:         []string{"app"},
		},
		{
			name: "empty replacement is a do-not-build marker",
			candidates: []types.Package{
				candidate("app", "setuptools"),
				candidate("setuptools"),
			},
			replacements: map[string]string{"setuptools": ""},
			want:         []string{"app"},
		},
		{
			name: "closure does not climb to dependents",
			candidates: []types.Package{
				candidate("app", "lib"),
				candidate("lib", "core"),
				candidate("core"),
			},
			replacements: map[string]string{"lib": "python-lib"},
			want:         []string{"app"},
		},
		{
			name: "replacement of a name that is not a candidate",
			candidates: []types.Package{
				candidate("app", "six"),
				candidate("six"),
			},
			replacements: map[string]string{"requests": "python-requests"},
			want:         []string{"app", "six"},
		},
		{
			name: "dependency cycle terminates",
			candidates: []types.Package{
				candidate("app", "a"),
				candidate("a", "b"),
				candidate("b", "a"),
			},
			replacements: map[string]string{"a": "python-a"},
			want:         []string{"app"},
		},
		{
			name: "ignore list does not propagate",
			candidates: []types.Package{
				candidate("app", "nose"),
				candidate("nose", "coverage"),
				candidate("coverage"),
			},
			ignore: []string{"Nose"},
			want:   []string{"app", "coverage"},
		},
		{
			name: "duplicate candidates keep the first",
			candidates: []types.Package{
				candidate("app"),
				candidate("app", "ghost"),
			},
			want: []string{"app"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := NewGraphResolver(tt.ignore)
			got := resolver.Resolve(context.Background(), tt.candidates, tt.replacements)
			if diff := cmp.Diff(tt.want, packageNames(got)); diff != "" {
				t.Fatalf("unexpected build set (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRelatedPackagesDepthFirst(t *testing.T) {
	index := map[string]types.Package{}
	for _, pkg := range []types.Package{
		candidate("a", "b", "c"),
		candidate("b", "d"),
		candidate("c", "d"),
		candidate("d", "a"),
	} {
		index[pkg.Name] = pkg
	}
	if diff := cmp.Diff([]string{"a", "b", "d", "c"}, relatedPackages("a", index)); diff != "" {
		t.Fatalf("unexpected closure (-want +got):\n%s", diff)
	}
}
