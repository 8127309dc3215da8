package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debforge/internal/types"
)

func TestNativeName(t *testing.T) {
	tests := []struct {
		prefix string
		name   string
		want   string
	}{
		{"python", "requests", "python-requests"},
		{"python", "Foo_Bar", "python-foo-bar"},
		{"python", "zope.interface", "python-zope.interface"},
		{"native", "alpha", "native-alpha"},
		{"", "alpha", "alpha"},
		{"Py_Thon", "a__b", "py-thon-a-b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NativeName(tt.prefix, tt.name), "%s/%s", tt.prefix, tt.name)
	}
}

func TestNativeNameIsStable(t *testing.T) {
	first := NativeName("python", "Django-REST_framework")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, NativeName("python", "Django-REST_framework"))
	}
}

func TestNewPackage(t *testing.T) {
	dist := types.SourceDist{
		Name:      "Alpha_Pkg",
		Version:   " 1.0 ",
		Directory: "/tmp/build/alpha-1.0",
		Requires:  []string{"beta>=2.0", "Beta", "alpha-pkg", "gamma[extra]"},
	}
	pkg, err := NewPackage(dist, "native")
	require.NoError(t, err)

	want := types.Package{
		Name:       "alpha-pkg",
		Version:    "1.0",
		Directory:  "/tmp/build/alpha-1.0",
		NativeName: "native-alpha-pkg",
		Dependencies: []types.Dependency{
			{Name: "beta", Constraints: []types.Constraint{{Op: types.ConstraintOpGte, Version: "2.0"}}},
			{Name: "gamma"},
		},
	}
	if diff := cmp.Diff(want, pkg); diff != "" {
		t.Fatalf("unexpected package (-want +got):\n%s", diff)
	}
}

func TestNewPackageInvalidRequirement(t *testing.T) {
	_, err := NewPackage(types.SourceDist{Name: "alpha", Version: "1.0", Requires: []string{"beta>="}}, "python")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alpha")
}
