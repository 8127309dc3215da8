package types

// SourceDist is an unpacked source distribution as reported by the fetcher.
type SourceDist struct {
	Name      string
	Version   string
	Directory string
	// Requires holds the raw unconditional requirement lines.
	Requires []string
}

// Package is one ecosystem dependency moving through the conversion
// pipeline.
type Package struct {
	Name         string
	Version      string
	Directory    string
	NativeName   string
	Dependencies []Dependency
	ArtifactPath string
}

// DependencyNames returns the names of the declared dependencies in
// declaration order.
func (p Package) DependencyNames() []string {
	names := make([]string, 0, len(p.Dependencies))
	for _, dep := range p.Dependencies {
		names = append(names, dep.Name)
	}
	return names
}

// BuildArtifact describes a produced .deb as declared by its own control
// file.
type BuildArtifact struct {
	Path         string
	Package      string
	Version      string
	Architecture string
}

// Relation renders the artifact as an exact-version Depends entry.
func (a BuildArtifact) Relation() string {
	return a.Package + " (=" + a.Version + ")"
}

type ConversionResult struct {
	Package  Package
	Artifact BuildArtifact
	State    BuildState
	Cached   bool
}
