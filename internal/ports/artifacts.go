package ports

import "debforge/internal/types"

// ArtifactRepositoryPort manages the shared directory of built packages.
type ArtifactRepositoryPort interface {
	// Find returns the preferred artifact already present in the repository
	// for a native package name. A miss is ("", false, nil).
	Find(nativeName string) (string, bool, error)

	// Locate looks for a freshly built artifact in dir.
	Locate(dir string, nativeName string) (string, bool, error)

	// Import moves an artifact into the repository and returns its new path.
	Import(path string) (string, error)
}

type ArtifactInspectorPort interface {
	Inspect(path string) (types.BuildArtifact, error)
}
