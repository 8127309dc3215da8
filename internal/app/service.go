package app

import (
	"os"

	"debforge/internal/adapters"
	"debforge/internal/ports"
)

// Service wires the conversion pipeline to its ports. Stores whose location
// comes from the conversion config are built per run by the factories.
type Service struct {
	ConfigLoader ports.ConversionConfigPort
	Toolchain    ports.ToolchainPort
	System       ports.SystemPackagesPort
	Inspector    ports.ArtifactInspectorPort
	Sources      func(cacheDir string) ports.SourceResolverPort
	Artifacts    func(dir string) ports.ArtifactRepositoryPort
	Results      func(dir string) ports.ResultStorePort
	TempDir      func(dir string, pattern string) (string, error)
}

func NewService() Service {
	return Service{
		ConfigLoader: adapters.NewConfigFileAdapter(),
		Toolchain:    adapters.NewDebToolchainAdapter(),
		System:       adapters.NewAptPackagesAdapter(),
		Inspector:    adapters.NewDebInspectorAdapter(),
		Sources: func(cacheDir string) ports.SourceResolverPort {
			return adapters.NewPipSourceAdapter(cacheDir)
		},
		Artifacts: func(dir string) ports.ArtifactRepositoryPort {
			return adapters.NewArtifactRepositoryAdapter(dir)
		},
		Results: func(dir string) ports.ResultStorePort {
			return adapters.NewResultStoreAdapter(dir)
		},
		TempDir: os.MkdirTemp,
	}
}
