package ports

import (
	"context"

	"debforge/internal/types"
)

// SourceResolverPort drives the external resolver/downloader tool.
type SourceResolverPort interface {
	// Unpack resolves the requirement set from the local source cache and
	// extracts every source distribution into buildDir. A cold cache is
	// reported with an error wrapping types.ErrDistributionNotFound.
	Unpack(ctx context.Context, req types.RequirementSet, buildDir string) ([]types.SourceDist, error)

	// Download populates the local source cache for the requirement set.
	Download(ctx context.Context, req types.RequirementSet) error
}
