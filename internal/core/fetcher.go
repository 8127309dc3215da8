package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"debforge/internal/ports"
	"debforge/internal/types"
)

// DefaultFetchAttempts bounds the unpack attempts of a single fetch.
const DefaultFetchAttempts = 10

// Fetcher obtains unpacked source distributions for a requirement set,
// warming the local source cache when the resolver reports a missing
// distribution.
type Fetcher struct {
	Resolver    ports.SourceResolverPort
	MaxAttempts int
}

func NewFetcher(resolver ports.SourceResolverPort) Fetcher {
	return Fetcher{Resolver: resolver, MaxAttempts: DefaultFetchAttempts}
}

func (f Fetcher) Fetch(ctx context.Context, req types.RequirementSet, buildDir string) ([]types.SourceDist, error) {
	if f.Resolver == nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("fetcher requires a source resolver")
	}
	attempts := f.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultFetchAttempts
	}
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		log.Ctx(ctx).Debug().
			Int("attempt", attempt).
			Int("max_attempts", attempts).
			Msg("getting source distributions")
		dists, err := f.Resolver.Unpack(ctx, req, buildDir)
		if err == nil {
			log.Ctx(ctx).Debug().Int("dists", len(dists)).Msg("source distributions unpacked")
			return dists, nil
		}
		if !errors.Is(err, types.ErrDistributionNotFound) {
			return nil, err
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		log.Ctx(ctx).Info().Int("attempt", attempt).Msg("source cache incomplete, downloading distributions")
		if err := f.Resolver.Download(ctx, req); err != nil {
			return nil, err
		}
	}
	return nil, errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg(fmt.Sprintf("failed to get source distributions after %d attempts", attempts)).
		WithCause(lastErr)
}
