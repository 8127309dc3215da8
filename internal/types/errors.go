package types

import "errors"

var (
	// ErrDistributionNotFound marks a fetch failure caused by a cold local
	// source cache. Fetching again after a download may succeed.
	ErrDistributionNotFound = errors.New("no matching distribution found")

	// ErrCacheMiss is returned when a requirement set was never converted on
	// this host.
	ErrCacheMiss = errors.New("requirement set has not been converted yet")
)
