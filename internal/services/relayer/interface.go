// Package relayer drives settlement: it repeatedly offers every pending game
// to the engine, which settles the ones whose oracle has published a value.
package relayer

import "context"

// Service is the interface for the settlement relayer
type Service interface {
	// RunOnce offers every pending game to the engine once
	RunOnce(ctx context.Context) (*RunOnceOutput, error)

	// Run repeats RunOnce on the configured interval until ctx is done
	Run(ctx context.Context) error
}
