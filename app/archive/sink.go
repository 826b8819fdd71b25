// Package archive stores downloaded audio behind a single sink capability,
// so the rest of the program never branches on local-vs-remote.
package archive

import (
	"context"
	"fmt"
)

// Destination is an opaque handle to a resolved archive location: a local
// directory path or a remote folder ID, depending on the sink.
type Destination string

// Sink is the archive capability. The concrete backend is chosen once per
// run; all call sites operate against this interface.
type Sink interface {
	// ResolveDestination returns the handle for a base location plus optional
	// per-feed subfolder. Deterministic and idempotent: repeated calls with
	// the same names return the same handle and never create duplicates.
	ResolveDestination(ctx context.Context, base, feedName string, useSubfolders bool) (Destination, error)

	// ListArchivedIDs returns the set of shiur IDs already present at the
	// destination.
	ListArchivedIDs(ctx context.Context, dest Destination) (map[string]bool, error)

	// Store writes content to the destination, tagged with the shiur ID so a
	// later listing can recover it.
	Store(ctx context.Context, data []byte, filename string, dest Destination, shiurID string) error
}

// StoreError marks a failure in the archive stage, as opposed to the
// download stage, so the orchestrator can classify the two apart.
type StoreError struct {
	Filename string
	Err      error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("failed to store %s: %v", e.Filename, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
