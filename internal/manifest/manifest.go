package manifest

import "context"

// Store keeps the per-workspace ordered list of uploaded asset names.
// A workspace manifest has three observable states: unset (never
// uploaded, or cleared), initialized but empty, and non-empty. Read
// reports the distinction through its initialized return value.
//
// The manifest records upload order only; the order a document is
// finally assembled in arrives separately with the assembly request
// and never feeds back into the manifest.
type Store interface {
	// Append concatenates names to the end of the workspace manifest,
	// creating it if unset. Order is preserved, nothing is deduplicated.
	Append(ctx context.Context, workspaceID string, names []string) error

	// Read returns the current ordered names. initialized is false for
	// an unset manifest.
	Read(ctx context.Context, workspaceID string) (names []string, initialized bool, err error)

	// Clear resets the workspace manifest to the unset state.
	Clear(ctx context.Context, workspaceID string) error
}
