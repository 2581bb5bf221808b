// Package core defines the error contract and slot identifiers shared by all
// meshgo packages.
//
// Every package returns these sentinels (usually wrapped with context), so
// callers can test failures with errors.Is regardless of which layer
// produced them:
//
//	if errors.Is(err, core.ErrNotFound) {
//	    // entity was deleted or never created
//	}
package core
