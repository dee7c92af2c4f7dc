//go:build !sqlite

package storage

import "errors"

// Stub for binaries built without the sqlite tag, keeping NewStore's
// backend switch compilable while steering callers to the memory backend.
func newSQLiteStore(_ string) (Store, error) {
	return nil, errors.New("sqlite store requires a build with -tags sqlite; use the memory backend otherwise")
}
