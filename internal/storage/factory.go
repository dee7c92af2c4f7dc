package storage

import "fmt"

// NewStore selects a run-record backend by name. "memory" (the default)
// keeps runs, champion individuals, and diagnostics for the life of the
// process; "sqlite" persists them to the database file at sqlitePath and
// needs a binary built with the sqlite tag.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return newSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("unknown store backend %q (want memory or sqlite)", kind)
	}
}

// CloseIfSupported closes backends that hold external resources, such as
// the sqlite database handle. The memory backend has nothing to release.
func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
