//go:build !sqlite

package storage

import "fmt"

// newSQLiteStore in builds without the sqlite tag always fails; campaign
// persistence then requires the memory backend.
func newSQLiteStore(path string) (Store, error) {
	return nil, fmt.Errorf("sqlite store %q unavailable: rebuild with -tags sqlite", path)
}
