package rowstore

import (
	"context"
	"fmt"

	"github.com/celerix-dev/auditoria/pkg/schema"
)

// StoredLocations returns the locations src holds data for when it can tell,
// and every known location otherwise.
func StoredLocations(src Store) ([]string, error) {
	if lister, ok := src.(interface{ Locations() ([]string, error) }); ok {
		return lister.Locations()
	}
	return schema.Locations, nil
}

// Migrate copies every listed location's rows from src into dst, ahead of any
// rows dst already holds. This works for:
//   - Local -> Remote (moving to a shared store)
//   - Remote -> Local (offline backup)
//
// It returns the number of rows copied per location and stops at the first failure.
func Migrate(ctx context.Context, src, dst Store, locations []string) (map[string]int, error) {
	copied := make(map[string]int, len(locations))
	for _, loc := range locations {
		listed := src.List(ctx, loc)
		if listed.Failed() {
			return copied, fmt.Errorf("list %s: %w", loc, listed.Err)
		}
		if len(listed.Value) == 0 {
			continue
		}

		merged := dst.Prepend(ctx, loc, listed.Value)
		copied[loc] = merged.Value
		if merged.Failed() {
			return copied, fmt.Errorf("copy %s: %w", loc, merged.Err)
		}
	}
	return copied, nil
}
