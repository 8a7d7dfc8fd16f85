// Package source loads the admin-published jurisdiction dataset from a YAML
// file or Postgres, optionally through a Redis snapshot cache.
package source

import (
	"context"

	"notaryfix/internal/jurisdiction/models"
)

// Source loads a complete dataset. Implementations return raw records;
// sanitization happens in the refresher.
type Source interface {
	Load(ctx context.Context) (models.Dataset, error)
	Name() string
}

// Invalidator is implemented by sources that cache, so an operator-triggered
// reload can skip stale copies.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}
