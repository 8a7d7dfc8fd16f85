package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Dataset sources, caches and stores
// return these (optionally wrapped) so services can translate them into domain
// errors:
//   - ErrNotFound: the record or cache entry does not exist
//   - ErrUnavailable: a backing service (Postgres, Redis, Kafka) cannot be reached
//   - ErrInvalidDataset: a dataset document could not be decoded at all
//   - ErrNotConfigured: the source was asked to load without a location
//
// For validation errors on request input, use pkg/domain-errors directly.
var (
	ErrNotFound       = errors.New("not found")
	ErrUnavailable    = errors.New("unavailable")
	ErrInvalidDataset = errors.New("invalid dataset")
	ErrNotConfigured  = errors.New("not configured")
)
