package ports

import (
	"context"

	"gokeyword/domain/region"
)

// RegionRepository defines the interface for the region hierarchy reference table
type RegionRepository interface {
	// List returns every reference record in insertion order
	List(ctx context.Context) ([]region.Record, error)

	// ReplaceAll swaps the whole reference table for records atomically
	ReplaceAll(ctx context.Context, records []region.Record) error

	// Count returns the number of reference records
	Count(ctx context.Context) (int, error)
}
