package geo

import (
	"context"

	"github.com/google/uuid"
)

type openReportFinder interface {
	FindOpenWithin(ctx context.Context, lat, lon, radiusKm float64) ([]uuid.UUID, error)
}

// SQLIndex answers nearby searches straight from the report table. It has
// nothing to maintain, so Add and Remove are no-ops.
type SQLIndex struct {
	finder openReportFinder
}

// NewSQLIndex creates an index backed by the report store
func NewSQLIndex(finder openReportFinder) *SQLIndex {
	return &SQLIndex{finder: finder}
}

func (g *SQLIndex) Add(context.Context, uuid.UUID, float64, float64) error { return nil }

func (g *SQLIndex) Remove(context.Context, uuid.UUID) error { return nil }

// FindOpenWithin delegates to the store
func (g *SQLIndex) FindOpenWithin(ctx context.Context, lat, lon, radiusKm float64) ([]uuid.UUID, error) {
	return g.finder.FindOpenWithin(ctx, lat, lon, radiusKm)
}
