package geo

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"greencoin.backend/internal/domain/entities"
	domainerrors "greencoin.backend/internal/domain/errors"
)

// DefaultOpenReportsKey holds the positions of OPEN reports.
const DefaultOpenReportsKey = "reports:open:geo"

// MaxLatitude is the largest latitude Redis geo sets accept (Web Mercator).
const MaxLatitude = 85.05112878

const kmPerDegreeLatitude = 111.32

// RedisIndex keeps OPEN report positions in a Redis geo set. Points beyond
// MaxLatitude are not stored; searches reaching them go to the polar finder.
type RedisIndex struct {
	client *redis.Client
	key    string
	polar  openReportFinder
}

// NewRedisIndex creates a geo index stored under key
func NewRedisIndex(client *redis.Client, key string) *RedisIndex {
	if key == "" {
		key = DefaultOpenReportsKey
	}
	return &RedisIndex{client: client, key: key}
}

// WithPolarFallback sets the finder answering searches that reach past
// MaxLatitude.
func (g *RedisIndex) WithPolarFallback(finder openReportFinder) *RedisIndex {
	g.polar = finder
	return g
}

func indexable(lat float64) bool {
	return math.Abs(lat) <= MaxLatitude
}

func reachesPolarBand(lat, radiusKm float64) bool {
	return math.Abs(lat)+radiusKm/kmPerDegreeLatitude > MaxLatitude
}

// Add indexes an OPEN report. Polar reports are skipped.
func (g *RedisIndex) Add(ctx context.Context, id uuid.UUID, lat, lon float64) error {
	if !indexable(lat) {
		return nil
	}
	return g.client.GeoAdd(ctx, g.key, &redis.GeoLocation{
		Name:      id.String(),
		Latitude:  lat,
		Longitude: lon,
	}).Err()
}

// Remove drops a report from the index
func (g *RedisIndex) Remove(ctx context.Context, id uuid.UUID) error {
	return g.client.ZRem(ctx, g.key, id.String()).Err()
}

// FindOpenWithin returns indexed reports within radiusKm, nearest first
func (g *RedisIndex) FindOpenWithin(ctx context.Context, lat, lon, radiusKm float64) ([]uuid.UUID, error) {
	if reachesPolarBand(lat, radiusKm) {
		if g.polar != nil {
			return g.polar.FindOpenWithin(ctx, lat, lon, radiusKm)
		}
		if !indexable(lat) {
			return nil, fmt.Errorf("latitude %.6f beyond geo index range: %w", lat, domainerrors.ErrValidation)
		}
	}

	locations, err := g.client.GeoRadius(ctx, g.key, lon, lat, &redis.GeoRadiusQuery{
		Radius: radiusKm,
		Unit:   "km",
		Sort:   "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(locations))
	for _, loc := range locations {
		id, err := uuid.Parse(loc.Name)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Rebuild replaces the index with the given OPEN reports
func (g *RedisIndex) Rebuild(ctx context.Context, reports []*entities.WasteReport) error {
	locations := make([]*redis.GeoLocation, 0, len(reports))
	for _, r := range reports {
		lat := r.Latitude.InexactFloat64()
		if r.Status != entities.ReportStatusOpen || !indexable(lat) {
			continue
		}
		locations = append(locations, &redis.GeoLocation{
			Name:      r.ID.String(),
			Latitude:  lat,
			Longitude: r.Longitude.InexactFloat64(),
		})
	}

	_, err := g.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, g.key)
		if len(locations) > 0 {
			pipe.GeoAdd(ctx, g.key, locations...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("rebuild geo index: %w", err)
	}
	return nil
}
