package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"greencoin.backend/internal/domain/entities"
)

// StatusTransition describes a compare-and-swap on a report's status.
type StatusTransition struct {
	ReportID    uuid.UUID
	From        entities.ReportStatus
	To          entities.ReportStatus
	CollectorID *uuid.UUID
	At          time.Time
}

// WasteReportRepository defines waste report data operations
type WasteReportRepository interface {
	Create(ctx context.Context, report *entities.WasteReport) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.WasteReport, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.WasteReport, error)
	ListByStatus(ctx context.Context, status entities.ReportStatus) ([]*entities.WasteReport, error)
	ListByReporter(ctx context.Context, reporterID uuid.UUID) ([]*entities.WasteReport, error)
	ListByCollector(ctx context.Context, collectorID uuid.UUID) ([]*entities.WasteReport, error)
	// FindOpenWithin returns OPEN report ids within radiusKm, nearest first.
	FindOpenWithin(ctx context.Context, lat, lon, radiusKm float64) ([]uuid.UUID, error)
	// UpdateStatusIf applies t only when the stored status equals t.From.
	// It reports whether a row changed.
	UpdateStatusIf(ctx context.Context, t StatusTransition) (bool, error)
}
