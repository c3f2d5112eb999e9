package repositories

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"greencoin.backend/internal/domain/entities"
	domainRepos "greencoin.backend/internal/domain/repositories"
	"greencoin.backend/internal/infrastructure/models"
	"greencoin.backend/pkg/utils"
)

// WasteReportRepository implements waste report data operations
type WasteReportRepository struct {
	db *gorm.DB
}

// NewWasteReportRepository creates a new waste report repository
func NewWasteReportRepository(db *gorm.DB) *WasteReportRepository {
	return &WasteReportRepository{db: db}
}

// Create creates a new report
func (r *WasteReportRepository) Create(ctx context.Context, report *entities.WasteReport) error {
	if report.ID == uuid.Nil {
		report.ID = utils.GenerateUUIDv7()
	}
	if report.ReportedAt.IsZero() {
		report.ReportedAt = time.Now()
	}
	report.UpdatedAt = report.ReportedAt

	m := &models.WasteReport{
		ID:           report.ID,
		ReporterID:   report.ReporterID,
		CollectorID:  report.CollectorID,
		Latitude:     report.Latitude,
		Longitude:    report.Longitude,
		ImageURL:     report.ImageURL,
		Description:  report.Description,
		Status:       string(report.Status),
		CoinsAwarded: report.CoinsAwarded,
		ReportedAt:   report.ReportedAt,
		UpdatedAt:    report.UpdatedAt,
	}
	return classify(GetDB(ctx, r.db).Omit("Reporter", "Collector").Create(m).Error)
}

// GetByID gets a report with its reporter and collector resolved
func (r *WasteReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.WasteReport, error) {
	var m models.WasteReport
	if err := r.withPeople(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, classify(err)
	}
	return toReportEntity(&m), nil
}

// GetByIDs gets reports by id, preserving the order of ids
func (r *WasteReportRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*entities.WasteReport, error) {
	if len(ids) == 0 {
		return []*entities.WasteReport{}, nil
	}

	var ms []models.WasteReport
	if err := r.withPeople(ctx).Where("id IN ?", ids).Find(&ms).Error; err != nil {
		return nil, classify(err)
	}

	byID := make(map[uuid.UUID]*entities.WasteReport, len(ms))
	for i := range ms {
		byID[ms[i].ID] = toReportEntity(&ms[i])
	}
	reports := make([]*entities.WasteReport, 0, len(ms))
	for _, id := range ids {
		if rep, ok := byID[id]; ok {
			reports = append(reports, rep)
		}
	}
	return reports, nil
}

// ListByStatus lists reports in a status, newest first
func (r *WasteReportRepository) ListByStatus(ctx context.Context, status entities.ReportStatus) ([]*entities.WasteReport, error) {
	return r.list(ctx, "status = ?", string(status))
}

// ListByReporter lists reports submitted by a user, newest first
func (r *WasteReportRepository) ListByReporter(ctx context.Context, reporterID uuid.UUID) ([]*entities.WasteReport, error) {
	return r.list(ctx, "reporter_id = ?", reporterID)
}

// ListByCollector lists reports claimed by a collector, newest first
func (r *WasteReportRepository) ListByCollector(ctx context.Context, collectorID uuid.UUID) ([]*entities.WasteReport, error) {
	return r.list(ctx, "collector_id = ?", collectorID)
}

// FindOpenWithin narrows OPEN reports with a bounding box in SQL and then
// applies the exact great-circle distance.
func (r *WasteReportRepository) FindOpenWithin(ctx context.Context, lat, lon, radiusKm float64) ([]uuid.UUID, error) {
	minLat, maxLat, minLon, maxLon := utils.BoundingBox(lat, lon, radiusKm)

	var rows []struct {
		ID        uuid.UUID
		Latitude  decimal.Decimal
		Longitude decimal.Decimal
	}
	err := GetDB(ctx, r.db).Model(&models.WasteReport{}).
		Select("id, latitude, longitude").
		Where("status = ?", string(entities.ReportStatusOpen)).
		Where("latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?", minLat, maxLat, minLon, maxLon).
		Scan(&rows).Error
	if err != nil {
		return nil, classify(err)
	}

	type hit struct {
		id   uuid.UUID
		dist float64
	}
	hits := make([]hit, 0, len(rows))
	for _, row := range rows {
		d := utils.HaversineKm(lat, lon, row.Latitude.InexactFloat64(), row.Longitude.InexactFloat64())
		if d <= radiusKm {
			hits = append(hits, hit{id: row.ID, dist: d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })

	ids := make([]uuid.UUID, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.id)
	}
	return ids, nil
}

// UpdateStatusIf performs the status compare-and-swap in one UPDATE
func (r *WasteReportRepository) UpdateStatusIf(ctx context.Context, t domainRepos.StatusTransition) (bool, error) {
	at := t.At
	if at.IsZero() {
		at = time.Now()
	}
	updates := map[string]interface{}{
		"status":     string(t.To),
		"updated_at": at,
	}
	switch t.To {
	case entities.ReportStatusPicking:
		updates["collector_id"] = t.CollectorID
		updates["picked_at"] = at
	case entities.ReportStatusCollected:
		updates["collected_at"] = at
	}

	result := GetDB(ctx, r.db).Model(&models.WasteReport{}).
		Where("id = ? AND status = ?", t.ReportID, string(t.From)).
		Updates(updates)
	if result.Error != nil {
		return false, classify(result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *WasteReportRepository) withPeople(ctx context.Context) *gorm.DB {
	return GetDB(ctx, r.db).Preload("Reporter").Preload("Collector")
}

func (r *WasteReportRepository) list(ctx context.Context, where string, arg interface{}) ([]*entities.WasteReport, error) {
	var ms []models.WasteReport
	if err := r.withPeople(ctx).Where(where, arg).Order("reported_at DESC").Find(&ms).Error; err != nil {
		return nil, classify(err)
	}

	reports := make([]*entities.WasteReport, 0, len(ms))
	for i := range ms {
		reports = append(reports, toReportEntity(&ms[i]))
	}
	return reports, nil
}

func toReportEntity(m *models.WasteReport) *entities.WasteReport {
	rep := &entities.WasteReport{
		ID:           m.ID,
		ReporterID:   m.ReporterID,
		ReporterName: m.Reporter.DisplayName,
		CollectorID:  m.CollectorID,
		Latitude:     m.Latitude,
		Longitude:    m.Longitude,
		ImageURL:     m.ImageURL,
		Description:  m.Description,
		Status:       entities.ReportStatus(m.Status),
		CoinsAwarded: m.CoinsAwarded,
		ReportedAt:   m.ReportedAt,
		PickedAt:     null.TimeFromPtr(m.PickedAt),
		CollectedAt:  null.TimeFromPtr(m.CollectedAt),
		UpdatedAt:    m.UpdatedAt,
	}
	if m.Collector != nil {
		rep.CollectorName = m.Collector.DisplayName
	}
	return rep
}
