package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"greencoin.backend/internal/domain/entities"
	domainerrors "greencoin.backend/internal/domain/errors"
	"greencoin.backend/internal/domain/repositories"
	"greencoin.backend/pkg/logger"
	"greencoin.backend/pkg/metrics"
)

// ReportConfig tunes the report lifecycle
type ReportConfig struct {
	CoinsPerReport           int64
	DefaultRadiusKm          float64
	CompleteRequiresClaimant bool
}

// DefaultReportConfig returns the production defaults
func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		CoinsPerReport:           entities.DefaultCoinsPerReport,
		DefaultRadiusKm:          DefaultNearbyRadiusKm,
		CompleteRequiresClaimant: true,
	}
}

var (
	minLat = decimal.NewFromInt(MinLatitude)
	maxLat = decimal.NewFromInt(MaxLatitude)
	minLon = decimal.NewFromInt(MinLongitude)
	maxLon = decimal.NewFromInt(MaxLongitude)
)

// ReportUsecase drives waste reports through OPEN -> PICKING -> COLLECTED.
type ReportUsecase struct {
	uow        repositories.UnitOfWork
	reportRepo repositories.WasteReportRepository
	userRepo   repositories.UserRepository
	coins      *CoinUsecase
	geo        GeoIndex
	notifier   Notifier
	cfg        ReportConfig
	now        func() time.Time
}

// NewReportUsecase creates a new report usecase
func NewReportUsecase(
	uow repositories.UnitOfWork,
	reportRepo repositories.WasteReportRepository,
	userRepo repositories.UserRepository,
	coins *CoinUsecase,
	geo GeoIndex,
	notifier Notifier,
	cfg ReportConfig,
) *ReportUsecase {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if cfg.CoinsPerReport <= 0 {
		cfg.CoinsPerReport = entities.DefaultCoinsPerReport
	}
	if cfg.DefaultRadiusKm <= 0 {
		cfg.DefaultRadiusKm = DefaultNearbyRadiusKm
	}
	return &ReportUsecase{
		uow:        uow,
		reportRepo: reportRepo,
		userRepo:   userRepo,
		coins:      coins,
		geo:        geo,
		notifier:   notifier,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Create records a new OPEN report for reporterID
func (u *ReportUsecase) Create(ctx context.Context, reporterID uuid.UUID, input *entities.CreateReportInput) (*entities.WasteReport, error) {
	if err := validateReportInput(input); err != nil {
		return nil, err
	}

	reporter, err := u.userRepo.GetByID(ctx, reporterID)
	if err != nil {
		return nil, fmt.Errorf("reporter %s: %w", reporterID, err)
	}

	now := u.now()
	report := &entities.WasteReport{
		ReporterID:   reporter.ID,
		ReporterName: reporter.DisplayName,
		Latitude:     input.Latitude.Round(coordinateScale),
		Longitude:    input.Longitude.Round(coordinateScale),
		ImageURL:     strings.TrimSpace(input.ImageURL),
		Description:  strings.TrimSpace(input.Description),
		Status:       entities.ReportStatusOpen,
		CoinsAwarded: u.cfg.CoinsPerReport,
		ReportedAt:   now,
		UpdatedAt:    now,
	}

	if err := u.uow.Do(ctx, func(txCtx context.Context) error {
		return u.reportRepo.Create(txCtx, report)
	}); err != nil {
		return nil, err
	}

	metrics.RecordTransition("", string(entities.ReportStatusOpen))
	logger.Info(ctx, "Waste report created",
		zap.String("report_id", report.ID.String()),
		zap.String("reporter_id", reporterID.String()),
	)

	if u.geo != nil {
		if err := u.geo.Add(ctx, report.ID, report.Latitude.InexactFloat64(), report.Longitude.InexactFloat64()); err != nil {
			logger.Warn(ctx, "Geo index add failed", zap.String("report_id", report.ID.String()), zap.Error(err))
		}
	}
	publish(ctx, u.notifier, entities.TopicReportsNew, entities.NewReportSummary(report))

	return report, nil
}

func validateReportInput(input *entities.CreateReportInput) error {
	if input == nil {
		return fmt.Errorf("report input is required: %w", domainerrors.ErrValidation)
	}
	if input.Latitude == nil || input.Longitude == nil {
		return fmt.Errorf("latitude and longitude are required: %w", domainerrors.ErrValidation)
	}
	if input.Latitude.LessThan(minLat) || input.Latitude.GreaterThan(maxLat) {
		return fmt.Errorf("latitude %s out of range: %w", input.Latitude, domainerrors.ErrValidation)
	}
	if input.Longitude.LessThan(minLon) || input.Longitude.GreaterThan(maxLon) {
		return fmt.Errorf("longitude %s out of range: %w", input.Longitude, domainerrors.ErrValidation)
	}
	if strings.TrimSpace(input.ImageURL) == "" {
		return fmt.Errorf("image url is required: %w", domainerrors.ErrValidation)
	}
	if len(input.Description) > MaxDescriptionLength {
		return fmt.Errorf("description longer than %d characters: %w", MaxDescriptionLength, domainerrors.ErrValidation)
	}
	return nil
}

// Claim moves an OPEN report to PICKING for collectorID. Of any number of
// concurrent claims exactly one succeeds. An unknown collector is NotFound.
func (u *ReportUsecase) Claim(ctx context.Context, reportID, collectorID uuid.UUID) (*entities.WasteReport, error) {
	var claimed *entities.WasteReport
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		if _, err := u.userRepo.GetByID(txCtx, collectorID); err != nil {
			return fmt.Errorf("collector %s: %w", collectorID, err)
		}

		ok, err := u.reportRepo.UpdateStatusIf(txCtx, repositories.StatusTransition{
			ReportID:    reportID,
			From:        entities.ReportStatusOpen,
			To:          entities.ReportStatusPicking,
			CollectorID: &collectorID,
			At:          u.now(),
		})
		if err != nil {
			return err
		}
		if !ok {
			return u.transitionFailure(txCtx, reportID, entities.ReportStatusPicking)
		}

		claimed, err = u.reportRepo.GetByID(txCtx, reportID)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordTransition(string(entities.ReportStatusOpen), string(entities.ReportStatusPicking))
	logger.Info(ctx, "Waste report claimed",
		zap.String("report_id", reportID.String()),
		zap.String("collector_id", collectorID.String()),
	)

	if u.geo != nil {
		if err := u.geo.Remove(ctx, reportID); err != nil {
			logger.Warn(ctx, "Geo index remove failed", zap.String("report_id", reportID.String()), zap.Error(err))
		}
	}
	u.publishStatus(ctx, claimed)

	return claimed, nil
}

// Complete moves a PICKING report to COLLECTED and credits the reporter in
// the same transaction. A failed credit leaves the report in PICKING.
func (u *ReportUsecase) Complete(ctx context.Context, reportID, actorID uuid.UUID) (*entities.WasteReport, error) {
	var (
		completed *entities.WasteReport
		moved     *coinMovement
	)
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		current, err := u.reportRepo.GetByID(u.uow.WithLock(txCtx), reportID)
		if err != nil {
			return fmt.Errorf("report %s: %w", reportID, err)
		}
		if !current.Status.CanTransitionTo(entities.ReportStatusCollected) {
			return invalidTransition(current, entities.ReportStatusCollected)
		}
		if u.cfg.CompleteRequiresClaimant && !current.ClaimedBy(actorID) {
			return fmt.Errorf("report %s is claimed by another collector: %w", reportID, domainerrors.ErrForbidden)
		}

		ok, err := u.reportRepo.UpdateStatusIf(txCtx, repositories.StatusTransition{
			ReportID: reportID,
			From:     entities.ReportStatusPicking,
			To:       entities.ReportStatusCollected,
			At:       u.now(),
		})
		if err != nil {
			return err
		}
		if !ok {
			return u.transitionFailure(txCtx, reportID, entities.ReportStatusCollected)
		}

		moved, err = u.coins.award(txCtx, current.ReporterID, current.CoinsAwarded, reportID.String())
		if err != nil {
			return fmt.Errorf("award coins for report %s: %w", reportID, err)
		}

		completed, err = u.reportRepo.GetByID(txCtx, reportID)
		return err
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordTransition(string(entities.ReportStatusPicking), string(entities.ReportStatusCollected))
	logger.Info(ctx, "Waste report collected",
		zap.String("report_id", reportID.String()),
		zap.String("collector_id", actorID.String()),
		zap.Int64("coins_awarded", completed.CoinsAwarded),
	)

	u.publishStatus(ctx, completed)
	u.coins.notify(ctx, moved)

	return completed, nil
}

// transitionFailure explains a compare-and-swap that changed no row.
func (u *ReportUsecase) transitionFailure(ctx context.Context, reportID uuid.UUID, to entities.ReportStatus) error {
	current, err := u.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return fmt.Errorf("report %s: %w", reportID, domainerrors.ErrNotFound)
		}
		return err
	}
	return invalidTransition(current, to)
}

func invalidTransition(r *entities.WasteReport, to entities.ReportStatus) error {
	return fmt.Errorf("report %s cannot move from %s to %s: %w", r.ID, r.Status, to, domainerrors.ErrInvalidState)
}

func (u *ReportUsecase) publishStatus(ctx context.Context, r *entities.WasteReport) {
	summary := entities.NewReportSummary(r)
	publish(ctx, u.notifier, entities.ReportStatusTopic(r.ID), summary)
	publish(ctx, u.notifier, entities.TopicReportsNew, summary)
}

// ListOpen lists reports available for pickup, newest first
func (u *ReportUsecase) ListOpen(ctx context.Context) ([]*entities.WasteReport, error) {
	return u.reportRepo.ListByStatus(ctx, entities.ReportStatusOpen)
}

// ListNearby lists OPEN reports within radiusKm of a point, nearest first.
// A non-positive radius falls back to the configured default.
func (u *ReportUsecase) ListNearby(ctx context.Context, lat, lon, radiusKm float64) ([]*entities.WasteReport, error) {
	if lat < MinLatitude || lat > MaxLatitude || lon < MinLongitude || lon > MaxLongitude {
		return nil, fmt.Errorf("coordinates out of range: %w", domainerrors.ErrValidation)
	}
	if radiusKm <= 0 {
		radiusKm = u.cfg.DefaultRadiusKm
	}

	var (
		ids []uuid.UUID
		err error
	)
	if u.geo != nil {
		ids, err = u.geo.FindOpenWithin(ctx, lat, lon, radiusKm)
	} else {
		ids, err = u.reportRepo.FindOpenWithin(ctx, lat, lon, radiusKm)
	}
	if err != nil {
		return nil, err
	}

	reports, err := u.reportRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	// the index may lag behind a claim; only OPEN reports are returned
	open := reports[:0]
	for _, r := range reports {
		if r.Status == entities.ReportStatusOpen {
			open = append(open, r)
		}
	}
	return open, nil
}

// ListByReporter lists the reports submitted by a user
func (u *ReportUsecase) ListByReporter(ctx context.Context, reporterID uuid.UUID) ([]*entities.WasteReport, error) {
	return u.reportRepo.ListByReporter(ctx, reporterID)
}

// ListByCollector lists the reports claimed by a collector
func (u *ReportUsecase) ListByCollector(ctx context.Context, collectorID uuid.UUID) ([]*entities.WasteReport, error) {
	return u.reportRepo.ListByCollector(ctx, collectorID)
}

// Get returns one report
func (u *ReportUsecase) Get(ctx context.Context, id uuid.UUID) (*entities.WasteReport, error) {
	report, err := u.reportRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", id, err)
	}
	return report, nil
}
