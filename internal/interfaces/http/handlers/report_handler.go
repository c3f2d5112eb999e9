package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"greencoin.backend/internal/domain/entities"
	domainerrors "greencoin.backend/internal/domain/errors"
	"greencoin.backend/internal/interfaces/http/middleware"
	"greencoin.backend/internal/interfaces/http/response"
	"greencoin.backend/internal/usecases"
)

type reportService interface {
	Create(ctx context.Context, reporterID uuid.UUID, input *entities.CreateReportInput) (*entities.WasteReport, error)
	Claim(ctx context.Context, reportID, collectorID uuid.UUID) (*entities.WasteReport, error)
	Complete(ctx context.Context, reportID, actorID uuid.UUID) (*entities.WasteReport, error)
	ListOpen(ctx context.Context) ([]*entities.WasteReport, error)
	ListNearby(ctx context.Context, lat, lon, radiusKm float64) ([]*entities.WasteReport, error)
	ListByReporter(ctx context.Context, reporterID uuid.UUID) ([]*entities.WasteReport, error)
	ListByCollector(ctx context.Context, collectorID uuid.UUID) ([]*entities.WasteReport, error)
	Get(ctx context.Context, id uuid.UUID) (*entities.WasteReport, error)
}

// ReportHandler handles waste report endpoints
type ReportHandler struct {
	reportUsecase reportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportUsecase *usecases.ReportUsecase) *ReportHandler {
	return &ReportHandler{reportUsecase: reportUsecase}
}

// CreateReport submits a new waste report
// POST /api/v1/reports
func (h *ReportHandler) CreateReport(c *gin.Context) {
	var input entities.CreateReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	report, err := h.reportUsecase.Create(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, report)
}

// ListAvailable lists OPEN reports
// GET /api/v1/reports/available
func (h *ReportHandler) ListAvailable(c *gin.Context) {
	reports, err := h.reportUsecase.ListOpen(c.Request.Context())
	h.respondList(c, reports, err)
}

// ListNearby lists OPEN reports around a point
// GET /api/v1/reports/nearby?latitude=&longitude=&radiusKm=
func (h *ReportHandler) ListNearby(c *gin.Context) {
	var query entities.NearbyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	reports, err := h.reportUsecase.ListNearby(c.Request.Context(), *query.Latitude, *query.Longitude, query.RadiusKm)
	h.respondList(c, reports, err)
}

// MyReports lists reports submitted by the caller
// GET /api/v1/reports/my-reports
func (h *ReportHandler) MyReports(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	reports, err := h.reportUsecase.ListByReporter(c.Request.Context(), userID)
	h.respondList(c, reports, err)
}

// MyPickups lists reports claimed by the caller
// GET /api/v1/reports/my-pickups
func (h *ReportHandler) MyPickups(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	reports, err := h.reportUsecase.ListByCollector(c.Request.Context(), userID)
	h.respondList(c, reports, err)
}

// GetReport returns a single report
// GET /api/v1/reports/:id
func (h *ReportHandler) GetReport(c *gin.Context) {
	reportID, ok := parseReportID(c)
	if !ok {
		return
	}

	report, err := h.reportUsecase.Get(c.Request.Context(), reportID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, report)
}

// PickReport claims an OPEN report for the calling collector
// PATCH /api/v1/reports/:id/pick
func (h *ReportHandler) PickReport(c *gin.Context) {
	h.transition(c, h.reportUsecase.Claim)
}

// CollectReport completes a report and credits the reporter
// PATCH /api/v1/reports/:id/collect
func (h *ReportHandler) CollectReport(c *gin.Context) {
	h.transition(c, h.reportUsecase.Complete)
}

func (h *ReportHandler) transition(c *gin.Context, apply func(ctx context.Context, reportID, actorID uuid.UUID) (*entities.WasteReport, error)) {
	reportID, ok := parseReportID(c)
	if !ok {
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	report, err := apply(c.Request.Context(), reportID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, report)
}

func (h *ReportHandler) respondList(c *gin.Context, reports []*entities.WasteReport, err error) {
	if err != nil {
		response.Error(c, err)
		return
	}
	if reports == nil {
		reports = []*entities.WasteReport{}
	}
	response.Success(c, http.StatusOK, reports)
}

func parseReportID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid report ID"))
		return uuid.Nil, false
	}
	return id, true
}
