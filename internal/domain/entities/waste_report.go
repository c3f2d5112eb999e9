package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// ReportStatus represents the pickup lifecycle status of a waste report
type ReportStatus string

const (
	ReportStatusOpen      ReportStatus = "OPEN"
	ReportStatusPicking   ReportStatus = "PICKING"
	ReportStatusCollected ReportStatus = "COLLECTED"
	ReportStatusRejected  ReportStatus = "REJECTED"
)

// DefaultCoinsPerReport is the reward fixed on every new report.
const DefaultCoinsPerReport int64 = 10

// reportTransitions lists the only allowed edges of the lifecycle.
// REJECTED has no incoming edge and nothing leaves a terminal status.
var reportTransitions = map[ReportStatus][]ReportStatus{
	ReportStatusOpen:    {ReportStatusPicking},
	ReportStatusPicking: {ReportStatusCollected},
}

// CanTransitionTo reports whether the lifecycle permits moving from s to next.
func (s ReportStatus) CanTransitionTo(next ReportStatus) bool {
	for _, allowed := range reportTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s ReportStatus) IsTerminal() bool {
	return s == ReportStatusCollected || s == ReportStatusRejected
}

// Valid reports whether s is a known status.
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportStatusOpen, ReportStatusPicking, ReportStatusCollected, ReportStatusRejected:
		return true
	}
	return false
}

// WasteReport represents a citizen-submitted waste location
type WasteReport struct {
	ID            uuid.UUID       `json:"id"`
	ReporterID    uuid.UUID       `json:"reporterId"`
	ReporterName  string          `json:"reporterName"`
	CollectorID   *uuid.UUID      `json:"collectorId,omitempty"`
	CollectorName string          `json:"collectorName,omitempty"`
	Latitude      decimal.Decimal `json:"latitude"`
	Longitude     decimal.Decimal `json:"longitude"`
	ImageURL      string          `json:"imageUrl"`
	Description   string          `json:"description,omitempty"`
	Status        ReportStatus    `json:"status"`
	CoinsAwarded  int64           `json:"coinsAwarded"`
	ReportedAt    time.Time       `json:"reportedAt"`
	PickedAt      null.Time       `json:"pickedAt"`
	CollectedAt   null.Time       `json:"collectedAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// ClaimedBy reports whether userID is the collector holding the report.
func (r *WasteReport) ClaimedBy(userID uuid.UUID) bool {
	return r.CollectorID != nil && *r.CollectorID == userID
}

// CreateReportInput represents input for creating a waste report
type CreateReportInput struct {
	Latitude    *decimal.Decimal `json:"latitude" binding:"required"`
	Longitude   *decimal.Decimal `json:"longitude" binding:"required"`
	ImageURL    string           `json:"imageUrl" binding:"required"`
	Description string           `json:"description" binding:"omitempty,max=2000"`
}

// NearbyQuery represents the query string of a nearby search. Coordinates
// are pointers so 0 (equator, prime meridian) passes the presence check.
type NearbyQuery struct {
	Latitude  *float64 `form:"latitude" binding:"required"`
	Longitude *float64 `form:"longitude" binding:"required"`
	RadiusKm  float64  `form:"radiusKm"`
}
