package entities

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReportSummarySchemaVersion is bumped whenever ReportSummary changes shape.
const ReportSummarySchemaVersion = 1

// ReportSummary is the redacted view of a report published to subscribers.
// It never carries the image or the description.
type ReportSummary struct {
	SchemaVersion int             `json:"schemaVersion"`
	ID            uuid.UUID       `json:"id"`
	Status        ReportStatus    `json:"status"`
	Latitude      decimal.Decimal `json:"latitude"`
	Longitude     decimal.Decimal `json:"longitude"`
	ReporterName  string          `json:"reporterName"`
	CoinsAwarded  int64           `json:"coinsAwarded"`
}

// NewReportSummary builds the redacted summary of r.
func NewReportSummary(r *WasteReport) ReportSummary {
	return ReportSummary{
		SchemaVersion: ReportSummarySchemaVersion,
		ID:            r.ID,
		Status:        r.Status,
		Latitude:      r.Latitude,
		Longitude:     r.Longitude,
		ReporterName:  r.ReporterName,
		CoinsAwarded:  r.CoinsAwarded,
	}
}

// CoinEventType identifies a per-user coin notification
type CoinEventType string

const (
	CoinEventAwarded  CoinEventType = "COINS_AWARDED"
	CoinEventRedeemed CoinEventType = "COINS_REDEEMED"
)

// CoinEvent is the only balance information pushed to a user.
type CoinEvent struct {
	Type       CoinEventType `json:"type"`
	Amount     int64         `json:"amount"`
	NewBalance int64         `json:"newBalance"`
}

// NewCoinEvent derives the event type from the sign of amount.
func NewCoinEvent(amount, newBalance int64) CoinEvent {
	t := CoinEventAwarded
	if amount < 0 {
		t = CoinEventRedeemed
	}
	return CoinEvent{Type: t, Amount: amount, NewBalance: newBalance}
}

// Notification topics
const (
	TopicReportsNew = "reports.new"
)

// ReportStatusTopic returns the topic carrying status changes of one report.
func ReportStatusTopic(id uuid.UUID) string {
	return "reports." + id.String() + ".status"
}

// UserCoinsTopic returns the private coin topic of a user.
func UserCoinsTopic(firebaseUID string) string {
	return "users." + firebaseUID + ".coins"
}
