package entities

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType represents the kind of ledger entry
type TransactionType string

const (
	TransactionEarned   TransactionType = "EARNED"
	TransactionRedeemed TransactionType = "REDEEMED"
)

// Reference types recorded on ledger entries
const (
	ReferenceTypeWasteReport       = "WASTE_REPORT"
	ReferenceTypeMarketplaceRedeem = "MARKETPLACE_REDEEM"
)

// CoinTransaction is an immutable ledger entry. Amount is positive for
// EARNED entries and negative for REDEEMED entries.
type CoinTransaction struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"userId"`
	Amount          int64           `json:"amount"`
	TransactionType TransactionType `json:"transactionType"`
	ReferenceID     string          `json:"referenceId,omitempty"`
	ReferenceType   string          `json:"referenceType"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// RedeemInput represents input for redeeming coins
type RedeemInput struct {
	Amount int64  `json:"amount" binding:"required,gt=0"`
	Item   string `json:"item" binding:"required,max=200"`
}

// BalanceResponse represents the balance of the current user
type BalanceResponse struct {
	Balance int64     `json:"balance"`
	UserID  uuid.UUID `json:"userId"`
}

// LedgerDrift describes a mismatch between a stored balance and its ledger.
type LedgerDrift struct {
	UserID      uuid.UUID `json:"userId"`
	Balance     int64     `json:"balance"`
	LedgerTotal int64     `json:"ledgerTotal"`
}

// Delta returns balance minus ledger total.
func (d LedgerDrift) Delta() int64 {
	return d.Balance - d.LedgerTotal
}

// RedeemResult is the ledger entry of a redemption and the resulting balance
type RedeemResult struct {
	Transaction *CoinTransaction `json:"transaction"`
	Balance     int64            `json:"balance"`
}
