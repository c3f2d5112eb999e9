package repositories

import (
	"context"

	"github.com/google/uuid"
	"greencoin.backend/internal/domain/entities"
)

// CoinTransactionRepository defines ledger data operations. Entries are
// append-only: there is no update or delete.
type CoinTransactionRepository interface {
	Create(ctx context.Context, tx *entities.CoinTransaction) error
	// ListByUserID returns entries newest first. limit <= 0 returns all.
	ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.CoinTransaction, int, error)
	SumByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
}
