package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"greencoin.backend/internal/domain/entities"
	"greencoin.backend/internal/infrastructure/models"
	"greencoin.backend/pkg/utils"
)

// CoinTransactionRepository implements ledger data operations
type CoinTransactionRepository struct {
	db *gorm.DB
}

// NewCoinTransactionRepository creates a new ledger repository
func NewCoinTransactionRepository(db *gorm.DB) *CoinTransactionRepository {
	return &CoinTransactionRepository{db: db}
}

// Create appends a ledger entry
func (r *CoinTransactionRepository) Create(ctx context.Context, tx *entities.CoinTransaction) error {
	if tx.ID == uuid.Nil {
		tx.ID = utils.GenerateUUIDv7()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}

	m := &models.CoinTransaction{
		ID:              tx.ID,
		UserID:          tx.UserID,
		Amount:          tx.Amount,
		TransactionType: string(tx.TransactionType),
		ReferenceID:     tx.ReferenceID,
		ReferenceType:   tx.ReferenceType,
		CreatedAt:       tx.CreatedAt,
	}
	return classify(GetDB(ctx, r.db).Create(m).Error)
}

// ListByUserID lists a user's entries newest first with the total count
func (r *CoinTransactionRepository) ListByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.CoinTransaction, int, error) {
	var total int64
	if err := GetDB(ctx, r.db).Model(&models.CoinTransaction{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return nil, 0, classify(err)
	}

	query := GetDB(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var ms []models.CoinTransaction
	if err := query.Find(&ms).Error; err != nil {
		return nil, 0, classify(err)
	}

	txs := make([]*entities.CoinTransaction, 0, len(ms))
	for i := range ms {
		txs = append(txs, toTransactionEntity(&ms[i]))
	}
	return txs, int(total), nil
}

// SumByUserID returns the sum of a user's ledger amounts
func (r *CoinTransactionRepository) SumByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var sum int64
	err := GetDB(ctx, r.db).Model(&models.CoinTransaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("user_id = ?", userID).
		Scan(&sum).Error
	if err != nil {
		return 0, classify(err)
	}
	return sum, nil
}

func toTransactionEntity(m *models.CoinTransaction) *entities.CoinTransaction {
	return &entities.CoinTransaction{
		ID:              m.ID,
		UserID:          m.UserID,
		Amount:          m.Amount,
		TransactionType: entities.TransactionType(m.TransactionType),
		ReferenceID:     m.ReferenceID,
		ReferenceType:   m.ReferenceType,
		CreatedAt:       m.CreatedAt,
	}
}
