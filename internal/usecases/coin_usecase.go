package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"greencoin.backend/internal/domain/entities"
	domainerrors "greencoin.backend/internal/domain/errors"
	"greencoin.backend/internal/domain/repositories"
	"greencoin.backend/pkg/logger"
	"greencoin.backend/pkg/metrics"
	"greencoin.backend/pkg/utils"
)

// CoinUsecase owns every change to a user's coin balance. A balance never
// moves without a ledger entry written in the same transaction.
type CoinUsecase struct {
	uow      repositories.UnitOfWork
	userRepo repositories.UserRepository
	txRepo   repositories.CoinTransactionRepository
	notifier Notifier
	now      func() time.Time
}

// NewCoinUsecase creates a new coin usecase
func NewCoinUsecase(
	uow repositories.UnitOfWork,
	userRepo repositories.UserRepository,
	txRepo repositories.CoinTransactionRepository,
	notifier Notifier,
) *CoinUsecase {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &CoinUsecase{
		uow:      uow,
		userRepo: userRepo,
		txRepo:   txRepo,
		notifier: notifier,
		now:      time.Now,
	}
}

// coinMovement is what a committed balance change needs to notify its owner.
type coinMovement struct {
	tx          *entities.CoinTransaction
	firebaseUID string
	balance     int64
}

// Award credits amount to userID for a collected report. It joins the
// transaction already present in ctx, if any.
func (u *CoinUsecase) Award(ctx context.Context, userID uuid.UUID, amount int64, referenceID string) (*entities.CoinTransaction, error) {
	var moved *coinMovement
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		var err error
		moved, err = u.award(txCtx, userID, amount, referenceID)
		return err
	})
	if err != nil {
		return nil, err
	}

	u.notify(ctx, moved)
	return moved.tx, nil
}

func (u *CoinUsecase) award(ctx context.Context, userID uuid.UUID, amount int64, referenceID string) (*coinMovement, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("award amount must be positive: %w", domainerrors.ErrValidation)
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("award to user %s: %w", userID, err)
	}

	balance, err := u.userRepo.AddBalance(ctx, userID, amount)
	if err != nil {
		return nil, err
	}

	entry := &entities.CoinTransaction{
		UserID:          userID,
		Amount:          amount,
		TransactionType: entities.TransactionEarned,
		ReferenceID:     referenceID,
		ReferenceType:   entities.ReferenceTypeWasteReport,
		CreatedAt:       u.now(),
	}
	if err := u.txRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	return &coinMovement{tx: entry, firebaseUID: user.FirebaseUID, balance: balance}, nil
}

// Redeem debits amount from userID for a marketplace item. The balance can
// never go negative.
func (u *CoinUsecase) Redeem(ctx context.Context, userID uuid.UUID, amount int64, item string) (*entities.RedeemResult, error) {
	item = strings.TrimSpace(item)
	if amount <= 0 {
		return nil, fmt.Errorf("redeem amount must be positive: %w", domainerrors.ErrValidation)
	}
	if item == "" || len(item) > MaxRedeemItemLength {
		return nil, fmt.Errorf("redeem item must be 1-%d characters: %w", MaxRedeemItemLength, domainerrors.ErrValidation)
	}

	var moved *coinMovement
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		user, err := u.userRepo.GetByID(txCtx, userID)
		if err != nil {
			return fmt.Errorf("redeem for user %s: %w", userID, err)
		}

		balance, err := u.userRepo.DeductBalance(txCtx, userID, amount)
		if err != nil {
			return err
		}

		entry := &entities.CoinTransaction{
			UserID:          userID,
			Amount:          -amount,
			TransactionType: entities.TransactionRedeemed,
			ReferenceID:     item,
			ReferenceType:   entities.ReferenceTypeMarketplaceRedeem,
			CreatedAt:       u.now(),
		}
		if err := u.txRepo.Create(txCtx, entry); err != nil {
			return err
		}

		moved = &coinMovement{tx: entry, firebaseUID: user.FirebaseUID, balance: balance}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "Coins redeemed",
		zap.String("user_id", userID.String()),
		zap.Int64("amount", amount),
		zap.String("item", item),
	)
	u.notify(ctx, moved)
	return &entities.RedeemResult{Transaction: moved.tx, Balance: moved.balance}, nil
}

// History returns a user's ledger newest first. limit 0 returns everything.
func (u *CoinUsecase) History(ctx context.Context, userID uuid.UUID, pagination utils.PaginationParams) ([]*entities.CoinTransaction, utils.PaginationMeta, error) {
	txs, total, err := u.txRepo.ListByUserID(ctx, userID, pagination.Limit, pagination.CalculateOffset())
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return txs, utils.CalculateMeta(int64(total), pagination.Page, pagination.Limit), nil
}

// Balance returns the stored balance of a user
func (u *CoinUsecase) Balance(ctx context.Context, userID uuid.UUID) (*entities.BalanceResponse, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &entities.BalanceResponse{Balance: user.CoinBalance, UserID: user.ID}, nil
}

// Reconcile compares a user's balance with the sum of their ledger. Both are
// read in one transaction so a concurrent award cannot split them.
func (u *CoinUsecase) Reconcile(ctx context.Context, userID uuid.UUID) (*entities.LedgerDrift, error) {
	var drift entities.LedgerDrift
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		user, err := u.userRepo.GetByID(u.uow.WithLock(txCtx), userID)
		if err != nil {
			return err
		}
		sum, err := u.txRepo.SumByUserID(txCtx, userID)
		if err != nil {
			return err
		}
		drift = entities.LedgerDrift{UserID: userID, Balance: user.CoinBalance, LedgerTotal: sum}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &drift, nil
}

// ReconcileAll walks every user and returns the ones whose ledger drifted.
func (u *CoinUsecase) ReconcileAll(ctx context.Context, batchSize int) ([]entities.LedgerDrift, error) {
	if batchSize <= 0 {
		batchSize = 500
	}

	var drifted []entities.LedgerDrift
	for offset := 0; ; offset += batchSize {
		users, err := u.userRepo.List(ctx, batchSize, offset)
		if err != nil {
			return drifted, err
		}
		for _, user := range users {
			d, err := u.Reconcile(ctx, user.ID)
			if err != nil {
				return drifted, err
			}
			if d.Delta() != 0 {
				drifted = append(drifted, *d)
			}
		}
		if len(users) < batchSize {
			return drifted, nil
		}
	}
}

func (u *CoinUsecase) notify(ctx context.Context, moved *coinMovement) {
	metrics.RecordCoins(string(moved.tx.TransactionType), moved.tx.Amount)
	if moved.firebaseUID == "" {
		return
	}
	publish(ctx, u.notifier, entities.UserCoinsTopic(moved.firebaseUID),
		entities.NewCoinEvent(moved.tx.Amount, moved.balance))
}
