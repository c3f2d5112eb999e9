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
	"greencoin.backend/pkg/utils"
)

type coinService interface {
	Balance(ctx context.Context, userID uuid.UUID) (*entities.BalanceResponse, error)
	History(ctx context.Context, userID uuid.UUID, pagination utils.PaginationParams) ([]*entities.CoinTransaction, utils.PaginationMeta, error)
	Redeem(ctx context.Context, userID uuid.UUID, amount int64, item string) (*entities.RedeemResult, error)
}

// CoinHandler handles coin endpoints
type CoinHandler struct {
	coinUsecase coinService
}

// NewCoinHandler creates a new coin handler
func NewCoinHandler(coinUsecase *usecases.CoinUsecase) *CoinHandler {
	return &CoinHandler{coinUsecase: coinUsecase}
}

// Balance returns the caller's balance
// GET /api/v1/coins/balance
func (h *CoinHandler) Balance(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	balance, err := h.coinUsecase.Balance(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, balance)
}

// Transactions lists the caller's ledger, newest first
// GET /api/v1/coins/transactions?page=&limit=
func (h *CoinHandler) Transactions(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	var query utils.PaginationParams
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid pagination parameters"))
		return
	}

	txs, meta, err := h.coinUsecase.History(c.Request.Context(), userID, utils.GetPaginationParams(query.Page, query.Limit))
	if err != nil {
		response.Error(c, err)
		return
	}
	if txs == nil {
		txs = []*entities.CoinTransaction{}
	}

	response.Success(c, http.StatusOK, gin.H{
		"items": txs,
		"meta":  meta,
	})
}

// Redeem spends coins on a marketplace item
// POST /api/v1/coins/redeem
func (h *CoinHandler) Redeem(c *gin.Context) {
	var input entities.RedeemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	result, err := h.coinUsecase.Redeem(c.Request.Context(), userID, input.Amount, input.Item)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}
