package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/OSejal/Packloop/internal/auth"
	"github.com/OSejal/Packloop/internal/models"
	"github.com/OSejal/Packloop/internal/payments"
	"github.com/OSejal/Packloop/internal/services"
	"github.com/OSejal/Packloop/internal/storage"
	"github.com/labstack/echo/v4"
)

// WalletHandler обрабатывает операции кошелька.
type WalletHandler struct {
	walletService services.WalletService
}

// NewWalletHandler создаёт новый handler.
func NewWalletHandler(walletService services.WalletService) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// GetBalance обрабатывает GET /api/wallet.
func (h *WalletHandler) GetBalance(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	balance, err := h.walletService.GetBalance(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusUnauthorized, "user not found")
		}
		c.Logger().Errorf("failed to get balance: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return respond(c, http.StatusOK, map[string]interface{}{
		"balance": balance,
	})
}

// VerifyTopUp обрабатывает POST /api/wallet/topup/verify.
// Подпись шлюза проверяется до любых изменений баланса.
func (h *WalletHandler) VerifyTopUp(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req models.VerifyTopUpRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	balance, err := h.walletService.VerifyTopUp(c.Request().Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrInvalidSignature):
			return echo.NewHTTPError(http.StatusBadRequest, "invalid payment signature")
		case errors.Is(err, services.ErrInvalidAmount):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "invalid amount")
		case errors.Is(err, storage.ErrDuplicateReference):
			return echo.NewHTTPError(http.StatusConflict, "payment already processed")
		case errors.Is(err, storage.ErrUserNotFound):
			return echo.NewHTTPError(http.StatusUnauthorized, "user not found")
		default:
			c.Logger().Errorf("failed to verify top-up: %v", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
	}

	return respond(c, http.StatusOK, map[string]interface{}{
		"balance": balance,
	})
}

// Withdraw обрабатывает POST /api/wallet/withdraw.
func (h *WalletHandler) Withdraw(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req models.WithdrawRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	if err := h.walletService.Withdraw(c.Request().Context(), userID, req.Target, req.Sum); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidWithdrawTarget), errors.Is(err, services.ErrInvalidAmount):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, storage.ErrInsufficientBalance):
			return echo.NewHTTPError(http.StatusPaymentRequired, "insufficient balance")
		case errors.Is(err, storage.ErrUserNotFound):
			return echo.NewHTTPError(http.StatusUnauthorized, "user not found")
		default:
			c.Logger().Errorf("failed to withdraw: %v", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
	}

	return respond(c, http.StatusOK, map[string]interface{}{
		"withdrawn": req.Sum,
	})
}

// GetTransactions обрабатывает GET /api/wallet/transactions.
func (h *WalletHandler) GetTransactions(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	list, err := h.walletService.GetTransactions(c.Request().Context(), userID)
	if err != nil {
		c.Logger().Errorf("failed to get transactions: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return respond(c, http.StatusOK, map[string]interface{}{
		"transactions": h.mapTransactionsToResponse(list),
	})
}

// mapTransactionsToResponse преобразует операции кошелька в DTO для HTTP-ответа.
func (h *WalletHandler) mapTransactionsToResponse(list []*models.WalletTransaction) []*models.TransactionResponse {
	response := make([]*models.TransactionResponse, 0, len(list))
	for _, txn := range list {
		amount, _ := txn.Amount.Float64()
		response = append(response, &models.TransactionResponse{
			ID:          txn.ID.String(),
			Amount:      amount,
			Type:        string(txn.Type),
			Status:      string(txn.Status),
			ReferenceID: txn.ReferenceID,
			ProcessedAt: txn.ProcessedAt.Format(time.RFC3339),
		})
	}
	return response
}
