package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/OSejal/Packloop/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrInvalidWithdrawTarget = errors.New("withdrawal target is required")
)

// WalletService описывает операции кошелька: пополнение через платёжный шлюз,
// вывод средств и история операций.
type WalletService interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (*models.BalanceResponse, error)
	VerifyTopUp(ctx context.Context, userID uuid.UUID, req *models.VerifyTopUpRequest) (*models.BalanceResponse, error)
	Withdraw(ctx context.Context, userID uuid.UUID, target string, sum float64) error
	GetTransactions(ctx context.Context, userID uuid.UUID) ([]*models.WalletTransaction, error)
}

type WalletServiceImpl struct {
	pool          *pgxpool.Pool
	userStorage   UserStorage
	walletStorage WalletStorage
	verifier      GatewayVerifier
}

// NewWalletService создаёт сервис кошелька.
func NewWalletService(pool *pgxpool.Pool, userStorage UserStorage, walletStorage WalletStorage, verifier GatewayVerifier) *WalletServiceImpl {
	return &WalletServiceImpl{
		pool:          pool,
		userStorage:   userStorage,
		walletStorage: walletStorage,
		verifier:      verifier,
	}
}

// GetBalance возвращает баланс кошелька пользователя.
func (s *WalletServiceImpl) GetBalance(ctx context.Context, userID uuid.UUID) (*models.BalanceResponse, error) {
	user, err := s.userStorage.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	current, _ := user.Balance.Float64()
	withdrawn, _ := user.Withdrawn.Float64()

	return &models.BalanceResponse{
		Current:   current,
		Withdrawn: withdrawn,
	}, nil
}

// VerifyTopUp проверяет подпись шлюза и зачисляет пополнение.
// Зачисление на баланс и запись операции выполняются в одной транзакции:
// при любой ошибке не сохраняется ничего.
func (s *WalletServiceImpl) VerifyTopUp(ctx context.Context, userID uuid.UUID, req *models.VerifyTopUpRequest) (*models.BalanceResponse, error) {
	amount := decimal.NewFromFloat(req.Amount)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	if err := s.verifier.Verify(req.GatewayOrderID, req.GatewayPaymentID, req.GatewaySignature); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := s.userStorage.CreditTx(ctx, tx, userID, amount); err != nil {
		return nil, err
	}

	txn := &models.WalletTransaction{
		UserID:      userID,
		Amount:      amount,
		Type:        models.TransactionCredit,
		Status:      models.TransactionSuccess,
		ReferenceID: req.GatewayPaymentID,
	}
	if err := s.walletStorage.CreateWithTx(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return s.GetBalance(ctx, userID)
}

// Withdraw выполняет вывод средств.
func (s *WalletServiceImpl) Withdraw(ctx context.Context, userID uuid.UUID, target string, sum float64) error {
	target = strings.TrimSpace(target)
	if target == "" {
		return ErrInvalidWithdrawTarget
	}
	amount := decimal.NewFromFloat(sum)
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// списание с баланса
	if err := s.userStorage.WithdrawTx(ctx, tx, userID, amount); err != nil {
		return err
	}

	// запись операции
	txn := &models.WalletTransaction{
		UserID:      userID,
		Amount:      amount,
		Type:        models.TransactionDebit,
		Status:      models.TransactionSuccess,
		ReferenceID: target,
	}
	if err := s.walletStorage.CreateWithTx(ctx, tx, txn); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetTransactions возвращает историю операций пользователя.
func (s *WalletServiceImpl) GetTransactions(ctx context.Context, userID uuid.UUID) ([]*models.WalletTransaction, error) {
	list, err := s.walletStorage.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return list, nil
}
