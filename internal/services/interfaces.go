package services

import (
	"context"

	"github.com/OSejal/Packloop/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// UserStorage определяет интерфейс для работы с пользователями.
type UserStorage interface {
	Create(ctx context.Context, user *models.User) error
	GetByLogin(ctx context.Context, login string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	CreditTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount decimal.Decimal) error
	WithdrawTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount decimal.Decimal) error
}

// WalletStorage определяет интерфейс для работы с операциями кошелька.
type WalletStorage interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, txn *models.WalletTransaction) error
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.WalletTransaction, error)
}

// GatewayVerifier проверяет подписи платёжного шлюза.
type GatewayVerifier interface {
	Verify(orderID, paymentID, signature string) error
}
