package storage

import (
	"context"

	"github.com/OSejal/Packloop/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// MockUserStorage - мок-реализация UserStorage для тестов.
type MockUserStorage struct {
	CreateFunc     func(ctx context.Context, user *models.User) error
	GetByLoginFunc func(ctx context.Context, login string) (*models.User, error)
	GetByIDFunc    func(ctx context.Context, id uuid.UUID) (*models.User, error)
	CreditTxFunc   func(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount decimal.Decimal) error
	WithdrawTxFunc func(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount decimal.Decimal) error
}

func (m *MockUserStorage) Create(ctx context.Context, user *models.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil
}

func (m *MockUserStorage) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	if m.GetByLoginFunc != nil {
		return m.GetByLoginFunc(ctx, login)
	}
	return nil, ErrUserNotFound
}

func (m *MockUserStorage) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, ErrUserNotFound
}

func (m *MockUserStorage) CreditTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount decimal.Decimal) error {
	if m.CreditTxFunc != nil {
		return m.CreditTxFunc(ctx, tx, id, amount)
	}
	return nil
}

func (m *MockUserStorage) WithdrawTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount decimal.Decimal) error {
	if m.WithdrawTxFunc != nil {
		return m.WithdrawTxFunc(ctx, tx, id, amount)
	}
	return nil
}
