package storage

import (
	"context"

	"github.com/OSejal/Packloop/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// MockWalletStorage - мок-реализация WalletStorage для тестов.
type MockWalletStorage struct {
	CreateWithTxFunc func(ctx context.Context, tx pgx.Tx, txn *models.WalletTransaction) error
	GetByUserIDFunc  func(ctx context.Context, userID uuid.UUID) ([]*models.WalletTransaction, error)
}

func (m *MockWalletStorage) CreateWithTx(ctx context.Context, tx pgx.Tx, txn *models.WalletTransaction) error {
	if m.CreateWithTxFunc != nil {
		return m.CreateWithTxFunc(ctx, tx, txn)
	}
	return nil
}

func (m *MockWalletStorage) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.WalletTransaction, error) {
	if m.GetByUserIDFunc != nil {
		return m.GetByUserIDFunc(ctx, userID)
	}
	return []*models.WalletTransaction{}, nil
}
