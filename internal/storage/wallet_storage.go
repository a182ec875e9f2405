package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/OSejal/Packloop/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrDuplicateReference возвращается при повторном проведении платежа шлюза.
	ErrDuplicateReference = errors.New("transaction already exists for reference")
)

// WalletStorage определяет интерфейс для работы с операциями кошелька.
type WalletStorage interface {
	CreateWithTx(ctx context.Context, tx pgx.Tx, txn *models.WalletTransaction) error
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.WalletTransaction, error)
}

// PostgresWalletStorage реализует WalletStorage для PostgreSQL.
type PostgresWalletStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresWalletStorage создаёт новый экземпляр.
func NewPostgresWalletStorage(pool *pgxpool.Pool) *PostgresWalletStorage {
	return &PostgresWalletStorage{pool: pool}
}

// CreateWithTx создаёт запись операции в рамках переданной транзакции.
func (s *PostgresWalletStorage) CreateWithTx(ctx context.Context, tx pgx.Tx, txn *models.WalletTransaction) error {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}

	query := `
		INSERT INTO wallet_transactions (id, user_id, amount, type, status, reference_id, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING processed_at
	`

	err := tx.QueryRow(ctx, query,
		txn.ID, txn.UserID, txn.Amount, txn.Type, txn.Status, txn.ReferenceID,
	).Scan(&txn.ProcessedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return ErrDuplicateReference
		}
		return fmt.Errorf("failed to create wallet transaction: %w", err)
	}

	return nil
}

// GetByUserID возвращает операции пользователя, отсортированные по времени (новые первыми).
func (s *PostgresWalletStorage) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*models.WalletTransaction, error) {
	query := `
		SELECT id, user_id, amount, type, status, reference_id, processed_at
		FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY processed_at DESC
	`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallet transactions: %w", err)
	}
	defer rows.Close()

	var txns []*models.WalletTransaction
	for rows.Next() {
		var txn models.WalletTransaction
		if err := rows.Scan(&txn.ID, &txn.UserID, &txn.Amount, &txn.Type, &txn.Status, &txn.ReferenceID, &txn.ProcessedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wallet transaction: %w", err)
		}
		txns = append(txns, &txn)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return txns, nil
}
