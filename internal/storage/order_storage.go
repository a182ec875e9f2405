package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/OSejal/Packloop/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrStaleLocation возвращается в монотонном режиме, если запись
	// не сдвинула бы location_updated_at вперёд.
	ErrStaleLocation = errors.New("stale location update rejected")
)

// OrderFilter задаёт область видимости и фильтры списка заказов.
type OrderFilter struct {
	MCPID      *uuid.UUID
	PartnerID  *uuid.UUID
	CustomerID *uuid.UUID
	Status     *models.OrderStatus
	Limit      int
	Offset     int
}

// OrderStorage определяет интерфейс для работы с заказами.
type OrderStorage interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus, note string) error
	AssignPartner(ctx context.Context, id uuid.UUID, partnerID uuid.UUID) error
	GetLocation(ctx context.Context, id uuid.UUID) (*models.Location, error)
	UpdateLocation(ctx context.Context, id uuid.UUID, lat, lon float64, monotonic bool) (*models.Location, error)
	GetHistory(ctx context.Context, id uuid.UUID) ([]models.StatusChange, error)
	Stats(ctx context.Context, filter OrderFilter) (*models.OrderStats, error)
}

// PostgresOrderStorage реализует OrderStorage для PostgreSQL.
type PostgresOrderStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresOrderStorage создаёт новый экземпляр PostgresOrderStorage.
func NewPostgresOrderStorage(pool *pgxpool.Pool) *PostgresOrderStorage {
	return &PostgresOrderStorage{pool: pool}
}

const orderColumns = `
	id, mcp_id, pickup_partner_id, customer_id, status,
	amount, commission, total_amount,
	pickup_lat, pickup_lon,
	current_lat, current_lon, location_updated_at,
	scheduled_time, completed_time, customer_notes, partner_notes,
	created_at, updated_at
`

// Create создаёт заказ вместе с первой записью истории статусов.
// Обе записи выполняются в одной транзакции: заказ без истории недопустим.
func (s *PostgresOrderStorage) Create(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO orders (
			id, mcp_id, pickup_partner_id, customer_id, status,
			amount, commission, total_amount,
			pickup_lat, pickup_lon,
			scheduled_time, customer_notes, partner_notes,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err = tx.QueryRow(ctx, query,
		order.ID,
		order.MCPID,
		order.PickupPartnerID,
		order.CustomerID,
		order.Status,
		order.Amount,
		order.Commission,
		order.TotalAmount,
		order.PickupLat,
		order.PickupLon,
		order.ScheduledTime,
		order.CustomerNotes,
		order.PartnerNotes,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	var first models.StatusChange
	first.Status = order.Status
	first.Note = "order created"
	err = tx.QueryRow(ctx, `
		INSERT INTO order_status_history (order_id, status, note, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING created_at
	`, order.ID, first.Status, first.Note).Scan(&first.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to create initial history entry: %w", err)
	}
	order.StatusHistory = []models.StatusChange{first}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit order creation: %w", err)
	}

	return nil
}

// GetByID возвращает заказ вместе с историей статусов.
func (s *PostgresOrderStorage) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, err
	}

	history, err := s.GetHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	order.StatusHistory = history

	return order, nil
}

// List возвращает заказы по фильтру (сортировка по created_at DESC).
func (s *PostgresOrderStorage) List(ctx context.Context, filter OrderFilter) ([]*models.Order, error) {
	where, args := buildOrderFilter(filter)

	query := `SELECT ` + orderColumns + ` FROM orders` + where + ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return orders, nil
}

// UpdateStatus переводит заказ в новый статус и добавляет запись истории.
// Обновление статуса и запись истории атомарны: читатель не может увидеть
// одно без другого. При переходе в DELIVERED фиксируется completed_time.
func (s *PostgresOrderStorage) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus, note string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `
		UPDATE orders
		SET status = $1,
		    completed_time = CASE WHEN $1 = 'DELIVERED' THEN NOW() ELSE completed_time END,
		    updated_at = NOW()
		WHERE id = $2
	`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO order_status_history (order_id, status, note, created_at)
		VALUES ($1, $2, $3, NOW())
	`, id, status, note)
	if err != nil {
		return fmt.Errorf("failed to append status history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit status update: %w", err)
	}

	return nil
}

// AssignPartner назначает партнёра и переводит заказ в PROCESSING с пометкой в истории.
func (s *PostgresOrderStorage) AssignPartner(ctx context.Context, id uuid.UUID, partnerID uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `
		UPDATE orders
		SET pickup_partner_id = $1, status = $2, updated_at = NOW()
		WHERE id = $3
	`, partnerID, models.OrderStatusProcessing, id)
	if err != nil {
		return fmt.Errorf("failed to assign partner: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	note := fmt.Sprintf("assigned to partner %s", partnerID)
	_, err = tx.Exec(ctx, `
		INSERT INTO order_status_history (order_id, status, note, created_at)
		VALUES ($1, $2, $3, NOW())
	`, id, models.OrderStatusProcessing, note)
	if err != nil {
		return fmt.Errorf("failed to append status history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit partner assignment: %w", err)
	}

	return nil
}

// GetLocation возвращает текущую позицию заказа.
// Отсутствие позиции — штатный результат (nil, nil), а не ошибка.
func (s *PostgresOrderStorage) GetLocation(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	var (
		lat, lon  sql.NullFloat64
		updatedAt sql.NullTime
	)

	err := s.pool.QueryRow(ctx, `
		SELECT current_lat, current_lon, location_updated_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&lat, &lon, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order location: %w", err)
	}

	if !lat.Valid || !lon.Valid {
		return nil, nil
	}

	return &models.Location{
		Latitude:  lat.Float64,
		Longitude: lon.Float64,
		UpdatedAt: updatedAt.Time,
	}, nil
}

// UpdateLocation перезаписывает текущую позицию заказа серверным временем.
// Перезапись целиком, история точек не ведётся; при выключенном monotonic
// действует last-write-wins по порядку записи в хранилище.
func (s *PostgresOrderStorage) UpdateLocation(ctx context.Context, id uuid.UUID, lat, lon float64, monotonic bool) (*models.Location, error) {
	query := `
		UPDATE orders
		SET current_lat = $1, current_lon = $2, location_updated_at = NOW(), updated_at = NOW()
		WHERE id = $3
	`
	if monotonic {
		query += ` AND (location_updated_at IS NULL OR location_updated_at < NOW())`
	}
	query += ` RETURNING current_lat, current_lon, location_updated_at`

	loc := &models.Location{}
	err := s.pool.QueryRow(ctx, query, lat, lon, id).Scan(&loc.Latitude, &loc.Longitude, &loc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Либо заказа нет, либо монотонный режим отклонил запись
			exists, exErr := s.orderExists(ctx, id)
			if exErr != nil {
				return nil, exErr
			}
			if !exists {
				return nil, ErrOrderNotFound
			}
			return nil, ErrStaleLocation
		}
		return nil, fmt.Errorf("failed to update order location: %w", err)
	}

	return loc, nil
}

// GetHistory возвращает историю статусов заказа в порядке добавления.
func (s *PostgresOrderStorage) GetHistory(ctx context.Context, id uuid.UUID) ([]models.StatusChange, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT status, note, created_at
		FROM order_status_history
		WHERE order_id = $1
		ORDER BY id ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query status history: %w", err)
	}
	defer rows.Close()

	var history []models.StatusChange
	for rows.Next() {
		var change models.StatusChange
		if err := rows.Scan(&change.Status, &change.Note, &change.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan status change: %w", err)
		}
		history = append(history, change)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return history, nil
}

// Stats возвращает количество заказов по статусам и общую сумму.
func (s *PostgresOrderStorage) Stats(ctx context.Context, filter OrderFilter) (*models.OrderStats, error) {
	where, args := buildOrderFilter(filter)

	rows, err := s.pool.Query(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM orders`+where+`
		GROUP BY status
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query order stats: %w", err)
	}
	defer rows.Close()

	stats := &models.OrderStats{ByStatus: map[string]int64{}}
	var totalAmount float64
	for rows.Next() {
		var (
			status string
			count  int64
			sum    float64
		)
		if err := rows.Scan(&status, &count, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		stats.ByStatus[status] = count
		stats.Total += count
		totalAmount += sum
	}
	stats.TotalAmount = totalAmount

	if rows.Err() != nil {
		return nil, fmt.Errorf("rows error: %w", rows.Err())
	}

	return stats, nil
}

func (s *PostgresOrderStorage) orderExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check order existence: %w", err)
	}
	return exists, nil
}

// buildOrderFilter собирает WHERE-часть запроса по фильтру.
func buildOrderFilter(filter OrderFilter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)

	add := func(cond string, val interface{}) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.MCPID != nil {
		add("mcp_id = $%d", *filter.MCPID)
	}
	if filter.PartnerID != nil {
		add("pickup_partner_id = $%d", *filter.PartnerID)
	}
	if filter.CustomerID != nil {
		add("customer_id = $%d", *filter.CustomerID)
	}
	if filter.Status != nil {
		add("status = $%d", *filter.Status)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// scanOrder помогает читать заказ из строки результата.
func scanOrder(row pgx.Row) (*models.Order, error) {
	var (
		order      models.Order
		currentLat sql.NullFloat64
		currentLon sql.NullFloat64
		locUpdated sql.NullTime
		completed  sql.NullTime
	)

	err := row.Scan(
		&order.ID,
		&order.MCPID,
		&order.PickupPartnerID,
		&order.CustomerID,
		&order.Status,
		&order.Amount,
		&order.Commission,
		&order.TotalAmount,
		&order.PickupLat,
		&order.PickupLon,
		&currentLat,
		&currentLon,
		&locUpdated,
		&order.ScheduledTime,
		&completed,
		&order.CustomerNotes,
		&order.PartnerNotes,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}

	if completed.Valid {
		t := completed.Time
		order.CompletedTime = &t
	}
	if currentLat.Valid && currentLon.Valid {
		order.CurrentLocation = &models.Location{
			Latitude:  currentLat.Float64,
			Longitude: currentLon.Float64,
			UpdatedAt: locUpdated.Time,
		}
	}

	return &order, nil
}
