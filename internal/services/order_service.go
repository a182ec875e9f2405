package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/OSejal/Packloop/internal/geo"
	"github.com/OSejal/Packloop/internal/models"
	"github.com/OSejal/Packloop/internal/storage"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrForbidden            = errors.New("caller is not an operator of the order")
	ErrInvalidStatus        = errors.New("invalid order status")
	ErrTransitionNotAllowed = errors.New("status transition not allowed")
	ErrOrderTerminal        = errors.New("order is in a terminal status")
	ErrInvalidCoordinates   = errors.New("latitude and longitude are required")
	ErrInvalidOrder         = errors.New("invalid order fields")
)

// OrderPolicy — конфигурируемые политики жизненного цикла заказа.
// Все выключены по умолчанию: историческое поведение разрешает любой
// переход статуса и параллельные записи позиции (last write wins).
type OrderPolicy struct {
	StrictStatusFlow  bool
	TerminalCancelled bool
	MonotonicLocation bool
}

// OrderService определяет интерфейс работы с заказами.
type OrderService interface {
	CreateOrder(ctx context.Context, mcpID uuid.UUID, req *models.CreateOrderRequest) (*models.Order, error)
	ListOrders(ctx context.Context, userID uuid.UUID, role models.Role, status string, limit, offset int) ([]*models.Order, error)
	GetOrder(ctx context.Context, userID uuid.UUID, orderID uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, userID uuid.UUID, orderID uuid.UUID, status, note string) (*models.Order, error)
	AssignPartner(ctx context.Context, mcpID uuid.UUID, orderID uuid.UUID, partnerID uuid.UUID) (*models.Order, error)
	GetLocation(ctx context.Context, userID uuid.UUID, orderID uuid.UUID) (*models.LocationResponse, error)
	UpdateLocation(ctx context.Context, userID uuid.UUID, orderID uuid.UUID, req *models.UpdateLocationRequest) (*models.Location, error)
	Stats(ctx context.Context, userID uuid.UUID, role models.Role) (*models.OrderStats, error)
}

// OrderServiceImpl реализует OrderService.
type OrderServiceImpl struct {
	orderStorage storage.OrderStorage
	policy       OrderPolicy
}

// NewOrderService создаёт новый сервис заказов.
func NewOrderService(orderStorage storage.OrderStorage, policy OrderPolicy) *OrderServiceImpl {
	return &OrderServiceImpl{orderStorage: orderStorage, policy: policy}
}

// CreateOrder создаёт заказ со статусом PENDING и первой записью истории.
func (s *OrderServiceImpl) CreateOrder(ctx context.Context, mcpID uuid.UUID, req *models.CreateOrderRequest) (*models.Order, error) {
	if req.CustomerID == uuid.Nil {
		return nil, fmt.Errorf("%w: customer id is required", ErrInvalidOrder)
	}
	if req.Amount < 0 || req.Commission < 0 {
		return nil, fmt.Errorf("%w: amount must be non-negative", ErrInvalidOrder)
	}
	if req.ScheduledTime.IsZero() {
		return nil, fmt.Errorf("%w: scheduled time is required", ErrInvalidOrder)
	}

	amount := decimal.NewFromFloat(req.Amount)
	commission := decimal.NewFromFloat(req.Commission)

	order := &models.Order{
		MCPID:         mcpID,
		CustomerID:    req.CustomerID,
		Status:        models.OrderStatusPending,
		Amount:        amount,
		Commission:    commission,
		TotalAmount:   amount.Add(commission),
		PickupLat:     req.PickupLat,
		PickupLon:     req.PickupLon,
		ScheduledTime: req.ScheduledTime,
		CustomerNotes: req.CustomerNotes,
	}

	if err := s.orderStorage.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	return order, nil
}

// ListOrders возвращает заказы в области видимости роли вызывающего.
func (s *OrderServiceImpl) ListOrders(ctx context.Context, userID uuid.UUID, role models.Role, status string, limit, offset int) ([]*models.Order, error) {
	filter, err := scopeFilter(userID, role)
	if err != nil {
		return nil, err
	}

	if status != "" {
		st := models.OrderStatus(status)
		if !models.ValidStatus(st) {
			return nil, ErrInvalidStatus
		}
		filter.Status = &st
	}
	filter.Limit = limit
	filter.Offset = offset

	orders, err := s.orderStorage.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// GetOrder возвращает заказ, если вызывающий — его участник.
func (s *OrderServiceImpl) GetOrder(ctx context.Context, userID uuid.UUID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.orderStorage.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Participant(userID) {
		return nil, ErrForbidden
	}
	return order, nil
}

// UpdateStatus переводит заказ в целевой статус и добавляет запись истории.
// Статус и история пишутся атомарно; completed_time фиксируется при DELIVERED.
func (s *OrderServiceImpl) UpdateStatus(ctx context.Context, userID uuid.UUID, orderID uuid.UUID, status, note string) (*models.Order, error) {
	target := models.OrderStatus(status)
	if !models.ValidStatus(target) {
		return nil, ErrInvalidStatus
	}

	order, err := s.orderStorage.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Operator(userID) {
		return nil, ErrForbidden
	}

	if s.policy.TerminalCancelled && order.Status == models.OrderStatusCancelled {
		return nil, ErrOrderTerminal
	}
	if s.policy.StrictStatusFlow && !models.CanTransition(order.Status, target) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, order.Status, target)
	}

	if err := s.orderStorage.UpdateStatus(ctx, orderID, target, note); err != nil {
		return nil, err
	}

	return s.orderStorage.GetByID(ctx, orderID)
}

// AssignPartner назначает партнёра по доставке; заказ переходит в PROCESSING.
func (s *OrderServiceImpl) AssignPartner(ctx context.Context, mcpID uuid.UUID, orderID uuid.UUID, partnerID uuid.UUID) (*models.Order, error) {
	if partnerID == uuid.Nil {
		return nil, fmt.Errorf("%w: partner id is required", ErrInvalidOrder)
	}

	order, err := s.orderStorage.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.MCPID != mcpID {
		return nil, ErrForbidden
	}

	if err := s.orderStorage.AssignPartner(ctx, orderID, partnerID); err != nil {
		return nil, err
	}

	return s.orderStorage.GetByID(ctx, orderID)
}

// GetLocation возвращает текущую позицию заказа или nil, если она ещё не сообщалась.
// Отсутствие позиции — штатный результат, не ошибка.
func (s *OrderServiceImpl) GetLocation(ctx context.Context, userID uuid.UUID, orderID uuid.UUID) (*models.LocationResponse, error) {
	order, err := s.orderStorage.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Participant(userID) {
		return nil, ErrForbidden
	}

	loc, err := s.orderStorage.GetLocation(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, nil
	}

	resp := &models.LocationResponse{
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		UpdatedAt: loc.UpdatedAt.Format(time.RFC3339),
	}
	distance := geo.HaversineKm(loc.Latitude, loc.Longitude, order.PickupLat, order.PickupLon)
	resp.DistanceToPickupKm = &distance

	return resp, nil
}

// UpdateLocation перезаписывает текущую позицию заказа (last write wins).
// Диапазон координат не проверяется: хранилище принимает значения как есть.
func (s *OrderServiceImpl) UpdateLocation(ctx context.Context, userID uuid.UUID, orderID uuid.UUID, req *models.UpdateLocationRequest) (*models.Location, error) {
	if req.Latitude == nil || req.Longitude == nil {
		return nil, ErrInvalidCoordinates
	}
	if math.IsNaN(*req.Latitude) || math.IsInf(*req.Latitude, 0) ||
		math.IsNaN(*req.Longitude) || math.IsInf(*req.Longitude, 0) {
		return nil, ErrInvalidCoordinates
	}

	order, err := s.orderStorage.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Operator(userID) {
		return nil, ErrForbidden
	}
	if s.policy.TerminalCancelled && order.Status == models.OrderStatusCancelled {
		return nil, ErrOrderTerminal
	}

	return s.orderStorage.UpdateLocation(ctx, orderID, *req.Latitude, *req.Longitude, s.policy.MonotonicLocation)
}

// Stats возвращает агрегаты по заказам в области видимости роли.
func (s *OrderServiceImpl) Stats(ctx context.Context, userID uuid.UUID, role models.Role) (*models.OrderStats, error) {
	filter, err := scopeFilter(userID, role)
	if err != nil {
		return nil, err
	}
	return s.orderStorage.Stats(ctx, filter)
}

// scopeFilter ограничивает выборку заказами, видимыми данной роли.
func scopeFilter(userID uuid.UUID, role models.Role) (storage.OrderFilter, error) {
	var filter storage.OrderFilter
	switch role {
	case models.RoleMCP:
		filter.MCPID = &userID
	case models.RolePickupPartner:
		filter.PartnerID = &userID
	case models.RoleCustomer:
		filter.CustomerID = &userID
	default:
		return filter, fmt.Errorf("%w: unknown role %q", ErrForbidden, role)
	}
	return filter, nil
}
