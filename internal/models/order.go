package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus описывает статус выполнения заказа.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// ValidStatus проверяет, что значение принадлежит множеству из пяти статусов.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// allowedTransitions задаёт граф допустимых переходов для строгого режима.
// Исходная система разрешала любой переход, поэтому граф включается конфигурацией.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCancelled},
	// терминальные статусы: дальше переходов нет
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

// CanTransition сообщает, допустим ли переход from -> to в строгом режиме.
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal сообщает, является ли статус терминальным.
func Terminal(s OrderStatus) bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// Location — последняя известная позиция заказа. Перезаписывается целиком
// при каждом обновлении, история точек не хранится.
type Location struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// StatusChange — запись в истории статусов заказа.
type StatusChange struct {
	Status    OrderStatus `db:"status" json:"status"`
	Note      string      `db:"note" json:"note,omitempty"`
	Timestamp time.Time   `db:"created_at" json:"timestamp"`
}

// Order представляет заказ маркетплейса.
type Order struct {
	ID              uuid.UUID       `db:"id"`
	MCPID           uuid.UUID       `db:"mcp_id"`
	PickupPartnerID *uuid.UUID      `db:"pickup_partner_id"`
	CustomerID      uuid.UUID       `db:"customer_id"`
	Status          OrderStatus     `db:"status"`
	Amount          decimal.Decimal `db:"amount"`
	Commission      decimal.Decimal `db:"commission"`
	TotalAmount     decimal.Decimal `db:"total_amount"`
	PickupLat       float64         `db:"pickup_lat"`
	PickupLon       float64         `db:"pickup_lon"`
	CurrentLocation *Location
	ScheduledTime   time.Time  `db:"scheduled_time"`
	CompletedTime   *time.Time `db:"completed_time"`
	CustomerNotes   string     `db:"customer_notes"`
	PartnerNotes    string     `db:"partner_notes"`
	StatusHistory   []StatusChange
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}

// Operator сообщает, управляет ли пользователь заказом (MCP или назначенный партнёр).
func (o *Order) Operator(userID uuid.UUID) bool {
	if o.MCPID == userID {
		return true
	}
	return o.PickupPartnerID != nil && *o.PickupPartnerID == userID
}

// Participant сообщает, имеет ли пользователь доступ на чтение заказа.
func (o *Order) Participant(userID uuid.UUID) bool {
	return o.Operator(userID) || o.CustomerID == userID
}

// CreateOrderRequest — запрос на создание заказа.
type CreateOrderRequest struct {
	CustomerID    uuid.UUID `json:"customerId"`
	Amount        float64   `json:"amount"`
	Commission    float64   `json:"commission"`
	PickupLat     float64   `json:"pickupLat"`
	PickupLon     float64   `json:"pickupLon"`
	ScheduledTime time.Time `json:"scheduledTime"`
	CustomerNotes string    `json:"customerNotes,omitempty"`
}

// UpdateStatusRequest — запрос на смену статуса заказа.
type UpdateStatusRequest struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

// UpdateLocationRequest — запрос на обновление текущей позиции заказа.
// Указатели отличают отсутствующее поле от нулевой координаты.
type UpdateLocationRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// AssignPartnerRequest — запрос на назначение партнёра по доставке.
type AssignPartnerRequest struct {
	PartnerID uuid.UUID `json:"partnerId"`
}

// OrderResponse — DTO заказа для HTTP-ответов.
type OrderResponse struct {
	ID              string            `json:"id"`
	Status          string            `json:"status"`
	Amount          float64           `json:"amount"`
	TotalAmount     float64           `json:"totalAmount"`
	PickupLat       float64           `json:"pickupLat"`
	PickupLon       float64           `json:"pickupLon"`
	CurrentLocation *LocationResponse `json:"currentLocation,omitempty"`
	ScheduledTime   string            `json:"scheduledTime"`
	CompletedTime   *string           `json:"completedTime,omitempty"`
	StatusHistory   []StatusChange    `json:"statusHistory,omitempty"`
	CreatedAt       string            `json:"createdAt"`
}

// LocationResponse — DTO позиции для HTTP-ответов.
type LocationResponse struct {
	Latitude           float64  `json:"latitude"`
	Longitude          float64  `json:"longitude"`
	UpdatedAt          string   `json:"updatedAt"`
	DistanceToPickupKm *float64 `json:"distanceToPickupKm,omitempty"`
}

// OrderStats — агрегаты для GET /api/orders/stats/overview.
type OrderStats struct {
	Total       int64            `json:"total"`
	ByStatus    map[string]int64 `json:"byStatus"`
	TotalAmount float64          `json:"totalAmount"`
}

// ToResponse преобразует заказ в DTO.
func (o *Order) ToResponse() *OrderResponse {
	amount, _ := o.Amount.Float64()
	total, _ := o.TotalAmount.Float64()

	resp := &OrderResponse{
		ID:            o.ID.String(),
		Status:        string(o.Status),
		Amount:        amount,
		TotalAmount:   total,
		PickupLat:     o.PickupLat,
		PickupLon:     o.PickupLon,
		ScheduledTime: o.ScheduledTime.Format(time.RFC3339),
		StatusHistory: o.StatusHistory,
		CreatedAt:     o.CreatedAt.Format(time.RFC3339),
	}

	if o.CompletedTime != nil {
		ct := o.CompletedTime.Format(time.RFC3339)
		resp.CompletedTime = &ct
	}
	if o.CurrentLocation != nil {
		resp.CurrentLocation = &LocationResponse{
			Latitude:  o.CurrentLocation.Latitude,
			Longitude: o.CurrentLocation.Longitude,
			UpdatedAt: o.CurrentLocation.UpdatedAt.Format(time.RFC3339),
		}
	}

	return resp
}
