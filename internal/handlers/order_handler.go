package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/OSejal/Packloop/internal/auth"
	"github.com/OSejal/Packloop/internal/models"
	"github.com/OSejal/Packloop/internal/services"
	"github.com/OSejal/Packloop/internal/storage"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// OrderHandler обрабатывает запросы, связанные с заказами.
type OrderHandler struct {
	orderService services.OrderService
}

func NewOrderHandler(orderService services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// Create обрабатывает POST /api/orders.
func (h *OrderHandler) Create(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return err
	}

	var req models.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	order, err := h.orderService.CreateOrder(c.Request().Context(), userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidOrder) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		c.Logger().Errorf("failed to create order: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return respond(c, http.StatusCreated, map[string]interface{}{
		"order": order.ToResponse(),
	})
}

// List обрабатывает GET /api/orders.
func (h *OrderHandler) List(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	role, err := auth.GetUserRoleFromContext(c)
	if err != nil {
		return err
	}

	status := c.QueryParam("status")
	limit := queryInt(c, "limit", 0)
	offset := queryInt(c, "offset", 0)

	orders, err := h.orderService.ListOrders(c.Request().Context(), userID, role, status, limit, offset)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			return echo.NewHTTPError(http.StatusBadRequest, "unknown status filter")
		case errors.Is(err, services.ErrForbidden):
			return echo.NewHTTPError(http.StatusForbidden, "role not allowed")
		default:
			c.Logger().Errorf("failed to list orders: %v", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
	}

	response := make([]*models.OrderResponse, 0, len(orders))
	for _, order := range orders {
		response = append(response, order.ToResponse())
	}
	return respond(c, http.StatusOK, map[string]interface{}{
		"orders": response,
	})
}

// Stats обрабатывает GET /api/orders/stats/overview.
func (h *OrderHandler) Stats(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	role, err := auth.GetUserRoleFromContext(c)
	if err != nil {
		return err
	}

	stats, err := h.orderService.Stats(c.Request().Context(), userID, role)
	if err != nil {
		if errors.Is(err, services.ErrForbidden) {
			return echo.NewHTTPError(http.StatusForbidden, "role not allowed")
		}
		c.Logger().Errorf("failed to get order stats: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return respond(c, http.StatusOK, map[string]interface{}{
		"stats": stats,
	})
}

// Get обрабатывает GET /api/orders/:id.
func (h *OrderHandler) Get(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	orderID, err := orderIDParam(c)
	if err != nil {
		return err
	}

	order, err := h.orderService.GetOrder(c.Request().Context(), userID, orderID)
	if err != nil {
		return mapOrderError(c, err)
	}

	return respond(c, http.StatusOK, map[string]interface{}{
		"order": order.ToResponse(),
	})
}

// UpdateStatus обрабатывает PATCH /api/orders/:id/status.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	orderID, err := orderIDParam(c)
	if err != nil {
		return err
	}

	var req models.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	order, err := h.orderService.UpdateStatus(c.Request().Context(), userID, orderID, req.Status, req.Note)
	if err != nil {
		return mapOrderError(c, err)
	}

	return respond(c, http.StatusOK, map[string]interface{}{
		"order": order.ToResponse(),
	})
}

// Assign обрабатывает POST /api/orders/:id/assign.
func (h *OrderHandler) Assign(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	orderID, err := orderIDParam(c)
	if err != nil {
		return err
	}

	var req models.AssignPartnerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	order, err := h.orderService.AssignPartner(c.Request().Context(), userID, orderID, req.PartnerID)
	if err != nil {
		return mapOrderError(c, err)
	}

	return respond(c, http.StatusOK, map[string]interface{}{
		"order": order.ToResponse(),
	})
}

// GetLocation обрабатывает GET /api/orders/:id/location.
// Отсутствие позиции — успешный ответ с data.location = null.
func (h *OrderHandler) GetLocation(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	orderID, err := orderIDParam(c)
	if err != nil {
		return err
	}

	location, err := h.orderService.GetLocation(c.Request().Context(), userID, orderID)
	if err != nil {
		return mapOrderError(c, err)
	}

	return respond(c, http.StatusOK, map[string]interface{}{
		"location": location,
	})
}

// UpdateLocation обрабатывает PATCH /api/orders/:id/location.
func (h *OrderHandler) UpdateLocation(c echo.Context) error {
	userID, err := auth.GetUserIDFromContext(c)
	if err != nil {
		return err
	}
	orderID, err := orderIDParam(c)
	if err != nil {
		return err
	}

	var req models.UpdateLocationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request format")
	}

	location, err := h.orderService.UpdateLocation(c.Request().Context(), userID, orderID, &req)
	if err != nil {
		return mapOrderError(c, err)
	}

	return respond(c, http.StatusOK, map[string]interface{}{
		"location": &models.LocationResponse{
			Latitude:  location.Latitude,
			Longitude: location.Longitude,
			UpdatedAt: location.UpdatedAt.Format(time.RFC3339),
		},
	})
}

// mapOrderError переводит ошибки сервиса заказов в HTTP-статусы.
func mapOrderError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, storage.ErrOrderNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	case errors.Is(err, services.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "not an operator of the order")
	case errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidCoordinates),
		errors.Is(err, services.ErrInvalidOrder):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrTransitionNotAllowed),
		errors.Is(err, services.ErrOrderTerminal),
		errors.Is(err, storage.ErrStaleLocation):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		c.Logger().Errorf("order operation failed: %v", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

// orderIDParam разбирает параметр пути :id.
func orderIDParam(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}
	return id, nil
}

// queryInt разбирает необязательный числовой query-параметр.
func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
