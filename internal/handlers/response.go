package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// successResponse — конверт успешного ответа: {"success": true, "data": {...}}.
type successResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// errorResponse — конверт ошибки: {"success": false, "message": "..."}.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// respond отправляет данные в стандартном конверте.
func respond(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, successResponse{Success: true, Data: data})
}

// HTTPErrorHandler приводит все ошибки к конверту {"success": false, "message": ...}.
// Устанавливается на echo.Echo вместо обработчика по умолчанию.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "internal server error"

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		status = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(status)
		}
	}

	if c.Request().Method == http.MethodHead {
		if err := c.NoContent(status); err != nil {
			c.Logger().Errorf("failed to send error response: %v", err)
		}
		return
	}

	if err := c.JSON(status, errorResponse{Success: false, Message: message}); err != nil {
		c.Logger().Errorf("failed to send error response: %v", err)
	}
}
