package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/OSejal/Packloop/internal/models"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
)

// Client интерфейс доступа к трекингу заказов по HTTP.
type Client interface {
	GetLocation(ctx context.Context, orderID string) (*models.LocationResponse, error)
	UpdateLocation(ctx context.Context, orderID string, latitude, longitude float64) (*models.LocationResponse, error)
}

type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient создаёт HTTP-клиент трекинга с bearer-токеном.
func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// envelope — конверт ответа сервера: {"success": ..., "data": {...}}.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		Location *models.LocationResponse `json:"location"`
	} `json:"data"`
}

// GetLocation читает текущую позицию заказа.
// Возвращает (nil, nil), если позиция ещё не сообщалась: это штатный ответ.
func (c *HTTPClient) GetLocation(ctx context.Context, orderID string) (*models.LocationResponse, error) {
	req, err := c.newRequest(ctx, http.MethodGet, orderID, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

// UpdateLocation перезаписывает текущую позицию заказа.
func (c *HTTPClient) UpdateLocation(ctx context.Context, orderID string, latitude, longitude float64) (*models.LocationResponse, error) {
	body, err := json.Marshal(models.UpdateLocationRequest{
		Latitude:  &latitude,
		Longitude: &longitude,
	})
	if err != nil {
		return nil, fmt.Errorf("encode location: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPatch, orderID, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *HTTPClient) newRequest(ctx context.Context, method, orderID string, body *bytes.Reader) (*http.Request, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid tracking base url: %w", err)
	}
	u.Path = fmt.Sprintf("%s/api/orders/%s/location", u.Path, orderID)

	var req *http.Request
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, u.String(), body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, u.String(), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	return req, nil
}

func (c *HTTPClient) do(req *http.Request) (*models.LocationResponse, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var payload envelope
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("decode tracking response: %w", err)
		}
		return payload.Data.Location, nil
	case http.StatusNotFound:
		return nil, ErrOrderNotFound
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case http.StatusForbidden:
		return nil, ErrForbidden
	default:
		return nil, fmt.Errorf("unexpected tracking status: %d", resp.StatusCode)
	}
}
