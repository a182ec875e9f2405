package storage

import (
	"context"

	"github.com/OSejal/Packloop/internal/models"
	"github.com/google/uuid"
)

// MockOrderStorage - мок-реализация OrderStorage для тестов.
type MockOrderStorage struct {
	CreateFunc         func(ctx context.Context, order *models.Order) error
	GetByIDFunc        func(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListFunc           func(ctx context.Context, filter OrderFilter) ([]*models.Order, error)
	UpdateStatusFunc   func(ctx context.Context, id uuid.UUID, status models.OrderStatus, note string) error
	AssignPartnerFunc  func(ctx context.Context, id uuid.UUID, partnerID uuid.UUID) error
	GetLocationFunc    func(ctx context.Context, id uuid.UUID) (*models.Location, error)
	UpdateLocationFunc func(ctx context.Context, id uuid.UUID, lat, lon float64, monotonic bool) (*models.Location, error)
	GetHistoryFunc     func(ctx context.Context, id uuid.UUID) ([]models.StatusChange, error)
	StatsFunc          func(ctx context.Context, filter OrderFilter) (*models.OrderStats, error)
}

func (m *MockOrderStorage) Create(ctx context.Context, order *models.Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, order)
	}
	return nil
}

func (m *MockOrderStorage) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, ErrOrderNotFound
}

func (m *MockOrderStorage) List(ctx context.Context, filter OrderFilter) ([]*models.Order, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return []*models.Order{}, nil
}

func (m *MockOrderStorage) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus, note string) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status, note)
	}
	return nil
}

func (m *MockOrderStorage) AssignPartner(ctx context.Context, id uuid.UUID, partnerID uuid.UUID) error {
	if m.AssignPartnerFunc != nil {
		return m.AssignPartnerFunc(ctx, id, partnerID)
	}
	return nil
}

func (m *MockOrderStorage) GetLocation(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	if m.GetLocationFunc != nil {
		return m.GetLocationFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockOrderStorage) UpdateLocation(ctx context.Context, id uuid.UUID, lat, lon float64, monotonic bool) (*models.Location, error) {
	if m.UpdateLocationFunc != nil {
		return m.UpdateLocationFunc(ctx, id, lat, lon, monotonic)
	}
	return nil, nil
}

func (m *MockOrderStorage) GetHistory(ctx context.Context, id uuid.UUID) ([]models.StatusChange, error) {
	if m.GetHistoryFunc != nil {
		return m.GetHistoryFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockOrderStorage) Stats(ctx context.Context, filter OrderFilter) (*models.OrderStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx, filter)
	}
	return &models.OrderStats{ByStatus: map[string]int64{}}, nil
}
