package tracking

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/OSejal/Packloop/internal/geo"
)

// DefaultShareInterval — период уведомлений маршрутного источника по умолчанию.
const DefaultShareInterval = 5 * time.Second

// ErrSourceClosed возвращается, когда канал уведомлений источника закрыт.
var ErrSourceClosed = errors.New("positioning source closed")

// Source выдаёт уведомления о позиции устройства-репортёра. Next блокируется
// до следующего уведомления; темп задаёт источник, не потребитель.
// Ошибка источника завершает сессию трансляции.
type Source interface {
	Next(ctx context.Context) (geo.Point, error)
}

// ChannelSource адаптирует канал уведомлений устройства к Source.
type ChannelSource struct {
	ch <-chan geo.Point
}

// NewChannelSource оборачивает канал позиций. Закрытие канала завершает
// источник с ErrSourceClosed.
func NewChannelSource(ch <-chan geo.Point) *ChannelSource {
	return &ChannelSource{ch: ch}
}

func (s *ChannelSource) Next(ctx context.Context) (geo.Point, error) {
	select {
	case <-ctx.Done():
		return geo.Point{}, ctx.Err()
	case point, ok := <-s.ch:
		if !ok {
			return geo.Point{}, ErrSourceClosed
		}
		return point, nil
	}
}

// RouteSource имитирует GPS: двигается от точки забора к точке доставки
// равными шагами и после прибытия продолжает выдавать конечную точку.
// Первое уведомление приходит сразу, последующие — раз в interval.
type RouteSource struct {
	from     geo.Point
	to       geo.Point
	steps    int
	interval time.Duration

	mu      sync.Mutex
	step    int
	started bool
}

// NewRouteSource создаёт маршрутный источник из steps шагов с периодом interval.
func NewRouteSource(from, to geo.Point, steps int, interval time.Duration) *RouteSource {
	if steps <= 0 {
		steps = 10
	}
	if interval <= 0 {
		interval = DefaultShareInterval
	}
	return &RouteSource{from: from, to: to, steps: steps, interval: interval}
}

func (s *RouteSource) Next(ctx context.Context) (geo.Point, error) {
	s.mu.Lock()
	first := !s.started
	s.started = true
	s.mu.Unlock()

	if first {
		if err := ctx.Err(); err != nil {
			return geo.Point{}, err
		}
	} else {
		timer := time.NewTimer(s.interval)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return geo.Point{}, ctx.Err()
		case <-timer.C:
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	progress := float64(s.step) / float64(s.steps)
	if s.step < s.steps {
		s.step++
	}
	return geo.Interpolate(s.from, s.to, progress), nil
}

// Arrived сообщает, достиг ли источник конечной точки.
func (s *RouteSource) Arrived() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step >= s.steps
}
