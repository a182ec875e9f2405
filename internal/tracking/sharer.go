package tracking

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/OSejal/Packloop/internal/geo"
)

// Session — активная трансляция позиции одного заказа.
type Session struct {
	orderID string
	cancel  context.CancelFunc
	done    chan struct{}

	mu  sync.Mutex
	err error
}

// Done закрывается по завершении сессии: после Stop, отмены контекста
// или ошибки источника позиционирования.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Err возвращает ошибку источника, завершившую сессию, либо nil.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Session) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Sharer транслирует позицию устройства в заказ: каждое уведомление
// источника порождает одну запись позиции. Одновременно активна не
// более одной сессии: новый Share сначала завершает предыдущую трансляцию
// и только затем открывает свою.
type Sharer struct {
	client       Client
	writeTimeout time.Duration
	logger       *log.Logger

	mu     sync.Mutex
	active *Session
}

// NewSharer создаёт sharer поверх клиента трекинга.
func NewSharer(client Client, logger *log.Logger) *Sharer {
	if logger == nil {
		logger = log.Default()
	}
	return &Sharer{
		client:       client,
		writeTimeout: 5 * time.Second,
		logger:       logger,
	}
}

// Share открывает трансляцию позиции заказа orderID из источника source.
// Действующая сессия, если есть, завершается до открытия новой.
func (s *Sharer) Share(ctx context.Context, orderID string, source Source) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		s.active.cancel()
		<-s.active.done
		s.active = nil
	}

	ctx, cancel := context.WithCancel(ctx)
	session := &Session{
		orderID: orderID,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	s.active = session

	go s.run(ctx, session, source)
	return session
}

// Stop завершает активную сессию, если она есть, и дожидается её остановки.
func (s *Sharer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return
	}
	s.active.cancel()
	<-s.active.done
	s.active = nil
}

// Циклом управляет источник: run ждёт очередное уведомление и на каждое
// отправляет позицию, не дожидаясь ответа. Ошибка источника завершает
// сессию; ошибка записи — нет, следующее уведомление уйдёт как обычно.
func (s *Sharer) run(ctx context.Context, session *Session, source Source) {
	// done закрывается до release: Share и Stop ждут done, держа s.mu
	defer s.release(session)
	defer close(session.done)

	for {
		point, err := source.Next(ctx)
		if err != nil {
			if ctx.Err() == nil {
				s.logger.Printf("positioning source for order %s failed: %v", session.orderID, err)
				session.fail(err)
			}
			return
		}
		go s.write(session.orderID, point)
	}
}

func (s *Sharer) write(orderID string, point geo.Point) {
	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()

	if _, err := s.client.UpdateLocation(ctx, orderID, point.Lat, point.Lon); err != nil {
		s.logger.Printf("location write for order %s failed: %v", orderID, err)
	}
}

// release снимает сессию с sharer, если она всё ещё числится активной.
func (s *Sharer) release(session *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == session {
		s.active = nil
	}
}
