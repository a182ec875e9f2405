package tracking

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/OSejal/Packloop/internal/models"
)

// DefaultPollInterval — период опроса позиции при отображении доставки.
const DefaultPollInterval = 5 * time.Second

// Poller периодически читает позицию заказа и отдаёт её в callback.
// Первый запрос выполняется сразу при старте, далее по тикеру. Ошибки
// чтения считаются временными: логируются и не прерывают опрос.
type Poller struct {
	client   Client
	orderID  string
	interval time.Duration
	onUpdate func(*models.LocationResponse)
	logger   *log.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped bool
}

// NewPoller создаёт poller для заказа. onUpdate вызывается на каждое успешное
// чтение, в том числе с nil, пока позиция ещё не сообщалась. Callback
// выполняется под внутренней блокировкой и не должен вызывать Stop.
func NewPoller(client Client, orderID string, interval time.Duration, onUpdate func(*models.LocationResponse), logger *log.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Poller{
		client:   client,
		orderID:  orderID,
		interval: interval,
		onUpdate: onUpdate,
		logger:   logger,
	}
}

// Start запускает опрос в отдельной горутине. Останавливается по Stop или ctx.Done().
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.stopped || p.cancel != nil {
		p.mu.Unlock()
		return
	}
	ctx, p.cancel = context.WithCancel(ctx)
	p.mu.Unlock()

	ticker := time.NewTicker(p.interval)
	go func() {
		defer ticker.Stop()
		p.poll(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.poll(ctx)
			}
		}
	}()
}

// Stop прекращает опрос. Запланированных чтений после Stop не будет;
// результат уже отправленного запроса отбрасывается.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
	if p.cancel != nil {
		p.cancel()
	}
}

func (p *Poller) poll(ctx context.Context) {
	location, err := p.client.GetLocation(ctx, p.orderID)
	if err != nil {
		p.logger.Printf("tracking poll for order %s failed: %v", p.orderID, err)
		return
	}

	// проверка stopped и вызов callback под одной блокировкой: после
	// возврата Stop ни один результат уже не доставляется
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	if p.onUpdate != nil {
		p.onUpdate(location)
	}
}
