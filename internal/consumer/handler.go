// Пакет consumer накапливает события изменения каталога из NATS и пакетно пишет их в ClickHouse
package consumer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"ShopCatalog/internal/model"
	"ShopCatalog/pkg/events"
)

// Repo описывает интерфейс репозитория ClickHouse для пакетной записи событий
type Repo interface {
	BatchInsertEvents(ctx context.Context, events []model.ChangeEvent) error
}

// maxBatches сколько пакетов держится в буфере, пока ClickHouse недоступен
const maxBatches = 100

// Consumer буферизует события и отправляет их пакетно в ClickHouse.
// batchSize определяет макс. количество событий до отправки, mu защищает буфер,
// inflight считает сообщения, которые ещё обрабатываются
type Consumer struct {
	repo      Repo
	batchSize int
	log       logrus.FieldLogger
	events    []model.ChangeEvent
	mu        sync.Mutex
	inflight  sync.WaitGroup
}

// NewConsumer создаёт Consumer с указанным репозиторием и размером пакета
func NewConsumer(repo Repo, batchSize int, log logrus.FieldLogger) *Consumer {
	if batchSize <= 0 {
		batchSize = 1
	}
	return &Consumer{repo: repo, batchSize: batchSize, log: log, events: make([]model.ChangeEvent, 0, batchSize)}
}

// HandleMessage разбирает сообщение NATS, добавляет событие в буфер
// и при достижении batchSize отправляет пакет в ClickHouse
func (c *Consumer) HandleMessage(ctx context.Context, data []byte) error {
	c.inflight.Add(1)
	defer c.inflight.Done()
	e, err := events.Decode(data)
	if err != nil {
		return err
	}
	c.log.WithFields(logrus.Fields{"event": e.ID, "entity": e.Entity, "action": e.Action}).Debug("catalog event received")

	c.mu.Lock()
	c.events = append(c.events, e)
	if len(c.events) < c.batchSize {
		c.mu.Unlock()
		return nil
	}
	batch := c.take()
	c.mu.Unlock()
	return c.write(ctx, batch)
}

// Flush отправляет все накопленные события, если они есть
func (c *Consumer) Flush(ctx context.Context) error {
	c.mu.Lock()
	batch := c.take()
	c.mu.Unlock()
	if len(batch) == 0 {
		return nil
	}
	return c.write(ctx, batch)
}

// Shutdown дожидается сообщений, которые уже обрабатываются, и сбрасывает буфер.
// Вызывается после остановки доставки, например после Drain подключения NATS
func (c *Consumer) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		c.log.WithError(ctx.Err()).Warn("in-flight messages not finished before shutdown")
	}
	return c.Flush(ctx)
}

// Run периодически сбрасывает буфер, пока не отменён ctx
func (c *Consumer) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.Flush(ctx); err != nil {
				c.log.WithError(err).Warn("periodic flush failed")
			}
		}
	}
}

// Pending количество событий в буфере
func (c *Consumer) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

// take забирает содержимое буфера; вызывается под mu
func (c *Consumer) take() []model.ChangeEvent {
	if len(c.events) == 0 {
		return nil
	}
	batch := make([]model.ChangeEvent, len(c.events))
	copy(batch, c.events)
	c.events = c.events[:0]
	return batch
}

// write пишет пакет; при ошибке события возвращаются в начало буфера.
// Сверх maxBatches пакетов самые старые события отбрасываются
func (c *Consumer) write(ctx context.Context, batch []model.ChangeEvent) error {
	err := c.repo.BatchInsertEvents(ctx, batch)
	if err == nil {
		return nil
	}
	c.mu.Lock()
	c.events = append(batch, c.events...)
	if limit := c.batchSize * maxBatches; len(c.events) > limit {
		dropped := len(c.events) - limit
		c.events = append(c.events[:0:0], c.events[dropped:]...)
		c.log.WithField("dropped", dropped).Error("event buffer overflow, oldest events dropped")
	}
	c.mu.Unlock()
	return err
}
