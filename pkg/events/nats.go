// Пакет events публикует события изменения каталога в NATS
package events

import (
	"encoding/json"
	"fmt"

	"ShopCatalog/internal/model"
)

// Conn минимальный интерфейс NATS-подключения, его реализует *nats.Conn
type Conn interface {
	Publish(subject string, data []byte) error
}

// Publisher отправляет ChangeEvent в тему <prefix>.<entity>.<action>
type Publisher struct {
	conn   Conn
	prefix string
}

// NewPublisher создаёт Publisher, связывая Conn и префикс темы
func NewPublisher(conn Conn, prefix string) *Publisher {
	return &Publisher{conn: conn, prefix: prefix}
}

// Subject возвращает тему события
func (p *Publisher) Subject(e model.ChangeEvent) string {
	if p.prefix == "" {
		return e.Entity + "." + e.Action
	}
	return p.prefix + "." + e.Entity + "." + e.Action
}

// Publish сериализует событие в JSON и отправляет его в NATS
func (p *Publisher) Publish(e model.ChangeEvent) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", e.ID, err)
	}
	if err := p.conn.Publish(p.Subject(e), data); err != nil {
		return fmt.Errorf("publish event %s: %w", e.ID, err)
	}
	return nil
}

// SubscribeSubject тема подписки на все события каталога
func SubscribeSubject(prefix string) string {
	if prefix == "" {
		return ">"
	}
	return prefix + ".>"
}

// Decode разбирает сообщение NATS в ChangeEvent
func Decode(data []byte) (model.ChangeEvent, error) {
	var e model.ChangeEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return model.ChangeEvent{}, fmt.Errorf("decode event: %w", err)
	}
	if e.ID == "" || e.Entity == "" {
		return model.ChangeEvent{}, fmt.Errorf("decode event: missing id or entity")
	}
	return e, nil
}
