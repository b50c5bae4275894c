package model

import (
	"crypto/rand"
	"encoding/json"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Действия над сущностями, публикуемые в событиях
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ChangeEvent событие изменения строки каталога, уходит в NATS и дальше в ClickHouse
type ChangeEvent struct {
	ID         string          `json:"id"`
	Entity     string          `json:"entity"`
	Action     string          `json:"action"`
	EntityID   int64           `json:"entityId"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewChangeEvent собирает событие с ULID-идентификатором; payload сериализуется в JSON.
// Если payload не сериализуется, событие уходит без него
func NewChangeEvent(entity, action string, entityID int64, payload interface{}) ChangeEvent {
	now := time.Now().UTC()
	entropyMu.Lock()
	id := ulid.MustNew(ulid.Timestamp(now), entropy).String()
	entropyMu.Unlock()

	ev := ChangeEvent{ID: id, Entity: entity, Action: action, EntityID: entityID, OccurredAt: now}
	if payload != nil {
		if data, err := json.Marshal(payload); err == nil {
			ev.Payload = data
		}
	}
	return ev
}
