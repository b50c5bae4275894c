// Пакет events содержит unit-тесты публикации событий каталога
package events

import (
	"encoding/json"
	"errors"
	"testing"

	"ShopCatalog/internal/model"
)

// mockConn реализует интерфейс Conn и перехватывает вызовы Publish
type mockConn struct {
	publishedSubject string // тема, переданная в Publish
	publishedData    []byte // данные, переданные в Publish
	returnErr        error  // ошибка, которую вернет Publish
}

func (m *mockConn) Publish(subject string, data []byte) error {
	m.publishedSubject = subject
	m.publishedData = data
	return m.returnErr
}

// TestPublish_Success проверяет тему и тело опубликованного события
func TestPublish_Success(t *testing.T) {
	mock := &mockConn{}
	pub := NewPublisher(mock, "catalog")
	ev := model.NewChangeEvent(model.EntityShopGood, model.ActionCreated, 5, model.ShopGood{ID: 5, UnitPrice: 50})

	if err := pub.Publish(ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.publishedSubject != "catalog.shop_good.created" {
		t.Errorf("unexpected subject %s", mock.publishedSubject)
	}
	var got model.ChangeEvent
	if err := json.Unmarshal(mock.publishedData, &got); err != nil {
		t.Fatalf("published data is not JSON: %v", err)
	}
	if got.ID != ev.ID || got.EntityID != 5 {
		t.Errorf("unexpected event %+v", got)
	}
}

// TestPublish_Error проверяет прокидку ошибки из Conn.Publish
func TestPublish_Error(t *testing.T) {
	expErr := errors.New("publish failed")
	pub := NewPublisher(&mockConn{returnErr: expErr}, "catalog")
	err := pub.Publish(model.NewChangeEvent(model.EntityGood, model.ActionDeleted, 1, nil))
	if !errors.Is(err, expErr) {
		t.Errorf("expected error %v, got %v", expErr, err)
	}
}

// TestSubject_EmptyPrefix без префикса тема состоит из сущности и действия
func TestSubject_EmptyPrefix(t *testing.T) {
	pub := NewPublisher(&mockConn{}, "")
	ev := model.ChangeEvent{Entity: "good", Action: "updated"}
	if s := pub.Subject(ev); s != "good.updated" {
		t.Errorf("unexpected subject %s", s)
	}
	if s := SubscribeSubject(""); s != ">" {
		t.Errorf("unexpected subscribe subject %s", s)
	}
	if s := SubscribeSubject("catalog"); s != "catalog.>" {
		t.Errorf("unexpected subscribe subject %s", s)
	}
}

func TestDecode(t *testing.T) {
	mock := &mockConn{}
	ev := model.NewChangeEvent(model.EntityShop, model.ActionUpdated, 3, model.Shop{ID: 3, Name: "A"})
	if err := NewPublisher(mock, "catalog").Publish(ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := Decode(mock.publishedData)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if got.ID != ev.ID || got.Entity != model.EntityShop || string(got.Payload) != string(ev.Payload) {
		t.Errorf("unexpected decoded event %+v", got)
	}

	if _, err := Decode([]byte("not json")); err == nil {
		t.Error("expected error for malformed message")
	}
	if _, err := Decode([]byte(`{"action":"created"}`)); err == nil {
		t.Error("expected error for event without id")
	}
}
