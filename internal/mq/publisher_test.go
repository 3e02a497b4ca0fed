package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/cafe-pickup/api/internal/enum"
	"github.com/cafe-pickup/api/internal/events"
	amqp "github.com/rabbitmq/amqp091-go"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type mockChannel struct {
	declareErr error
	publishErr error
	declared   []string
	published  []published
	closed     bool
}

func (m *mockChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	m.declared = append(m.declared, name+":"+kind)
	return m.declareErr
}

func (m *mockChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	m.published = append(m.published, published{exchange: exchange, key: key, msg: msg})
	return m.publishErr
}

func (m *mockChannel) Close() error {
	m.closed = true
	return nil
}

func TestRoutingKey(t *testing.T) {
	tests := []struct {
		eventType string
		want      string
	}{
		{enum.EventOrderCreated, "order.created"},
		{enum.EventOrderStatusChanged, "order.status_changed"},
		{enum.EventOrderPaid, "order.paid"},
		{"refunded", "order.refunded"},
	}
	for _, tt := range tests {
		if got := RoutingKey(events.Event{Type: tt.eventType}); got != tt.want {
			t.Errorf("RoutingKey(%q): got %q, want %q", tt.eventType, got, tt.want)
		}
	}
}

func TestNewPublisher_DeclaresTopicExchange(t *testing.T) {
	ch := &mockChannel{}
	if _, err := NewPublisher(ch); err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	if len(ch.declared) != 1 || ch.declared[0] != "cafe_orders:topic" {
		t.Errorf("declared: got %v", ch.declared)
	}
}

func TestNewPublisher_DeclareError(t *testing.T) {
	ch := &mockChannel{declareErr: errors.New("access refused")}
	if _, err := NewPublisher(ch); err == nil {
		t.Fatal("expected error")
	}
	if !ch.closed {
		t.Error("expected channel to be closed after declare failure")
	}
}

func TestPublish(t *testing.T) {
	ch := &mockChannel{}
	p, _ := NewPublisher(ch)

	userID := int64(5)
	err := p.Publish(context.Background(), events.Event{
		Type: enum.EventOrderPaid, OrderID: 12, UserID: &userID, PaymentStatus: enum.PaymentStatusPaid,
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(ch.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(ch.published))
	}
	got := ch.published[0]
	if got.exchange != Exchange || got.key != "order.paid" {
		t.Errorf("exchange/key: got %s/%s", got.exchange, got.key)
	}
	if got.msg.DeliveryMode != amqp.Persistent || got.msg.ContentType != "application/json" {
		t.Errorf("publishing: got mode %d type %q", got.msg.DeliveryMode, got.msg.ContentType)
	}

	var e events.Event
	if err := json.Unmarshal(got.msg.Body, &e); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if e.OrderID != 12 || e.UserID == nil || *e.UserID != 5 {
		t.Errorf("body: got %+v", e)
	}
}

func TestPublish_Error(t *testing.T) {
	ch := &mockChannel{publishErr: amqp.ErrClosed}
	p, _ := NewPublisher(ch)

	err := p.Publish(context.Background(), events.Event{Type: enum.EventOrderCreated})
	if !errors.Is(err, amqp.ErrClosed) {
		t.Fatalf("got %v, want amqp.ErrClosed", err)
	}
}
