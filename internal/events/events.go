package events

import (
	"context"
	"errors"
	"time"
)

// Event describes a change to an order that live clients and downstream
// consumers care about.
type Event struct {
	Type          string    `json:"type"`
	OrderID       int64     `json:"orderId"`
	UserID        *int64    `json:"userId,omitempty"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	Total         int64     `json:"total"`
	PickupTime    string    `json:"pickupTime"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards events.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
