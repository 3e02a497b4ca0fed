package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cafe-pickup/api/internal/database"
	"github.com/cafe-pickup/api/internal/enum"
	"github.com/cafe-pickup/api/internal/events"
)

// Errors returned by the order service.
var (
	ErrEmptyItems        = errors.New("items are required")
	ErrInvalidQuantity   = errors.New("quantity must be >= 1")
	ErrItemNotAvailable  = errors.New("not available")
	ErrInvalidPickupTime = errors.New("pickupTime must be HH:MM")
	ErrTotalMismatch     = errors.New("total does not match menu prices")
	ErrInvalidStatus     = errors.New("status is required")
	ErrOrderNotFound     = errors.New("order not found")
	ErrCannotAdvance     = errors.New("order cannot be advanced")
	ErrCannotCancel      = errors.New("order cannot be cancelled")
	ErrUnknownUser       = errors.New("user not found")
)

// nextStatus is the kitchen dashboard's single-step progression.
var nextStatus = map[string]string{
	enum.OrderStatusPending:   enum.OrderStatusPreparing,
	enum.OrderStatusPreparing: enum.OrderStatusReady,
	enum.OrderStatusReady:     enum.OrderStatusCompleted,
}

// NextStatus returns the status the dashboard moves an order to from current.
func NextStatus(current string) (string, bool) {
	next, ok := nextStatus[current]
	return next, ok
}

// CreateOrderRequest is the validated input for creating an order.
type CreateOrderRequest struct {
	UserID              *int64
	Items               []database.OrderItem
	Total               int64 // optional client-computed total; 0 skips the check
	PickupTime          string
	SpecialInstructions string
}

// OrderService handles order business logic.
type OrderService struct {
	store  database.Store
	events events.Publisher
}

// NewOrderService creates a new OrderService.
func NewOrderService(store database.Store, pub events.Publisher) *OrderService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &OrderService{store: store, events: pub}
}

// CreateOrder validates every line against the menu and stores the order
// with status and payment status pending. Nothing is stored if any line
// fails.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (database.Order, error) {
	if len(req.Items) == 0 {
		return database.Order{}, ErrEmptyItems
	}
	if !validPickupTime(req.PickupTime) {
		return database.Order{}, ErrInvalidPickupTime
	}
	for i, item := range req.Items {
		if item.Quantity < 1 {
			return database.Order{}, fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity)
		}
	}

	var order database.Order
	err := s.store.InTx(ctx, func(q database.Querier) error {
		if req.UserID != nil {
			if _, err := q.GetUser(ctx, *req.UserID); err != nil {
				if errors.Is(err, database.ErrNotFound) {
					return fmt.Errorf("%w: %d", ErrUnknownUser, *req.UserID)
				}
				return fmt.Errorf("get order user: %w", err)
			}
		}

		var total int64
		for _, item := range req.Items {
			menuItem, err := q.GetMenuItem(ctx, item.MenuItemID)
			if err != nil && !errors.Is(err, database.ErrNotFound) {
				return fmt.Errorf("get menu item %d: %w", item.MenuItemID, err)
			}
			if err != nil || !menuItem.Available {
				return fmt.Errorf("menu item %d %w", item.MenuItemID, ErrItemNotAvailable)
			}
			total += menuItem.Price * int64(item.Quantity)
		}

		if req.Total != 0 && req.Total != total {
			return fmt.Errorf("%w: got %d, want %d", ErrTotalMismatch, req.Total, total)
		}

		var instructions *string
		if req.SpecialInstructions != "" {
			instructions = &req.SpecialInstructions
		}

		created, err := q.CreateOrder(ctx, database.CreateOrderParams{
			UserID:              req.UserID,
			Status:              enum.OrderStatusPending,
			Items:               req.Items,
			Total:               total,
			PickupTime:          req.PickupTime,
			SpecialInstructions: instructions,
			PaymentStatus:       enum.PaymentStatusPending,
		})
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		order = created
		return nil
	})
	if err != nil {
		return database.Order{}, err
	}

	s.publish(ctx, enum.EventOrderCreated, order)
	return order, nil
}

// ListOrders returns orders newest first, optionally filtered by status.
// The filter matches the stored string exactly.
func (s *OrderService) ListOrders(ctx context.Context, status string) ([]database.Order, error) {
	return s.store.ListOrders(ctx, database.ListOrdersParams{Status: status})
}

// GetOrder returns a single order.
func (s *OrderService) GetOrder(ctx context.Context, id int64) (database.Order, error) {
	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return database.Order{}, ErrOrderNotFound
		}
		return database.Order{}, fmt.Errorf("get order: %w", err)
	}
	return order, nil
}

// UpdateStatus overwrites the order status with any non-empty string,
// regardless of the current one.
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status string) (database.Order, error) {
	if strings.TrimSpace(status) == "" {
		return database.Order{}, ErrInvalidStatus
	}
	return s.changeStatus(ctx, id, func(current database.Order) (string, error) {
		return status, nil
	})
}

// AdvanceStatus moves the order one step along the dashboard progression.
func (s *OrderService) AdvanceStatus(ctx context.Context, id int64) (database.Order, error) {
	return s.changeStatus(ctx, id, func(current database.Order) (string, error) {
		next, ok := NextStatus(current.Status)
		if !ok {
			return "", fmt.Errorf("%w from %s", ErrCannotAdvance, current.Status)
		}
		return next, nil
	})
}

// CancelOrder moves any order that is not completed or cancelled to cancelled.
func (s *OrderService) CancelOrder(ctx context.Context, id int64) (database.Order, error) {
	return s.changeStatus(ctx, id, func(current database.Order) (string, error) {
		switch current.Status {
		case enum.OrderStatusCompleted, enum.OrderStatusCancelled:
			return "", fmt.Errorf("%w: order is %s", ErrCannotCancel, current.Status)
		}
		return enum.OrderStatusCancelled, nil
	})
}

// changeStatus locks the order, asks decide for the new status, writes it
// and records a notification for the order's owner.
func (s *OrderService) changeStatus(ctx context.Context, id int64, decide func(database.Order) (string, error)) (database.Order, error) {
	var updated database.Order
	err := s.store.InTx(ctx, func(q database.Querier) error {
		current, err := q.GetOrderForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("get order for status update: %w", err)
		}

		status, err := decide(current)
		if err != nil {
			return err
		}

		updated, err = q.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{ID: id, Status: status})
		if err != nil {
			return fmt.Errorf("update order status: %w", err)
		}

		return notifyOwner(ctx, q, updated, enum.NotificationStatusChanged,
			fmt.Sprintf("Order #%d is now %s", updated.ID, updated.Status))
	})
	if err != nil {
		return database.Order{}, err
	}

	s.publish(ctx, enum.EventOrderStatusChanged, updated)
	return updated, nil
}

func (s *OrderService) publish(ctx context.Context, eventType string, o database.Order) {
	publish(ctx, s.events, eventType, o)
}

// publish delivers an order event. Failures are logged, never returned:
// the order change is already committed.
func publish(ctx context.Context, pub events.Publisher, eventType string, o database.Order) {
	err := pub.Publish(ctx, events.Event{
		Type:          eventType,
		OrderID:       o.ID,
		UserID:        o.UserID,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		Total:         o.Total,
		PickupTime:    o.PickupTime,
		OccurredAt:    time.Now(),
	})
	if err != nil {
		log.Printf("ERROR: publish %s for order %d: %v", eventType, o.ID, err)
	}
}

// notifyOwner stores a notification for orders placed by a known user.
func notifyOwner(ctx context.Context, q database.Querier, o database.Order, kind, message string) error {
	if o.UserID == nil {
		return nil
	}
	_, err := q.CreateNotification(ctx, database.CreateNotificationParams{
		UserID:  *o.UserID,
		OrderID: o.ID,
		Type:    kind,
		Message: message,
	})
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// validPickupTime accepts zero-padded 24h HH:MM only.
func validPickupTime(s string) bool {
	if len(s) != 5 {
		return false
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}
