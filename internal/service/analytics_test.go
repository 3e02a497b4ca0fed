package service

import (
	"context"
	"testing"

	"github.com/cafe-pickup/api/internal/database"
)

func TestPopularItems_SumsAcrossOrders(t *testing.T) {
	m := newTestStore(t)
	orders := NewOrderService(m, nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := orders.CreateOrder(ctx, CreateOrderRequest{
			Items:      []database.OrderItem{{MenuItemID: 1, Quantity: 2}},
			PickupTime: "12:00",
		}); err != nil {
			t.Fatalf("create order: %v", err)
		}
	}
	orders.CreateOrder(ctx, CreateOrderRequest{
		Items:      []database.OrderItem{{MenuItemID: 2, Quantity: 1}},
		PickupTime: "09:00",
	})
	// Line referencing a menu item that does not exist is skipped.
	m.CreateOrder(ctx, database.CreateOrderParams{
		Items:      []database.OrderItem{{MenuItemID: 77, Quantity: 5}},
		PickupTime: "10:00",
		Status:     "pending",
	})

	items, err := NewAnalyticsService(m).PopularItems(ctx)
	if err != nil {
		t.Fatalf("popular items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2: %+v", len(items), items)
	}

	top := items[0]
	if top.ID != 1 || top.Quantity != 4 || top.TotalAmount != 1000 {
		t.Errorf("top item: got %+v, want id 1 quantity 4 total 1000", top)
	}
	if top.RevenueShare != "90.91" {
		t.Errorf("revenue share: got %s, want 90.91", top.RevenueShare)
	}
	if items[1].ID != 2 || items[1].RevenueShare != "9.09" {
		t.Errorf("second item: got %+v", items[1])
	}
}

func TestPopularItems_Empty(t *testing.T) {
	items, err := NewAnalyticsService(newTestStore(t)).PopularItems(context.Background())
	if err != nil {
		t.Fatalf("popular items: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("got %d items, want 0", len(items))
	}
}

func TestOrdersByTimeSlot(t *testing.T) {
	m := newTestStore(t)
	orders := NewOrderService(m, nil)
	ctx := context.Background()

	for _, slot := range []string{"12:00", "09:30", "12:00", "18:45"} {
		if _, err := orders.CreateOrder(ctx, CreateOrderRequest{
			Items:      []database.OrderItem{{MenuItemID: 1, Quantity: 1}},
			PickupTime: slot,
		}); err != nil {
			t.Fatalf("create order: %v", err)
		}
	}

	slots, err := NewAnalyticsService(m).OrdersByTimeSlot(ctx)
	if err != nil {
		t.Fatalf("time slots: %v", err)
	}

	want := []TimeSlot{{"09:30", 1}, {"12:00", 2}, {"18:45", 1}}
	if len(slots) != len(want) {
		t.Fatalf("got %d slots, want %d: %+v", len(slots), len(want), slots)
	}
	for i := range want {
		if slots[i] != want[i] {
			t.Errorf("slots[%d]: got %+v, want %+v", i, slots[i], want[i])
		}
	}
}
