package database

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestMemory_CreateUserRejectsDuplicatePhone(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, err := m.CreateUser(ctx, CreateUserParams{Name: "Anna", Phone: "+7900", Role: "customer"}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := m.CreateUser(ctx, CreateUserParams{Name: "Other", Phone: "+7900", Role: "customer"})
	if !errors.Is(err, ErrPhoneTaken) {
		t.Fatalf("second create: got %v, want ErrPhoneTaken", err)
	}
}

func TestMemory_GetMissingReturnsNotFound(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, err := m.GetUser(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUser: got %v, want ErrNotFound", err)
	}
	if _, err := m.GetMenuItem(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetMenuItem: got %v, want ErrNotFound", err)
	}
	if _, err := m.GetOrder(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetOrder: got %v, want ErrNotFound", err)
	}
	if _, err := m.UpdateOrderStatus(ctx, UpdateOrderStatusParams{ID: 42, Status: "ready"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateOrderStatus: got %v, want ErrNotFound", err)
	}
	if _, err := m.MarkNotificationRead(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkNotificationRead: got %v, want ErrNotFound", err)
	}
}

func TestMemory_ListOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	m.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}

	for _, slot := range []string{"09:00", "10:00", "11:00"} {
		if _, err := m.CreateOrder(ctx, CreateOrderParams{Status: "pending", PickupTime: slot, PaymentStatus: "pending"}); err != nil {
			t.Fatalf("create order: %v", err)
		}
	}

	orders, err := m.ListOrders(ctx, ListOrdersParams{})
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("got %d orders, want 3", len(orders))
	}
	for i, want := range []int64{3, 2, 1} {
		if orders[i].ID != want {
			t.Errorf("orders[%d].ID: got %d, want %d", i, orders[i].ID, want)
		}
	}
}

func TestMemory_ListOrdersStatusFilter(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	o1, _ := m.CreateOrder(ctx, CreateOrderParams{Status: "pending", PaymentStatus: "pending"})
	m.CreateOrder(ctx, CreateOrderParams{Status: "pending", PaymentStatus: "pending"})
	if _, err := m.UpdateOrderStatus(ctx, UpdateOrderStatusParams{ID: o1.ID, Status: "ready"}); err != nil {
		t.Fatalf("update status: %v", err)
	}

	ready, _ := m.ListOrders(ctx, ListOrdersParams{Status: "ready"})
	if len(ready) != 1 || ready[0].ID != o1.ID {
		t.Fatalf("ready orders: got %+v", ready)
	}
}

func TestMemory_OrderItemsAreCopied(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	items := []OrderItem{{MenuItemID: 1, Quantity: 2}}
	o, _ := m.CreateOrder(ctx, CreateOrderParams{Items: items, Status: "pending", PaymentStatus: "pending"})
	items[0].Quantity = 99
	o.Items[0].Quantity = 77

	stored, _ := m.GetOrder(ctx, o.ID)
	if stored.Items[0].Quantity != 2 {
		t.Errorf("stored quantity: got %d, want 2", stored.Items[0].Quantity)
	}
}

func TestMemory_InTxSeesOwnWrites(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	o, _ := m.CreateOrder(ctx, CreateOrderParams{Status: "pending", PaymentStatus: "pending"})

	err := m.InTx(ctx, func(q Querier) error {
		if _, err := q.UpdateOrderPaymentStatus(ctx, UpdateOrderPaymentStatusParams{ID: o.ID, PaymentStatus: "paid"}); err != nil {
			return err
		}
		got, err := q.GetOrderForUpdate(ctx, o.ID)
		if err != nil {
			return err
		}
		if got.PaymentStatus != "paid" {
			t.Errorf("payment status in tx: got %q, want paid", got.PaymentStatus)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("InTx: %v", err)
	}
}

func TestMemory_ConcurrentCreateOrderUniqueIDs(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	const n = 50
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			o, _ := m.CreateOrder(ctx, CreateOrderParams{Status: "pending", PaymentStatus: "pending"})
			ids <- o.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate order id %d", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Fatalf("got %d unique ids, want %d", len(seen), n)
	}
}

func TestMemory_Notifications(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	m.CreateNotification(ctx, CreateNotificationParams{UserID: 1, OrderID: 1, Type: "status_changed", Message: "a"})
	n2, _ := m.CreateNotification(ctx, CreateNotificationParams{UserID: 1, OrderID: 1, Type: "status_changed", Message: "b"})
	m.CreateNotification(ctx, CreateNotificationParams{UserID: 2, OrderID: 2, Type: "status_changed", Message: "c"})

	list, _ := m.ListNotificationsByUser(ctx, 1)
	if len(list) != 2 {
		t.Fatalf("got %d notifications, want 2", len(list))
	}
	if list[0].ID != n2.ID {
		t.Errorf("expected newest first, got id %d", list[0].ID)
	}
	if list[0].Status != "unread" {
		t.Errorf("status: got %q, want unread", list[0].Status)
	}

	read, err := m.MarkNotificationRead(ctx, n2.ID)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if read.Status != "read" {
		t.Errorf("status after mark: got %q, want read", read.Status)
	}
}

func TestSeed_OnlyWhenEmpty(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	n, err := Seed(ctx, m)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if n != len(SeedMenu) {
		t.Fatalf("seeded %d items, want %d", n, len(SeedMenu))
	}

	n, err = Seed(ctx, m)
	if err != nil {
		t.Fatalf("second seed: %v", err)
	}
	if n != 0 {
		t.Errorf("second seed created %d items, want 0", n)
	}

	items, _ := m.ListMenuItems(ctx)
	if len(items) != len(SeedMenu) {
		t.Errorf("menu size: got %d, want %d", len(items), len(SeedMenu))
	}
	if items[0].Price != 250 {
		t.Errorf("first item price: got %d, want 250", items[0].Price)
	}
}
