package service

import (
	"context"
	"errors"
	"testing"

	"github.com/cafe-pickup/api/internal/database"
	"github.com/cafe-pickup/api/internal/enum"
)

var validCard = Card{
	Number:        "4111111111111111",
	Expiry:        "12/27",
	CVV:           "123",
	PaymentMethod: "card",
}

// placeOrder creates an order of two croissants (total 500).
func placeOrder(t *testing.T, m *database.Memory, userID *int64) database.Order {
	t.Helper()
	order, err := NewOrderService(m, nil).CreateOrder(context.Background(), CreateOrderRequest{
		UserID:     userID,
		Items:      []database.OrderItem{{MenuItemID: 1, Quantity: 2}},
		PickupTime: "12:00",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}

func TestPaymentAmount(t *testing.T) {
	tests := []struct {
		total       int64
		paymentType string
		want        int64
	}{
		{500, enum.PaymentTypePrepayment, 250},
		{500, enum.PaymentTypeFullPayment, 250},
		{501, enum.PaymentTypePrepayment, 250},
		{501, enum.PaymentTypeFullPayment, 251},
		{1, enum.PaymentTypePrepayment, 0},
		{1, enum.PaymentTypeFullPayment, 1},
		{9999, enum.PaymentTypePrepayment, 4999},
		{9999, enum.PaymentTypeFullPayment, 5000},
		{0, enum.PaymentTypeFullPayment, 0},
	}
	for _, tt := range tests {
		if got := PaymentAmount(tt.total, tt.paymentType); got != tt.want {
			t.Errorf("PaymentAmount(%d, %s): got %d, want %d", tt.total, tt.paymentType, got, tt.want)
		}
	}
}

func TestRecordPayment_PrepaymentThenRemainder(t *testing.T) {
	m := newTestStore(t)
	pub := &recordingPublisher{}
	svc := NewPaymentService(m, pub)
	ctx := context.Background()
	order := placeOrder(t, m, nil)

	pre, err := svc.RecordPayment(ctx, order.ID, enum.PaymentTypePrepayment, validCard)
	if err != nil {
		t.Fatalf("prepayment: %v", err)
	}
	if pre.Payment.Amount != 250 {
		t.Errorf("prepayment amount: got %d, want 250", pre.Payment.Amount)
	}
	if pre.Order.PaymentStatus != enum.PaymentStatusPartiallyPaid {
		t.Errorf("payment status: got %q, want partially_paid", pre.Order.PaymentStatus)
	}
	if pre.Order.Status != enum.OrderStatusPreparing {
		t.Errorf("status: got %q, want preparing", pre.Order.Status)
	}
	if pre.Payment.CardLast4 != "1111" {
		t.Errorf("card last4: got %q, want 1111", pre.Payment.CardLast4)
	}

	full, err := svc.RecordPayment(ctx, order.ID, enum.PaymentTypeFullPayment, validCard)
	if err != nil {
		t.Fatalf("full payment: %v", err)
	}
	if full.Payment.Amount != 250 {
		t.Errorf("remainder amount: got %d, want 250", full.Payment.Amount)
	}
	if full.Order.PaymentStatus != enum.PaymentStatusPaid {
		t.Errorf("payment status: got %q, want paid", full.Order.PaymentStatus)
	}

	payments, err := svc.ListPayments(ctx, order.ID)
	if err != nil {
		t.Fatalf("list payments: %v", err)
	}
	if len(payments) != 2 {
		t.Errorf("payments: got %d, want 2", len(payments))
	}
	if got := pub.types(); len(got) != 2 || got[0] != enum.EventOrderPaid {
		t.Errorf("events: got %v", got)
	}
}

func TestRecordPayment_DefaultsToPrepayment(t *testing.T) {
	m := newTestStore(t)
	svc := NewPaymentService(m, nil)
	order := placeOrder(t, m, nil)

	res, err := svc.RecordPayment(context.Background(), order.ID, "", validCard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Payment.PaymentType != enum.PaymentTypePrepayment {
		t.Errorf("payment type: got %q, want prepayment", res.Payment.PaymentType)
	}
}

func TestRecordPayment_DoesNotRegressStatus(t *testing.T) {
	m := newTestStore(t)
	svc := NewPaymentService(m, nil)
	ctx := context.Background()
	order := placeOrder(t, m, nil)

	if _, err := NewOrderService(m, nil).UpdateStatus(ctx, order.ID, enum.OrderStatusReady); err != nil {
		t.Fatalf("update status: %v", err)
	}

	res, err := svc.RecordPayment(ctx, order.ID, enum.PaymentTypeFullPayment, validCard)
	if err != nil {
		t.Fatalf("payment: %v", err)
	}
	if res.Order.Status != enum.OrderStatusReady {
		t.Errorf("status: got %q, want ready", res.Order.Status)
	}
}

func TestRecordPayment_Rejections(t *testing.T) {
	tests := []struct {
		name        string
		paymentType string
		card        Card
		wantErr     error
	}{
		{"bad type", "bitcoin", validCard, ErrInvalidPaymentType},
		{"short card", "", Card{Number: "4111", Expiry: "12/27", CVV: "123", PaymentMethod: "card"}, ErrInvalidCardNumber},
		{"letters in card", "", Card{Number: "4111x11111111111", Expiry: "12/27", CVV: "123", PaymentMethod: "card"}, ErrInvalidCardNumber},
		{"bad month", "", Card{Number: "4111111111111111", Expiry: "13/27", CVV: "123", PaymentMethod: "card"}, ErrInvalidExpiry},
		{"bad expiry format", "", Card{Number: "4111111111111111", Expiry: "1227", CVV: "123", PaymentMethod: "card"}, ErrInvalidExpiry},
		{"short cvv", "", Card{Number: "4111111111111111", Expiry: "12/27", CVV: "12", PaymentMethod: "card"}, ErrInvalidCVV},
		{"no method", "", Card{Number: "4111111111111111", Expiry: "12/27", CVV: "1234"}, ErrMissingPaymentMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestStore(t)
			order := placeOrder(t, m, nil)
			_, err := NewPaymentService(m, nil).RecordPayment(context.Background(), order.ID, tt.paymentType, tt.card)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
			stored, _ := m.GetOrder(context.Background(), order.ID)
			if stored.PaymentStatus != enum.PaymentStatusPending {
				t.Errorf("payment status changed to %q", stored.PaymentStatus)
			}
		})
	}
}

func TestRecordPayment_OrderStateConflicts(t *testing.T) {
	m := newTestStore(t)
	svc := NewPaymentService(m, nil)
	orders := NewOrderService(m, nil)
	ctx := context.Background()

	if _, err := svc.RecordPayment(ctx, 999, "", validCard); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("missing order: got %v, want ErrOrderNotFound", err)
	}

	cancelled := placeOrder(t, m, nil)
	orders.CancelOrder(ctx, cancelled.ID)
	if _, err := svc.RecordPayment(ctx, cancelled.ID, "", validCard); !errors.Is(err, ErrOrderCancelled) {
		t.Errorf("cancelled order: got %v, want ErrOrderCancelled", err)
	}

	prepaid := placeOrder(t, m, nil)
	svc.RecordPayment(ctx, prepaid.ID, enum.PaymentTypePrepayment, validCard)
	if _, err := svc.RecordPayment(ctx, prepaid.ID, enum.PaymentTypePrepayment, validCard); !errors.Is(err, ErrAlreadyPrepaid) {
		t.Errorf("second prepayment: got %v, want ErrAlreadyPrepaid", err)
	}

	paid := placeOrder(t, m, nil)
	svc.RecordPayment(ctx, paid.ID, enum.PaymentTypeFullPayment, validCard)
	if _, err := svc.RecordPayment(ctx, paid.ID, enum.PaymentTypeFullPayment, validCard); !errors.Is(err, ErrAlreadyPaid) {
		t.Errorf("paid order: got %v, want ErrAlreadyPaid", err)
	}
}

func TestRecordPayment_NotifiesOwner(t *testing.T) {
	m := newTestStore(t)
	userID := createUser(t, m)
	order := placeOrder(t, m, &userID)

	if _, err := NewPaymentService(m, nil).RecordPayment(context.Background(), order.ID, "", validCard); err != nil {
		t.Fatalf("payment: %v", err)
	}

	list, _ := m.ListNotificationsByUser(context.Background(), userID)
	if len(list) != 1 || list[0].Type != enum.NotificationPaymentReceived {
		t.Fatalf("notifications: got %+v", list)
	}
}

func TestListPayments_OrderNotFound(t *testing.T) {
	svc := NewPaymentService(newTestStore(t), nil)
	if _, err := svc.ListPayments(context.Background(), 42); !errors.Is(err, ErrOrderNotFound) {
		t.Errorf("got %v, want ErrOrderNotFound", err)
	}
}
