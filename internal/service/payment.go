package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/cafe-pickup/api/internal/database"
	"github.com/cafe-pickup/api/internal/enum"
	"github.com/cafe-pickup/api/internal/events"
)

var (
	ErrInvalidCardNumber    = errors.New("cardNumber must be 16 digits")
	ErrInvalidExpiry        = errors.New("expiryDate must be MM/YY")
	ErrInvalidCVV           = errors.New("cvv must be 3 or 4 digits")
	ErrMissingPaymentMethod = errors.New("paymentMethod is required")
	ErrInvalidPaymentType   = errors.New("invalid payment type")
	ErrOrderCancelled       = errors.New("cannot pay for cancelled order")
	ErrAlreadyPaid          = errors.New("order is already paid")
	ErrAlreadyPrepaid       = errors.New("prepayment already received")
)

// Card is the mock card entered at checkout. Only its format is checked;
// nothing is charged.
type Card struct {
	Number        string `json:"cardNumber"`
	Expiry        string `json:"expiryDate"`
	CVV           string `json:"cvv"`
	PaymentMethod string `json:"paymentMethod"`
}

// Validate checks the card fields.
func (c Card) Validate() error {
	if len(c.Number) != 16 || !allDigits(c.Number) {
		return ErrInvalidCardNumber
	}
	if !validExpiry(c.Expiry) {
		return ErrInvalidExpiry
	}
	if len(c.CVV) < 3 || len(c.CVV) > 4 || !allDigits(c.CVV) {
		return ErrInvalidCVV
	}
	if strings.TrimSpace(c.PaymentMethod) == "" {
		return ErrMissingPaymentMethod
	}
	return nil
}

// PaymentResult is the outcome of a recorded payment.
type PaymentResult struct {
	Payment database.Payment `json:"payment"`
	Order   database.Order   `json:"order"`
}

// PaymentService records mock card payments against orders.
type PaymentService struct {
	store  database.Store
	events events.Publisher
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(store database.Store, pub events.Publisher) *PaymentService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &PaymentService{store: store, events: pub}
}

// PaymentAmount returns what a payment of the given type collects for an
// order total: half rounded down for a prepayment, the rest otherwise.
func PaymentAmount(total int64, paymentType string) int64 {
	half := total / 2
	if paymentType == enum.PaymentTypePrepayment {
		return half
	}
	return total - half
}

// RecordPayment accepts a payment of paymentType for an order. An empty
// paymentType means prepayment.
func (s *PaymentService) RecordPayment(ctx context.Context, orderID int64, paymentType string, card Card) (PaymentResult, error) {
	if paymentType == "" {
		paymentType = enum.PaymentTypePrepayment
	}
	if paymentType != enum.PaymentTypePrepayment && paymentType != enum.PaymentTypeFullPayment {
		return PaymentResult{}, ErrInvalidPaymentType
	}
	if err := card.Validate(); err != nil {
		return PaymentResult{}, err
	}

	var result PaymentResult
	err := s.store.InTx(ctx, func(q database.Querier) error {
		// Lock the order so concurrent payments serialize.
		order, err := q.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return ErrOrderNotFound
			}
			return fmt.Errorf("get order for payment: %w", err)
		}

		if order.Status == enum.OrderStatusCancelled {
			return ErrOrderCancelled
		}
		switch order.PaymentStatus {
		case enum.PaymentStatusPaid:
			return ErrAlreadyPaid
		case enum.PaymentStatusPartiallyPaid:
			if paymentType == enum.PaymentTypePrepayment {
				return ErrAlreadyPrepaid
			}
		}

		payment, err := q.CreatePayment(ctx, database.CreatePaymentParams{
			OrderID:       orderID,
			Amount:        PaymentAmount(order.Total, paymentType),
			Status:        enum.PaymentRecordCompleted,
			PaymentMethod: card.PaymentMethod,
			PaymentType:   paymentType,
			CardLast4:     card.Number[len(card.Number)-4:],
		})
		if err != nil {
			return fmt.Errorf("create payment: %w", err)
		}

		newPaymentStatus := enum.PaymentStatusPaid
		if paymentType == enum.PaymentTypePrepayment {
			newPaymentStatus = enum.PaymentStatusPartiallyPaid
		}
		updated, err := q.UpdateOrderPaymentStatus(ctx, database.UpdateOrderPaymentStatusParams{
			ID:            orderID,
			PaymentStatus: newPaymentStatus,
		})
		if err != nil {
			return fmt.Errorf("update payment status: %w", err)
		}

		// A paid order goes to the kitchen. Later statuses are left alone.
		if updated.Status == enum.OrderStatusPending {
			updated, err = q.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
				ID:     orderID,
				Status: enum.OrderStatusPreparing,
			})
			if err != nil {
				return fmt.Errorf("update order status after payment: %w", err)
			}
		}

		err = notifyOwner(ctx, q, updated, enum.NotificationPaymentReceived,
			fmt.Sprintf("Payment of %d received for order #%d", payment.Amount, updated.ID))
		if err != nil {
			return err
		}

		result = PaymentResult{Payment: payment, Order: updated}
		return nil
	})
	if err != nil {
		return PaymentResult{}, err
	}

	publish(ctx, s.events, enum.EventOrderPaid, result.Order)
	return result, nil
}

// ListPayments returns the payments recorded for an order.
func (s *PaymentService) ListPayments(ctx context.Context, orderID int64) ([]database.Payment, error) {
	if _, err := s.store.GetOrder(ctx, orderID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order for payments: %w", err)
	}
	payments, err := s.store.ListPaymentsByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func validExpiry(s string) bool {
	if len(s) != 5 || s[2] != '/' || !allDigits(s[:2]) || !allDigits(s[3:]) {
		return false
	}
	month, err := strconv.Atoi(s[:2])
	return err == nil && month >= 1 && month <= 12
}
