package database

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a lookup by id or phone matches no row.
	ErrNotFound = errors.New("not found")
	// ErrPhoneTaken is returned by CreateUser when the phone is already registered.
	ErrPhoneTaken = errors.New("phone already registered")
)

type User struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Phone          string  `json:"phone"`
	Email          *string `json:"email"`
	HashedPassword *string `json:"-"`
	Role           string  `json:"role"`
}

type MenuItem struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Category    string `json:"category"`
	ImageURL    string `json:"imageUrl"`
	Available   bool   `json:"available"`
}

// OrderItem is a single order line. Stored as JSON inside the order row.
type OrderItem struct {
	MenuItemID int64  `json:"menuItemId"`
	Quantity   int32  `json:"quantity"`
	Notes      string `json:"notes,omitempty"`
}

type Order struct {
	ID                  int64       `json:"id"`
	UserID              *int64      `json:"userId"`
	Status              string      `json:"status"`
	Items               []OrderItem `json:"items"`
	Total               int64       `json:"total"`
	PickupTime          string      `json:"pickupTime"`
	SpecialInstructions *string     `json:"specialInstructions"`
	PaymentStatus       string      `json:"paymentStatus"`
	CreatedAt           time.Time   `json:"createdAt"`
}

type Payment struct {
	ID            int64     `json:"id"`
	OrderID       int64     `json:"orderId"`
	Amount        int64     `json:"amount"`
	Status        string    `json:"status"`
	PaymentMethod string    `json:"paymentMethod"`
	PaymentType   string    `json:"paymentType"`
	CardLast4     string    `json:"cardLast4"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	OrderID   int64     `json:"orderId"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// --- Params ---

type CreateUserParams struct {
	Name           string
	Phone          string
	Email          *string
	HashedPassword *string
	Role           string
}

type CreateMenuItemParams struct {
	Name        string
	Description string
	Price       int64
	Category    string
	ImageURL    string
	Available   bool
}

type UpdateMenuItemAvailabilityParams struct {
	ID        int64
	Available bool
}

type CreateOrderParams struct {
	UserID              *int64
	Status              string
	Items               []OrderItem
	Total               int64
	PickupTime          string
	SpecialInstructions *string
	PaymentStatus       string
}

type ListOrdersParams struct {
	// Status filters by order status when non-empty.
	Status string
}

type UpdateOrderStatusParams struct {
	ID     int64
	Status string
}

type UpdateOrderPaymentStatusParams struct {
	ID            int64
	PaymentStatus string
}

type CreatePaymentParams struct {
	OrderID       int64
	Amount        int64
	Status        string
	PaymentMethod string
	PaymentType   string
	CardLast4     string
}

type CreateNotificationParams struct {
	UserID  int64
	OrderID int64
	Type    string
	Message string
}

// Querier is the full set of store operations. Implemented by *Queries
// (PostgreSQL) and *Memory.
type Querier interface {
	GetUser(ctx context.Context, id int64) (User, error)
	GetUserByPhone(ctx context.Context, phone string) (User, error)
	CreateUser(ctx context.Context, arg CreateUserParams) (User, error)

	ListMenuItems(ctx context.Context) ([]MenuItem, error)
	GetMenuItem(ctx context.Context, id int64) (MenuItem, error)
	CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error)
	UpdateMenuItemAvailability(ctx context.Context, arg UpdateMenuItemAvailabilityParams) (MenuItem, error)

	CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error)
	GetOrder(ctx context.Context, id int64) (Order, error)
	GetOrderForUpdate(ctx context.Context, id int64) (Order, error)
	ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error)
	UpdateOrderPaymentStatus(ctx context.Context, arg UpdateOrderPaymentStatusParams) (Order, error)

	CreatePayment(ctx context.Context, arg CreatePaymentParams) (Payment, error)
	ListPaymentsByOrder(ctx context.Context, orderID int64) ([]Payment, error)

	CreateNotification(ctx context.Context, arg CreateNotificationParams) (Notification, error)
	ListNotificationsByUser(ctx context.Context, userID int64) ([]Notification, error)
	GetNotification(ctx context.Context, id int64) (Notification, error)
	MarkNotificationRead(ctx context.Context, id int64) (Notification, error)
}

// Store is a Querier that can run a group of operations atomically.
type Store interface {
	Querier
	InTx(ctx context.Context, fn func(q Querier) error) error
}
