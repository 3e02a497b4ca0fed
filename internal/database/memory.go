package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cafe-pickup/api/internal/enum"
)

// Memory is a process-local Store backed by maps. State is lost on restart.
type Memory struct {
	mu sync.RWMutex

	users         map[int64]User
	menuItems     map[int64]MenuItem
	orders        map[int64]Order
	payments      map[int64]Payment
	notifications map[int64]Notification

	nextUserID         int64
	nextMenuItemID     int64
	nextOrderID        int64
	nextPaymentID      int64
	nextNotificationID int64

	now func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:              make(map[int64]User),
		menuItems:          make(map[int64]MenuItem),
		orders:             make(map[int64]Order),
		payments:           make(map[int64]Payment),
		notifications:      make(map[int64]Notification),
		nextUserID:         1,
		nextMenuItemID:     1,
		nextOrderID:        1,
		nextPaymentID:      1,
		nextNotificationID: 1,
		now:                time.Now,
	}
}

// InTx runs fn while holding the store's write lock.
// fn must only use the Querier it is given.
func (m *Memory) InTx(ctx context.Context, fn func(q Querier) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(memTx{m})
}

// --- Users ---

func (m *Memory) GetUser(ctx context.Context, id int64) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getUser(id)
}

func (m *Memory) GetUserByPhone(ctx context.Context, phone string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getUserByPhone(phone)
}

func (m *Memory) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createUser(arg)
}

func (m *Memory) getUser(id int64) (User, error) {
	u, ok := m.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *Memory) getUserByPhone(phone string) (User, error) {
	for _, u := range m.users {
		if u.Phone == phone {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (m *Memory) createUser(arg CreateUserParams) (User, error) {
	if _, err := m.getUserByPhone(arg.Phone); err == nil {
		return User{}, ErrPhoneTaken
	}
	u := User{
		ID:             m.nextUserID,
		Name:           arg.Name,
		Phone:          arg.Phone,
		Email:          arg.Email,
		HashedPassword: arg.HashedPassword,
		Role:           arg.Role,
	}
	m.nextUserID++
	m.users[u.ID] = u
	return u, nil
}

// --- Menu ---

func (m *Memory) ListMenuItems(ctx context.Context) ([]MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listMenuItems(), nil
}

func (m *Memory) GetMenuItem(ctx context.Context, id int64) (MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getMenuItem(id)
}

func (m *Memory) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createMenuItem(arg), nil
}

func (m *Memory) UpdateMenuItemAvailability(ctx context.Context, arg UpdateMenuItemAvailabilityParams) (MenuItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateMenuItemAvailability(arg)
}

func (m *Memory) listMenuItems() []MenuItem {
	items := make([]MenuItem, 0, len(m.menuItems))
	for _, it := range m.menuItems {
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items
}

func (m *Memory) getMenuItem(id int64) (MenuItem, error) {
	it, ok := m.menuItems[id]
	if !ok {
		return MenuItem{}, ErrNotFound
	}
	return it, nil
}

func (m *Memory) createMenuItem(arg CreateMenuItemParams) MenuItem {
	it := MenuItem{
		ID:          m.nextMenuItemID,
		Name:        arg.Name,
		Description: arg.Description,
		Price:       arg.Price,
		Category:    arg.Category,
		ImageURL:    arg.ImageURL,
		Available:   arg.Available,
	}
	m.nextMenuItemID++
	m.menuItems[it.ID] = it
	return it
}

func (m *Memory) updateMenuItemAvailability(arg UpdateMenuItemAvailabilityParams) (MenuItem, error) {
	it, ok := m.menuItems[arg.ID]
	if !ok {
		return MenuItem{}, ErrNotFound
	}
	it.Available = arg.Available
	m.menuItems[arg.ID] = it
	return it, nil
}

// --- Orders ---

func (m *Memory) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createOrder(arg), nil
}

func (m *Memory) GetOrder(ctx context.Context, id int64) (Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getOrder(id)
}

// GetOrderForUpdate is GetOrder; the write lock held by InTx serializes callers.
func (m *Memory) GetOrderForUpdate(ctx context.Context, id int64) (Order, error) {
	return m.GetOrder(ctx, id)
}

func (m *Memory) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listOrders(arg), nil
}

func (m *Memory) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateOrderStatus(arg)
}

func (m *Memory) UpdateOrderPaymentStatus(ctx context.Context, arg UpdateOrderPaymentStatusParams) (Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateOrderPaymentStatus(arg)
}

func (m *Memory) createOrder(arg CreateOrderParams) Order {
	o := Order{
		ID:                  m.nextOrderID,
		UserID:              arg.UserID,
		Status:              arg.Status,
		Items:               append([]OrderItem(nil), arg.Items...),
		Total:               arg.Total,
		PickupTime:          arg.PickupTime,
		SpecialInstructions: arg.SpecialInstructions,
		PaymentStatus:       arg.PaymentStatus,
		CreatedAt:           m.now(),
	}
	m.nextOrderID++
	m.orders[o.ID] = o
	return cloneOrder(o)
}

func (m *Memory) getOrder(id int64) (Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return cloneOrder(o), nil
}

func (m *Memory) listOrders(arg ListOrdersParams) []Order {
	orders := make([]Order, 0, len(m.orders))
	for _, o := range m.orders {
		if arg.Status != "" && o.Status != arg.Status {
			continue
		}
		orders = append(orders, cloneOrder(o))
	}
	sort.Slice(orders, func(i, j int) bool {
		if !orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].CreatedAt.After(orders[j].CreatedAt)
		}
		return orders[i].ID > orders[j].ID
	})
	return orders
}

func (m *Memory) updateOrderStatus(arg UpdateOrderStatusParams) (Order, error) {
	o, ok := m.orders[arg.ID]
	if !ok {
		return Order{}, ErrNotFound
	}
	o.Status = arg.Status
	m.orders[arg.ID] = o
	return cloneOrder(o), nil
}

func (m *Memory) updateOrderPaymentStatus(arg UpdateOrderPaymentStatusParams) (Order, error) {
	o, ok := m.orders[arg.ID]
	if !ok {
		return Order{}, ErrNotFound
	}
	o.PaymentStatus = arg.PaymentStatus
	m.orders[arg.ID] = o
	return cloneOrder(o), nil
}

func cloneOrder(o Order) Order {
	o.Items = append([]OrderItem(nil), o.Items...)
	return o
}

// --- Payments ---

func (m *Memory) CreatePayment(ctx context.Context, arg CreatePaymentParams) (Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createPayment(arg), nil
}

func (m *Memory) ListPaymentsByOrder(ctx context.Context, orderID int64) ([]Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listPaymentsByOrder(orderID), nil
}

func (m *Memory) createPayment(arg CreatePaymentParams) Payment {
	p := Payment{
		ID:            m.nextPaymentID,
		OrderID:       arg.OrderID,
		Amount:        arg.Amount,
		Status:        arg.Status,
		PaymentMethod: arg.PaymentMethod,
		PaymentType:   arg.PaymentType,
		CardLast4:     arg.CardLast4,
		CreatedAt:     m.now(),
	}
	m.nextPaymentID++
	m.payments[p.ID] = p
	return p
}

func (m *Memory) listPaymentsByOrder(orderID int64) []Payment {
	var result []Payment
	for _, p := range m.payments {
		if p.OrderID == orderID {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// --- Notifications ---

func (m *Memory) CreateNotification(ctx context.Context, arg CreateNotificationParams) (Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createNotification(arg), nil
}

func (m *Memory) ListNotificationsByUser(ctx context.Context, userID int64) ([]Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listNotificationsByUser(userID), nil
}

func (m *Memory) GetNotification(ctx context.Context, id int64) (Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getNotification(id)
}

func (m *Memory) MarkNotificationRead(ctx context.Context, id int64) (Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.markNotificationRead(id)
}

func (m *Memory) createNotification(arg CreateNotificationParams) Notification {
	n := Notification{
		ID:        m.nextNotificationID,
		UserID:    arg.UserID,
		OrderID:   arg.OrderID,
		Type:      arg.Type,
		Message:   arg.Message,
		Status:    enum.NotificationUnread,
		CreatedAt: m.now(),
	}
	m.nextNotificationID++
	m.notifications[n.ID] = n
	return n
}

func (m *Memory) listNotificationsByUser(userID int64) []Notification {
	var result []Notification
	for _, n := range m.notifications {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result
}

func (m *Memory) getNotification(id int64) (Notification, error) {
	n, ok := m.notifications[id]
	if !ok {
		return Notification{}, ErrNotFound
	}
	return n, nil
}

func (m *Memory) markNotificationRead(id int64) (Notification, error) {
	n, ok := m.notifications[id]
	if !ok {
		return Notification{}, ErrNotFound
	}
	n.Status = enum.NotificationRead
	m.notifications[id] = n
	return n, nil
}

// memTx is the Querier handed to InTx callbacks. The caller already holds mu.
type memTx struct{ m *Memory }

func (t memTx) GetUser(_ context.Context, id int64) (User, error) { return t.m.getUser(id) }
func (t memTx) GetUserByPhone(_ context.Context, phone string) (User, error) {
	return t.m.getUserByPhone(phone)
}
func (t memTx) CreateUser(_ context.Context, arg CreateUserParams) (User, error) {
	return t.m.createUser(arg)
}
func (t memTx) ListMenuItems(_ context.Context) ([]MenuItem, error) {
	return t.m.listMenuItems(), nil
}
func (t memTx) GetMenuItem(_ context.Context, id int64) (MenuItem, error) {
	return t.m.getMenuItem(id)
}
func (t memTx) CreateMenuItem(_ context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	return t.m.createMenuItem(arg), nil
}
func (t memTx) UpdateMenuItemAvailability(_ context.Context, arg UpdateMenuItemAvailabilityParams) (MenuItem, error) {
	return t.m.updateMenuItemAvailability(arg)
}
func (t memTx) CreateOrder(_ context.Context, arg CreateOrderParams) (Order, error) {
	return t.m.createOrder(arg), nil
}
func (t memTx) GetOrder(_ context.Context, id int64) (Order, error) { return t.m.getOrder(id) }
func (t memTx) GetOrderForUpdate(_ context.Context, id int64) (Order, error) {
	return t.m.getOrder(id)
}
func (t memTx) ListOrders(_ context.Context, arg ListOrdersParams) ([]Order, error) {
	return t.m.listOrders(arg), nil
}
func (t memTx) UpdateOrderStatus(_ context.Context, arg UpdateOrderStatusParams) (Order, error) {
	return t.m.updateOrderStatus(arg)
}
func (t memTx) UpdateOrderPaymentStatus(_ context.Context, arg UpdateOrderPaymentStatusParams) (Order, error) {
	return t.m.updateOrderPaymentStatus(arg)
}
func (t memTx) CreatePayment(_ context.Context, arg CreatePaymentParams) (Payment, error) {
	return t.m.createPayment(arg), nil
}
func (t memTx) ListPaymentsByOrder(_ context.Context, orderID int64) ([]Payment, error) {
	return t.m.listPaymentsByOrder(orderID), nil
}
func (t memTx) CreateNotification(_ context.Context, arg CreateNotificationParams) (Notification, error) {
	return t.m.createNotification(arg), nil
}
func (t memTx) ListNotificationsByUser(_ context.Context, userID int64) ([]Notification, error) {
	return t.m.listNotificationsByUser(userID), nil
}
func (t memTx) GetNotification(_ context.Context, id int64) (Notification, error) {
	return t.m.getNotification(id)
}
func (t memTx) MarkNotificationRead(_ context.Context, id int64) (Notification, error) {
	return t.m.markNotificationRead(id)
}
