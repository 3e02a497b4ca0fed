package enum

// ── Order lifecycle ──

const (
	OrderStatusPending   = "pending"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

const (
	PaymentStatusPending       = "pending"
	PaymentStatusPartiallyPaid = "partially_paid"
	PaymentStatusPaid          = "paid"
)

// ── Payments ──

const (
	PaymentTypePrepayment  = "prepayment"
	PaymentTypeFullPayment = "full_payment"
)

const (
	PaymentRecordCompleted = "completed"
)

// ── Users ──

const (
	UserRoleCustomer     = "customer"
	UserRoleKitchenStaff = "kitchen_staff"
)

// ── Notifications ──

const (
	NotificationUnread = "unread"
	NotificationRead   = "read"
)

const (
	NotificationStatusChanged   = "status_changed"
	NotificationPaymentReceived = "payment_received"
)

// ── Live events ──

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventOrderPaid          = "order.paid"
)
