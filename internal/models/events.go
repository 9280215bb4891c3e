package models

import "time"

// Event types
const (
	EventTypeOrderCreated            = "ORDER_CREATED"
	EventTypeOrderPaid               = "ORDER_PAID"
	EventTypeLicenseActivated        = "LICENSE_ACTIVATED"
	EventTypeLicenseValidationFailed = "LICENSE_VALIDATION_FAILED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent published when an order and its items are written
type OrderCreatedEvent struct {
	BaseEvent
	OrderID     int64           `json:"order_id"`
	UserID      int64           `json:"user_id"`
	TotalAmount int64           `json:"total_amount"`
	Items       []OrderItemData `json:"items"`
}

// OrderPaidEvent published when fulfillment marks an order paid
type OrderPaidEvent struct {
	BaseEvent
	OrderID int64 `json:"order_id"`
	UserID  int64 `json:"user_id"`
}

// LicenseActivatedEvent published when a hwid activation succeeds
type LicenseActivatedEvent struct {
	BaseEvent
	UserID    int64  `json:"user_id"`
	ProductID int64  `json:"product_id"`
	Hwid      string `json:"hwid"`
	LogID     int64  `json:"log_id"`
}

// LicenseValidationFailedEvent published when a validation check
// returns false, for abuse monitoring
type LicenseValidationFailedEvent struct {
	BaseEvent
	UserID    int64  `json:"user_id"`
	ProductID int64  `json:"product_id"`
	Hwid      string `json:"hwid"`
	Reason    string `json:"reason"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
	UnitPrice int64 `json:"unit_price"`
}
