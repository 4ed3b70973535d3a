package domain

import "time"

const (
	EventOrderCreated          = "order.created"
	EventOrderStatusChanged    = "order.status_changed"
	EventOrderPaid             = "order.paid"
	EventOrderItemReadyChanged = "order_item.ready_changed"
)

type OrderEvent struct {
	Type          string         `json:"type"`
	OrderID       uint64         `json:"orderId"`
	Status        OrderStatus    `json:"status"`
	PaymentMethod *PaymentMethod `json:"paymentMethod,omitempty"`
	Total         int64          `json:"total"`
	OrderItemID   uint64         `json:"orderItemId,omitempty"`
	IsReady       *bool          `json:"isReady,omitempty"`
	Stations      []Station      `json:"stations"`
	OccurredAt    time.Time      `json:"occurredAt"`
}

func NewOrderEvent(eventType string, o Order, at time.Time) OrderEvent {
	return OrderEvent{
		Type:          eventType,
		OrderID:       o.ID,
		Status:        o.Status,
		PaymentMethod: o.PaymentMethod,
		Total:         o.Total,
		Stations:      o.Stations(),
		OccurredAt:    at,
	}
}
