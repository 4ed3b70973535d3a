package domain

import (
	"math"
	"strings"
	"time"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusOnProcess OrderStatus = "ON_PROCESS"
	StatusReady     OrderStatus = "READY"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusCancelled OrderStatus = "CANCELLED"
)

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusPending, StatusOnProcess, StatusReady, StatusCompleted, StatusCancelled:
		return st, nil
	}
	return "", NewValidationError("status", "unknown order status "+s)
}

func (s OrderStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// progress ranks the non-cancelled workflow stages.
var progress = map[OrderStatus]int{
	StatusPending:   0,
	StatusOnProcess: 1,
	StatusReady:     2,
	StatusCompleted: 3,
}

// CanTransitionTo reports whether next is reachable from s.
// Forward moves may skip stages, READY may fall back to ON_PROCESS when a
// station un-marks an item, and only PENDING or ON_PROCESS may be cancelled.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.IsTerminal() || s == next {
		return false
	}
	if next == StatusCancelled {
		return s == StatusPending || s == StatusOnProcess
	}
	if s == StatusReady && next == StatusOnProcess {
		return true
	}
	from, ok := progress[s]
	if !ok {
		return false
	}
	to, ok := progress[next]
	return ok && to > from
}

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "CASH"
	PaymentCard     PaymentMethod = "CARD"
	PaymentTransfer PaymentMethod = "TRANSFER"
	PaymentQRIS     PaymentMethod = "QRIS"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s))); m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentQRIS:
		return m, nil
	}
	return "", NewValidationError("paymentMethod", "unknown payment method "+s)
}

// Order is the aggregate root. After creation only Status and PaymentMethod change.
type Order struct {
	ID            uint64         `json:"id" gorm:"primaryKey;autoIncrement"`
	Total         int64          `json:"total" gorm:"not null"`
	Status        OrderStatus    `json:"status" gorm:"type:varchar(12);not null;index"`
	PaymentMethod *PaymentMethod `json:"paymentMethod" gorm:"type:varchar(10)"`
	Items         []OrderItem    `json:"items" gorm:"foreignKey:OrderID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	CreatedAt     time.Time      `json:"createdAt" gorm:"autoCreateTime;index"`
}

func (o Order) IsPaid() bool { return o.PaymentMethod != nil }

// Stations lists the preparing stations that have at least one item of the order.
func (o Order) Stations() []Station {
	var out []Station
	for _, st := range PrepStations {
		for _, it := range o.Items {
			if it.RoutesTo(st) {
				out = append(out, st)
				break
			}
		}
	}
	return out
}

// ItemsTotal recomputes Σ price*quantity over the items.
func (o Order) ItemsTotal() int64 {
	var sum int64
	for _, it := range o.Items {
		sum += it.Subtotal()
	}
	return sum
}

// CheckedTotal is ItemsTotal that refuses to wrap around int64.
func (o Order) CheckedTotal() (int64, error) {
	var sum int64
	for _, it := range o.Items {
		sub, err := it.CheckedSubtotal()
		if err != nil {
			return 0, err
		}
		if sum > math.MaxInt64-sub {
			return 0, NewValidationError("items", "order total is too large")
		}
		sum += sub
	}
	return sum, nil
}
