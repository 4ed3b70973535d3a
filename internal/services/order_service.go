package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"pos-service/internal/domain"
	"pos-service/internal/infra"
	"pos-service/internal/repository"
	"pos-service/internal/ticket"
)

const recentOrdersLimit = 10

type OrderService struct {
	store     repository.Store
	publisher infra.Publisher
	log       *logrus.Entry
	now       func() time.Time
}

func NewOrderService(store repository.Store, pub infra.Publisher, log *logrus.Entry) *OrderService {
	if pub == nil {
		pub = infra.NopPublisher{}
	}
	return &OrderService{
		store:     store,
		publisher: pub,
		log:       log,
		now:       time.Now,
	}
}

type OrderLine struct {
	MenuItemID uint64
	Quantity   int
}

// CreateOrder is all-or-nothing: every menu item must exist and be available
// inside the same transaction that writes the order.
func (s *OrderService) CreateOrder(ctx context.Context, lines []OrderLine, method *domain.PaymentMethod) (*domain.Order, error) {
	if len(lines) == 0 {
		return nil, domain.NewValidationError("items", "an order needs at least one item")
	}
	ids := make([]uint64, 0, len(lines))
	seen := make(map[uint64]bool, len(lines))
	for _, l := range lines {
		if l.Quantity < 1 || l.Quantity > domain.MaxLineQuantity {
			return nil, domain.NewValidationError("quantity", fmt.Sprintf("must be between 1 and %d for menu item %d", domain.MaxLineQuantity, l.MenuItemID))
		}
		if !seen[l.MenuItemID] {
			seen[l.MenuItemID] = true
			ids = append(ids, l.MenuItemID)
		}
	}

	order := &domain.Order{Status: domain.StatusPending, PaymentMethod: method}
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		found, err := tx.FindMenuItemsByIDs(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[uint64]domain.MenuItem, len(found))
		for _, m := range found {
			byID[m.ID] = m
		}

		for _, l := range lines {
			if _, ok := byID[l.MenuItemID]; !ok {
				return domain.NewNotFoundError("menu item", l.MenuItemID)
			}
		}
		for _, l := range lines {
			if m := byID[l.MenuItemID]; !m.IsAvailable {
				return &domain.OutOfStockError{MenuItemID: m.ID, Name: m.Name}
			}
		}

		order.Items = make([]domain.OrderItem, 0, len(lines))
		for _, l := range lines {
			m := byID[l.MenuItemID]
			menuItemID := m.ID
			order.Items = append(order.Items, domain.OrderItem{
				MenuItemID:   &menuItemID,
				Name:         m.Name,
				CategoryType: m.CategoryType(),
				Quantity:     l.Quantity,
				Price:        m.Price,
			})
		}
		total, err := order.CheckedTotal()
		if err != nil {
			return err
		}
		order.Total = total
		order.CreatedAt = s.now()
		return tx.CreateOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"order_id": order.ID, "total": order.Total, "items": len(order.Items)}).Info("order created")
	s.publish(ctx, domain.NewOrderEvent(domain.EventOrderCreated, *order, s.now()))
	return order, nil
}

// ListOrders returns orders newest first. filter is empty or ALL for every
// order, ACTIVE for orders still in the workflow, or a single status.
func (s *OrderService) ListOrders(ctx context.Context, filter string) ([]domain.Order, error) {
	f := repository.OrderFilter{NewestFirst: true}
	switch strings.ToUpper(strings.TrimSpace(filter)) {
	case "", "ALL":
	case "ACTIVE":
		f.ExcludeStatuses = []domain.OrderStatus{domain.StatusCompleted, domain.StatusCancelled}
	default:
		st, err := domain.ParseOrderStatus(filter)
		if err != nil {
			return nil, err
		}
		f.Statuses = []domain.OrderStatus{st}
	}
	return s.store.ListOrders(ctx, f)
}

func (s *OrderService) GetOrder(ctx context.Context, id uint64) (*domain.Order, error) {
	return s.store.FindOrderByID(ctx, id)
}

// UpdateStatus only moves Status; payment is untouched. The write is
// conditional on the status that was checked, so a concurrent change turns
// into an InvalidTransitionError instead of an illegal move.
func (s *OrderService) UpdateStatus(ctx context.Context, id uint64, next domain.OrderStatus) (*domain.Order, error) {
	var order *domain.Order
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		o, err := tx.FindOrderByID(ctx, id)
		if err != nil {
			return err
		}
		if !o.Status.CanTransitionTo(next) {
			return &domain.InvalidTransitionError{From: o.Status, To: next}
		}
		if err := tx.UpdateOrderStatus(ctx, id, o.Status, next); err != nil {
			return err
		}
		o.Status = next
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.NewOrderEvent(domain.EventOrderStatusChanged, *order, s.now()))
	return order, nil
}

// PaymentReceipt carries the change due for cash payments.
type PaymentReceipt struct {
	Order    *domain.Order `json:"order"`
	Tendered *int64        `json:"tendered,omitempty"`
	Change   int64         `json:"change"`
}

// PayOrder records how the order was settled. Cash needs a tendered amount of
// at least the total. Cancelled and already paid orders are rejected.
func (s *OrderService) PayOrder(ctx context.Context, id uint64, method domain.PaymentMethod, tendered *int64) (*PaymentReceipt, error) {
	receipt := &PaymentReceipt{}
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		o, err := tx.FindOrderByID(ctx, id)
		if err != nil {
			return err
		}
		if o.Status == domain.StatusCancelled {
			return &domain.InvalidTransitionError{From: o.Status, Action: "pay"}
		}
		if o.IsPaid() {
			return &domain.ConflictError{Reason: fmt.Sprintf("order %d is already paid", id)}
		}
		if method == domain.PaymentCash {
			if tendered == nil {
				return domain.NewValidationError("tendered", "required for cash payments")
			}
			if *tendered < o.Total {
				return domain.NewValidationError("tendered", fmt.Sprintf("%d is less than the order total %d", *tendered, o.Total))
			}
			receipt.Tendered = tendered
			receipt.Change = *tendered - o.Total
		}
		if err := tx.UpdatePaymentMethod(ctx, id, method); err != nil {
			return err
		}
		o.PaymentMethod = &method
		receipt.Order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"order_id": id, "method": method}).Info("order paid")
	s.publish(ctx, domain.NewOrderEvent(domain.EventOrderPaid, *receipt.Order, s.now()))
	return receipt, nil
}

// ToggleItemReady sets one line's readiness. It never changes the order status;
// stations ask for that explicitly once their ticket is complete.
func (s *OrderService) ToggleItemReady(ctx context.Context, itemID uint64, isReady bool) (*domain.OrderItem, error) {
	item, err := s.store.FindOrderItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetOrderItemReady(ctx, itemID, isReady); err != nil {
		return nil, err
	}
	item.IsReady = isReady

	order, err := s.store.FindOrderByID(ctx, item.OrderID)
	if err != nil {
		s.log.WithError(err).WithField("order_item_id", itemID).Warn("ready change not published")
		return item, nil
	}
	evt := domain.NewOrderEvent(domain.EventOrderItemReadyChanged, *order, s.now())
	evt.OrderItemID = itemID
	evt.IsReady = &isReady
	s.publish(ctx, evt)
	return item, nil
}

// StationTickets is the work queue for a preparing station.
func (s *OrderService) StationTickets(ctx context.Context, station domain.Station, view ticket.View, search string) ([]ticket.Ticket, error) {
	if _, ok := station.CategoryType(); !ok {
		return nil, domain.NewValidationError("station", fmt.Sprintf("%s has no ticket queue", station))
	}
	orders, err := s.store.ListOrders(ctx, repository.OrderFilter{
		ExcludeStatuses: []domain.OrderStatus{domain.StatusCompleted, domain.StatusCancelled},
	})
	if err != nil {
		return nil, err
	}
	return ticket.Queue(orders, station, view, search), nil
}

type DashboardStats struct {
	TotalOrders int64 `json:"totalOrders"`
	NewOrders   int64 `json:"newOrders"`
	Income      int64 `json:"income"`
}

type Dashboard struct {
	Stats        DashboardStats `json:"stats"`
	UnpaidOrders []domain.Order `json:"unpaidOrders"`
	RecentOrders []domain.Order `json:"recentOrders"`
}

// Dashboard is the cashier overview. The five reads are independent and run
// concurrently.
func (s *OrderService) Dashboard(ctx context.Context) (*Dashboard, error) {
	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Stats.TotalOrders, err = s.store.CountOrders(gctx, repository.OrderFilter{})
		return err
	})
	g.Go(func() (err error) {
		d.Stats.NewOrders, err = s.store.CountOrders(gctx, repository.OrderFilter{
			Statuses: []domain.OrderStatus{domain.StatusPending},
		})
		return err
	})
	g.Go(func() (err error) {
		d.Stats.Income, err = s.store.SumOrderTotals(gctx, repository.OrderFilter{
			Statuses: []domain.OrderStatus{domain.StatusCompleted},
		})
		return err
	})
	g.Go(func() (err error) {
		d.UnpaidOrders, err = s.store.ListOrders(gctx, repository.OrderFilter{
			ExcludeStatuses: []domain.OrderStatus{domain.StatusCancelled},
			UnpaidOnly:      true,
		})
		return err
	})
	g.Go(func() (err error) {
		d.RecentOrders, err = s.store.ListOrders(gctx, repository.OrderFilter{
			NewestFirst: true,
			Limit:       recentOrdersLimit,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}

// publish never fails the caller; the write has already been committed.
func (s *OrderService) publish(ctx context.Context, evt domain.OrderEvent) {
	if err := s.publisher.Publish(ctx, evt.Type, evt); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"event": evt.Type, "order_id": evt.OrderID}).Warn("failed to publish event")
	}
}
