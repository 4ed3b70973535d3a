package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pos-service/internal/domain"
	"pos-service/internal/infra"
	"pos-service/internal/logger"
	"pos-service/internal/mocks"
	"pos-service/internal/repository"
	"pos-service/internal/ticket"
)

func newTestOrderService(store *mocks.MockStore, pub *mocks.MockPublisher) *OrderService {
	var p infra.Publisher = infra.NopPublisher{}
	if pub != nil {
		p = pub
	}
	s := NewOrderService(store, p, logger.Discard())
	s.now = func() time.Time { return testNow }
	return s
}

func ptr[T any](v T) *T { return &v }

func TestOrderService_CreateOrder(t *testing.T) {
	nasi := CreateMockMenuItem(TestFoodItemID, "Nasi Goreng", 35000, testFood, true)
	kopi := CreateMockMenuItem(TestDrinkID, "Kopi Susu", 25000, testDrink, true)
	soldOut := CreateMockMenuItem(30, "Matcha", 30000, testDrink, false)
	platter := CreateMockMenuItem(40, "Gold Platter", math.MaxInt64/2, testFood, true)
	dbErr := errors.New("database error")

	tests := []struct {
		name       string
		lines      []OrderLine
		method     *domain.PaymentMethod
		setupMocks func(*mocks.MockStore, *mocks.MockPublisher)
		wantErr    error
		check      func(*testing.T, *domain.Order)
	}{
		{
			name:  "snapshots items and computes total",
			lines: []OrderLine{{TestFoodItemID, 2}, {TestDrinkID, 1}},
			setupMocks: func(store *mocks.MockStore, pub *mocks.MockPublisher) {
				store.On("FindMenuItemsByIDs", mock.Anything, []uint64{TestFoodItemID, TestDrinkID}).
					Return([]domain.MenuItem{kopi, nasi}, nil)
				store.On("CreateOrder", mock.Anything, mock.AnythingOfType("*domain.Order")).
					Return(nil).
					Run(func(args mock.Arguments) { args.Get(1).(*domain.Order).ID = 7 })
				pub.On("Publish", mock.Anything, domain.EventOrderCreated, mock.MatchedBy(func(e domain.OrderEvent) bool {
					return e.OrderID == 7 && len(e.Stations) == 2
				})).Return(nil)
			},
			check: func(t *testing.T, o *domain.Order) {
				assert.Equal(t, uint64(7), o.ID)
				assert.Equal(t, domain.StatusPending, o.Status)
				assert.Equal(t, int64(95000), o.Total)
				assert.Nil(t, o.PaymentMethod)
				require.Len(t, o.Items, 2)
				assert.Equal(t, "Nasi Goreng", o.Items[0].Name)
				assert.Equal(t, domain.CategoryFood, o.Items[0].CategoryType)
				assert.Equal(t, int64(35000), o.Items[0].Price)
				assert.False(t, o.Items[0].IsReady)
				assert.Equal(t, domain.CategoryDrink, o.Items[1].CategoryType)
			},
		},
		{
			name:   "keeps requested payment method",
			lines:  []OrderLine{{TestDrinkID, 1}},
			method: ptr(domain.PaymentQRIS),
			setupMocks: func(store *mocks.MockStore, pub *mocks.MockPublisher) {
				store.On("FindMenuItemsByIDs", mock.Anything, []uint64{TestDrinkID}).Return([]domain.MenuItem{kopi}, nil)
				store.On("CreateOrder", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
				pub.On("Publish", mock.Anything, domain.EventOrderCreated, mock.Anything).Return(nil)
			},
			check: func(t *testing.T, o *domain.Order) {
				require.NotNil(t, o.PaymentMethod)
				assert.Equal(t, domain.PaymentQRIS, *o.PaymentMethod)
			},
		},
		{
			name:  "publish failure does not fail the order",
			lines: []OrderLine{{TestFoodItemID, 1}},
			setupMocks: func(store *mocks.MockStore, pub *mocks.MockPublisher) {
				store.On("FindMenuItemsByIDs", mock.Anything, []uint64{TestFoodItemID}).Return([]domain.MenuItem{nasi}, nil)
				store.On("CreateOrder", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
				pub.On("Publish", mock.Anything, domain.EventOrderCreated, mock.Anything).Return(errors.New("broker down"))
			},
			check: func(t *testing.T, o *domain.Order) {
				assert.Equal(t, int64(35000), o.Total)
			},
		},
		{
			name:    "no items",
			wantErr: domain.ErrValidation,
		},
		{
			name:    "zero quantity",
			lines:   []OrderLine{{TestFoodItemID, 0}},
			wantErr: domain.ErrValidation,
		},
		{
			name:    "quantity above line limit",
			lines:   []OrderLine{{TestFoodItemID, domain.MaxLineQuantity + 1}},
			wantErr: domain.ErrValidation,
		},
		{
			name:  "total would overflow",
			lines: []OrderLine{{TestFoodItemID, 1}, {40, 3}},
			setupMocks: func(store *mocks.MockStore, pub *mocks.MockPublisher) {
				store.On("FindMenuItemsByIDs", mock.Anything, []uint64{TestFoodItemID, 40}).Return([]domain.MenuItem{nasi, platter}, nil)
			},
			wantErr: domain.ErrValidation,
		},
		{
			name:  "unknown menu item",
			lines: []OrderLine{{TestFoodItemID, 1}, {99, 1}},
			setupMocks: func(store *mocks.MockStore, pub *mocks.MockPublisher) {
				store.On("FindMenuItemsByIDs", mock.Anything, []uint64{TestFoodItemID, 99}).Return([]domain.MenuItem{nasi}, nil)
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name:  "one unavailable item fails the whole order",
			lines: []OrderLine{{TestFoodItemID, 1}, {30, 1}},
			setupMocks: func(store *mocks.MockStore, pub *mocks.MockPublisher) {
				store.On("FindMenuItemsByIDs", mock.Anything, []uint64{TestFoodItemID, 30}).Return([]domain.MenuItem{nasi, soldOut}, nil)
			},
			wantErr: domain.ErrOutOfStock,
		},
		{
			name:  "database error",
			lines: []OrderLine{{TestFoodItemID, 1}},
			setupMocks: func(store *mocks.MockStore, pub *mocks.MockPublisher) {
				store.On("FindMenuItemsByIDs", mock.Anything, []uint64{TestFoodItemID}).Return([]domain.MenuItem{nasi}, nil)
				store.On("CreateOrder", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(dbErr)
			},
			wantErr: dbErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(mocks.MockStore)
			pub := new(mocks.MockPublisher)
			if tt.setupMocks != nil {
				tt.setupMocks(store, pub)
			}

			order, err := newTestOrderService(store, pub).CreateOrder(context.Background(), tt.lines, tt.method)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, order)
				if tt.wantErr != dbErr {
					store.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
				}
				pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				tt.check(t, order)
			}
			store.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestOrderService_CreateOrder_OutOfStockNamesItem(t *testing.T) {
	store := new(mocks.MockStore)
	soldOut := CreateMockMenuItem(30, "Matcha Lovely", 30000, testDrink, false)
	store.On("FindMenuItemsByIDs", mock.Anything, []uint64{30}).Return([]domain.MenuItem{soldOut}, nil)

	_, err := newTestOrderService(store, new(mocks.MockPublisher)).CreateOrder(context.Background(), []OrderLine{{30, 1}}, nil)

	var oos *domain.OutOfStockError
	require.ErrorAs(t, err, &oos)
	assert.Equal(t, uint64(30), oos.MenuItemID)
	assert.Equal(t, "Matcha Lovely", oos.Name)
}

func TestOrderService_ListOrders(t *testing.T) {
	tests := []struct {
		filter  string
		want    repository.OrderFilter
		wantErr bool
	}{
		{filter: "", want: repository.OrderFilter{NewestFirst: true}},
		{filter: "all", want: repository.OrderFilter{NewestFirst: true}},
		{filter: "active", want: repository.OrderFilter{
			NewestFirst:     true,
			ExcludeStatuses: []domain.OrderStatus{domain.StatusCompleted, domain.StatusCancelled},
		}},
		{filter: "ready", want: repository.OrderFilter{
			NewestFirst: true,
			Statuses:    []domain.OrderStatus{domain.StatusReady},
		}},
		{filter: "eaten", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			store := new(mocks.MockStore)
			if !tt.wantErr {
				store.On("ListOrders", mock.Anything, tt.want).Return([]domain.Order{}, nil)
			}

			_, err := newTestOrderService(store, nil).ListOrders(context.Background(), tt.filter)

			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
			store.AssertExpectations(t)
		})
	}
}

func TestOrderService_UpdateStatus(t *testing.T) {
	tests := []struct {
		name       string
		from, to   domain.OrderStatus
		setupMocks func(*mocks.MockStore, *mocks.MockPublisher)
		wantErr    error
	}{
		{
			name: "pending to on process",
			from: domain.StatusPending, to: domain.StatusOnProcess,
			setupMocks: func(store *mocks.MockStore, pub *mocks.MockPublisher) {
				store.On("UpdateOrderStatus", mock.Anything, TestOrderID, domain.StatusPending, domain.StatusOnProcess).Return(nil)
				pub.On("Publish", mock.Anything, domain.EventOrderStatusChanged, mock.Anything).Return(nil)
			},
		},
		{
			name: "cancel on process",
			from: domain.StatusOnProcess, to: domain.StatusCancelled,
			setupMocks: func(store *mocks.MockStore, pub *mocks.MockPublisher) {
				store.On("UpdateOrderStatus", mock.Anything, TestOrderID, domain.StatusOnProcess, domain.StatusCancelled).Return(nil)
				pub.On("Publish", mock.Anything, domain.EventOrderStatusChanged, mock.Anything).Return(nil)
			},
		},
		{name: "cancel ready", from: domain.StatusReady, to: domain.StatusCancelled, wantErr: domain.ErrInvalidTransition},
		{name: "cancel completed", from: domain.StatusCompleted, to: domain.StatusCancelled, wantErr: domain.ErrInvalidTransition},
		{name: "reopen cancelled", from: domain.StatusCancelled, to: domain.StatusPending, wantErr: domain.ErrInvalidTransition},
		{name: "backwards", from: domain.StatusOnProcess, to: domain.StatusPending, wantErr: domain.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(mocks.MockStore)
			pub := new(mocks.MockPublisher)
			paid := domain.PaymentCard
			existing := CreateMockOrder(TestOrderID, tt.from, CreateMockOrderItem(1, TestOrderID, domain.CategoryFood, 1, 35000))
			existing.PaymentMethod = &paid
			store.On("FindOrderByID", mock.Anything, TestOrderID).Return(existing, nil)
			if tt.setupMocks != nil {
				tt.setupMocks(store, pub)
			}

			got, err := newTestOrderService(store, pub).UpdateStatus(context.Background(), TestOrderID, tt.to)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				var ite *domain.InvalidTransitionError
				require.ErrorAs(t, err, &ite)
				assert.Equal(t, tt.from, ite.From)
				assert.Equal(t, tt.to, ite.To)
				store.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.to, got.Status)
				require.NotNil(t, got.PaymentMethod, "payment is left alone")
				assert.Equal(t, domain.PaymentCard, *got.PaymentMethod)
			}
			store.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestOrderService_UpdateStatus_ConcurrentChange(t *testing.T) {
	store := new(mocks.MockStore)
	pub := new(mocks.MockPublisher)
	existing := CreateMockOrder(TestOrderID, domain.StatusOnProcess, CreateMockOrderItem(1, TestOrderID, domain.CategoryFood, 1, 35000))
	store.On("FindOrderByID", mock.Anything, TestOrderID).Return(existing, nil)
	store.On("UpdateOrderStatus", mock.Anything, TestOrderID, domain.StatusOnProcess, domain.StatusCancelled).
		Return(&domain.InvalidTransitionError{From: domain.StatusReady, To: domain.StatusCancelled})

	got, err := newTestOrderService(store, pub).UpdateStatus(context.Background(), TestOrderID, domain.StatusCancelled)

	assert.Nil(t, got)
	var ite *domain.InvalidTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, domain.StatusReady, ite.From)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestOrderService_UpdateStatus_NotFound(t *testing.T) {
	store := new(mocks.MockStore)
	store.On("FindOrderByID", mock.Anything, uint64(404)).Return(nil, domain.NewNotFoundError("order", 404))

	_, err := newTestOrderService(store, nil).UpdateStatus(context.Background(), 404, domain.StatusReady)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOrderService_PayOrder(t *testing.T) {
	paidAlready := domain.PaymentCard

	tests := []struct {
		name       string
		status     domain.OrderStatus
		paid       *domain.PaymentMethod
		method     domain.PaymentMethod
		tendered   *int64
		setupMocks func(*mocks.MockStore, *mocks.MockPublisher)
		wantErr    error
		wantChange int64
	}{
		{
			name: "cash with change", status: domain.StatusReady,
			method: domain.PaymentCash, tendered: ptr(int64(100000)),
			setupMocks: func(store *mocks.MockStore, pub *mocks.MockPublisher) {
				store.On("UpdatePaymentMethod", mock.Anything, TestOrderID, domain.PaymentCash).Return(nil)
				pub.On("Publish", mock.Anything, domain.EventOrderPaid, mock.Anything).Return(nil)
			},
			wantChange: 30000,
		},
		{
			name: "exact cash", status: domain.StatusPending,
			method: domain.PaymentCash, tendered: ptr(int64(70000)),
			setupMocks: func(store *mocks.MockStore, pub *mocks.MockPublisher) {
				store.On("UpdatePaymentMethod", mock.Anything, TestOrderID, domain.PaymentCash).Return(nil)
				pub.On("Publish", mock.Anything, domain.EventOrderPaid, mock.Anything).Return(nil)
			},
		},
		{
			name: "card needs no tender", status: domain.StatusOnProcess,
			method: domain.PaymentCard,
			setupMocks: func(store *mocks.MockStore, pub *mocks.MockPublisher) {
				store.On("UpdatePaymentMethod", mock.Anything, TestOrderID, domain.PaymentCard).Return(nil)
				pub.On("Publish", mock.Anything, domain.EventOrderPaid, mock.Anything).Return(nil)
			},
		},
		{name: "cash without tender", status: domain.StatusReady, method: domain.PaymentCash, wantErr: domain.ErrValidation},
		{name: "cash short", status: domain.StatusReady, method: domain.PaymentCash, tendered: ptr(int64(69999)), wantErr: domain.ErrValidation},
		{name: "cancelled order", status: domain.StatusCancelled, method: domain.PaymentQRIS, wantErr: domain.ErrInvalidTransition},
		{name: "already paid", status: domain.StatusCompleted, paid: &paidAlready, method: domain.PaymentQRIS, wantErr: domain.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(mocks.MockStore)
			pub := new(mocks.MockPublisher)
			existing := CreateMockOrder(TestOrderID, tt.status, CreateMockOrderItem(1, TestOrderID, domain.CategoryFood, 2, 35000))
			existing.PaymentMethod = tt.paid
			store.On("FindOrderByID", mock.Anything, TestOrderID).Return(existing, nil)
			if tt.setupMocks != nil {
				tt.setupMocks(store, pub)
			}

			receipt, err := newTestOrderService(store, pub).PayOrder(context.Background(), TestOrderID, tt.method, tt.tendered)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				store.AssertNotCalled(t, "UpdatePaymentMethod", mock.Anything, mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantChange, receipt.Change)
				require.NotNil(t, receipt.Order.PaymentMethod)
				assert.Equal(t, tt.method, *receipt.Order.PaymentMethod)
				assert.Equal(t, tt.status, receipt.Order.Status, "status is untouched by payment")
			}
			store.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestOrderService_ToggleItemReady(t *testing.T) {
	store := new(mocks.MockStore)
	pub := new(mocks.MockPublisher)
	item := CreateMockOrderItem(5, TestOrderID, domain.CategoryDrink, 1, 25000)
	order := CreateMockOrder(TestOrderID, domain.StatusOnProcess, item)

	store.On("FindOrderItemByID", mock.Anything, uint64(5)).Return(&item, nil)
	store.On("SetOrderItemReady", mock.Anything, uint64(5), true).Return(nil)
	store.On("FindOrderByID", mock.Anything, TestOrderID).Return(order, nil)
	pub.On("Publish", mock.Anything, domain.EventOrderItemReadyChanged, mock.MatchedBy(func(e domain.OrderEvent) bool {
		return e.OrderItemID == 5 && e.IsReady != nil && *e.IsReady &&
			e.Status == domain.StatusOnProcess &&
			assert.ObjectsAreEqual([]domain.Station{domain.StationBarista}, e.Stations)
	})).Return(nil)

	got, err := newTestOrderService(store, pub).ToggleItemReady(context.Background(), 5, true)

	require.NoError(t, err)
	assert.True(t, got.IsReady)
	store.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	store.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestOrderService_ToggleItemReady_NotFound(t *testing.T) {
	store := new(mocks.MockStore)
	store.On("FindOrderItemByID", mock.Anything, uint64(9)).Return(nil, domain.NewNotFoundError("order item", 9))

	_, err := newTestOrderService(store, nil).ToggleItemReady(context.Background(), 9, true)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	store.AssertNotCalled(t, "SetOrderItemReady", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_StationTickets(t *testing.T) {
	store := new(mocks.MockStore)
	mixed := CreateMockOrder(1, domain.StatusPending,
		CreateMockOrderItem(1, 1, domain.CategoryFood, 1, 35000),
		CreateMockOrderItem(2, 1, domain.CategoryDrink, 1, 25000),
	)
	drinksOnly := CreateMockOrder(2, domain.StatusOnProcess, CreateMockOrderItem(3, 2, domain.CategoryDrink, 2, 10000))
	store.On("ListOrders", mock.Anything, repository.OrderFilter{
		ExcludeStatuses: []domain.OrderStatus{domain.StatusCompleted, domain.StatusCancelled},
	}).Return([]domain.Order{*mixed, *drinksOnly}, nil)

	svc := newTestOrderService(store, nil)

	kitchen, err := svc.StationTickets(context.Background(), domain.StationKitchen, ticket.ViewActive, "")
	require.NoError(t, err)
	require.Len(t, kitchen, 1)
	assert.Equal(t, uint64(1), kitchen[0].OrderID)
	require.Len(t, kitchen[0].Items, 1)
	assert.Equal(t, domain.CategoryFood, kitchen[0].Items[0].CategoryType)

	barista, err := svc.StationTickets(context.Background(), domain.StationBarista, ticket.ViewActive, "")
	require.NoError(t, err)
	assert.Len(t, barista, 2)

	_, err = svc.StationTickets(context.Background(), domain.StationCashier, ticket.ViewActive, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestOrderService_Dashboard(t *testing.T) {
	store := new(mocks.MockStore)
	unpaid := []domain.Order{*CreateMockOrder(3, domain.StatusReady)}
	recent := []domain.Order{*CreateMockOrder(4, domain.StatusPending), *CreateMockOrder(3, domain.StatusReady)}

	store.On("CountOrders", mock.Anything, repository.OrderFilter{}).Return(int64(12), nil)
	store.On("CountOrders", mock.Anything, repository.OrderFilter{
		Statuses: []domain.OrderStatus{domain.StatusPending},
	}).Return(int64(2), nil)
	store.On("SumOrderTotals", mock.Anything, repository.OrderFilter{
		Statuses: []domain.OrderStatus{domain.StatusCompleted},
	}).Return(int64(450000), nil)
	store.On("ListOrders", mock.Anything, repository.OrderFilter{
		ExcludeStatuses: []domain.OrderStatus{domain.StatusCancelled},
		UnpaidOnly:      true,
	}).Return(unpaid, nil)
	store.On("ListOrders", mock.Anything, repository.OrderFilter{NewestFirst: true, Limit: 10}).Return(recent, nil)

	d, err := newTestOrderService(store, nil).Dashboard(context.Background())

	require.NoError(t, err)
	assert.Equal(t, DashboardStats{TotalOrders: 12, NewOrders: 2, Income: 450000}, d.Stats)
	assert.Equal(t, unpaid, d.UnpaidOrders)
	assert.Equal(t, recent, d.RecentOrders)
	store.AssertExpectations(t)
}

func TestOrderService_Dashboard_Error(t *testing.T) {
	store := new(mocks.MockStore)
	boom := errors.New("database error")
	store.On("CountOrders", mock.Anything, mock.Anything).Return(int64(0), boom)
	store.On("SumOrderTotals", mock.Anything, mock.Anything).Return(int64(0), nil).Maybe()
	store.On("ListOrders", mock.Anything, mock.Anything).Return([]domain.Order{}, nil).Maybe()

	_, err := newTestOrderService(store, nil).Dashboard(context.Background())
	assert.ErrorIs(t, err, boom)
}
