package services

import (
	"time"

	"pos-service/internal/domain"
)

var testNow = time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)

func CreateMockCategory(id uint64, name string, t domain.CategoryType) *domain.Category {
	return &domain.Category{ID: id, Name: name, Slug: domain.Slugify(name), Type: t}
}

func CreateMockMenuItem(id uint64, name string, price int64, cat *domain.Category, available bool) domain.MenuItem {
	return domain.MenuItem{
		ID:          id,
		Name:        name,
		Price:       price,
		CategoryID:  cat.ID,
		Category:    cat,
		IsAvailable: available,
	}
}

func CreateMockOrder(id uint64, status domain.OrderStatus, items ...domain.OrderItem) *domain.Order {
	o := &domain.Order{ID: id, Status: status, Items: items, CreatedAt: testNow}
	o.Total = o.ItemsTotal()
	return o
}

func CreateMockOrderItem(id, orderID uint64, t domain.CategoryType, qty int, price int64) domain.OrderItem {
	return domain.OrderItem{ID: id, OrderID: orderID, Name: "item", CategoryType: t, Quantity: qty, Price: price}
}

const (
	TestOrderID    = uint64(1)
	TestFoodItemID = uint64(10)
	TestDrinkID    = uint64(20)
)

var (
	testFood  = CreateMockCategory(1, "Meals", domain.CategoryFood)
	testDrink = CreateMockCategory(2, "Drinks & Dessert", domain.CategoryDrink)
)
