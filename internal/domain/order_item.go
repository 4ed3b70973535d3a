package domain

import (
	"fmt"
	"math"
)

// MaxLineQuantity bounds a single order line.
const MaxLineQuantity = 999

// OrderItem keeps a snapshot of the menu item (name, category type, price) so
// history survives later catalog edits or deletion. MenuItemID is cleared when
// the referenced menu item is deleted.
type OrderItem struct {
	ID           uint64       `json:"id" gorm:"primaryKey;autoIncrement"`
	OrderID      uint64       `json:"orderId" gorm:"not null;index"`
	MenuItemID   *uint64      `json:"menuItemId" gorm:"index"`
	MenuItem     *MenuItem    `json:"menuItem,omitempty" gorm:"foreignKey:MenuItemID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Name         string       `json:"name" gorm:"type:varchar(255);not null"`
	CategoryType CategoryType `json:"categoryType" gorm:"type:varchar(10)"`
	Quantity     int          `json:"quantity" gorm:"not null"`
	Price        int64        `json:"price" gorm:"not null"`
	IsReady      bool         `json:"isReady" gorm:"not null"`
}

func (i OrderItem) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

// CheckedSubtotal is Subtotal with a ValidationError instead of int64 overflow.
func (i OrderItem) CheckedSubtotal() (int64, error) {
	if i.Price < 0 || i.Quantity < 0 {
		return 0, NewValidationError("items", fmt.Sprintf("%s has a negative price or quantity", i.Name))
	}
	if i.Quantity > 0 && i.Price > math.MaxInt64/int64(i.Quantity) {
		return 0, NewValidationError("items", fmt.Sprintf("subtotal of %s is too large", i.Name))
	}
	return i.Price * int64(i.Quantity), nil
}

// ResolvedCategoryType prefers the snapshot taken when the order was placed;
// the live category only fills in legacy rows without one. Empty means
// neither is known.
func (i OrderItem) ResolvedCategoryType() CategoryType {
	if i.CategoryType != "" {
		return i.CategoryType
	}
	if i.MenuItem != nil {
		return i.MenuItem.CategoryType()
	}
	return ""
}

// RoutesTo reports whether the item belongs on the given station's ticket.
// Items without a category type are treated as food for the kitchen only.
func (i OrderItem) RoutesTo(st Station) bool {
	want, ok := st.CategoryType()
	if !ok {
		return false
	}
	got := i.ResolvedCategoryType()
	if got == "" {
		return st == StationKitchen
	}
	return got == want
}

// IsDrink decides the food/drink split in reports; legacy rows count as food.
func (i OrderItem) IsDrink() bool {
	return i.ResolvedCategoryType() == CategoryDrink
}
