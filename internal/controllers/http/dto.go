package http

type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required"`
	Type string `json:"type" binding:"required"`
}

type CreateMenuItemRequest struct {
	Name       string `json:"name" binding:"required"`
	Price      *int64 `json:"price" binding:"required"`
	CategoryID uint64 `json:"categoryId" binding:"required"`
}

type UpdateMenuItemRequest struct {
	Name        *string `json:"name"`
	Price       *int64  `json:"price"`
	CategoryID  *uint64 `json:"categoryId"`
	IsAvailable *bool   `json:"isAvailable"`
}

type AvailabilityRequest struct {
	IsAvailable *bool `json:"isAvailable" binding:"required"`
}

type OrderLineRequest struct {
	MenuItemID uint64 `json:"menuItemId" binding:"required"`
	Quantity   int    `json:"quantity" binding:"min=1,max=999"`
}

type CreateOrderRequest struct {
	Items         []OrderLineRequest `json:"items" binding:"required,dive"`
	PaymentMethod *string            `json:"paymentMethod"`
}

type CreateOrderResponse struct {
	ID    uint64 `json:"id"`
	Total int64  `json:"total"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type PayOrderRequest struct {
	PaymentMethod string `json:"paymentMethod" binding:"required"`
	Tendered      *int64 `json:"tendered"`
}

type ToggleReadyRequest struct {
	IsReady *bool `json:"isReady" binding:"required"`
}
