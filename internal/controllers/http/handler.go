package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"pos-service/internal/domain"
	"pos-service/internal/report"
	"pos-service/internal/services"
	"pos-service/internal/ticket"
)

type Handler struct {
	menu    *services.MenuService
	orders  *services.OrderService
	reports *services.ReportService
	log     *logrus.Entry
	now     func() time.Time
}

func NewHandler(menu *services.MenuService, orders *services.OrderService, reports *services.ReportService, log *logrus.Entry) *Handler {
	return &Handler{menu: menu, orders: orders, reports: reports, log: log, now: time.Now}
}

// RegisterRoutes mounts the API. Every route except /health sits behind auth.
func (h *Handler) RegisterRoutes(r gin.IRouter, jwtSecret string) {
	r.GET("/health", h.Health)

	api := r.Group("", Authenticate(jwtSecret))

	admin := RequireRole(domain.RoleAdmin)
	frontOfHouse := RequireRole(domain.RoleCashier, domain.RoleAdmin)
	preparing := RequireRole(domain.RoleKitchen, domain.RoleBarista, domain.RoleAdmin)

	api.GET("/menu", h.ListMenu)
	api.POST("/menu/categories", admin, h.CreateCategory)
	api.DELETE("/menu/categories/:id", admin, h.DeleteCategory)
	api.POST("/menu/items", admin, h.CreateMenuItem)
	api.PUT("/menu/items/:id", admin, h.UpdateMenuItem)
	api.PATCH("/menu/items/:id/availability", preparing, h.SetAvailability)
	api.DELETE("/menu/items/:id", admin, h.DeleteMenuItem)

	api.POST("/orders", frontOfHouse, h.CreateOrder)
	api.GET("/orders", h.ListOrders)
	api.GET("/orders/dashboard", frontOfHouse, h.Dashboard)
	api.GET("/orders/:id", h.GetOrder)
	api.PATCH("/orders/:id/status", h.UpdateStatus)
	api.POST("/orders/:id/pay", frontOfHouse, h.PayOrder)
	api.PATCH("/order-items/:id/ready", preparing, h.ToggleItemReady)

	api.GET("/stations/:station/tickets", RequireStation(), h.StationTickets)

	api.GET("/reports/income", admin, h.IncomeReport)
	api.GET("/reports/transactions", admin, h.Transactions)
}

func (h *Handler) Health(c *gin.Context) {
	respond(c, http.StatusOK, "ok", nil)
}

func parseID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		abortWith(c, http.StatusBadRequest, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		abortWith(c, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (h *Handler) ListMenu(c *gin.Context) {
	cats, err := h.menu.ListCatalog(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "menu", cats)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if !bind(c, &req) {
		return
	}
	cat, err := h.menu.CreateCategory(c.Request.Context(), req.Name, req.Type)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "category created", cat)
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.menu.DeleteCategory(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "category deleted", nil)
}

func (h *Handler) CreateMenuItem(c *gin.Context) {
	var req CreateMenuItemRequest
	if !bind(c, &req) {
		return
	}
	item, err := h.menu.CreateItem(c.Request.Context(), req.Name, *req.Price, req.CategoryID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "menu item created", item)
}

func (h *Handler) UpdateMenuItem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateMenuItemRequest
	if !bind(c, &req) {
		return
	}
	item, err := h.menu.UpdateItem(c.Request.Context(), id, services.MenuItemUpdate{
		Name:        req.Name,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		IsAvailable: req.IsAvailable,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "menu item updated", item)
}

func (h *Handler) SetAvailability(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req AvailabilityRequest
	if !bind(c, &req) {
		return
	}
	item, err := h.menu.SetAvailability(c.Request.Context(), id, *req.IsAvailable)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "availability updated", item)
}

func (h *Handler) DeleteMenuItem(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.menu.DeleteItem(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "menu item deleted", nil)
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if !bind(c, &req) {
		return
	}

	var method *domain.PaymentMethod
	if req.PaymentMethod != nil && *req.PaymentMethod != "" {
		m, err := domain.ParsePaymentMethod(*req.PaymentMethod)
		if err != nil {
			h.respondError(c, err)
			return
		}
		method = &m
	}
	lines := make([]services.OrderLine, len(req.Items))
	for i, it := range req.Items {
		lines[i] = services.OrderLine{MenuItemID: it.MenuItemID, Quantity: it.Quantity}
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), lines, method)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "order created", CreateOrderResponse{ID: order.ID, Total: order.Total})
}

func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context(), c.Query("status"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "orders", orders)
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	order, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "order", order)
}

func (h *Handler) Dashboard(c *gin.Context) {
	d, err := h.orders.Dashboard(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "dashboard", d)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if !bind(c, &req) {
		return
	}
	status, err := domain.ParseOrderStatus(req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	order, err := h.orders.UpdateStatus(c.Request.Context(), id, status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "status updated", order)
}

func (h *Handler) PayOrder(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req PayOrderRequest
	if !bind(c, &req) {
		return
	}
	method, err := domain.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		h.respondError(c, err)
		return
	}
	receipt, err := h.orders.PayOrder(c.Request.Context(), id, method, req.Tendered)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "payment recorded", receipt)
}

func (h *Handler) ToggleItemReady(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req ToggleReadyRequest
	if !bind(c, &req) {
		return
	}
	item, err := h.orders.ToggleItemReady(c.Request.Context(), id, *req.IsReady)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "order item updated", item)
}

func (h *Handler) StationTickets(c *gin.Context) {
	station := c.MustGet("station").(domain.Station)
	tickets, err := h.orders.StationTickets(c.Request.Context(), station, ticket.ParseView(c.Query("view")), c.Query("q"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "tickets", tickets)
}

// IncomeReport accepts ?period=day|week|month|year and an optional RFC 3339
// ?asOf=, defaulting to now.
func (h *Handler) IncomeReport(c *gin.Context) {
	period, err := report.ParsePeriod(c.Query("period"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	asOf := h.now()
	if s := c.Query("asOf"); s != "" {
		asOf, err = time.Parse(time.RFC3339, s)
		if err != nil {
			h.respondError(c, domain.NewValidationError("asOf", "must be an RFC 3339 timestamp"))
			return
		}
	}
	r, err := h.reports.Income(c.Request.Context(), period, asOf)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "income report", r)
}

func (h *Handler) Transactions(c *gin.Context) {
	txs, err := h.reports.Transactions(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "transactions", txs)
}
