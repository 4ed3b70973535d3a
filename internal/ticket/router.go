// Package ticket projects orders into per-station tickets. It never mutates orders.
package ticket

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"pos-service/internal/domain"
)

type Ticket struct {
	OrderID       uint64                `json:"orderId"`
	Station       domain.Station        `json:"station"`
	Status        domain.OrderStatus    `json:"status"`
	PaymentMethod *domain.PaymentMethod `json:"paymentMethod"`
	CreatedAt     time.Time             `json:"createdAt"`
	Items         []domain.OrderItem    `json:"items"`
	AllItemsReady bool                  `json:"allItemsReady"`
	// CanMarkReady drives the "mark station ready" affordance; the status
	// change itself is a separate explicit request.
	CanMarkReady bool `json:"canMarkReady"`
}

// ProjectForStation returns the station's slice of the order, or nil when no
// item of the order is prepared at that station.
func ProjectForStation(order domain.Order, station domain.Station) *Ticket {
	var items []domain.OrderItem
	for _, it := range order.Items {
		if it.RoutesTo(station) {
			items = append(items, it)
		}
	}
	if len(items) == 0 {
		return nil
	}

	allReady := true
	for _, it := range items {
		if !it.IsReady {
			allReady = false
			break
		}
	}

	return &Ticket{
		OrderID:       order.ID,
		Station:       station,
		Status:        order.Status,
		PaymentMethod: order.PaymentMethod,
		CreatedAt:     order.CreatedAt,
		Items:         items,
		AllItemsReady: allReady,
		CanMarkReady:  allReady && order.Status != domain.StatusReady,
	}
}

type View string

const (
	// ViewActive is the work queue: open orders not yet READY, oldest first.
	ViewActive View = "active"
	// ViewAll keeps READY orders too, in input order.
	ViewAll View = "all"
)

func ParseView(s string) View {
	if strings.EqualFold(s, string(ViewAll)) {
		return ViewAll
	}
	return ViewActive
}

// Queue builds the ticket list a station screen shows. Completed and
// cancelled orders never appear. search matches a substring of the order id.
func Queue(orders []domain.Order, station domain.Station, view View, search string) []Ticket {
	search = strings.TrimSpace(search)
	out := make([]Ticket, 0, len(orders))
	for _, o := range orders {
		if o.Status.IsTerminal() {
			continue
		}
		if view == ViewActive && o.Status == domain.StatusReady {
			continue
		}
		if search != "" && !strings.Contains(strconv.FormatUint(o.ID, 10), search) {
			continue
		}
		if t := ProjectForStation(o, station); t != nil {
			out = append(out, *t)
		}
	}

	if view == ViewActive {
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	}
	return out
}
