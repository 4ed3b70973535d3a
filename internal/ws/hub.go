package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"pos-service/internal/domain"
)

// Event is the frame pushed to station screens.
type Event struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type stationEvent struct {
	stations []domain.Station
	message  []byte
}

// Hub keeps one room per station and pushes order events to the rooms that
// should see them. The cashier and admin rooms see every event.
type Hub struct {
	rooms map[domain.Station]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *stationEvent
	done       chan struct{}

	mu  sync.RWMutex
	log *logrus.Entry
}

func NewHub(log *logrus.Entry) *Hub {
	return &Hub{
		rooms:      make(map[domain.Station]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *stationEvent, 256),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run owns the rooms until ctx is cancelled, then disconnects every client.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for st, clients := range h.rooms {
				for c := range clients {
					close(c.send)
				}
				delete(h.rooms, st)
			}
			h.mu.Unlock()
			return nil

		case c := <-h.register:
			h.mu.Lock()
			if h.rooms[c.station] == nil {
				h.rooms[c.station] = make(map[*Client]bool)
			}
			h.rooms[c.station][c] = true
			h.mu.Unlock()
			h.log.WithFields(logrus.Fields{"station": c.station, "role": c.role}).Debug("ws client joined")

		case c := <-h.unregister:
			h.mu.Lock()
			h.drop(c)
			h.mu.Unlock()

		case evt := <-h.broadcast:
			h.mu.Lock()
			for _, st := range evt.stations {
				for c := range h.rooms[st] {
					select {
					case c.send <- evt.message:
					default:
						h.log.WithField("station", st).Warn("ws client too slow, disconnecting")
						h.drop(c)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

// drop must be called with mu held.
func (h *Hub) drop(c *Client) {
	clients, ok := h.rooms[c.station]
	if !ok {
		return
	}
	if _, exists := clients[c]; !exists {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.rooms, c.station)
	}
}

// Publish lets the hub sit behind the same interface as the broker publisher.
// Order events go to the stations they touch; anything else only reaches the
// cashier and admin rooms.
func (h *Hub) Publish(ctx context.Context, routingKey string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("ws: marshal payload: %w", err)
	}
	message, err := json.Marshal(Event{Type: routingKey, Payload: payload})
	if err != nil {
		return fmt.Errorf("ws: marshal event: %w", err)
	}

	evt := &stationEvent{stations: audience(data), message: message}
	select {
	case h.broadcast <- evt:
		return nil
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func audience(data any) []domain.Station {
	out := []domain.Station{domain.StationCashier, domain.StationAdmin}
	var stations []domain.Station
	switch evt := data.(type) {
	case domain.OrderEvent:
		stations = evt.Stations
	case *domain.OrderEvent:
		stations = evt.Stations
	}
	for _, st := range stations {
		if st != domain.StationCashier && st != domain.StationAdmin {
			out = append(out, st)
		}
	}
	return out
}

// Clients reports how many connections a station room holds.
func (h *Hub) Clients(st domain.Station) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[st])
}
