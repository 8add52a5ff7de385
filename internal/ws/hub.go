package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
)

// Hub fans live events out to connected dashboard clients.
type Hub struct {
	Clients    map[*websocket.Conn]bool
	Register   chan *websocket.Conn
	Unregister chan *websocket.Conn
	Broadcast  chan []byte
	mutex      sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		Clients:    make(map[*websocket.Conn]bool),
		Register:   make(chan *websocket.Conn),
		Unregister: make(chan *websocket.Conn),
		Broadcast:  make(chan []byte, 64),
	}
}

// PriceChangeEvent is pushed whenever a product's price is updated, so open
// dashboards can refresh without polling.
type PriceChangeEvent struct {
	Type      string    `json:"type"`
	ProductID string    `json:"product_id"`
	SKU       string    `json:"sku"`
	OldPrice  float64   `json:"old_price"`
	NewPrice  float64   `json:"new_price"`
	Reason    string    `json:"reason"`
	At        time.Time `json:"at"`
}

// BroadcastPriceChange publishes a price change to all clients without
// blocking the caller. Events keep their send order; when the buffer is
// full the event is dropped rather than stalling a repricing batch.
func (h *Hub) BroadcastPriceChange(ev PriceChangeEvent) {
	ev.Type = "price_change"
	ev.At = time.Now()
	msg, err := json.Marshal(ev)
	if err != nil {
		return
	}
	select {
	case h.Broadcast <- msg:
	default:
	}
}

func (h *Hub) Run() {
	for {
		select {
		case conn := <-h.Register:
			h.mutex.Lock()
			h.Clients[conn] = true
			h.mutex.Unlock()
			log.Println("New WS client connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}
