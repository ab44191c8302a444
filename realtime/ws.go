package realtime

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"

	"tengri/capacity"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins; adjust for production if needed
		return true
	},
}

// Hub fans seat updates out to websocket subscribers, one topic per
// (tour, date) pair.
type Hub struct {
	mu          sync.Mutex
	subscribers map[string][]*websocket.Conn
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[string][]*websocket.Conn)}
}

func seatTopic(tourID, date string) string { return tourID + "_" + date }

// HandleWS subscribes a client to live seat counts for one departure.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	key := seatTopic(ps.ByName("tourid"), ps.ByName("date"))

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "WebSocket upgrade failed", http.StatusBadRequest)
		return
	}

	h.mu.Lock()
	h.subscribers[key] = append(h.subscribers[key], conn)
	h.mu.Unlock()

	for {
		// Keeps the connection alive until the client disconnects
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	// Clean up on disconnect
	h.mu.Lock()
	conns := h.subscribers[key]
	newList := make([]*websocket.Conn, 0, len(conns))
	for _, c := range conns {
		if c != conn {
			newList = append(newList, c)
		}
	}
	h.subscribers[key] = newList
	h.mu.Unlock()

	conn.Close()
}

type seatUpdate struct {
	Type      string `json:"type"`
	TourID    string `json:"tourId"`
	Date      string `json:"date"`
	Available bool   `json:"available"`
	Seats     int    `json:"seats"`
	Unlimited bool   `json:"unlimited,omitempty"`
}

// BroadcastSeats pushes a fresh availability snapshot to every subscriber
// of the pair's topic, dropping dead connections as it goes.
func (h *Hub) BroadcastSeats(tourID, date string, avail capacity.Availability) {
	data, _ := json.Marshal(seatUpdate{
		Type:      "seats",
		TourID:    tourID,
		Date:      date,
		Available: avail.Available,
		Seats:     avail.Seats,
		Unlimited: avail.Unlimited,
	})
	h.broadcast(seatTopic(tourID, date), data)
}

func (h *Hub) broadcast(key string, val []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns := h.subscribers[key]
	newList := conns[:0]

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, val); err == nil {
			newList = append(newList, conn)
		} else {
			conn.Close()
		}
	}

	h.subscribers[key] = newList
}
