package booking

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins — adjust for production if needed
		return true
	},
}

var (
	subscribers = make(map[string][]*websocket.Conn)
	mu          sync.Mutex
)

// HandleUpdates streams availability changes for one date.
func HandleUpdates(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	date := ps.ByName("date")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "WebSocket upgrade failed", http.StatusBadRequest)
		return
	}

	mu.Lock()
	subscribers[date] = append(subscribers[date], conn)
	mu.Unlock()

	// Push the current state immediately so clients don't wait for the
	// first change.
	go BroadcastAvailability(date)

	for {
		// This keeps the connection alive until the client disconnects
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	// Clean up on disconnect
	mu.Lock()
	conns := subscribers[date]
	newList := make([]*websocket.Conn, 0, len(conns))
	for _, c := range conns {
		if c != conn {
			newList = append(newList, c)
		}
	}
	subscribers[date] = newList
	mu.Unlock()

	conn.Close()
}

// BroadcastAvailability pushes the date's slot availability to every
// subscriber of that date.
func BroadcastAvailability(date string) {
	mu.Lock()
	listening := len(subscribers[date]) > 0
	mu.Unlock()
	if !listening {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	slots, err := availabilityFor(ctx, date)
	if err != nil {
		log.Printf("availability broadcast for %s failed: %v", date, err)
		return
	}

	data, _ := json.Marshal(map[string]any{
		"type":  "availability",
		"date":  date,
		"slots": slots,
	})
	broadcast(date, data)
}

func broadcast(key string, val []byte) {
	mu.Lock()
	defer mu.Unlock()

	conns := subscribers[key]
	newList := conns[:0]

	for _, conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, val); err == nil {
			newList = append(newList, conn)
		} else {
			conn.Close()
		}
	}

	subscribers[key] = newList
}
