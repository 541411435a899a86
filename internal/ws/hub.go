package ws

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gofiber/contrib/websocket"
)

// Event is the envelope every notification is delivered in.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Client is one websocket connection bound to the room of the user it
// authenticated as.
type Client struct {
	Conn *websocket.Conn
	Room string
}

type outbound struct {
	room string // empty means every room
	msg  []byte
}

// Hub tracks connections grouped into per-user rooms. Delivery is
// fire-and-forget: events for rooms with no connection are dropped.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client
	send       chan outbound
	rooms      map[string]map[*websocket.Conn]bool
	mutex      sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		send:       make(chan outbound, 64),
		rooms:      make(map[string]map[*websocket.Conn]bool),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mutex.Lock()
			if h.rooms[client.Room] == nil {
				h.rooms[client.Room] = make(map[*websocket.Conn]bool)
			}
			h.rooms[client.Room][client.Conn] = true
			h.mutex.Unlock()
			log.Printf("WS client connected (room %s)", client.Room)

		case client := <-h.Unregister:
			h.mutex.Lock()
			if conns, ok := h.rooms[client.Room]; ok {
				if _, ok := conns[client.Conn]; ok {
					delete(conns, client.Conn)
					client.Conn.Close()
					if len(conns) == 0 {
						delete(h.rooms, client.Room)
					}
				}
			}
			h.mutex.Unlock()

		case out := <-h.send:
			h.mutex.Lock()
			if out.room == "" {
				for room := range h.rooms {
					h.emit(room, out.msg)
				}
			} else {
				h.emit(out.room, out.msg)
			}
			h.mutex.Unlock()
		}
	}
}

// emit writes to every connection in a room, dropping dead connections.
// Caller holds the mutex.
func (h *Hub) emit(room string, msg []byte) {
	for conn := range h.rooms[room] {
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			conn.Close()
			delete(h.rooms[room], conn)
		}
	}
	if len(h.rooms[room]) == 0 {
		delete(h.rooms, room)
	}
}

// NotifyRoom emits a named event to every connection in a room.
func (h *Hub) NotifyRoom(room, event string, payload interface{}) {
	msg, err := json.Marshal(Event{Type: event, Data: payload})
	if err != nil {
		log.Printf("WS marshal failed for event %s: %v", event, err)
		return
	}
	h.send <- outbound{room: room, msg: msg}
}

// NotifyUser emits to the per-user room keyed by user id.
func (h *Hub) NotifyUser(userID, event string, payload interface{}) {
	h.NotifyRoom(userID, event, payload)
}

// NotifyUsers emits the same event to several users.
func (h *Hub) NotifyUsers(userIDs []string, event string, payload interface{}) {
	for _, id := range userIDs {
		h.NotifyUser(id, event, payload)
	}
}

// NotifyAll emits to every connected client.
func (h *Hub) NotifyAll(event string, payload interface{}) {
	msg, err := json.Marshal(Event{Type: event, Data: payload})
	if err != nil {
		log.Printf("WS marshal failed for event %s: %v", event, err)
		return
	}
	h.send <- outbound{msg: msg}
}
