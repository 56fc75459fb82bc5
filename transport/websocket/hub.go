package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/gridsight/game/engine"
)

// Connection timings
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10 // must stay below pongWait
	maxMessageSize = 512
	sendBuffer     = 256
)

// Events pushed to session subscribers
const (
	EventGridUpdate       = "grid_update"
	EventPathFound        = "path_found"
	EventSightUpdated     = "sight_updated"
	EventObstaclesChanged = "obstacles_changed"
	EventStep             = "step"
	EventAnchorMoved      = "anchor_moved"
	EventReset            = "reset"
	EventSessionClosed    = "session_closed"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API carries no credentials, so any origin may subscribe
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Message is the JSON frame delivered to subscribers
type Message struct {
	SessionID string               `json:"session_id"`
	Event     string               `json:"event"`
	Grid      *engine.GridSnapshot `json:"grid,omitempty"`
	Data      interface{}          `json:"data,omitempty"`
}

// subscriber is one connection following one session
type subscriber struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

// outbound is an encoded frame queued for a session's subscribers.
// A closing frame disconnects them after delivery.
type outbound struct {
	sessionID string
	frame     []byte
	closing   bool
}

// Hub fans session events out to websocket subscribers. A single event
// loop owns membership changes and delivery; rooms is also read by
// ClientCount, so it stays behind mu.
type Hub struct {
	rooms map[string]map[*subscriber]struct{}
	mu    sync.RWMutex

	join   chan *subscriber
	leave  chan *subscriber
	outbox chan outbound

	done     chan struct{}
	stopOnce sync.Once
}

// NewHub creates a hub; start it with Run
func NewHub() *Hub {
	return &Hub{
		rooms:  make(map[string]map[*subscriber]struct{}),
		join:   make(chan *subscriber),
		leave:  make(chan *subscriber),
		outbox: make(chan outbound, 64),
		done:   make(chan struct{}),
	}
}

// Run processes joins, leaves and deliveries until Stop
func (h *Hub) Run() {
	for {
		select {
		case sub := <-h.join:
			h.add(sub)
		case sub := <-h.leave:
			h.mu.Lock()
			h.drop(sub)
			h.mu.Unlock()
		case out := <-h.outbox:
			h.deliver(out)
		case <-h.done:
			h.mu.Lock()
			for _, room := range h.rooms {
				for sub := range room {
					h.drop(sub)
				}
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop ends the event loop and disconnects every subscriber
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// ServeWS upgrades the request and subscribes it to sessionID
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] upgrade failed: %v", err)
		return
	}

	sub := &subscriber{
		hub:       h,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		sessionID: sessionID,
	}
	select {
	case h.join <- sub:
	case <-h.done:
		conn.Close()
		return
	}

	go sub.writeLoop()
	go sub.readLoop()
}

// BroadcastGrid sends a grid snapshot to a session's subscribers
func (h *Hub) BroadcastGrid(sessionID, event string, grid *engine.GridSnapshot) {
	h.publish(&Message{SessionID: sessionID, Event: event, Grid: grid}, false)
}

// BroadcastEvent sends an event payload to a session's subscribers
func (h *Hub) BroadcastEvent(sessionID string, event string, data interface{}) {
	h.publish(&Message{SessionID: sessionID, Event: event, Data: data}, false)
}

// CloseSession tells a session's subscribers it is gone, then
// disconnects them
func (h *Hub) CloseSession(sessionID string) {
	h.publish(&Message{SessionID: sessionID, Event: EventSessionClosed}, true)
}

// publish encodes once and queues the frame, dropping it once the hub stops
func (h *Hub) publish(msg *Message, closing bool) {
	frame, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[WS] encode %s for %s: %v", msg.Event, msg.SessionID, err)
		return
	}
	select {
	case h.outbox <- outbound{sessionID: msg.SessionID, frame: frame, closing: closing}:
	case <-h.done:
	}
}

// ClientCount returns the number of subscribers following a session
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[sessionID])
}

func (h *Hub) add(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := h.rooms[sub.sessionID]
	if room == nil {
		room = make(map[*subscriber]struct{})
		h.rooms[sub.sessionID] = room
	}
	room[sub] = struct{}{}
	log.Printf("[WS] session=%s subscribers=%d", sub.sessionID, len(room))
}

// drop removes a subscriber and closes its send queue. Callers hold mu.
func (h *Hub) drop(sub *subscriber) {
	room := h.rooms[sub.sessionID]
	if _, ok := room[sub]; !ok {
		return
	}
	delete(room, sub)
	close(sub.send)
	if len(room) == 0 {
		delete(h.rooms, sub.sessionID)
	}
	log.Printf("[WS] session=%s subscribers=%d", sub.sessionID, len(room))
}

func (h *Hub) deliver(out outbound) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.rooms[out.sessionID] {
		select {
		case sub.send <- out.frame:
			if out.closing {
				h.drop(sub)
			}
		default:
			// A subscriber that cannot keep up loses its connection
			h.drop(sub)
		}
	}
}

// readLoop discards client frames; reading is what services pongs and
// notices a closed connection
func (s *subscriber) readLoop() {
	defer func() {
		select {
		case s.hub.leave <- s:
		case <-s.hub.done:
		}
		s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[WS] session=%s read: %v", s.sessionID, err)
			}
			return
		}
	}
}

// writeLoop sends each queued frame as its own text message and pings
// on an interval. A closed queue becomes a close frame.
func (s *subscriber) writeLoop() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ping.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
