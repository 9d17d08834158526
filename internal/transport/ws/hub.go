package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgGradeConflict     MessageType = "grade_conflict"
	MsgResponseSubmitted MessageType = "response_submitted"
	MsgError             MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Connection represents one instructor dashboard connection
type Connection struct {
	AssignmentID string
	InstructorID string
	Send         chan []byte
	Hub          *Hub
}

// BroadcastMessage is a message to fan out to an assignment's instructors
type BroadcastMessage struct {
	AssignmentID string
	Message      *Message
}

// Hub manages the instructor dashboard connections, keyed by assignment.
// The notifier pushes grade-conflict events through it; slow consumers are
// dropped rather than blocking the submission path.
type Hub struct {
	conns map[string]map[*Connection]bool // assignmentID -> connections

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	h := &Hub{
		conns:      make(map[string]map[*Connection]bool),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.conns[conn.AssignmentID] == nil {
				h.conns[conn.AssignmentID] = make(map[*Connection]bool)
			}
			h.conns[conn.AssignmentID][conn] = true
			h.mu.Unlock()
			log.Printf("Instructor %s watching assignment %s", conn.InstructorID, conn.AssignmentID)

		case conn := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.conns[conn.AssignmentID]; ok && set[conn] {
				delete(set, conn)
				close(conn.Send)
				if len(set) == 0 {
					delete(h.conns, conn.AssignmentID)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, _ := json.Marshal(msg.Message)
			for conn := range h.conns[msg.AssignmentID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToInstructors fans a message out to every dashboard watching the
// assignment (implements service.Broadcaster)
func (h *Hub) BroadcastToInstructors(assignmentID string, msgType string, payload interface{}) {
	data, _ := json.Marshal(payload)
	h.broadcast <- &BroadcastMessage{
		AssignmentID: assignmentID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}
