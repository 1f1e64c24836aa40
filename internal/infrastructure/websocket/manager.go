package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"emergencyreport/internal/domain/entity"
	"emergencyreport/internal/domain/service"
	"emergencyreport/pkg/logger"
)

const (
	EventReportCreated = "report.created"

	writeWait = 10 * time.Second
)

// Event is the frame pushed to live dashboard viewers.
type Event struct {
	Type   string         `json:"type"`
	Report *entity.Report `json:"report"`
}

// Client represents one connected dashboard viewer
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte
}

// Manager fans newly stored reports out to every connected viewer
type Manager struct {
	clients    map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	mutex      sync.RWMutex

	onConnect    func()
	onDisconnect func()
}

var _ service.ReportPublisher = (*Manager)(nil)

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
	}
}

// OnConnectionChange installs hooks run when a viewer joins or leaves.
func (m *Manager) OnConnectionChange(connected, disconnected func()) {
	m.onConnect = connected
	m.onDisconnect = disconnected
}

// Start runs the manager's main loop in a goroutine
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				m.clients[client.ID] = client
				m.mutex.Unlock()
				if m.onConnect != nil {
					m.onConnect()
				}
				logger.Debug("Dashboard viewer registered: %s", client.ID)

			case client := <-m.Unregister:
				m.remove(client.ID)

			case message := <-m.broadcast:
				m.mutex.RLock()
				var slow []string
				for id, client := range m.clients {
					select {
					case client.Send <- message:
					default:
						slow = append(slow, id)
					}
				}
				m.mutex.RUnlock()
				for _, id := range slow {
					logger.Warn("Dropping slow dashboard viewer %s", id)
					m.remove(id)
				}

			case <-ctx.Done():
				close(m.done)
				m.mutex.Lock()
				for id, client := range m.clients {
					close(client.Send)
					delete(m.clients, id)
				}
				m.mutex.Unlock()
				return
			}
		}
	}()
}

func (m *Manager) remove(id string) {
	m.mutex.Lock()
	client, ok := m.clients[id]
	if ok {
		delete(m.clients, id)
		close(client.Send)
	}
	m.mutex.Unlock()

	if ok {
		if m.onDisconnect != nil {
			m.onDisconnect()
		}
		logger.Debug("Dashboard viewer unregistered: %s", id)
	}
}

// Join registers a client. It returns false once the manager has stopped.
func (m *Manager) Join(c *Client) bool {
	select {
	case m.Register <- c:
		return true
	case <-m.done:
		return false
	}
}

// Leave unregisters a client; it is a no-op once the manager has stopped.
func (m *Manager) Leave(c *Client) {
	select {
	case m.Unregister <- c:
	case <-m.done:
	}
}

// Count returns the number of connected viewers
func (m *Manager) Count() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients)
}

// PublishReport queues a report.created event. It never blocks; when the
// queue is full the event is dropped.
func (m *Manager) PublishReport(report *entity.Report) {
	message, err := json.Marshal(Event{Type: EventReportCreated, Report: report})
	if err != nil {
		logger.Error("Failed to encode live report event: %v", err)
		return
	}

	select {
	case m.broadcast <- message:
	default:
		logger.Warn("Live report queue full, dropping event for report %s", report.ID)
	}
}

// ReadPump handles viewer frames until the connection goes away
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Leave(c)
		c.Conn.Close()
	}()

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("Dashboard viewer %s read error: %v", c.ID, err)
			}
			return
		}
		m.HandleClientMessage(c, message)
	}
}

// WritePump sends queued events to the connection
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for message := range c.Send {
		c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			logger.Warn("Dashboard viewer %s write error: %v", c.ID, err)
			return
		}
	}

	c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
