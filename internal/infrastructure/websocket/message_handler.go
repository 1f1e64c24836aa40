package websocket

import (
	"encoding/json"
	"time"

	"emergencyreport/pkg/logger"
)

// Viewer message types
const (
	MessageTypePing  = "ping"
	MessageTypePong  = "pong"
	MessageTypeError = "error"
)

// WSMessage is a control frame exchanged with a viewer.
type WSMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// HandleClientMessage processes a frame sent by a viewer. Viewers only
// receive reports, so the sole request understood is a keepalive ping.
func (m *Manager) HandleClientMessage(client *Client, messageBytes []byte) {
	var wsMessage WSMessage

	if err := json.Unmarshal(messageBytes, &wsMessage); err != nil {
		logger.Debug("WebSocket: Failed to unmarshal message from viewer %s: %v", client.ID, err)
		m.sendErrorToClient(client, "Invalid message format")
		return
	}

	switch wsMessage.Type {
	case MessageTypePing:
		m.sendToClient(client, WSMessage{
			Type:      MessageTypePong,
			Data:      map[string]int{"viewers": m.Count()},
			Timestamp: time.Now().Format(time.RFC3339),
		})

	default:
		logger.Debug("WebSocket: Unknown message type '%s' from viewer %s", wsMessage.Type, client.ID)
		m.sendErrorToClient(client, "Unknown message type")
	}
}

// sendToClient queues a frame for a registered client. Frames for clients
// that have left, or whose queue is full, are dropped.
func (m *Manager) sendToClient(client *Client, message WSMessage) {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		logger.Error("WebSocket: Failed to marshal message for viewer %s: %v", client.ID, err)
		return
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if m.clients[client.ID] != client {
		return
	}
	select {
	case client.Send <- messageBytes:
	default:
		logger.Warn("WebSocket: Viewer %s send queue full, dropping reply", client.ID)
	}
}

func (m *Manager) sendErrorToClient(client *Client, errorMsg string) {
	m.sendToClient(client, WSMessage{
		Type:      MessageTypeError,
		Data:      map[string]string{"error": errorMsg},
		Timestamp: time.Now().Format(time.RFC3339),
	})
}
