package websocket

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/devdocai/piiguard/internal/privacy"
)

// EventType represents the type of WebSocket event
type EventType string

const (
	// EventTypeScan represents a completed document scan
	EventTypeScan EventType = "scan_completed"
	// EventTypePatternUpdate represents a pattern library change
	EventTypePatternUpdate EventType = "pattern_update"
	// EventTypeSystemStatus represents a system status event
	EventTypeSystemStatus EventType = "system_status"
	// EventTypeConnection represents connection events
	EventTypeConnection EventType = "connection"
)

// Event represents a WebSocket event sent to clients
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id,omitempty"`
}

// ScanEvent notifies dashboard clients of a completed scan. It carries the
// metadata projection only; matched values never cross the socket.
type ScanEvent struct {
	RequestID     string                `json:"request_id"`
	DocumentBytes int                   `json:"document_bytes"`
	Locales       []string              `json:"locales,omitempty"`
	Metadata      *privacy.ScanMetadata `json:"metadata"`
	Redacted      bool                  `json:"redacted"`
	ProcessingMS  float64               `json:"processing_ms"`
}

// PatternUpdateEvent notifies clients of a pattern library change.
type PatternUpdateEvent struct {
	Recognizer string   `json:"recognizer"`
	Category   string   `json:"category"`
	Countries  []string `json:"countries,omitempty"`
	Action     string   `json:"action"` // "registered" or "reloaded"
}

// SystemStatusEvent represents system status information
type SystemStatusEvent struct {
	Status           string `json:"status"`
	Uptime           string `json:"uptime"`
	TotalScans       int64  `json:"total_scans"`
	TotalDetections  int64  `json:"total_detections"`
	ActiveCategories int    `json:"active_categories"`
	ConnectedClients int    `json:"connected_clients"`
}

// ConnectionEvent represents WebSocket connection events
type ConnectionEvent struct {
	Action   string `json:"action"` // "connected", "disconnected"
	ClientID string `json:"client_id"`
}

// ClientMessage represents messages sent from clients to server
type ClientMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// SubscriptionRequest represents a client subscription request
type SubscriptionRequest struct {
	Events []EventType `json:"events"`
}

// Client represents a WebSocket client connection
type Client struct {
	ID           string
	Conn         *websocket.Conn
	Send         chan Event
	Subscription *SubscriptionRequest
	ConnectedAt  time.Time
	LastPing     time.Time
	IP           string
}
