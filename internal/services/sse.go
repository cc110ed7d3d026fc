package services

import (
	"sync"
	"time"
)

// InsightEvent announces insights extracted from a chat exchange.
type InsightEvent struct {
	Type      string               `json:"type"` // insights_extracted, extraction_failed
	UserID    string               `json:"-"`
	ProjectID *uint                `json:"project_id,omitempty"`
	MessageID uint                 `json:"message_id"`
	Insights  []InsightEventDetail `json:"insights,omitempty"`
	Error     string               `json:"error,omitempty"`
	At        time.Time            `json:"at"`
}

type InsightEventDetail struct {
	ID              uint   `json:"id"`
	StakeholderName string `json:"stakeholder_name"`
	Category        string `json:"category"`
	Content         string `json:"content"`
}

const (
	EventInsightsExtracted = "insights_extracted"
	EventExtractionFailed  = "extraction_failed"
)

type sseClient struct {
	userID string
	ch     chan InsightEvent
}

// SSEHub fans insight events out to the connected clients of their owner.
type SSEHub struct {
	clients map[string]*sseClient
	mu      sync.RWMutex
}

func NewSSEHub() *SSEHub {
	return &SSEHub{
		clients: make(map[string]*sseClient),
	}
}

// Subscribe registers a client of userID and returns its event channel.
func (h *SSEHub) Subscribe(clientID, userID string) <-chan InsightEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan InsightEvent, 32)
	h.clients[clientID] = &sseClient{userID: userID, ch: ch}
	return ch
}

func (h *SSEHub) Unsubscribe(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if c, ok := h.clients[clientID]; ok {
		close(c.ch)
		delete(h.clients, clientID)
	}
}

// Publish delivers event to the clients of event.UserID. Slow clients
// with a full buffer miss the event.
func (h *SSEHub) Publish(event InsightEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		if c.userID != event.UserID {
			continue
		}
		select {
		case c.ch <- event:
		default:
		}
	}
}

func (h *SSEHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

var globalSSEHub *SSEHub
var sseHubOnce sync.Once

// GetSSEHub returns the process-wide hub.
func GetSSEHub() *SSEHub {
	sseHubOnce.Do(func() {
		globalSSEHub = NewSSEHub()
	})
	return globalSSEHub
}
