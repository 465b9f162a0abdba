package messaging

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/observability/logging"
	"github.com/gorilla/websocket"
)

// EventPageChanged is the only event type editors receive today.
const EventPageChanged = "pageChanged"

// PageEvent tells editors that a stored page changed.
type PageEvent struct {
	Type      string    `json:"type"`
	PageKey   string    `json:"pageKey"`
	Variant   string    `json:"variant"`
	Operation string    `json:"operation"`
	Changed   time.Time `json:"changed"`
}

// PageClient represents a single connected editor watching one page.
type PageClient struct {
	Conn    *websocket.Conn
	PageKey string
	Send    chan []byte
}

// NewPageClient wraps conn with a buffered send queue.
func NewPageClient(conn *websocket.Conn, pageKey string) *PageClient {
	return &PageClient{Conn: conn, PageKey: pageKey, Send: make(chan []byte, 16)}
}

// PageEventBroadcaster manages connected editor clients grouped by page key.
type PageEventBroadcaster struct {
	pageClients map[string]map[*PageClient]bool
	register    chan *PageClient
	unregister  chan *PageClient
	done        chan struct{}
	logger      *logging.ChanneledLogger
	mu          sync.RWMutex
}

// NewPageEventBroadcaster creates a new broadcaster instance.
func NewPageEventBroadcaster(logger *logging.ChanneledLogger) *PageEventBroadcaster {
	return &PageEventBroadcaster{
		pageClients: make(map[string]map[*PageClient]bool),
		register:    make(chan *PageClient),
		unregister:  make(chan *PageClient),
		done:        make(chan struct{}),
		logger:      logger,
	}
}

// Run owns client registration until ctx is cancelled, then closes every
// client's send queue. Run it in its own goroutine.
func (b *PageEventBroadcaster) Run(ctx context.Context) {
	defer close(b.done)
	for {
		select {
		case client := <-b.register:
			b.mu.Lock()
			if _, ok := b.pageClients[client.PageKey]; !ok {
				b.pageClients[client.PageKey] = make(map[*PageClient]bool)
			}
			b.pageClients[client.PageKey][client] = true
			b.mu.Unlock()
			b.logger.Realtime().Debug("Page client registered", "pageKey", client.PageKey)

		case client := <-b.unregister:
			b.remove(client)
			b.logger.Realtime().Debug("Page client unregistered", "pageKey", client.PageKey)

		case <-ctx.Done():
			b.mu.Lock()
			for key, clients := range b.pageClients {
				for client := range clients {
					close(client.Send)
				}
				delete(b.pageClients, key)
			}
			b.mu.Unlock()
			b.logger.Realtime().Info("Page event broadcaster stopped")
			return
		}
	}
}

func (b *PageEventBroadcaster) remove(client *PageClient) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if clients, ok := b.pageClients[client.PageKey]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client.Send)
			if len(clients) == 0 {
				delete(b.pageClients, client.PageKey)
			}
		}
	}
}

// Register queues a client for registration. It reports false once the
// broadcaster has stopped.
func (b *PageEventBroadcaster) Register(client *PageClient) bool {
	select {
	case b.register <- client:
		return true
	case <-b.done:
		return false
	}
}

// Unregister queues a client for unregistration.
func (b *PageEventBroadcaster) Unregister(client *PageClient) {
	select {
	case b.unregister <- client:
	case <-b.done:
	}
}

// Publish sends event to every client watching event.PageKey. Slow clients
// whose queue is full miss the event.
func (b *PageEventBroadcaster) Publish(event PageEvent) {
	if event.Type == "" {
		event.Type = EventPageChanged
	}
	message, err := json.Marshal(event)
	if err != nil {
		b.logger.Realtime().Error("Failed to marshal page event", "error", err, "pageKey", event.PageKey)
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	delivered := 0
	for client := range b.pageClients[event.PageKey] {
		select {
		case client.Send <- message:
			delivered++
		default:
		}
	}
	b.logger.Realtime().Debug("Page event published",
		"pageKey", event.PageKey, "operation", event.Operation, "clients", delivered)
}

// ClientCount returns the number of editors watching pageKey.
func (b *PageEventBroadcaster) ClientCount(pageKey string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.pageClients[pageKey])
}
