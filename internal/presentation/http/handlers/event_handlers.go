package handlers

import (
	"net/http"
	"slices"
	"time"

	"github.com/AtRiskMedia/pagegrid-go/internal/application/services"
	"github.com/AtRiskMedia/pagegrid-go/internal/domain/repositories"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/observability/logging"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// EventHandlers upgrades editors onto the per-page change feed.
type EventHandlers struct {
	pageService  *services.PageService
	broadcaster  *messaging.PageEventBroadcaster
	logger       *logging.ChanneledLogger
	upgrader     websocket.Upgrader
	pingInterval time.Duration
}

// NewEventHandlers creates event handlers. allowedOrigins follows the CORS
// setting: empty allows any origin.
func NewEventHandlers(pageService *services.PageService, broadcaster *messaging.PageEventBroadcaster, allowedOrigins []string, pingInterval time.Duration, logger *logging.ChanneledLogger) *EventHandlers {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &EventHandlers{
		pageService:  pageService,
		broadcaster:  broadcaster,
		logger:       logger,
		pingInterval: pingInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// GetPageEvents handles GET /api/v1/pages/:key/events - websocket upgrade
func (h *EventHandlers) GetPageEvents(c *gin.Context) {
	key := c.Param("key")
	if _, err := h.pageService.Get(key, repositories.VariantDraft); err != nil {
		respondError(c, h.logger, "pageEvents", err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Realtime().Warn("Websocket upgrade failed", "pageKey", key, "error", err.Error())
		return
	}

	h.logger.Realtime().Info("Editor connected", "pageKey", key)
	h.broadcaster.Serve(messaging.NewPageClient(conn, key), h.pingInterval)
	h.logger.Realtime().Info("Editor disconnected", "pageKey", key)
}
