package api

import (
	"github.com/labstack/echo"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/Aslhee/MobileCafeServer/pkg/accounting"
	"github.com/Aslhee/MobileCafeServer/pkg/storage"
)

// Handler contains all properties to serve the API
type Handler struct {
	nc    *nats.Conn
	store storage.Interface
	acct  *accounting.Service
	pub   accounting.Publisher
}

// NewHandler create a new API handler. pub may be nil to disable
// change notifications.
func NewHandler(nc *nats.Conn, store storage.Interface, acct *accounting.Service, pub accounting.Publisher) *Handler {
	return &Handler{
		nc:    nc,
		store: store,
		acct:  acct,
		pub:   pub,
	}
}

// publish notifies subscribers about a device mutation performed outside
// the accounting service. A nil data payload signals removal.
func (h *Handler) publish(deviceID, topic string, data interface{}) {
	if h.pub == nil {
		return
	}
	h.pub.Publish(deviceID, topic, data)
}

// RegisterRoutes attaches the handlers to the echo web server
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	log.Debug("Register API routes")
	api := e.Group("/api/v1")
	api.GET("/devices", h.handleFetchDevices)
	api.POST("/devices", h.handleCreateDevice)
	api.GET("/devices/:id", h.handleGetDevice)
	api.DELETE("/devices/:id", h.handleDeleteDevice)

	api.POST("/devices/:id/time", h.handleAddTime)
	api.POST("/devices/:id/toggle", h.handleTogglePause)
	api.POST("/devices/:id/lock", h.handleLock)
	api.PUT("/devices/:id/battery", h.handleSetBattery)

	api.GET("/devices/:id/apps", h.handleFetchApps)
	api.PUT("/devices/:id/apps", h.handleReportApps)
	api.PUT("/devices/:id/whitelist", h.handleSaveWhitelist)

	api.GET("/history", h.handleFetchHistory)
	api.GET("/history/summary", h.handleHistorySummary)
	api.GET("/history/:id", h.handleGetHistoryRecord)
	api.PUT("/history/:id/evidence", h.handleSetEvidence)

	api.Any("/realtime-events", h.realtimeEventsHandler())
}
