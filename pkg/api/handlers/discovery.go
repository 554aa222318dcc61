package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/cecvol/pkg/api/types"
	"github.com/urmzd/cecvol/pkg/device"
)

// heartbeatInterval paces keepalives on long-lived event streams
var heartbeatInterval = 30 * time.Second

// DiscoveryHandler handles bus polling and event endpoints
type DiscoveryHandler struct {
	controller device.Controller
	subscriber device.EventSubscriber
}

// NewDiscoveryHandler creates a new discovery handler
func NewDiscoveryHandler(controller device.Controller, subscriber device.EventSubscriber) *DiscoveryHandler {
	return &DiscoveryHandler{
		controller: controller,
		subscriber: subscriber,
	}
}

// Poll handles POST /discovery/poll
// @Summary      Poll the bus
// @Description  Asks every plausible peer for its physical address, name and power status
// @Tags         discovery
// @Produce      json
// @Success      200  {object}  types.PollResponse
// @Failure      503  {object}  types.ErrorResponse  "No bus transport"
// @Failure      500  {object}  types.ErrorResponse  "Controller error"
// @Router       /discovery/poll [post]
func (h *DiscoveryHandler) Poll(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.controller.PollDevices(ctx); err != nil {
		respondError(c, err)
		return
	}

	devices, err := listWithState(ctx, h.controller)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.PollResponse{
		Status:  "polled",
		Devices: devices,
	})
}

// Events handles GET /discovery/events (SSE stream)
// @Summary      Subscribe to bus events
// @Description  Server-Sent Events stream of frames, discovered devices, power and input changes
// @Tags         discovery
// @Produce      text/event-stream
// @Success      200  {string}  string  "SSE event stream"
// @Router       /discovery/events [get]
func (h *DiscoveryHandler) Events(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	eventChan := h.subscriber.Subscribe()
	defer h.subscriber.Unsubscribe(eventChan)

	sendSSEEvent(c.Writer, "connected", map[string]any{
		"timestamp": time.Now(),
		"message":   "Connected to bus event stream",
	})
	c.Writer.Flush()

	clientGone := c.Request.Context().Done()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-clientGone:
			return

		case event, ok := <-eventChan:
			if !ok {
				return
			}
			sendSSEEvent(c.Writer, event.Type, event)
			c.Writer.Flush()

		case <-ticker.C:
			sendSSEEvent(c.Writer, "heartbeat", map[string]any{
				"timestamp": time.Now(),
			})
			c.Writer.Flush()
		}
	}
}

// sendSSEEvent writes an SSE event to the response
func sendSSEEvent(w io.Writer, eventType string, data any) {
	jsonData, _ := json.Marshal(data)
	io.WriteString(w, "event: "+eventType+"\n")
	io.WriteString(w, "data: "+string(jsonData)+"\n\n")
}
