package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/urmzd/cecvol/pkg/api/types"
	"github.com/urmzd/cecvol/pkg/cec"
	"github.com/urmzd/cecvol/pkg/device"
)

const wsWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Local control surface; any origin may watch
	CheckOrigin: func(r *http.Request) bool { return true },
}

// BusHandler handles raw bus access endpoints
type BusHandler struct {
	controller device.Controller
	subscriber device.EventSubscriber
}

// NewBusHandler creates a new bus handler
func NewBusHandler(controller device.Controller, subscriber device.EventSubscriber) *BusHandler {
	return &BusHandler{controller: controller, subscriber: subscriber}
}

// Raw handles POST /bus/raw
// @Summary      Transmit a raw frame
// @Description  Parses a hex frame (header byte, opcode, operands) and transmits it
// @Tags         bus
// @Accept       json
// @Produce      json
// @Param        request  body      types.RawFrameRequest  true  "Hex frame"
// @Success      200      {object}  types.RawFrameResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid frame"
// @Failure      503      {object}  types.ErrorResponse  "No bus transport"
// @Failure      500      {object}  types.ErrorResponse  "Transmit failed"
// @Router       /bus/raw [post]
func (h *BusHandler) Raw(c *gin.Context) {
	var req types.RawFrameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, "frame is required")
		return
	}

	frame, err := cec.ParseFrameHex(req.Frame)
	if err != nil {
		invalidRequest(c, err.Error())
		return
	}

	if err := h.controller.SendRaw(c.Request.Context(), frame); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.RawFrameResponse{
		Status: "sent",
		Frame:  cec.FormatFrame(frame),
	})
}

// Watch handles GET /bus/ws
// @Summary      Watch bus traffic
// @Description  WebSocket stream of bus events as JSON text messages
// @Tags         bus
// @Success      101  {string}  string  "Switching protocols"
// @Router       /bus/ws [get]
func (h *BusHandler) Watch(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	eventChan := h.subscriber.Subscribe()
	defer h.subscriber.Unsubscribe(eventChan)

	// Incoming messages are ignored; reading surfaces the peer closing
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

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
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(event); err != nil {
				log.Debug().Err(err).Msg("WebSocket write failed")
				return
			}

		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
		}
	}
}
