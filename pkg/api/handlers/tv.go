package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/cecvol/pkg/api/types"
	"github.com/urmzd/cecvol/pkg/device"
	"github.com/urmzd/cecvol/pkg/device/schema"
)

// tvID is the device ID of the display
const tvID = "tv"

// TVHandler handles display control endpoints
type TVHandler struct {
	controller device.Controller
	validator  *schema.Validator
}

// NewTVHandler creates a new display handler
func NewTVHandler(controller device.Controller, validator *schema.Validator) *TVHandler {
	return &TVHandler{controller: controller, validator: validator}
}

// GetState handles GET /tv/state
// @Summary      Get display state
// @Description  Returns the power and input state tracked from bus traffic
// @Tags         tv
// @Produce      json
// @Success      200  {object}  types.TVStateResponse
// @Failure      503  {object}  types.ErrorResponse  "No bus transport"
// @Router       /tv/state [get]
func (h *TVHandler) GetState(c *gin.Context) {
	h.respondState(c)
}

// SetState handles POST /tv/state
// @Summary      Set display state
// @Description  Applies power, volume_steps, mute and input from a JSON object validated against the display schema
// @Tags         tv
// @Accept       json
// @Produce      json
// @Param        request  body      object  true  "State to set"
// @Success      200      {object}  types.TVStateResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid request"
// @Failure      422      {object}  types.ErrorResponse  "Unsupported input"
// @Failure      503      {object}  types.ErrorResponse  "No bus transport"
// @Router       /tv/state [post]
func (h *TVHandler) SetState(c *gin.Context) {
	ctx := c.Request.Context()

	var req map[string]any
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil || req == nil {
		invalidRequest(c, "Invalid request body")
		return
	}

	d, err := h.controller.GetDevice(ctx, tvID)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.validator.ValidateDevice(d, req); err != nil {
		respondError(c, err)
		return
	}

	if _, err := h.controller.SetDeviceState(ctx, d.ID, req); err != nil {
		respondError(c, err)
		return
	}

	h.respondState(c)
}

// Power handles POST /tv/power
// @Summary      Power the display on or off
// @Tags         tv
// @Accept       json
// @Produce      json
// @Param        request  body      types.PowerRequest  true  "Power state"
// @Success      200      {object}  types.TVStateResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid request"
// @Failure      503      {object}  types.ErrorResponse  "No bus transport"
// @Router       /tv/power [post]
func (h *TVHandler) Power(c *gin.Context) {
	var req types.PowerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, "on is required")
		return
	}

	if err := h.controller.OnOff(c.Request.Context(), *req.On); err != nil {
		respondError(c, err)
		return
	}
	h.respondState(c)
}

// Volume handles POST /tv/volume
// @Summary      Change the volume
// @Description  Presses volume up for positive steps and volume down for negative steps
// @Tags         tv
// @Accept       json
// @Produce      json
// @Param        request  body      types.VolumeRequest  true  "Volume steps"
// @Success      200      {object}  types.TVStateResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid request"
// @Failure      503      {object}  types.ErrorResponse  "No bus transport"
// @Router       /tv/volume [post]
func (h *TVHandler) Volume(c *gin.Context) {
	var req types.VolumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, "steps must be a non-zero integer between -50 and 50")
		return
	}

	if err := h.controller.VolumeChange(c.Request.Context(), req.Steps); err != nil {
		respondError(c, err)
		return
	}
	h.respondState(c)
}

// Mute handles POST /tv/mute
// @Summary      Mute or unmute
// @Tags         tv
// @Accept       json
// @Produce      json
// @Param        request  body      types.MuteRequest  true  "Mute state"
// @Success      200      {object}  types.TVStateResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid request"
// @Failure      503      {object}  types.ErrorResponse  "No bus transport"
// @Router       /tv/mute [post]
func (h *TVHandler) Mute(c *gin.Context) {
	var req types.MuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, "mute is required")
		return
	}

	if err := h.controller.Mute(c.Request.Context(), *req.Mute); err != nil {
		respondError(c, err)
		return
	}
	h.respondState(c)
}

// Input handles POST /tv/input
// @Summary      Select a display input
// @Tags         tv
// @Accept       json
// @Produce      json
// @Param        request  body      types.InputRequest  true  "Input name such as HDMI 2"
// @Success      200      {object}  types.TVStateResponse
// @Failure      400      {object}  types.ErrorResponse  "Invalid request"
// @Failure      422      {object}  types.ErrorResponse  "Unsupported input"
// @Failure      503      {object}  types.ErrorResponse  "No bus transport"
// @Router       /tv/input [post]
func (h *TVHandler) Input(c *gin.Context) {
	var req types.InputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, "input is required")
		return
	}

	if err := h.controller.SelectInput(c.Request.Context(), req.Input); err != nil {
		respondError(c, err)
		return
	}
	h.respondState(c)
}

func (h *TVHandler) respondState(c *gin.Context) {
	state, err := h.controller.Display(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.TVStateResponse{
		Power:        state.Power,
		Input:        state.Input,
		InputName:    state.InputName,
		LocalAddress: state.LocalAddress,
		Timestamp:    time.Now(),
	})
}
