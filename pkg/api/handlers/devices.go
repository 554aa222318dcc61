package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/urmzd/cecvol/pkg/api/types"
	"github.com/urmzd/cecvol/pkg/device"
)

// DevicesHandler handles device listing endpoints
type DevicesHandler struct {
	controller device.Controller
}

// NewDevicesHandler creates a new devices handler
func NewDevicesHandler(controller device.Controller) *DevicesHandler {
	return &DevicesHandler{controller: controller}
}

// ListDevices handles GET /devices
// @Summary      List all devices
// @Description  Returns the display and every peer seen on the bus
// @Tags         devices
// @Produce      json
// @Success      200  {object}  types.ListDevicesResponse
// @Failure      500  {object}  types.ErrorResponse  "Controller error"
// @Router       /devices [get]
func (h *DevicesHandler) ListDevices(c *gin.Context) {
	result, err := listWithState(c.Request.Context(), h.controller)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.ListDevicesResponse{
		Devices: result,
		Count:   len(result),
	})
}

// GetDevice handles GET /devices/:id
// @Summary      Get device details
// @Description  Returns details for a device by logical role (tv, playback1, ...) or reported name
// @Tags         devices
// @Produce      json
// @Param        id   path      string  true  "Logical role or OSD name"
// @Success      200  {object}  types.DeviceResponse
// @Failure      404  {object}  types.ErrorResponse  "Device not found"
// @Failure      500  {object}  types.ErrorResponse  "Controller error"
// @Router       /devices/{id} [get]
func (h *DevicesHandler) GetDevice(c *gin.Context) {
	ctx := c.Request.Context()

	d, err := h.controller.GetDevice(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.DeviceResponse{
		Device: withState(ctx, h.controller, *d),
	})
}

func listWithState(ctx context.Context, controller device.Controller) ([]types.DeviceWithState, error) {
	devices, err := controller.ListDevices(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]types.DeviceWithState, 0, len(devices))
	for _, d := range devices {
		result = append(result, withState(ctx, controller, d))
	}
	return result, nil
}

func withState(ctx context.Context, controller device.Controller, d device.Device) types.DeviceWithState {
	dws := types.DeviceWithState{
		ID:              d.ID,
		Name:            d.Name,
		Names:           d.Names,
		Type:            d.Type,
		LogicalAddress:  d.LogicalAddress,
		PhysicalAddress: d.PhysicalAddress,
		VendorID:        d.VendorID,
		StateSchema:     d.StateSchema,
	}

	// State is best effort
	if state, err := controller.GetDeviceState(ctx, d.ID); err == nil {
		dws.State = state
	}
	return dws
}
