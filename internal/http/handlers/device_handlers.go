package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/peekpark/peekpark/domain"
)

// DeviceHandlers exposes the identity this device binds accounts to
type DeviceHandlers struct {
	device domain.DeviceIdentity
}

func NewDeviceHandlers(device domain.DeviceIdentity) *DeviceHandlers {
	return &DeviceHandlers{device: device}
}

// Get returns the device id and descriptor
func (h *DeviceHandlers) Get(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"device_id":   h.device.DeviceID(ctx),
			"device_info": h.device.Descriptor(ctx),
		},
	})
}
