package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/peekpark/peekpark/domain"
	"github.com/peekpark/peekpark/internal/parking"
)

// ParkingHandlers serves the static parking catalog
type ParkingHandlers struct {
	catalog *parking.Catalog
	locator parking.Locator
	timeout time.Duration
}

// NewParkingHandlers creates parking handlers. locator resolves the device position
// when a request carries no coordinates; nil always falls back to the default location.
func NewParkingHandlers(catalog *parking.Catalog, locator parking.Locator, timeout time.Duration) *ParkingHandlers {
	return &ParkingHandlers{catalog: catalog, locator: locator, timeout: timeout}
}

// Types lists the parking type configurations and the app palette
func (h *ParkingHandlers) Types(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"types":   parking.TypeConfigs(),
			"palette": parking.Palette(),
		},
	})
}

// Lots lists the lots nearest to lat/lon, or to the resolved device location
func (h *ParkingHandlers) Lots(c *gin.Context) {
	limit := parking.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}

	var resolution parking.Resolution
	if c.Query("lat") != "" || c.Query("lon") != "" {
		loc, ok := coordinates(c)
		if !ok {
			return
		}
		resolution = parking.Resolution{Location: loc}
	} else {
		resolution = parking.ResolveLocation(c.Request.Context(), h.locator, h.timeout)
	}

	lots := h.catalog.Nearest(resolution.Location, len(h.catalog.All()))
	lots = parking.FilterByType(lots, c.Query("type"))
	if len(lots) > limit {
		lots = lots[:limit]
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"lots":     lots,
			"location": resolution.Location,
			"fallback": resolution.Fallback,
			"status":   resolution.Status,
			"district": parking.District(resolution.Location.Latitude, resolution.Location.Longitude),
		},
	})
}

// Lot returns one lot by id
func (h *ParkingHandlers) Lot(c *gin.Context) {
	lot, ok := h.catalog.ByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"reason": "not_found", "message": "Parking lot not found"}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": lot})
}

// District names the Dubai district containing lat/lon
func (h *ParkingHandlers) District(c *gin.Context) {
	loc, ok := coordinates(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"location": loc,
			"district": parking.District(loc.Latitude, loc.Longitude),
		},
	})
}

func coordinates(c *gin.Context) (domain.Location, bool) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
	if errLat != nil || errLon != nil {
		badRequest(c, "lat and lon must be decimal degrees")
		return domain.Location{}, false
	}
	return domain.Location{Latitude: lat, Longitude: lon}, true
}
