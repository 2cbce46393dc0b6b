package parking

import (
	"math"
	"sort"
	"strings"

	"github.com/peekpark/peekpark/domain"
)

const (
	// DefaultLimit is the number of lots Nearest returns when limit is not positive
	DefaultLimit = 10

	earthRadiusKm = 6371.0
)

// Catalog is a read-only set of parking lots
type Catalog struct {
	lots []domain.ParkingLot
	byID map[string]int
}

// NewCatalog creates a catalog over lots. The slice is copied.
func NewCatalog(lots []domain.ParkingLot) *Catalog {
	c := &Catalog{
		lots: make([]domain.ParkingLot, len(lots)),
		byID: make(map[string]int, len(lots)),
	}
	copy(c.lots, lots)
	for i, l := range c.lots {
		c.byID[l.ID] = i
	}
	return c
}

// DefaultCatalog returns a catalog over the built-in fixtures
func DefaultCatalog() *Catalog {
	return NewCatalog(fixtures)
}

// All returns every lot in catalog order without distances
func (c *Catalog) All() []domain.ParkingLot {
	out := make([]domain.ParkingLot, len(c.lots))
	copy(out, c.lots)
	return out
}

// ByID returns the lot with the given id
func (c *Catalog) ByID(id string) (domain.ParkingLot, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.ParkingLot{}, false
	}
	return c.lots[i], true
}

// Nearest sets each lot's distance from loc in kilometres, rounded to one decimal,
// and returns the limit closest lots in ascending distance. Ties keep catalog order.
func (c *Catalog) Nearest(loc domain.Location, limit int) []domain.ParkingLot {
	if limit <= 0 {
		limit = DefaultLimit
	}
	out := c.All()
	for i := range out {
		d := math.Round(Distance(loc, domain.Location{Latitude: out[i].Latitude, Longitude: out[i].Longitude})*10) / 10
		out[i].Distance = &d
	}
	sort.SliceStable(out, func(i, j int) bool { return *out[i].Distance < *out[j].Distance })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// FilterByType keeps lots of type t. An empty type or "all" returns lots unchanged.
func FilterByType(lots []domain.ParkingLot, t string) []domain.ParkingLot {
	if t == "" || strings.EqualFold(t, "all") {
		return lots
	}
	out := make([]domain.ParkingLot, 0, len(lots))
	for _, l := range lots {
		if string(l.Type) == t {
			out = append(out, l)
		}
	}
	return out
}

// Distance is the great-circle distance between a and b in kilometres
func Distance(a, b domain.Location) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
