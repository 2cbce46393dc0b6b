package domain

// ParkingType is the closed set of paid parking categories
type ParkingType string

const (
	ParkingPrimary             ParkingType = "P"
	ParkingStandard            ParkingType = "S"
	ParkingStandardResidential ParkingType = "SR"
	ParkingVillaGuests         ParkingType = "VG"
)

// Valid reports whether t is one of the known parking types
func (t ParkingType) Valid() bool {
	switch t {
	case ParkingPrimary, ParkingStandard, ParkingStandardResidential, ParkingVillaGuests:
		return true
	}
	return false
}

// ParkingTypeConfig holds display metadata for a parking type
type ParkingTypeConfig struct {
	Type            ParkingType `json:"type"`
	Label           string      `json:"label"`
	Color           string      `json:"color"`
	BackgroundColor string      `json:"background_color"`
	Icon            string      `json:"icon"`
	IconColor       string      `json:"icon_color"`
}

// ParkingLot is an immutable fixture describing one paid parking lot
type ParkingLot struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	Type           ParkingType `json:"type"`
	Color          string      `json:"color"`
	Price          float64     `json:"price"`
	ZoneName       string      `json:"zone_name"`
	SectorName     string      `json:"sector_name"`
	StreetName     string      `json:"street_name"`
	TotalSpots     int         `json:"total_spots"`
	AvailableSpots int         `json:"available_spots"`
	Latitude       float64     `json:"latitude"`
	Longitude      float64     `json:"longitude"`
	Distance       *float64    `json:"distance,omitempty"`
}

// Location is a geographic coordinate
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
