package parking

import "fmt"

type box struct {
	name                           string
	latMin, latMax, lonMin, lonMax float64
}

func (b box) contains(lat, lon float64) bool {
	return lat >= b.latMin && lat <= b.latMax && lon >= b.lonMin && lon <= b.lonMax
}

// Checked in order; the first containing box wins.
var (
	dubaiDistricts = []box{
		{"Dubai Marina", 25.07, 25.09, 55.13, 55.15},
		{"JBR (Jumeirah Beach Residence)", 25.08, 25.10, 55.12, 55.14},
		{"Downtown Dubai", 25.19, 25.21, 55.27, 55.29},
		{"Business Bay", 25.18, 25.20, 55.25, 55.27},
		{"DIFC", 25.21, 25.23, 55.28, 55.30},
		{"Jumeirah", 25.22, 25.24, 55.24, 55.26},
		{"Al Barsha", 25.11, 25.13, 55.19, 55.21},
		{"Dubai Mall Area", 25.195, 25.205, 55.275, 55.285},
	}

	abuDhabiDistricts = []box{
		{"Abu Dhabi City Center", 24.45, 24.50, 54.35, 54.40},
		{"Abu Dhabi Marina", 24.40, 24.45, 54.48, 54.52},
		{"Corniche Area", 24.47, 24.50, 54.32, 54.37},
		{"Al Reem Island", 24.49, 24.52, 54.40, 54.43},
		{"Al Khalidiyah District", 24.40, 24.42, 54.48, 54.50},
	}

	broadAreas = []box{
		{"Dubai Area", 25.0, 25.4, 55.0, 55.5},
		{"Abu Dhabi Area", 24.2, 24.6, 54.2, 54.7},
		{"Sharjah Area", 25.4, 25.6, 55.4, 55.7},
	}
)

// District names the district containing the coordinate, falling back to the
// broad emirate area and then to the formatted coordinate itself.
func District(lat, lon float64) string {
	for _, group := range [][]box{dubaiDistricts, abuDhabiDistricts, broadAreas} {
		for _, b := range group {
			if b.contains(lat, lon) {
				return b.name
			}
		}
	}
	return fmt.Sprintf("Location (%.3f, %.3f)", lat, lon)
}
