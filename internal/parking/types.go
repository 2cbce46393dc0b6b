// Package parking holds the static parking reference data and the location utilities around it.
package parking

import "github.com/peekpark/peekpark/domain"

const defaultIcon = "location-outline"

var typeConfigs = []domain.ParkingTypeConfig{
	{
		Type:            domain.ParkingPrimary,
		Label:           "Primary Parking",
		Color:           Turquoise,
		BackgroundColor: White,
		Icon:            defaultIcon,
		IconColor:       Turquoise,
	},
	{
		Type:            domain.ParkingStandard,
		Label:           "Standard Parking",
		Color:           Black,
		BackgroundColor: Turquoise,
		Icon:            defaultIcon,
		IconColor:       Black,
	},
	{
		Type:            domain.ParkingStandardResidential,
		Label:           "Standard Residential Parking",
		Color:           Black,
		BackgroundColor: Turquoise,
		Icon:            defaultIcon,
		IconColor:       Black,
	},
	{
		Type:            domain.ParkingVillaGuests,
		Label:           "Villa Guests Parking",
		Color:           Gray,
		BackgroundColor: LightGray,
		Icon:            defaultIcon,
		IconColor:       Gray,
	},
}

// TypeConfigs returns the display metadata of every parking type in display order
func TypeConfigs() []domain.ParkingTypeConfig {
	out := make([]domain.ParkingTypeConfig, len(typeConfigs))
	copy(out, typeConfigs)
	return out
}

// TypeConfig looks up the display metadata of a single parking type
func TypeConfig(t domain.ParkingType) (domain.ParkingTypeConfig, bool) {
	for _, c := range typeConfigs {
		if c.Type == t {
			return c, true
		}
	}
	return domain.ParkingTypeConfig{}, false
}
