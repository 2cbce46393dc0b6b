package parking

import "github.com/peekpark/peekpark/domain"

var fixtures = []domain.ParkingLot{
	{ID: "1", Name: "Parking Lot 1", Type: domain.ParkingPrimary, Color: Turquoise, Price: 3, ZoneName: "Downtown", SectorName: "Commercial", StreetName: "Sheikh Zayed Road", TotalSpots: 20, AvailableSpots: 5, Latitude: 24.416058, Longitude: 54.490618},
	{ID: "2", Name: "Parking Lot 2", Type: domain.ParkingStandardResidential, Color: Turquoise, Price: 2, ZoneName: "Residential", SectorName: "Family", StreetName: "Al Wasl Road", TotalSpots: 40, AvailableSpots: 13, Latitude: 24.416001, Longitude: 54.490488},
	{ID: "3", Name: "Parking Lot 3", Type: domain.ParkingStandard, Color: Turquoise, Price: 2, ZoneName: "Business", SectorName: "Corporate", StreetName: "Sheikh Mohammed Bin Rashid Boulevard", TotalSpots: 25, AvailableSpots: 7, Latitude: 24.415949, Longitude: 54.490358},
	{ID: "4", Name: "Parking Lot 4", Type: domain.ParkingPrimary, Color: Turquoise, Price: 3, ZoneName: "Commercial", SectorName: "Retail", StreetName: "street 4", TotalSpots: 50, AvailableSpots: 20, Latitude: 24.416763, Longitude: 54.493786},
	{ID: "5", Name: "Parking Lot 5", Type: domain.ParkingStandard, Color: Turquoise, Price: 2, ZoneName: "Business", SectorName: "Office", StreetName: "Al Saada Street", TotalSpots: 40, AvailableSpots: 2, Latitude: 25.2048, Longitude: 55.2708},
	{ID: "6", Name: "Parking Lot 6", Type: domain.ParkingStandardResidential, Color: Turquoise, Price: 2, ZoneName: "Residential", SectorName: "Apartment", StreetName: "Al Khaleej Street", TotalSpots: 30, AvailableSpots: 8, Latitude: 24.417813, Longitude: 54.493519},
	{ID: "7", Name: "Parking Lot 7", Type: domain.ParkingPrimary, Color: Turquoise, Price: 3, ZoneName: "Transport", SectorName: "Metro", StreetName: "Al Rigga Street", TotalSpots: 30, AvailableSpots: 5, Latitude: 24.417391, Longitude: 54.493284},
	{ID: "8", Name: "Parking Lot 8", Type: domain.ParkingStandard, Color: Turquoise, Price: 2, ZoneName: "Healthcare", SectorName: "Medical", StreetName: "Al Maktoum Street", TotalSpots: 30, AvailableSpots: 3, Latitude: 24.413922, Longitude: 54.492661},
}

// Fixtures returns a copy of the built-in parking lots
func Fixtures() []domain.ParkingLot {
	out := make([]domain.ParkingLot, len(fixtures))
	copy(out, fixtures)
	return out
}
