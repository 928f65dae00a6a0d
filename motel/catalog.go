package motel

// Catalog is the provisioning data loaded into a fresh store.
type Catalog struct {
	RoomTypes []RoomType
	Rooms     []Room
	Bookings  []Booking
}

// DevCatalog is the sample motel used by the in-memory store and STORE_SEED.
func DevCatalog() Catalog {
	return Catalog{
		RoomTypes: []RoomType{
			{Name: "Standard", RatePerNight: 80},
			{Name: "Deluxe", RatePerNight: 120},
			{Name: "Suite", RatePerNight: 200},
		},
		Rooms: []Room{
			{Number: "101", Type: "Standard", Status: "available"},
			{Number: "102", Type: "Deluxe", Status: "available"},
			{Number: "103", Type: "Standard", Status: "available"},
			{Number: "201", Type: "Suite", Status: "available"},
		},
	}
}
