package dto

// Collaborator payloads, mapped once at the core boundary. Required-field
// validation happens in the itinerary service before anything is stored.

// HotelPayload is the shape produced by the hotel search collaborator.
// Rating arrives on Booking.com's 0-10 scale and is normalized to 0-5
// before storage.
type HotelPayload struct {
	HotelName        string   `json:"hotel_name"`
	HotelDescription string   `json:"hotel_description"`
	Price            *float64 `json:"price"`
	Currency         string   `json:"currency"`
	Rating           float64  `json:"rating"`
	ReviewCount      int      `json:"review_count"`
	RoomPhotoURL     string   `json:"room_photo_url"`
	HotelPhotoURLs   []string `json:"hotel_photo_url"`
	BookingURL       string   `json:"booking_url"`
	Destination      string   `json:"destination"`
}

// FlightPayload is the shape produced by the flight search collaborator.
type FlightPayload struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Price           *float64 `json:"price"`
	Currency        string   `json:"currency"`
	ImageURL        string   `json:"image_url"`
	BookingURL      string   `json:"booking_url"`
	DepartureTime   string   `json:"departure_time"`
	ArrivalTime     string   `json:"arrival_time"`
	OriginCode      string   `json:"origin_code"`
	DestinationCode string   `json:"destination_code"`
}

// PlacePayload is the shape produced by the places collaborator for both
// shop and leisure searches. A non-empty Error means the search failed and
// the payload must be treated as "nothing to add", never stored.
type PlacePayload struct {
	Name         string   `json:"name"`
	FullAddress  string   `json:"full_address"`
	AddressLine2 string   `json:"address_line2"`
	City         string   `json:"city"`
	Postcode     string   `json:"postcode"`
	Street       string   `json:"street"`
	Lat          *float64 `json:"lat"`
	Lon          *float64 `json:"lon"`
	Phone        string   `json:"phone"`
	OpeningHours string   `json:"opening_hours"`
	Website      string   `json:"website"`
	Error        string   `json:"error,omitempty"`
}

// SkippedHotel records one batch item that failed validation. Batch hotel
// insertion is best effort: invalid items are skipped, not aborted on, and
// the skip is reported rather than silent.
type SkippedHotel struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

type AddHotelsResult struct {
	Saved      int            `json:"hotels_saved"`
	HotelNames []string       `json:"hotel_names"`
	Skipped    []SkippedHotel `json:"skipped,omitempty"`
}
