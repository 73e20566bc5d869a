package models

import (
	"time"

	"github.com/google/uuid"
)

type SuggestionKind string

const (
	KindFlight  SuggestionKind = "flight"
	KindHotel   SuggestionKind = "hotel"
	KindShop    SuggestionKind = "shop"
	KindLeisure SuggestionKind = "leisure"
)

// Location is the kind-specific geodata bag stored as JSONB. Flights keep
// {origin, destination} airport codes; hotels and POIs keep address fields.
type Location map[string]any

func (l Location) String(key string) string {
	if l == nil {
		return ""
	}
	if v, ok := l[key].(string); ok {
		return v
	}
	return ""
}

// Suggestion is one persisted itinerary candidate scoped to a conversation.
// Price and Rating are pointers: an absent value is not the same as zero and
// must not be counted in cost rollups.
type Suggestion struct {
	ID             uuid.UUID      `db:"id"`
	ConversationID uuid.UUID      `db:"conversation_id"`
	Kind           SuggestionKind `db:"kind"`
	Title          string         `db:"title"`
	Description    string         `db:"description"`
	Price          *float64       `db:"price"`
	Rating         *float64       `db:"rating"`
	ImageURL       string         `db:"image_url"`
	BookingURL     string         `db:"booking_url"`
	Location       Location       `db:"location"`
	CreatedAt      time.Time      `db:"created_at"`
}
