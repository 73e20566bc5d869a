package dto

import "tripdesk/internal/models"

type SuggestionResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Price       *float64        `json:"price"`
	Rating      *float64        `json:"rating"`
	ImageURL    string          `json:"image_url,omitempty"`
	BookingURL  string          `json:"booking_url,omitempty"`
	Location    models.Location `json:"location,omitempty"`
	CreatedAt   string          `json:"created_at"`
}

type SuggestionListResponse struct {
	Suggestions []SuggestionResponse `json:"suggestions"`
}

type ItinerarySummaryResponse struct {
	Summary string `json:"summary"`
}

func NewSuggestionResponse(s *models.Suggestion) SuggestionResponse {
	return SuggestionResponse{
		ID:          s.ID.String(),
		Type:        string(s.Kind),
		Title:       s.Title,
		Description: s.Description,
		Price:       s.Price,
		Rating:      s.Rating,
		ImageURL:    s.ImageURL,
		BookingURL:  s.BookingURL,
		Location:    s.Location,
		CreatedAt:   s.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
