package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"tripdesk/internal/dto"
	"tripdesk/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrValidation marks a payload that is missing its required name or title
// field. Batch operations record it per item instead of failing outright.
var ErrValidation = errors.New("validation failed")

// imageUnavailable is stored when neither a room photo nor a general hotel
// photo is present.
const imageUnavailable = "N/A"

// SuggestionStore is the persistence surface the itinerary core needs. The
// pgx repository implements it in production; tests run on an in-memory
// fake.
type SuggestionStore interface {
	Create(ctx context.Context, s *models.Suggestion) error
	ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]*models.Suggestion, error)
	ExistsByTitle(ctx context.Context, conversationID uuid.UUID, kind models.SuggestionKind, title string) (bool, error)
	SelectExclusive(ctx context.Context, conversationID, id uuid.UUID) (*models.Suggestion, int64, error)
}

// Selection is the outcome of finalizing one suggestion.
type Selection struct {
	Title   string
	Kind    models.SuggestionKind
	Removed int64
}

// ItineraryService owns all itinerary mutations and the projection. Search
// agents and the selection endpoint call into it; it never performs network
// I/O itself.
type ItineraryService struct {
	store   SuggestionStore
	matcher FlightMatcher
	logger  *zap.Logger
}

func NewItineraryService(store SuggestionStore, matcher FlightMatcher, logger *zap.Logger) *ItineraryService {
	return &ItineraryService{
		store:   store,
		matcher: matcher,
		logger:  logger,
	}
}

// AddHotels stores a batch of hotel suggestions. The batch is best effort:
// an item without a hotel name is skipped and reported in the result, and
// the remaining items are still inserted. Hotels are never deduplicated;
// exclusivity comes later through Select.
func (s *ItineraryService) AddHotels(ctx context.Context, conversationID uuid.UUID, hotels []dto.HotelPayload) (*dto.AddHotelsResult, error) {
	result := &dto.AddHotelsResult{HotelNames: make([]string, 0, len(hotels))}

	for i, hotel := range hotels {
		if hotel.HotelName == "" {
			s.logger.Warn("Skipping hotel without a name",
				zap.String("conversation_id", conversationID.String()),
				zap.Int("index", i),
			)
			result.Skipped = append(result.Skipped, dto.SkippedHotel{
				Index:  i,
				Reason: "missing hotel_name",
			})
			continue
		}

		suggestion := &models.Suggestion{
			ID:             uuid.New(),
			ConversationID: conversationID,
			Kind:           models.KindHotel,
			Title:          hotel.HotelName,
			Description:    hotel.HotelDescription,
			Price:          hotel.Price,
			Rating:         normalizeRating(hotel.Rating),
			ImageURL:       resolveHotelImage(hotel),
			BookingURL:     hotel.BookingURL,
			Location:       models.Location{"address": hotel.Destination},
			CreatedAt:      time.Now().UTC(),
		}

		if err := s.store.Create(ctx, suggestion); err != nil {
			return nil, fmt.Errorf("failed to store hotel %q: %w", hotel.HotelName, err)
		}

		result.Saved++
		result.HotelNames = append(result.HotelNames, hotel.HotelName)
	}

	return result, nil
}

// AddFlight stores a flight suggestion. Flights are not deduplicated:
// repeated searches may legitimately add alternatives.
func (s *ItineraryService) AddFlight(ctx context.Context, conversationID uuid.UUID, flight dto.FlightPayload) (*models.Suggestion, error) {
	if flight.Title == "" {
		return nil, fmt.Errorf("%w: flight payload has no title", ErrValidation)
	}

	suggestion := &models.Suggestion{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Kind:           models.KindFlight,
		Title:          flight.Title,
		Description:    flight.Description,
		Price:          flight.Price,
		ImageURL:       flight.ImageURL,
		BookingURL:     flight.BookingURL,
		Location: models.Location{
			"origin":      flight.OriginCode,
			"destination": flight.DestinationCode,
			"departure":   flight.DepartureTime,
		},
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.Create(ctx, suggestion); err != nil {
		return nil, fmt.Errorf("failed to store flight %q: %w", flight.Title, err)
	}

	return suggestion, nil
}

// AddShop stores a shop suggestion unless the payload carries an error
// marker, has no name, or a shop with the same title already exists for the
// conversation. All three cases are quiet no-ops. Returns whether a row was
// added.
func (s *ItineraryService) AddShop(ctx context.Context, conversationID uuid.UUID, place dto.PlacePayload) (bool, error) {
	return s.addPlace(ctx, conversationID, models.KindShop, place)
}

// AddLeisure is AddShop for leisure suggestions, with the same idempotency
// by title.
func (s *ItineraryService) AddLeisure(ctx context.Context, conversationID uuid.UUID, place dto.PlacePayload) (bool, error) {
	return s.addPlace(ctx, conversationID, models.KindLeisure, place)
}

func (s *ItineraryService) addPlace(ctx context.Context, conversationID uuid.UUID, kind models.SuggestionKind, place dto.PlacePayload) (bool, error) {
	if place.Error != "" {
		s.logger.Info("Place search returned an error marker, nothing to add",
			zap.String("kind", string(kind)),
			zap.String("error", place.Error),
		)
		return false, nil
	}
	if place.Name == "" {
		s.logger.Warn("Place payload has no name, skipping", zap.String("kind", string(kind)))
		return false, nil
	}

	exists, err := s.store.ExistsByTitle(ctx, conversationID, kind, place.Name)
	if err != nil {
		return false, fmt.Errorf("failed to check for existing %s: %w", kind, err)
	}
	if exists {
		s.logger.Debug("Place already stored, skipping duplicate",
			zap.String("kind", string(kind)),
			zap.String("title", place.Name),
		)
		return false, nil
	}

	description := place.FullAddress
	if description == "" {
		description = place.AddressLine2
	}

	suggestion := &models.Suggestion{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Kind:           kind,
		Title:          place.Name,
		Description:    description,
		BookingURL:     place.Website,
		Location: models.Location{
			"address":       place.FullAddress,
			"lat":           place.Lat,
			"lon":           place.Lon,
			"phone":         place.Phone,
			"opening_hours": place.OpeningHours,
			"city":          place.City,
			"postcode":      place.Postcode,
			"street":        place.Street,
		},
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.Create(ctx, suggestion); err != nil {
		return false, fmt.Errorf("failed to store %s %q: %w", kind, place.Name, err)
	}

	return true, nil
}

// Select finalizes one suggestion: the chosen row survives and every other
// suggestion of the same kind in the conversation is deleted. This is the
// only operation that restores the one-per-kind invariant.
func (s *ItineraryService) Select(ctx context.Context, conversationID, suggestionID uuid.UUID) (*Selection, error) {
	survivor, removed, err := s.store.SelectExclusive(ctx, conversationID, suggestionID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Suggestion selected",
		zap.String("conversation_id", conversationID.String()),
		zap.String("title", survivor.Title),
		zap.String("kind", string(survivor.Kind)),
		zap.Int64("removed", removed),
	)

	return &Selection{
		Title:   survivor.Title,
		Kind:    survivor.Kind,
		Removed: removed,
	}, nil
}

// Project rebuilds the itinerary view from the suggestion log. The returned
// value is fresh on every call and reflects every mutation committed before
// the call.
func (s *ItineraryService) Project(ctx context.Context, conversationID uuid.UUID, prefs models.Preferences) (*Itinerary, error) {
	suggestions, err := s.store.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load suggestions: %w", err)
	}

	return buildItinerary(suggestions, prefs.Origin(), prefs.Destination(), s.matcher), nil
}

// ListSuggestions exposes the raw suggestion log for the conversation.
func (s *ItineraryService) ListSuggestions(ctx context.Context, conversationID uuid.UUID) ([]*models.Suggestion, error) {
	return s.store.ListByConversation(ctx, conversationID)
}

// normalizeRating maps Booking.com's 0-10 review score onto the stored 0-5
// scale, rounded to one decimal. Zero or absent stays zero.
func normalizeRating(rating10 float64) *float64 {
	normalized := 0.0
	if rating10 > 0 {
		normalized = math.Round(rating10*5) / 10
	}
	return &normalized
}

// resolveHotelImage prefers a room-level photo, falls back to the first
// general hotel photo, then to the unavailable sentinel.
func resolveHotelImage(hotel dto.HotelPayload) string {
	if hotel.RoomPhotoURL != "" && hotel.RoomPhotoURL != imageUnavailable {
		return hotel.RoomPhotoURL
	}
	if len(hotel.HotelPhotoURLs) > 0 && hotel.HotelPhotoURLs[0] != "" {
		return hotel.HotelPhotoURLs[0]
	}
	return imageUnavailable
}
