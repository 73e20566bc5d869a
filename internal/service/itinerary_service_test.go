package service

import (
	"context"
	"testing"

	"tripdesk/internal/dto"
	"tripdesk/internal/models"
	"tripdesk/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeStore is an in-memory SuggestionStore with the same observable
// behavior as the pgx repository, selection exclusivity included.
type fakeStore struct {
	suggestions []*models.Suggestion
}

func (f *fakeStore) Create(_ context.Context, s *models.Suggestion) error {
	f.suggestions = append(f.suggestions, s)
	return nil
}

func (f *fakeStore) ListByConversation(_ context.Context, conversationID uuid.UUID) ([]*models.Suggestion, error) {
	out := make([]*models.Suggestion, 0)
	for _, s := range f.suggestions {
		if s.ConversationID == conversationID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) ExistsByTitle(_ context.Context, conversationID uuid.UUID, kind models.SuggestionKind, title string) (bool, error) {
	for _, s := range f.suggestions {
		if s.ConversationID == conversationID && s.Kind == kind && s.Title == title {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) SelectExclusive(_ context.Context, conversationID, id uuid.UUID) (*models.Suggestion, int64, error) {
	var survivor *models.Suggestion
	for _, s := range f.suggestions {
		if s.ConversationID == conversationID && s.ID == id {
			survivor = s
			break
		}
	}
	if survivor == nil {
		return nil, 0, repository.ErrNotFound
	}

	kept := f.suggestions[:0]
	var removed int64
	for _, s := range f.suggestions {
		if s.ConversationID == conversationID && s.Kind == survivor.Kind && s.ID != survivor.ID {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	f.suggestions = kept
	return survivor, removed, nil
}

func newTestService() (*ItineraryService, *fakeStore) {
	store := &fakeStore{}
	return NewItineraryService(store, SubstringMatcher{}, zap.NewNop()), store
}

func floatPtr(v float64) *float64 { return &v }

func TestAddHotelsSkipsNamelessAndReports(t *testing.T) {
	svc, store := newTestService()
	convID := uuid.New()

	result, err := svc.AddHotels(context.Background(), convID, []dto.HotelPayload{
		{HotelName: "Hotel Alpha", Price: floatPtr(500)},
		{HotelName: ""},
		{HotelName: "Hotel Beta", Price: floatPtr(600)},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Saved)
	assert.Equal(t, []string{"Hotel Alpha", "Hotel Beta"}, result.HotelNames)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, 1, result.Skipped[0].Index)
	assert.Equal(t, "missing hotel_name", result.Skipped[0].Reason)
	assert.Len(t, store.suggestions, 2)
}

func TestAddHotelsDoesNotDeduplicate(t *testing.T) {
	svc, store := newTestService()
	convID := uuid.New()

	for i := 0; i < 2; i++ {
		_, err := svc.AddHotels(context.Background(), convID, []dto.HotelPayload{
			{HotelName: "Hotel Alpha"},
		})
		require.NoError(t, err)
	}

	assert.Len(t, store.suggestions, 2)
}

func TestAddHotelsNormalizesRating(t *testing.T) {
	svc, store := newTestService()
	convID := uuid.New()

	_, err := svc.AddHotels(context.Background(), convID, []dto.HotelPayload{
		{HotelName: "Hotel Alpha", Rating: 8},
		{HotelName: "Hotel Beta", Rating: 8.7},
		{HotelName: "Hotel Gamma"},
	})
	require.NoError(t, err)

	require.Len(t, store.suggestions, 3)
	require.NotNil(t, store.suggestions[0].Rating)
	assert.InDelta(t, 4.0, *store.suggestions[0].Rating, 0.001)
	require.NotNil(t, store.suggestions[1].Rating)
	assert.InDelta(t, 4.4, *store.suggestions[1].Rating, 0.001)
	require.NotNil(t, store.suggestions[2].Rating)
	assert.Zero(t, *store.suggestions[2].Rating)
}

func TestAddHotelsImageFallbackChain(t *testing.T) {
	svc, store := newTestService()
	convID := uuid.New()

	_, err := svc.AddHotels(context.Background(), convID, []dto.HotelPayload{
		{HotelName: "Room photo wins", RoomPhotoURL: "room.jpg", HotelPhotoURLs: []string{"hotel.jpg"}},
		{HotelName: "Hotel photo next", HotelPhotoURLs: []string{"hotel.jpg"}},
		{HotelName: "Nothing at all"},
	})
	require.NoError(t, err)

	require.Len(t, store.suggestions, 3)
	assert.Equal(t, "room.jpg", store.suggestions[0].ImageURL)
	assert.Equal(t, "hotel.jpg", store.suggestions[1].ImageURL)
	assert.Equal(t, "N/A", store.suggestions[2].ImageURL)
}

func TestAddFlightRequiresTitle(t *testing.T) {
	svc, store := newTestService()

	_, err := svc.AddFlight(context.Background(), uuid.New(), dto.FlightPayload{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, store.suggestions)
}

func TestAddFlightStoresRouteCodes(t *testing.T) {
	svc, store := newTestService()
	convID := uuid.New()

	s, err := svc.AddFlight(context.Background(), convID, dto.FlightPayload{
		Title:           "KLM 1233",
		Price:           floatPtr(120),
		OriginCode:      "AMS",
		DestinationCode: "CDG",
		DepartureTime:   "2026-10-01T08:30",
	})
	require.NoError(t, err)

	assert.Equal(t, models.KindFlight, s.Kind)
	assert.Equal(t, "AMS", s.Location.String("origin"))
	assert.Equal(t, "CDG", s.Location.String("destination"))
	require.Len(t, store.suggestions, 1)
}

func TestAddShopIdempotentByTitle(t *testing.T) {
	svc, store := newTestService()
	convID := uuid.New()
	place := dto.PlacePayload{Name: "Corner Market", FullAddress: "1 Rue de Rivoli"}

	added, err := svc.AddShop(context.Background(), convID, place)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = svc.AddShop(context.Background(), convID, place)
	require.NoError(t, err)
	assert.False(t, added)

	assert.Len(t, store.suggestions, 1)
}

func TestAddShopErrorMarkerIsQuietNoOp(t *testing.T) {
	svc, store := newTestService()

	added, err := svc.AddShop(context.Background(), uuid.New(), dto.PlacePayload{
		Name:  "Corner Market",
		Error: "geocoding failed",
	})
	require.NoError(t, err)
	assert.False(t, added)
	assert.Empty(t, store.suggestions)
}

func TestAddLeisureSameTitleAsShopIsAllowed(t *testing.T) {
	svc, store := newTestService()
	convID := uuid.New()

	added, err := svc.AddShop(context.Background(), convID, dto.PlacePayload{Name: "Grand Bazaar"})
	require.NoError(t, err)
	assert.True(t, added)

	// Title dedup is per kind: a leisure entry may share a shop's title.
	added, err = svc.AddLeisure(context.Background(), convID, dto.PlacePayload{Name: "Grand Bazaar"})
	require.NoError(t, err)
	assert.True(t, added)

	assert.Len(t, store.suggestions, 2)
}

func TestSelectKeepsOneAndRemovesSiblings(t *testing.T) {
	svc, _ := newTestService()
	convID := uuid.New()

	_, err := svc.AddHotels(context.Background(), convID, []dto.HotelPayload{
		{HotelName: "Hotel Alpha", Rating: 6},
		{HotelName: "Hotel Beta", Rating: 8},
	})
	require.NoError(t, err)
	_, err = svc.AddFlight(context.Background(), convID, dto.FlightPayload{Title: "KLM 1233", OriginCode: "AMS", DestinationCode: "CDG"})
	require.NoError(t, err)

	prefs := models.Preferences{"origin": "Amsterdam (AMS)", "destination": "Paris (CDG)"}
	it, err := svc.Project(context.Background(), convID, prefs)
	require.NoError(t, err)
	require.Len(t, it.Stays, 2)

	chosen := it.Stays[1]
	sel, err := svc.Select(context.Background(), convID, chosen.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hotel Beta", sel.Title)
	assert.Equal(t, models.KindHotel, sel.Kind)
	assert.Equal(t, int64(1), sel.Removed)

	it, err = svc.Project(context.Background(), convID, prefs)
	require.NoError(t, err)
	require.Len(t, it.Stays, 1)
	assert.Equal(t, "Hotel Beta", it.Stays[0].Title)
	require.NotNil(t, it.Stays[0].Rating)
	assert.InDelta(t, 4.0, *it.Stays[0].Rating, 0.001)

	// The flight is a different kind and survives untouched.
	require.NotNil(t, it.Outbound)
	assert.Equal(t, "KLM 1233", it.Outbound.Title)
}

func TestSelectUnknownIDLeavesStoreUnchanged(t *testing.T) {
	svc, store := newTestService()
	convID := uuid.New()

	_, err := svc.AddHotels(context.Background(), convID, []dto.HotelPayload{
		{HotelName: "Hotel Alpha"},
		{HotelName: "Hotel Beta"},
	})
	require.NoError(t, err)

	_, err = svc.Select(context.Background(), convID, uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Len(t, store.suggestions, 2)
}

func TestSelectIsScopedToConversation(t *testing.T) {
	svc, store := newTestService()
	convA := uuid.New()
	convB := uuid.New()

	_, err := svc.AddHotels(context.Background(), convA, []dto.HotelPayload{{HotelName: "Hotel Alpha"}})
	require.NoError(t, err)
	_, err = svc.AddHotels(context.Background(), convB, []dto.HotelPayload{{HotelName: "Hotel Beta"}})
	require.NoError(t, err)

	otherID := store.suggestions[1].ID
	_, err = svc.Select(context.Background(), convA, otherID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Len(t, store.suggestions, 2)
}
