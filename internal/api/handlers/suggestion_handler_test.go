package handlers

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"tripdesk/internal/models"
	"tripdesk/internal/repository"
	"tripdesk/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeConversations implements conversationReader over a map.
type fakeConversations struct {
	conversations map[uuid.UUID]*models.Conversation
}

func (f *fakeConversations) GetByID(_ context.Context, id uuid.UUID) (*models.Conversation, error) {
	if c, ok := f.conversations[id]; ok {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

// memoryStore implements service.SuggestionStore for handler tests.
type memoryStore struct {
	suggestions []*models.Suggestion
}

func (m *memoryStore) Create(_ context.Context, s *models.Suggestion) error {
	m.suggestions = append(m.suggestions, s)
	return nil
}

func (m *memoryStore) ListByConversation(_ context.Context, conversationID uuid.UUID) ([]*models.Suggestion, error) {
	out := make([]*models.Suggestion, 0)
	for _, s := range m.suggestions {
		if s.ConversationID == conversationID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memoryStore) ExistsByTitle(_ context.Context, conversationID uuid.UUID, kind models.SuggestionKind, title string) (bool, error) {
	for _, s := range m.suggestions {
		if s.ConversationID == conversationID && s.Kind == kind && s.Title == title {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryStore) SelectExclusive(_ context.Context, conversationID, id uuid.UUID) (*models.Suggestion, int64, error) {
	var survivor *models.Suggestion
	for _, s := range m.suggestions {
		if s.ConversationID == conversationID && s.ID == id {
			survivor = s
			break
		}
	}
	if survivor == nil {
		return nil, 0, repository.ErrNotFound
	}

	kept := m.suggestions[:0]
	var removed int64
	for _, s := range m.suggestions {
		if s.ConversationID == conversationID && s.Kind == survivor.Kind && s.ID != survivor.ID {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	m.suggestions = kept
	return survivor, removed, nil
}

// authedApp builds a fiber app whose middleware authenticates every request
// as callerID, the way the JWT middleware would.
func authedApp(callerID uuid.UUID) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", callerID.String())
		c.Locals("email", "caller@example.com")
		return c.Next()
	})
	return app
}

func storedHotel(conversationID uuid.UUID, title string) *models.Suggestion {
	return &models.Suggestion{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Kind:           models.KindHotel,
		Title:          title,
		Location:       models.Location{},
		CreatedAt:      time.Now(),
	}
}

func TestListSuggestionsHidesForeignConversation(t *testing.T) {
	owner, caller := uuid.New(), uuid.New()
	convID := uuid.New()

	convs := &fakeConversations{conversations: map[uuid.UUID]*models.Conversation{
		convID: {ID: convID, UserID: owner},
	}}
	store := &memoryStore{suggestions: []*models.Suggestion{storedHotel(convID, "Hotel Alpha")}}
	itinerary := service.NewItineraryService(store, service.SubstringMatcher{}, zap.NewNop())
	handler := NewSuggestionHandler(itinerary, convs, zap.NewNop())

	app := authedApp(caller)
	app.Get("/suggestions/:conversationID", handler.ListSuggestions)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/suggestions/"+convID.String(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "Hotel Alpha")
}

func TestListSuggestionsOwnConversation(t *testing.T) {
	owner := uuid.New()
	convID := uuid.New()

	convs := &fakeConversations{conversations: map[uuid.UUID]*models.Conversation{
		convID: {ID: convID, UserID: owner},
	}}
	store := &memoryStore{suggestions: []*models.Suggestion{storedHotel(convID, "Hotel Alpha")}}
	itinerary := service.NewItineraryService(store, service.SubstringMatcher{}, zap.NewNop())
	handler := NewSuggestionHandler(itinerary, convs, zap.NewNop())

	app := authedApp(owner)
	app.Get("/suggestions/:conversationID", handler.ListSuggestions)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/suggestions/"+convID.String(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Hotel Alpha")
}

func TestItinerarySummaryHidesForeignConversation(t *testing.T) {
	owner, caller := uuid.New(), uuid.New()
	convID := uuid.New()

	convs := &fakeConversations{conversations: map[uuid.UUID]*models.Conversation{
		convID: {ID: convID, UserID: owner},
	}}
	store := &memoryStore{}
	itinerary := service.NewItineraryService(store, service.SubstringMatcher{}, zap.NewNop())
	handler := NewSuggestionHandler(itinerary, convs, zap.NewNop())

	app := authedApp(caller)
	app.Get("/suggestions/:conversationID/itinerary-summary", handler.ItinerarySummary)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/suggestions/"+convID.String()+"/itinerary-summary", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestItinerarySummaryUnknownConversation(t *testing.T) {
	caller := uuid.New()

	convs := &fakeConversations{conversations: map[uuid.UUID]*models.Conversation{}}
	itinerary := service.NewItineraryService(&memoryStore{}, service.SubstringMatcher{}, zap.NewNop())
	handler := NewSuggestionHandler(itinerary, convs, zap.NewNop())

	app := authedApp(caller)
	app.Get("/suggestions/:conversationID/itinerary-summary", handler.ItinerarySummary)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/suggestions/"+uuid.NewString()+"/itinerary-summary", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
