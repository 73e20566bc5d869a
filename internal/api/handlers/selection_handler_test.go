package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"

	"tripdesk/internal/models"
	"tripdesk/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSelectSuggestionHidesForeignConversation(t *testing.T) {
	owner, caller := uuid.New(), uuid.New()
	convID := uuid.New()

	convs := &fakeConversations{conversations: map[uuid.UUID]*models.Conversation{
		convID: {ID: convID, UserID: owner},
	}}
	store := &memoryStore{suggestions: []*models.Suggestion{
		storedHotel(convID, "Hotel Alpha"),
		storedHotel(convID, "Hotel Beta"),
	}}
	itinerary := service.NewItineraryService(store, service.SubstringMatcher{}, zap.NewNop())
	handler := NewSelectionHandler(itinerary, convs, zap.NewNop())

	app := authedApp(caller)
	app.Post("/select_suggestion/:conversationID", handler.SelectSuggestion)

	body := strings.NewReader(`{"suggestion_id":"` + store.suggestions[0].ID.String() + `"}`)
	req := httptest.NewRequest(fiber.MethodPost, "/select_suggestion/"+convID.String(), body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// Nothing in the foreign conversation was deleted.
	assert.Len(t, store.suggestions, 2)
}

func TestSelectSuggestionOwnConversation(t *testing.T) {
	owner := uuid.New()
	convID := uuid.New()

	convs := &fakeConversations{conversations: map[uuid.UUID]*models.Conversation{
		convID: {ID: convID, UserID: owner},
	}}
	store := &memoryStore{suggestions: []*models.Suggestion{
		storedHotel(convID, "Hotel Alpha"),
		storedHotel(convID, "Hotel Beta"),
	}}
	itinerary := service.NewItineraryService(store, service.SubstringMatcher{}, zap.NewNop())
	handler := NewSelectionHandler(itinerary, convs, zap.NewNop())

	app := authedApp(owner)
	app.Post("/select_suggestion/:conversationID", handler.SelectSuggestion)

	body := strings.NewReader(`{"suggestion_id":"` + store.suggestions[1].ID.String() + `"}`)
	req := httptest.NewRequest(fiber.MethodPost, "/select_suggestion/"+convID.String(), body)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Len(t, store.suggestions, 1)
	assert.Equal(t, "Hotel Beta", store.suggestions[0].Title)
}

func TestSelectSuggestionMissingBody(t *testing.T) {
	owner := uuid.New()
	convID := uuid.New()

	convs := &fakeConversations{conversations: map[uuid.UUID]*models.Conversation{
		convID: {ID: convID, UserID: owner},
	}}
	itinerary := service.NewItineraryService(&memoryStore{}, service.SubstringMatcher{}, zap.NewNop())
	handler := NewSelectionHandler(itinerary, convs, zap.NewNop())

	app := authedApp(owner)
	app.Post("/select_suggestion/:conversationID", handler.SelectSuggestion)

	req := httptest.NewRequest(fiber.MethodPost, "/select_suggestion/"+convID.String(), strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
