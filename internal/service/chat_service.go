package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tripdesk/internal/dto"
	"tripdesk/internal/models"
	"tripdesk/internal/repository"
	"tripdesk/pkg/config"

	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.uber.org/zap"
)

// Collaborator search agents. The chat loop only ever talks to these
// interfaces; the Booking.com and Geoapify clients in internal/search
// implement them, and tests substitute fakes.

type HotelSearcher interface {
	SearchHotels(ctx context.Context, city, arrival, departure string, priceMax float64, adults int) ([]dto.HotelPayload, error)
}

type FlightSearcher interface {
	SearchFlights(ctx context.Context, originCity, destinationCity, departureDate string, adults int) (*dto.FlightPayload, error)
}

type PlaceSearcher interface {
	SearchPlaces(ctx context.Context, city, categories string, limit int) (*dto.PlacePayload, error)
}

const (
	maxToolRounds      = 6
	maxHistoryMessages = 30
)

// ChatService drives one chat turn: it persists the user message, runs the
// OpenAI tool-calling loop against the itinerary core and the search
// collaborators, and persists the assistant reply. It is a thin driver: all
// itinerary semantics live in ItineraryService.
type ChatService struct {
	client    openai.Client
	model     string
	itinerary *ItineraryService
	convRepo  *repository.ConversationRepository
	msgRepo   *repository.MessageRepository
	hotels    HotelSearcher
	flights   FlightSearcher
	places    PlaceSearcher
	logger    *zap.Logger
}

func NewChatService(
	cfg *config.OpenAIConfig,
	itinerary *ItineraryService,
	convRepo *repository.ConversationRepository,
	msgRepo *repository.MessageRepository,
	hotels HotelSearcher,
	flights FlightSearcher,
	places PlaceSearcher,
	logger *zap.Logger,
) *ChatService {
	return &ChatService{
		client:    openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:     cfg.Model,
		itinerary: itinerary,
		convRepo:  convRepo,
		msgRepo:   msgRepo,
		hotels:    hotels,
		flights:   flights,
		places:    places,
		logger:    logger,
	}
}

// ProcessMessage handles one user turn and returns the assistant's reply.
func (s *ChatService) ProcessMessage(ctx context.Context, conversation *models.Conversation, userMessage string) (string, error) {
	if err := s.saveMessage(ctx, conversation.ID, models.RoleUser, userMessage); err != nil {
		return "", fmt.Errorf("failed to persist user message: %w", err)
	}

	systemPrompt, err := s.buildSystemPrompt(ctx, conversation)
	if err != nil {
		return "", err
	}

	history, err := s.msgRepo.ListByConversation(ctx, conversation.ID, maxHistoryMessages)
	if err != nil {
		return "", fmt.Errorf("failed to load chat history: %w", err)
	}

	messages := []openai.ChatCompletionMessageParamUnion{openai.SystemMessage(systemPrompt)}
	for _, m := range history {
		switch m.Role {
		case models.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(s.model),
		Messages: messages,
		Tools:    assistantTools(),
	}

	var reply string
	for round := 0; round < maxToolRounds; round++ {
		completion, err := s.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return "", fmt.Errorf("chat completion failed: %w", err)
		}
		if len(completion.Choices) == 0 {
			return "", fmt.Errorf("chat completion returned no choices")
		}

		message := completion.Choices[0].Message
		if len(message.ToolCalls) == 0 {
			reply = message.Content
			break
		}

		params.Messages = append(params.Messages, message.ToParam())
		for _, call := range message.ToolCalls {
			result := s.dispatchTool(ctx, conversation, call.Function.Name, call.Function.Arguments)
			params.Messages = append(params.Messages, openai.ToolMessage(result, call.ID))
		}
	}

	if reply == "" {
		reply = "I could not finish that request, please try again."
	}

	if err := s.saveMessage(ctx, conversation.ID, models.RoleAssistant, reply); err != nil {
		return "", fmt.Errorf("failed to persist assistant message: %w", err)
	}

	return reply, nil
}

func (s *ChatService) saveMessage(ctx context.Context, conversationID uuid.UUID, role models.MessageRole, content string) error {
	return s.msgRepo.Create(ctx, &models.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Role:           role,
		Content:        sanitizeUTF8(content),
		CreatedAt:      time.Now().UTC(),
	})
}

// buildSystemPrompt embeds the trip preferences and the current itinerary
// projection so the model always reasons over committed state.
func (s *ChatService) buildSystemPrompt(ctx context.Context, conversation *models.Conversation) (string, error) {
	itinerary, err := s.itinerary.Project(ctx, conversation.ID, conversation.Preferences)
	if err != nil {
		return "", fmt.Errorf("failed to project itinerary: %w", err)
	}

	itineraryJSON, err := json.Marshal(itinerary)
	if err != nil {
		return "", err
	}

	prefsJSON, err := json.Marshal(conversation.Preferences)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`You are a friendly travel-planning assistant. You help the user plan one trip per conversation.

Known trip preferences: %s
Current itinerary state: %s

Rules:
- Use the save_trip_preferences tool as soon as the user states their origin, destination, dates or budget.
- Use the search tools to find hotels, flights, shops and leisure spots; every search result is saved to the itinerary automatically.
- When the user picks one of several stored suggestions, call select_suggestion with its id; this discards the alternatives of the same type.
- Suggestion ids are in the itinerary state above. Never invent ids.
- Keep replies short and concrete, with prices when known.`, prefsJSON, itineraryJSON), nil
}

func assistantTools() []openai.ChatCompletionToolParam {
	return []openai.ChatCompletionToolParam{
		{
			Function: openai.FunctionDefinitionParam{
				Name:        "search_hotels",
				Description: openai.String("Searches hotels in a city for a date range and budget. The best-value results are saved to the itinerary."),
				Parameters: openai.FunctionParameters{
					"type": "object",
					"properties": map[string]any{
						"city":      map[string]any{"type": "string", "description": "Destination city, e.g. 'Paris'"},
						"arrival":   map[string]any{"type": "string", "description": "Check-in date (YYYY-MM-DD)"},
						"departure": map[string]any{"type": "string", "description": "Check-out date (YYYY-MM-DD)"},
						"price_max": map[string]any{"type": "number", "description": "Maximum total price for the stay"},
						"adults":    map[string]any{"type": "number", "description": "Number of adults"},
					},
					"required": []string{"city", "arrival", "departure", "price_max", "adults"},
				},
			},
		},
		{
			Function: openai.FunctionDefinitionParam{
				Name:        "search_flights",
				Description: openai.String("Searches a one-way flight between two cities on a date. The best offer is saved to the itinerary."),
				Parameters: openai.FunctionParameters{
					"type": "object",
					"properties": map[string]any{
						"origin_city":      map[string]any{"type": "string", "description": "Departure city, e.g. 'Amsterdam'"},
						"destination_city": map[string]any{"type": "string", "description": "Arrival city, e.g. 'Paris'"},
						"departure_date":   map[string]any{"type": "string", "description": "Departure date (YYYY-MM-DD)"},
						"adults":           map[string]any{"type": "number", "description": "Number of adults"},
					},
					"required": []string{"origin_city", "destination_city", "departure_date", "adults"},
				},
			},
		},
		{
			Function: openai.FunctionDefinitionParam{
				Name:        "search_shops",
				Description: openai.String("Finds an essential shop (like a supermarket) near the destination and saves it to the itinerary."),
				Parameters: openai.FunctionParameters{
					"type": "object",
					"properties": map[string]any{
						"city":       map[string]any{"type": "string", "description": "City to search in"},
						"categories": map[string]any{"type": "string", "description": "Geoapify category, e.g. 'commercial.supermarket'"},
					},
					"required": []string{"city", "categories"},
				},
			},
		},
		{
			Function: openai.FunctionDefinitionParam{
				Name:        "search_leisure",
				Description: openai.String("Finds a leisure activity (spa, museum, entertainment) near the destination and saves it to the itinerary."),
				Parameters: openai.FunctionParameters{
					"type": "object",
					"properties": map[string]any{
						"city":       map[string]any{"type": "string", "description": "City to search in"},
						"categories": map[string]any{"type": "string", "description": "Geoapify category, e.g. 'leisure.spa'"},
					},
					"required": []string{"city", "categories"},
				},
			},
		},
		{
			Function: openai.FunctionDefinitionParam{
				Name:        "select_suggestion",
				Description: openai.String("Finalizes one stored suggestion by id and removes the other suggestions of the same type."),
				Parameters: openai.FunctionParameters{
					"type": "object",
					"properties": map[string]any{
						"suggestion_id": map[string]any{"type": "string", "description": "Id of the suggestion to keep"},
					},
					"required": []string{"suggestion_id"},
				},
			},
		},
		{
			Function: openai.FunctionDefinitionParam{
				Name:        "save_trip_preferences",
				Description: openai.String("Stores trip facts the user has declared: origin, destination, dates, budget."),
				Parameters: openai.FunctionParameters{
					"type": "object",
					"properties": map[string]any{
						"origin":      map[string]any{"type": "string", "description": "Where the trip starts, e.g. 'Amsterdam, Netherlands'"},
						"destination": map[string]any{"type": "string", "description": "Where the trip goes, e.g. 'Paris, France'"},
						"start_date":  map[string]any{"type": "string", "description": "Trip start date (YYYY-MM-DD)"},
						"end_date":    map[string]any{"type": "string", "description": "Trip end date (YYYY-MM-DD)"},
						"budget":      map[string]any{"type": "string", "description": "Budget as stated by the user"},
					},
				},
			},
		},
	}
}

// dispatchTool executes one tool call and always returns a JSON string.
// Collaborator failures are wrapped into an error result for the model:
// nothing from outside the core escapes the loop as a Go error.
func (s *ChatService) dispatchTool(ctx context.Context, conversation *models.Conversation, name, arguments string) string {
	s.logger.Info("Dispatching tool call",
		zap.String("conversation_id", conversation.ID.String()),
		zap.String("tool", name),
	)

	switch name {
	case "search_hotels":
		return s.runHotelSearch(ctx, conversation, arguments)
	case "search_flights":
		return s.runFlightSearch(ctx, conversation, arguments)
	case "search_shops":
		return s.runPlaceSearch(ctx, conversation, arguments, models.KindShop)
	case "search_leisure":
		return s.runPlaceSearch(ctx, conversation, arguments, models.KindLeisure)
	case "select_suggestion":
		return s.runSelection(ctx, conversation, arguments)
	case "save_trip_preferences":
		return s.runSavePreferences(ctx, conversation, arguments)
	default:
		return toolError(fmt.Sprintf("unknown tool %q", name))
	}
}

func (s *ChatService) runHotelSearch(ctx context.Context, conversation *models.Conversation, arguments string) string {
	var args struct {
		City      string  `json:"city"`
		Arrival   string  `json:"arrival"`
		Departure string  `json:"departure"`
		PriceMax  float64 `json:"price_max"`
		Adults    int     `json:"adults"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return toolError("invalid search_hotels arguments")
	}

	hotels, err := s.hotels.SearchHotels(ctx, args.City, args.Arrival, args.Departure, args.PriceMax, args.Adults)
	if err != nil {
		s.logger.Warn("Hotel search failed", zap.Error(err))
		return toolError("hotel search is unavailable right now")
	}
	if len(hotels) == 0 {
		return toolError(fmt.Sprintf("no hotels found in %s within the budget", args.City))
	}

	result, err := s.itinerary.AddHotels(ctx, conversation.ID, hotels)
	if err != nil {
		s.logger.Error("Failed to store hotels", zap.Error(err))
		return toolError("could not save the hotel suggestions")
	}

	return toolSuccess(map[string]any{
		"message":     fmt.Sprintf("Added %d hotels", result.Saved),
		"hotel_names": result.HotelNames,
		"skipped":     len(result.Skipped),
	})
}

func (s *ChatService) runFlightSearch(ctx context.Context, conversation *models.Conversation, arguments string) string {
	var args struct {
		OriginCity      string `json:"origin_city"`
		DestinationCity string `json:"destination_city"`
		DepartureDate   string `json:"departure_date"`
		Adults          int    `json:"adults"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return toolError("invalid search_flights arguments")
	}

	flight, err := s.flights.SearchFlights(ctx, args.OriginCity, args.DestinationCity, args.DepartureDate, args.Adults)
	if err != nil {
		s.logger.Warn("Flight search failed", zap.Error(err))
		return toolError("flight search is unavailable right now")
	}
	if flight == nil {
		return toolError(fmt.Sprintf("no flights found from %s to %s", args.OriginCity, args.DestinationCity))
	}

	suggestion, err := s.itinerary.AddFlight(ctx, conversation.ID, *flight)
	if err != nil {
		s.logger.Error("Failed to store flight", zap.Error(err))
		return toolError("could not save the flight suggestion")
	}

	return toolSuccess(map[string]any{
		"flight_title": suggestion.Title,
		"price":        flight.Price,
	})
}

func (s *ChatService) runPlaceSearch(ctx context.Context, conversation *models.Conversation, arguments string, kind models.SuggestionKind) string {
	var args struct {
		City       string `json:"city"`
		Categories string `json:"categories"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return toolError("invalid place search arguments")
	}

	place, err := s.places.SearchPlaces(ctx, args.City, args.Categories, 1)
	if err != nil {
		s.logger.Warn("Place search failed", zap.Error(err), zap.String("kind", string(kind)))
		return toolError("place search is unavailable right now")
	}
	if place == nil {
		return toolError(fmt.Sprintf("nothing found for %s in %s", args.Categories, args.City))
	}

	var added bool
	if kind == models.KindShop {
		added, err = s.itinerary.AddShop(ctx, conversation.ID, *place)
	} else {
		added, err = s.itinerary.AddLeisure(ctx, conversation.ID, *place)
	}
	if err != nil {
		s.logger.Error("Failed to store place", zap.Error(err))
		return toolError("could not save the place suggestion")
	}
	if !added {
		return toolSuccess(map[string]any{
			"message": fmt.Sprintf("%s was already on the itinerary or carried no data", place.Name),
		})
	}

	return toolSuccess(map[string]any{
		"name":    place.Name,
		"address": place.FullAddress,
	})
}

func (s *ChatService) runSelection(ctx context.Context, conversation *models.Conversation, arguments string) string {
	var args struct {
		SuggestionID string `json:"suggestion_id"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return toolError("invalid select_suggestion arguments")
	}

	suggestionID, err := uuid.Parse(args.SuggestionID)
	if err != nil {
		return toolError("suggestion_id is not a valid id")
	}

	selection, err := s.itinerary.Select(ctx, conversation.ID, suggestionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return toolError(fmt.Sprintf("suggestion %s was not found", args.SuggestionID))
		}
		s.logger.Error("Selection failed", zap.Error(err))
		return toolError("could not finalize the selection")
	}

	return toolSuccess(map[string]any{
		"message": fmt.Sprintf("Selected %q (%s). All other %s suggestions have been removed.",
			selection.Title, selection.Kind, selection.Kind),
		"selected_title": selection.Title,
		"selected_type":  string(selection.Kind),
	})
}

func (s *ChatService) runSavePreferences(ctx context.Context, conversation *models.Conversation, arguments string) string {
	var args map[string]any
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return toolError("invalid save_trip_preferences arguments")
	}

	prefs := conversation.Preferences
	if prefs == nil {
		prefs = models.Preferences{}
	}
	for key, value := range args {
		if str, ok := value.(string); ok && str == "" {
			continue
		}
		prefs[key] = value
	}

	if err := s.convRepo.UpdatePreferences(ctx, conversation.ID, prefs); err != nil {
		s.logger.Error("Failed to update preferences", zap.Error(err))
		return toolError("could not save the trip preferences")
	}
	conversation.Preferences = prefs

	return toolSuccess(map[string]any{"message": "Trip preferences saved"})
}

func toolSuccess(fields map[string]any) string {
	fields["status"] = "success"
	b, _ := json.Marshal(fields)
	return string(b)
}

func toolError(message string) string {
	b, _ := json.Marshal(map[string]string{"status": "error", "message": message})
	return string(b)
}
