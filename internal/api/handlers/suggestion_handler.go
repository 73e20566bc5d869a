package handlers

import (
	"context"
	"errors"

	"tripdesk/internal/dto"
	"tripdesk/internal/models"
	"tripdesk/internal/repository"
	"tripdesk/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// conversationReader is the slice of the conversation repository the
// suggestion and selection handlers need for ownership checks.
type conversationReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
}

type SuggestionHandler struct {
	itinerary *service.ItineraryService
	convRepo  conversationReader
	logger    *zap.Logger
}

func NewSuggestionHandler(itinerary *service.ItineraryService, convRepo conversationReader, logger *zap.Logger) *SuggestionHandler {
	return &SuggestionHandler{
		itinerary: itinerary,
		convRepo:  convRepo,
		logger:    logger,
	}
}

// ListSuggestions godoc
// @Summary Get the stored suggestions for a conversation
// @Tags suggestions
// @Produce json
// @Param conversationID path string true "Conversation ID"
// @Security Bearer
// @Success 200 {object} dto.SuggestionListResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/suggestions/{conversationID} [get]
func (h *SuggestionHandler) ListSuggestions(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	conversationID, err := uuid.Parse(c.Params("conversationID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid conversation ID",
		})
	}

	// On failure ownedConversation has already written the response.
	if conversation, err := h.ownedConversation(c, conversationID, userID); conversation == nil {
		return err
	}

	suggestions, err := h.itinerary.ListSuggestions(c.Context(), conversationID)
	if err != nil {
		h.logger.Error("Failed to list suggestions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list suggestions",
		})
	}

	resp := dto.SuggestionListResponse{Suggestions: make([]dto.SuggestionResponse, 0, len(suggestions))}
	for _, s := range suggestions {
		resp.Suggestions = append(resp.Suggestions, dto.NewSuggestionResponse(s))
	}

	return c.JSON(resp)
}

// ItinerarySummary godoc
// @Summary Get the rendered itinerary digest for a conversation
// @Tags suggestions
// @Produce json
// @Param conversationID path string true "Conversation ID"
// @Security Bearer
// @Success 200 {object} dto.ItinerarySummaryResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/suggestions/{conversationID}/itinerary-summary [get]
func (h *SuggestionHandler) ItinerarySummary(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	conversationID, err := uuid.Parse(c.Params("conversationID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid conversation ID",
		})
	}

	conversation, err := h.ownedConversation(c, conversationID, userID)
	if conversation == nil {
		return err
	}

	itinerary, err := h.itinerary.Project(c.Context(), conversationID, conversation.Preferences)
	if err != nil {
		h.logger.Error("Failed to project itinerary", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}

	return c.JSON(dto.ItinerarySummaryResponse{
		Summary: service.RenderSummary(itinerary),
	})
}

// ownedConversation loads a conversation and checks it belongs to the
// caller. Foreign conversations are reported as not found, not forbidden.
// On failure the response has already been written.
func (h *SuggestionHandler) ownedConversation(c *fiber.Ctx, conversationID, userID uuid.UUID) (*models.Conversation, error) {
	conversation, err := h.convRepo.GetByID(c.Context(), conversationID)
	if err != nil || conversation.UserID != userID {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			h.logger.Error("Failed to load conversation", zap.Error(err))
			return nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal server error",
			})
		}
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Conversation not found",
		})
	}

	return conversation, nil
}
