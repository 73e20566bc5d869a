package handlers

import (
	"errors"
	"fmt"

	"tripdesk/internal/dto"
	"tripdesk/internal/repository"
	"tripdesk/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SelectionHandler struct {
	itinerary *service.ItineraryService
	convRepo  conversationReader
	logger    *zap.Logger
}

func NewSelectionHandler(itinerary *service.ItineraryService, convRepo conversationReader, logger *zap.Logger) *SelectionHandler {
	return &SelectionHandler{
		itinerary: itinerary,
		convRepo:  convRepo,
		logger:    logger,
	}
}

// SelectSuggestion godoc
// @Summary Finalize one suggestion and discard its alternatives
// @Description Keeps the suggestion with the given id and deletes every other suggestion of the same type in the conversation.
// @Tags suggestions
// @Accept json
// @Produce json
// @Param conversationID path string true "Conversation ID"
// @Param request body dto.SelectSuggestionRequest true "Suggestion to keep"
// @Security Bearer
// @Success 200 {object} dto.SelectSuggestionResponse
// @Failure 400 {object} dto.SelectSuggestionResponse
// @Failure 404 {object} dto.SelectSuggestionResponse
// @Router /api/v1/select_suggestion/{conversationID} [post]
func (h *SelectionHandler) SelectSuggestion(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.SelectSuggestionResponse{
			Status:  "error",
			Message: "Unauthorized.",
		})
	}

	conversationID, err := uuid.Parse(c.Params("conversationID"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.SelectSuggestionResponse{
			Status:  "error",
			Message: "Invalid conversation ID.",
		})
	}

	var req dto.SelectSuggestionRequest
	if err := c.BodyParser(&req); err != nil || req.SuggestionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.SelectSuggestionResponse{
			Status:  "error",
			Message: "Missing 'suggestion_id' in request body.",
		})
	}

	suggestionID, err := uuid.Parse(req.SuggestionID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.SelectSuggestionResponse{
			Status:  "error",
			Message: "Invalid 'suggestion_id'.",
		})
	}

	// Foreign conversations are reported as not found, not forbidden.
	conversation, err := h.convRepo.GetByID(c.Context(), conversationID)
	if err != nil || conversation.UserID != userID {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			h.logger.Error("Failed to load conversation", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(dto.SelectSuggestionResponse{
				Status:  "error",
				Message: "An unexpected error occurred.",
			})
		}
		return c.Status(fiber.StatusNotFound).JSON(dto.SelectSuggestionResponse{
			Status:  "error",
			Message: fmt.Sprintf("Conversation with ID %s not found.", conversationID),
		})
	}

	selection, err := h.itinerary.Select(c.Context(), conversationID, suggestionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.SelectSuggestionResponse{
				Status:  "error",
				Message: fmt.Sprintf("Suggestion with ID %s not found.", suggestionID),
			})
		}
		h.logger.Error("Selection failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.SelectSuggestionResponse{
			Status:  "error",
			Message: "An unexpected error occurred.",
		})
	}

	return c.JSON(dto.SelectSuggestionResponse{
		Status: "success",
		Message: fmt.Sprintf("Selected '%s' (%s). All other %s suggestions have been removed.",
			selection.Title, selection.Kind, selection.Kind),
		SelectedTitle: selection.Title,
		SelectedType:  string(selection.Kind),
	})
}
