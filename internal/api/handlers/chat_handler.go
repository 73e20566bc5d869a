package handlers

import (
	"errors"
	"time"

	"tripdesk/internal/dto"
	"tripdesk/internal/models"
	"tripdesk/internal/repository"
	"tripdesk/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ChatHandler struct {
	chatService *service.ChatService
	convRepo    *repository.ConversationRepository
	logger      *zap.Logger
}

func NewChatHandler(chatService *service.ChatService, convRepo *repository.ConversationRepository, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		convRepo:    convRepo,
		logger:      logger,
	}
}

// TravelChat godoc
// @Summary Send a chat message to the trip assistant
// @Description Runs one assistant turn: the message may trigger hotel, flight and place searches or a suggestion selection.
// @Tags chat
// @Accept json
// @Produce json
// @Param request body dto.TravelChatRequest true "Chat turn"
// @Security Bearer
// @Success 200 {object} dto.TravelChatResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/travel-chat [post]
func (h *ChatHandler) TravelChat(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var req dto.TravelChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if len(req.Messages) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Messages are required",
		})
	}

	// On failure ownedConversation has already written the response.
	conversation, err := h.ownedConversation(c, userID, req.ConversationID)
	if conversation == nil {
		return err
	}

	response, err := h.chatService.ProcessMessage(c.Context(), conversation, req.Messages[len(req.Messages)-1].Content)
	if err != nil {
		h.logger.Error("Chat turn failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "An internal error occurred",
		})
	}

	return c.JSON(dto.TravelChatResponse{Response: response})
}

// CreateConversation godoc
// @Summary Start a new trip-planning conversation
// @Tags conversations
// @Accept json
// @Produce json
// @Param request body dto.CreateConversationRequest false "Initial trip facts"
// @Security Bearer
// @Success 201 {object} dto.ConversationResponse
// @Router /api/v1/conversations [post]
func (h *ChatHandler) CreateConversation(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	var req dto.CreateConversationRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}
	}

	now := time.Now().UTC()
	conversation := &models.Conversation{
		ID:             uuid.New(),
		UserID:         userID,
		Destination:    req.Destination,
		Budget:         req.Budget,
		TravelersCount: req.TravelersCount,
		Preferences:    req.Preferences,
		Status:         models.ConversationActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.convRepo.Create(c.Context(), conversation); err != nil {
		h.logger.Error("Failed to create conversation", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create conversation",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.ConversationResponse{
		ID:          conversation.ID.String(),
		Destination: conversation.Destination,
		Status:      string(conversation.Status),
		CreatedAt:   conversation.CreatedAt.Format(time.RFC3339),
	})
}

// ListConversations godoc
// @Summary List the user's conversations
// @Tags conversations
// @Produce json
// @Security Bearer
// @Success 200 {array} dto.ConversationResponse
// @Router /api/v1/conversations [get]
func (h *ChatHandler) ListConversations(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	conversations, err := h.convRepo.ListByUser(c.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list conversations", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list conversations",
		})
	}

	responses := make([]dto.ConversationResponse, 0, len(conversations))
	for _, conv := range conversations {
		responses = append(responses, dto.ConversationResponse{
			ID:          conv.ID.String(),
			Destination: conv.Destination,
			Status:      string(conv.Status),
			CreatedAt:   conv.CreatedAt.Format(time.RFC3339),
		})
	}

	return c.JSON(responses)
}

// ownedConversation loads a conversation and checks it belongs to the
// caller. Foreign conversations are reported as not found, not forbidden.
func (h *ChatHandler) ownedConversation(c *fiber.Ctx, userID uuid.UUID, conversationID string) (*models.Conversation, error) {
	convID, err := uuid.Parse(conversationID)
	if err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid conversation ID",
		})
	}

	conversation, err := h.convRepo.GetByID(c.Context(), convID)
	if err != nil || conversation.UserID != userID {
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			h.logger.Error("Failed to load conversation", zap.Error(err))
		}
		return nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Conversation not found",
		})
	}

	return conversation, nil
}

func getUserID(c *fiber.Ctx) (uuid.UUID, error) {
	userIDStr, ok := c.Locals("userID").(string)
	if !ok {
		return uuid.Nil, fiber.ErrUnauthorized
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return uuid.Nil, err
	}

	return userID, nil
}
