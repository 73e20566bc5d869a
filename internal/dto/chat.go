package dto

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type TravelChatRequest struct {
	ConversationID string        `json:"conversationId"`
	Messages       []ChatMessage `json:"messages"`
}

type TravelChatResponse struct {
	Response string `json:"response"`
}

type CreateConversationRequest struct {
	Destination    string         `json:"destination,omitempty"`
	Budget         string         `json:"budget,omitempty"`
	TravelersCount int            `json:"travelers_count,omitempty"`
	Preferences    map[string]any `json:"preferences,omitempty"`
}

type ConversationResponse struct {
	ID          string `json:"id"`
	Destination string `json:"destination,omitempty"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}
