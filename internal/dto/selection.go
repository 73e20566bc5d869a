package dto

// SelectSuggestionRequest is the wire body of the selection endpoint.
type SelectSuggestionRequest struct {
	SuggestionID string `json:"suggestion_id"`
}

// SelectSuggestionResponse is the stable wire contract of the selection
// endpoint: status plus the surviving suggestion's title and kind.
type SelectSuggestionResponse struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	SelectedTitle string `json:"selected_title,omitempty"`
	SelectedType  string `json:"selected_type,omitempty"`
}
