package ai

// chatRequest represents one user message to the assistant
type chatRequest struct {
	ClientID string `json:"clientId" example:"550e8400-e29b-41d4-a716-446655440001"` // Pseudonymous client identifier
	Content  string `json:"content" example:"hey, how are you?" minLength:"1"`       // Message content
}

// chatResponse represents the assistant's reply
type chatResponse struct {
	Role    string `json:"role" example:"assistant"`             // Always "assistant"
	Content string `json:"content" example:"doing great, you?"`  // Reply content
}
