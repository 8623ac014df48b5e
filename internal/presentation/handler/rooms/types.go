package rooms

import "time"

// matchRoomResponse represents the result of a matchmaking request
type matchRoomResponse struct {
	RoomID   string `json:"roomId" example:"550e8400-e29b-41d4-a716-446655440000"`   // Room the client now belongs to
	ClientID string `json:"clientId" example:"550e8400-e29b-41d4-a716-446655440001"` // Pseudonymous client identifier
	Status   string `json:"status" example:"waiting" enum:"waiting,active"`          // waiting until a stranger joins, active once paired
}

// roomResponse represents a room snapshot
type roomResponse struct {
	ID           string    `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"` // Unique room identifier
	Participants int       `json:"participants" example:"2"`                          // Number of participants present
	Status       string    `json:"status" example:"active" enum:"waiting,active"`     // Room status
	CreatedAt    time.Time `json:"createdAt" example:"2024-01-01T12:00:00Z"`          // Room creation timestamp
	UpdatedAt    time.Time `json:"updatedAt" example:"2024-01-01T12:05:00Z"`          // Last activity timestamp
}
