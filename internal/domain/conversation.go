package domain

import (
	"fmt"
	"time"
)

// TurnOrigin records who initiated a conversation turn. The tag is written at
// insert time; it is never reconstructed by inspecting message content.
type TurnOrigin string

const (
	// TurnOriginUser marks a turn started by a user chat message.
	TurnOriginUser TurnOrigin = "user"
	// TurnOriginSystem marks the turn holding the initial risk analysis.
	TurnOriginSystem TurnOrigin = "system"
)

// IsValidTurnOrigin checks if a TurnOrigin is valid
func IsValidTurnOrigin(o TurnOrigin) bool {
	switch o {
	case TurnOriginUser, TurnOriginSystem:
		return true
	}
	return false
}

// ConversationTurn pairs one user (or system) message with the assistant
// response it produced. Turns are append-only and ordered by CreatedAt.
type ConversationTurn struct {
	ID        string
	ProjectID string
	Origin    TurnOrigin
	Message   string
	Response  string
	CreatedAt time.Time
}

// ValidateConversationTurn validates a ConversationTurn instance
func ValidateConversationTurn(t *ConversationTurn) error {
	if t == nil {
		return fmt.Errorf("conversation turn cannot be nil")
	}

	if t.ID == "" {
		return fmt.Errorf("conversation turn ID is required")
	}

	if t.ProjectID == "" {
		return fmt.Errorf("conversation turn ProjectID is required")
	}

	if !IsValidTurnOrigin(t.Origin) {
		return fmt.Errorf("%w: %s", ErrInvalidTurnOrigin, t.Origin)
	}

	return nil
}
