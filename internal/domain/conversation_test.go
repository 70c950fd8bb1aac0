package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidTurnOrigin(t *testing.T) {
	assert.True(t, IsValidTurnOrigin(TurnOriginUser))
	assert.True(t, IsValidTurnOrigin(TurnOriginSystem))
	assert.False(t, IsValidTurnOrigin(TurnOrigin("assistant")))
	assert.False(t, IsValidTurnOrigin(TurnOrigin("")))
}

func TestValidateConversationTurn(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name    string
		turn    *ConversationTurn
		wantErr bool
	}{
		{
			name: "valid user turn",
			turn: &ConversationTurn{
				ID:        "t1",
				ProjectID: "p1",
				Origin:    TurnOriginUser,
				Message:   "question",
				CreatedAt: now,
			},
			wantErr: false,
		},
		{
			name: "valid system turn",
			turn: &ConversationTurn{
				ID:        "t1",
				ProjectID: "p1",
				Origin:    TurnOriginSystem,
				Message:   "System: Initial Risk Analysis",
				CreatedAt: now,
			},
			wantErr: false,
		},
		{
			name:    "nil turn",
			turn:    nil,
			wantErr: true,
		},
		{
			name: "missing ID",
			turn: &ConversationTurn{
				ProjectID: "p1",
				Origin:    TurnOriginUser,
				CreatedAt: now,
			},
			wantErr: true,
		},
		{
			name: "missing ProjectID",
			turn: &ConversationTurn{
				ID:        "t1",
				Origin:    TurnOriginUser,
				CreatedAt: now,
			},
			wantErr: true,
		},
		{
			name: "invalid origin",
			turn: &ConversationTurn{
				ID:        "t1",
				ProjectID: "p1",
				Origin:    TurnOrigin("assistant"),
				CreatedAt: now,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConversationTurn(tt.turn)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateConversationTurn_InvalidOriginSentinel(t *testing.T) {
	turn := &ConversationTurn{
		ID:        "t1",
		ProjectID: "p1",
		Origin:    TurnOrigin("assistant"),
		CreatedAt: time.Now(),
	}
	err := ValidateConversationTurn(turn)
	assert.ErrorIs(t, err, ErrInvalidTurnOrigin)
}

func TestIsValidChunkKind(t *testing.T) {
	assert.True(t, IsValidChunkKind(ChunkKindEmployees))
	assert.True(t, IsValidChunkKind(ChunkKindSchedule))
	assert.True(t, IsValidChunkKind(ChunkKindFinancials))
	assert.False(t, IsValidChunkKind(ChunkKind("marketing")))
}
