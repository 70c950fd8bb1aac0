package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riskpilot-ai/riskpilot/internal/domain"
)

// ConversationRepository persists the append-only chat history.
type ConversationRepository struct {
	db dbtx
}

func NewConversationRepository(pool *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{db: pool}
}

func (r *ConversationRepository) Append(ctx context.Context, turn *domain.ConversationTurn) error {
	if err := domain.ValidateConversationTurn(turn); err != nil {
		return err
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO conversation_turns (id, project_id, origin, message, response, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		turn.ID, turn.ProjectID, turn.Origin, turn.Message, turn.Response, turn.CreatedAt,
	)
	return err
}

// ListByProject returns a project's turns in chronological order.
func (r *ConversationRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.ConversationTurn, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, project_id, origin, message, response, created_at
		 FROM conversation_turns
		 WHERE project_id = $1
		 ORDER BY created_at ASC, id ASC`,
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var turns []*domain.ConversationTurn
	for rows.Next() {
		var t domain.ConversationTurn
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Origin, &t.Message, &t.Response, &t.CreatedAt); err != nil {
			return nil, err
		}
		turns = append(turns, &t)
	}
	return turns, rows.Err()
}
