package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/riskpilot-ai/riskpilot/internal/domain"
)

// ChunkRepository persists embedded context chunks and runs the
// nearest-neighbor ranking over them.
type ChunkRepository struct {
	db dbtx
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{db: pool}
}

// InsertChunks bulk-inserts chunks. No partial-commit guarantee is made when
// called outside a transaction: a mid-batch failure loses the whole call's
// rows on re-ingestion (at-most-once).
func (r *ChunkRepository) InsertChunks(ctx context.Context, chunks []domain.ContextChunk) error {
	for _, c := range chunks {
		createdAt := c.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		_, err := r.db.Exec(ctx,
			`INSERT INTO context_chunks (id, project_id, kind, content, embedding, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			c.ID, c.ProjectID, c.Kind, c.Content, pgvector.NewVector(c.Embedding), createdAt,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// DeleteByProject removes every chunk for a project. Called before
// re-ingestion so stale chunks never accumulate under the same scope.
func (r *ChunkRepository) DeleteByProject(ctx context.Context, projectID string) (int64, error) {
	cmdTag, err := r.db.Exec(ctx,
		`DELETE FROM context_chunks WHERE project_id = $1`, projectID)
	if err != nil {
		return 0, err
	}
	return cmdTag.RowsAffected(), nil
}

// CountByProject returns how many chunks a project currently holds.
func (r *ChunkRepository) CountByProject(ctx context.Context, projectID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM context_chunks WHERE project_id = $1`, projectID,
	).Scan(&count)
	return count, err
}

// SearchByEmbedding ranks a project's chunks by cosine similarity to the
// query embedding, excludes anything below the floor, and returns content in
// descending similarity order.
func (r *ChunkRepository) SearchByEmbedding(ctx context.Context, projectID string, embedding []float32, floor float64, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 3
	}

	vec := pgvector.NewVector(embedding)

	rows, err := r.db.Query(ctx,
		`SELECT content, 1 - (embedding <=> $1) AS similarity
		 FROM context_chunks
		 WHERE project_id = $2 AND 1 - (embedding <=> $1) >= $3
		 ORDER BY similarity DESC
		 LIMIT $4`,
		vec, projectID, floor, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contents := make([]string, 0, limit)
	for rows.Next() {
		var content string
		var similarity float64
		if err := rows.Scan(&content, &similarity); err != nil {
			return nil, err
		}
		contents = append(contents, content)
	}

	return contents, rows.Err()
}
