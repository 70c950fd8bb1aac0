package domain

import "time"

// ChunkKind tags a context chunk with the table it was ingested from.
type ChunkKind string

const (
	ChunkKindEmployees  ChunkKind = "employees"
	ChunkKindSchedule   ChunkKind = "schedule"
	ChunkKindFinancials ChunkKind = "financials"
)

// IsValidChunkKind checks if a ChunkKind is one of the known table tags.
func IsValidChunkKind(k ChunkKind) bool {
	switch k {
	case ChunkKindEmployees, ChunkKindSchedule, ChunkKindFinancials:
		return true
	}
	return false
}

// ContextChunk is one unit of ingested, embedded text used for retrieval.
// Chunks are immutable once written; re-ingestion deletes a project's chunks
// wholesale and writes fresh ones.
type ContextChunk struct {
	ID        string
	ProjectID string
	Kind      ChunkKind
	Content   string
	Embedding []float32
	CreatedAt time.Time
}
