package ingest

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/riskpilot-ai/riskpilot/internal/domain"
	"github.com/riskpilot-ai/riskpilot/internal/telemetry"
)

// ChunkStore is the persistence surface the pipeline writes chunks through.
type ChunkStore interface {
	DeleteByProject(ctx context.Context, projectID string) (int64, error)
	InsertChunks(ctx context.Context, chunks []domain.ContextChunk) error
}

// ProjectStore receives the side-channel aggregate write.
type ProjectStore interface {
	UpdateActualSpend(ctx context.Context, id string, actualSpend float64) error
}

// Embedder turns chunk text into vectors.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Upload is the three tabular inputs of one scope-creation request.
type Upload struct {
	Employees  *Table
	Schedule   *Table
	Financials *Table
}

// Tables lists the upload's tables in ingestion order, skipping nils.
func (u Upload) Tables() []*Table {
	tables := make([]*Table, 0, 3)
	for _, t := range []*Table{u.Employees, u.Schedule, u.Financials} {
		if t != nil {
			tables = append(tables, t)
		}
	}
	return tables
}

// TableFailure records one table whose ingestion failed while the others
// proceeded.
type TableFailure struct {
	Kind domain.ChunkKind
	Err  error
}

// Report summarizes one pipeline run.
type Report struct {
	ChunkCounts map[domain.ChunkKind]int
	TotalSpend  float64
	Failures    []TableFailure
}

// TotalChunks sums chunk counts across all tables.
func (r *Report) TotalChunks() int {
	total := 0
	for _, n := range r.ChunkCounts {
		total += n
	}
	return total
}

// Partial reports whether some but not all of the run failed.
func (r *Report) Partial() bool {
	return len(r.Failures) > 0
}

// Pipeline turns tabular uploads into embedded context chunks plus the
// project-level spend aggregate.
type Pipeline struct {
	chunks   ChunkStore
	projects ProjectStore
	embedder Embedder
}

func NewPipeline(chunks ChunkStore, projects ProjectStore, embedder Embedder) *Pipeline {
	return &Pipeline{
		chunks:   chunks,
		projects: projects,
		embedder: embedder,
	}
}

// Run clears the project's prior chunks, ingests each non-empty table under
// its own kind tag, and records the spend aggregate on the project row.
// A failing table is logged and reported; the remaining tables still run.
// The aggregate write happens even when table ingestion failed.
func (p *Pipeline) Run(ctx context.Context, projectID string, upload Upload) (*Report, error) {
	ctx, span := telemetry.StartSpan(ctx, "Pipeline.Run", telemetry.SpanAttributes{
		ProjectID: projectID,
		Operation: "ingest",
	})
	defer span.End()

	// Without the wholesale delete, re-ingestion would duplicate chunks
	// under the same scope, so a failure here aborts the run.
	if _, err := p.chunks.DeleteByProject(ctx, projectID); err != nil {
		span.SetError(err)
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeStoreUnavailable,
			"failed to clear prior context chunks", err)
	}

	report := &Report{ChunkCounts: make(map[domain.ChunkKind]int)}

	for _, table := range upload.Tables() {
		if table.IsEmpty() {
			continue
		}
		count, err := p.ingestTable(ctx, projectID, table)
		if err != nil {
			log.Printf("ingestion failed for table %s (project %s): %v", table.Kind, projectID, err)
			telemetry.CaptureError(ctx, err)
			report.Failures = append(report.Failures, TableFailure{Kind: table.Kind, Err: err})
			continue
		}
		report.ChunkCounts[table.Kind] = count
	}

	if upload.Financials != nil && !upload.Financials.IsEmpty() {
		report.TotalSpend = upload.Financials.TotalSpend()
		if err := p.projects.UpdateActualSpend(ctx, projectID, report.TotalSpend); err != nil {
			log.Printf("failed to record actual spend for project %s: %v", projectID, err)
		}
	}

	return report, nil
}

// ingestTable embeds each row and bulk-inserts the chunks. The first failure
// aborts this table; the caller isolates it from the others. At-most-once:
// a failing bulk write loses this call's rows entirely.
func (p *Pipeline) ingestTable(ctx context.Context, projectID string, table *Table) (int, error) {
	now := time.Now().UTC()
	chunks := make([]domain.ContextChunk, 0, len(table.Rows))

	for _, row := range table.Rows {
		text := table.ChunkText(row)
		embedding, err := p.embedder.GenerateEmbedding(ctx, text)
		if err != nil {
			return 0, fmt.Errorf("failed to embed row: %w", err)
		}
		chunks = append(chunks, domain.ContextChunk{
			ID:        uuid.NewString(),
			ProjectID: projectID,
			Kind:      table.Kind,
			Content:   text,
			Embedding: embedding,
			CreatedAt: now,
		})
	}

	if len(chunks) == 0 {
		return 0, nil
	}

	if err := p.chunks.InsertChunks(ctx, chunks); err != nil {
		return 0, fmt.Errorf("failed to insert chunks: %w", err)
	}

	return len(chunks), nil
}
