package service

import (
	"context"
	"log"
)

// EmbeddingClient defines the interface for generating embeddings
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// ChunkSearcher defines the repository interface for ranked chunk lookups
type ChunkSearcher interface {
	SearchByEmbedding(ctx context.Context, projectID string, embedding []float32, floor float64, limit int) ([]string, error)
}

// RetrievalConfig controls how many chunks come back and how similar they
// must be.
type RetrievalConfig struct {
	Limit           int
	SimilarityFloor float64
}

// DefaultRetrievalConfig provides the standard retrieval settings.
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		Limit:           3,
		SimilarityFloor: 0.5,
	}
}

// RetrievalService finds context relevant to a query within one project.
type RetrievalService struct {
	embedding EmbeddingClient
	repo      ChunkSearcher
	cfg       RetrievalConfig
}

func NewRetrievalService(embedding EmbeddingClient, repo ChunkSearcher, cfg RetrievalConfig) *RetrievalService {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultRetrievalConfig().Limit
	}
	if cfg.SimilarityFloor <= 0 {
		cfg.SimilarityFloor = DefaultRetrievalConfig().SimilarityFloor
	}
	return &RetrievalService{
		embedding: embedding,
		repo:      repo,
		cfg:       cfg,
	}
}

// Retrieve embeds the query and returns the most similar chunk contents in
// descending similarity order. Retrieval is best-effort context enrichment:
// any failure yields an empty result, never an error.
func (s *RetrievalService) Retrieve(ctx context.Context, projectID, query string) []string {
	embedding, err := s.embedding.GenerateEmbedding(ctx, query)
	if err != nil {
		log.Printf("retrieval: query embedding failed (project %s): %v", projectID, err)
		return nil
	}

	contents, err := s.repo.SearchByEmbedding(ctx, projectID, embedding, s.cfg.SimilarityFloor, s.cfg.Limit)
	if err != nil {
		log.Printf("retrieval: chunk search failed (project %s): %v", projectID, err)
		return nil
	}

	return contents
}
