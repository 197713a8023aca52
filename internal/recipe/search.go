package recipe

import (
	"context"
	"fmt"

	"family-ops/internal/llm"
)

// Search answers "recipes like this" queries by embedding the query text and
// ranking catalog entries by cosine similarity.
type Search struct {
	catalog  Catalog
	vectors  *llm.VectorRepository
	embedGen llm.EmbeddingGenerator
}

// NewSearch creates a new Search over the given catalog and vector store.
func NewSearch(catalog Catalog, vectors *llm.VectorRepository, embedGen llm.EmbeddingGenerator) *Search {
	return &Search{
		catalog:  catalog,
		vectors:  vectors,
		embedGen: embedGen,
	}
}

// Index stores the embedding for a recipe so it becomes searchable.
func (s *Search) Index(ctx context.Context, rec Recipe) error {
	embedding, err := s.embedGen.GenerateEmbedding(ctx, rec.EmbeddingText())
	if err != nil {
		return fmt.Errorf("failed to generate embedding for %q: %w", rec.Name, err)
	}
	if err := s.vectors.Save(ctx, rec.ID, embedding); err != nil {
		return fmt.Errorf("failed to save embedding for %q: %w", rec.Name, err)
	}
	return nil
}

// FindSimilar returns up to limit recipes ranked by similarity to the query.
func (s *Search) FindSimilar(ctx context.Context, query string, limit int) ([]Recipe, error) {
	queryEmbedding, err := s.embedGen.GenerateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	ids, err := s.vectors.FindSimilar(ctx, queryEmbedding, limit, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to search embeddings: %w", err)
	}

	var recipes []Recipe
	for _, id := range ids {
		rec, err := s.catalog.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			// Embedding outlived its recipe; skip the stale row.
			continue
		}
		recipes = append(recipes, *rec)
	}
	return recipes, nil
}
