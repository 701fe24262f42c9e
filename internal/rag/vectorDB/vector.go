package vectorDB

import (
	"context"

	"github.com/specwright/ConstructQA/internal/domain/docModel"
)

// Index stores chunk embeddings plus metadata and answers similarity queries.
// Results come back ordered by ascending distance: lower score means more
// similar, and scores are only comparable within a single query.
type Index interface {
	Upsert(ctx context.Context, chunks []docModel.Chunk, vectors [][]float32) error
	Search(ctx context.Context, vector []float32, k int) ([]docModel.RetrievalResult, error)
	Count(ctx context.Context) (uint64, error)
}
