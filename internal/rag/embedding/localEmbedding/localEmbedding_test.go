package localEmbedding

import (
	"context"
	"math"
	"testing"

	"github.com/specwright/ConstructQA/internal/config"
)

func TestGetEmbedding_Deterministic(t *testing.T) {
	emb := NewLocalEmbedder()
	ctx := context.Background()

	a, err := emb.GetEmbedding(ctx, "fire rated hollow metal door")
	if err != nil {
		t.Fatalf("GetEmbedding failed: %v", err)
	}
	b, _ := emb.GetEmbedding(ctx, "fire rated hollow metal door")

	if len(a) != config.EmbeddingDimension {
		t.Fatalf("dimension got %d, want %d", len(a), config.EmbeddingDimension)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embedding is not deterministic at index %d: %f vs %f", i, a[i], b[i])
		}
	}
}

func TestGetEmbedding_Normalized(t *testing.T) {
	emb := NewLocalEmbedder()
	vec, _ := emb.GetEmbedding(context.Background(), "room finish schedule area")

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if math.Abs(sum-1.0) > 1e-5 {
		t.Errorf("expected unit norm, got squared norm %f", sum)
	}
}

func TestGetEmbedding_SimilarityOrdering(t *testing.T) {
	emb := NewLocalEmbedder()
	ctx := context.Background()

	query, _ := emb.GetEmbedding(ctx, "door schedule fire rating")
	near, _ := emb.GetEmbedding(ctx, "door schedule with fire rating column")
	far, _ := emb.GetEmbedding(ctx, "concrete slab reinforcement layout")

	if dot(query, near) <= dot(query, far) {
		t.Error("related text should score higher than unrelated text")
	}
}

func TestBatchEmbedding_MatchesSingle(t *testing.T) {
	emb := NewLocalEmbedder()
	ctx := context.Background()
	texts := []string{"first chunk", "second chunk"}

	vectors, err := emb.BatchEmbedding(ctx, texts)
	if err != nil {
		t.Fatalf("BatchEmbedding failed: %v", err)
	}
	if len(vectors) != len(texts) {
		t.Fatalf("got %d vectors, want %d", len(vectors), len(texts))
	}

	single, _ := emb.GetEmbedding(ctx, texts[1])
	for i := range single {
		if vectors[1][i] != single[i] {
			t.Fatal("batch embedding differs from single embedding for the same text")
		}
	}
}

func TestBatchEmbedding_CancelledContext(t *testing.T) {
	emb := NewLocalEmbedder()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := emb.BatchEmbedding(ctx, []string{"a", "b"}); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
