package rag_test

import (
	"context"

	"github.com/specwright/ConstructQA/internal/domain/docModel"
)

type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, text string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, text)
	}
	return []float32{1, 0}, nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, texts)
	}
	vectors := make([][]float32, len(texts))
	for i := range vectors {
		vectors[i] = []float32{1, 0}
	}
	return vectors, nil
}

type MockIndex struct {
	OnSearch func(ctx context.Context, vector []float32, k int) ([]docModel.RetrievalResult, error)
	OnUpsert func(ctx context.Context, chunks []docModel.Chunk, vectors [][]float32) error
}

func (m *MockIndex) Search(ctx context.Context, vector []float32, k int) ([]docModel.RetrievalResult, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, vector, k)
	}
	return nil, nil
}

func (m *MockIndex) Upsert(ctx context.Context, chunks []docModel.Chunk, vectors [][]float32) error {
	if m.OnUpsert != nil {
		return m.OnUpsert(ctx, chunks, vectors)
	}
	return nil
}

func (m *MockIndex) Count(ctx context.Context) (uint64, error) { return 0, nil }

type MockLLM struct {
	OnComplete func(ctx context.Context, prompt string) (string, error)
}

func (m *MockLLM) Complete(ctx context.Context, prompt string) (string, error) {
	if m.OnComplete != nil {
		return m.OnComplete(ctx, prompt)
	}
	return "mock answer", nil
}
