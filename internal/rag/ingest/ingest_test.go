package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specwright/ConstructQA/internal/domain/docModel"
)

// --- Mocks ---

type mockEmbedder struct {
	batchFunc func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	return nil, nil
}
func (m *mockEmbedder) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if m.batchFunc != nil {
		return m.batchFunc(ctx, texts)
	}
	return make([][]float32, len(texts)), nil
}

type mockIndex struct {
	mu         sync.Mutex
	upsertFunc func(ctx context.Context, chunks []docModel.Chunk, vectors [][]float32) error
	upserted   []docModel.Chunk
	calls      int
}

func (m *mockIndex) Upsert(ctx context.Context, chunks []docModel.Chunk, vectors [][]float32) error {
	m.mu.Lock()
	m.calls++
	m.upserted = append(m.upserted, chunks...)
	m.mu.Unlock()
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, chunks, vectors)
	}
	return nil
}
func (m *mockIndex) Search(ctx context.Context, vector []float32, k int) ([]docModel.RetrievalResult, error) {
	return nil, nil
}
func (m *mockIndex) Count(ctx context.Context) (uint64, error) { return 0, nil }

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// --- Tests ---

func TestProcessDirectory_Success(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "doors.txt", "DOOR SCHEDULE\nD-101 36 x 84 1 HR hollow metal\n")
	writeDoc(t, dir, "notes.txt", "general project notes about finishes and paint colors.")
	writeDoc(t, dir, "photo.png", "not a document")

	index := &mockIndex{}
	report := ProcessDirectory(context.Background(), dir, &mockEmbedder{}, index)

	if report.Status != "success" {
		t.Fatalf("status got %s (%s)", report.Status, report.Message)
	}
	if report.TotalDocuments != 2 {
		t.Errorf("unsupported files should not count, got %d documents", report.TotalDocuments)
	}
	if report.ProcessedDocuments != 2 {
		t.Errorf("processed got %d, want 2", report.ProcessedDocuments)
	}
	if report.TotalChunks != len(index.upserted) {
		t.Errorf("report chunks %d disagree with upserted %d", report.TotalChunks, len(index.upserted))
	}
	if len(index.upserted) == 0 {
		t.Fatal("nothing reached the index")
	}
	if index.upserted[0].SourceFile != "doors.txt" {
		t.Errorf("chunk source should be the base file name, got %s", index.upserted[0].SourceFile)
	}
}

func TestProcessDirectory_SkipsUnparsableFiles(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "broken.pdf", "this is not a real pdf")
	writeDoc(t, dir, "notes.txt", "valid plain text document.")

	index := &mockIndex{}
	report := ProcessDirectory(context.Background(), dir, &mockEmbedder{}, index)

	if report.Status != "success" {
		t.Fatalf("a bad file must not fail the batch, got %s (%s)", report.Status, report.Message)
	}
	if report.TotalDocuments != 2 || report.ProcessedDocuments != 1 {
		t.Errorf("got %d/%d processed, want 1/2", report.ProcessedDocuments, report.TotalDocuments)
	}
}

func TestProcessDirectory_EmptyDirectory(t *testing.T) {
	report := ProcessDirectory(context.Background(), t.TempDir(), &mockEmbedder{}, &mockIndex{})
	if report.Status != "error" || report.Message != "No documents found in directory" {
		t.Errorf("got %s / %s", report.Status, report.Message)
	}
}

func TestProcessDirectory_MissingDirectory(t *testing.T) {
	report := ProcessDirectory(context.Background(), "/does/not/exist", &mockEmbedder{}, &mockIndex{})
	if report.Status != "error" {
		t.Errorf("expected error status, got %s", report.Status)
	}
}

func TestProcessDirectory_EmbeddingFailure(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "notes.txt", "some content")

	embedder := &mockEmbedder{batchFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("api limit")
	}}
	report := ProcessDirectory(context.Background(), dir, embedder, &mockIndex{})

	if report.Status != "error" {
		t.Errorf("expected error status, got %s", report.Status)
	}
	if report.ProcessedDocuments != 1 {
		t.Errorf("extraction succeeded before indexing failed, processed got %d", report.ProcessedDocuments)
	}
}

func TestProcessDirectory_SingleFlight(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "notes.txt", "some content")

	entered := make(chan struct{})
	release := make(chan struct{})
	embedder := &mockEmbedder{batchFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
		close(entered)
		<-release
		return make([][]float32, len(texts)), nil
	}}

	done := make(chan docModel.IngestionReport, 1)
	go func() {
		done <- ProcessDirectory(context.Background(), dir, embedder, &mockIndex{})
	}()

	<-entered
	second := ProcessDirectory(context.Background(), dir, &mockEmbedder{}, &mockIndex{})
	if second.Status != "error" || second.Message != "Ingestion already in progress" {
		t.Errorf("concurrent run should be rejected, got %s / %s", second.Status, second.Message)
	}

	close(release)
	first := <-done
	if first.Status != "success" {
		t.Errorf("first run should finish normally, got %s (%s)", first.Status, first.Message)
	}

	// The guard releases once the run ends.
	third := ProcessDirectory(context.Background(), dir, &mockEmbedder{}, &mockIndex{})
	if third.Status != "success" {
		t.Errorf("follow-up run should be allowed, got %s", third.Status)
	}
}

func TestBatchIngest_Batches(t *testing.T) {
	chunks := make([]docModel.Chunk, 150)
	for i := range chunks {
		chunks[i] = docModel.Chunk{Text: "chunk content"}
	}

	index := &mockIndex{}
	if err := batchIngest(context.Background(), chunks, &mockEmbedder{}, index); err != nil {
		t.Fatalf("batchIngest failed: %v", err)
	}
	if index.calls != 2 {
		t.Errorf("150 chunks should take 2 batches, got %d", index.calls)
	}
}

func TestBatchIngest_UpsertError(t *testing.T) {
	index := &mockIndex{upsertFunc: func(ctx context.Context, c []docModel.Chunk, v [][]float32) error {
		return errors.New("disk full")
	}}

	err := batchIngest(context.Background(), []docModel.Chunk{{Text: "hi"}}, &mockEmbedder{}, index)
	if err == nil {
		t.Error("expected error from batchIngest, got nil")
	}
}
