package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/specwright/ConstructQA/internal/config"
	"github.com/specwright/ConstructQA/internal/domain/docModel"
	"github.com/specwright/ConstructQA/internal/metrics"
	"github.com/specwright/ConstructQA/internal/rag/embedding"
	"github.com/specwright/ConstructQA/internal/rag/segment"
	"github.com/specwright/ConstructQA/internal/rag/vectorDB"
	"github.com/specwright/ConstructQA/pkg/logger_i"
)

const batchSize = 100

var supportedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".txt":  true,
	".rtf":  true,
	".odt":  true,
}

// Ingestion is a whole-corpus batch operation; index writes are not designed
// to interleave, so only one run may be in flight per process.
var inFlight atomic.Bool

var logger = logger_i.NewLogger("Ingestion")

// ProcessDirectory ingests every supported document under dir. A file that
// cannot be parsed is logged and skipped; the batch continues and the report
// carries per-file success/failure counts plus the aggregate chunk count.
func ProcessDirectory(ctx context.Context, dir string, embedder embedding.Embedder, index vectorDB.Index) docModel.IngestionReport {
	if !inFlight.CompareAndSwap(false, true) {
		return docModel.IngestionReport{
			Status:  "error",
			Message: "Ingestion already in progress",
		}
	}
	defer inFlight.Store(false)

	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()

	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	files, err := listDocuments(dir)
	if err != nil {
		return docModel.IngestionReport{
			Status:  "error",
			Message: fmt.Sprintf("Error reading directory: %s", err),
		}
	}
	if len(files) == 0 {
		return docModel.IngestionReport{
			Status:  "error",
			Message: "No documents found in directory",
		}
	}

	var allChunks []docModel.Chunk
	processed := 0

	for _, file := range files {
		log.Debug("Processing document", "file", file)

		pages, err := segment.ExtractPages(file)
		if err != nil {
			log.Error("Error processing document, skipping", "file", file, "error", err)
			metrics.CountIngestedDocument("failed")
			continue
		}

		chunks := segment.PrepareChunks(pages, filepath.Base(file))
		allChunks = append(allChunks, chunks...)
		processed++
		metrics.CountIngestedDocument("processed")
		log.Debug("Extracted chunks", "file", file, "chunks", len(chunks))
	}

	if len(allChunks) > 0 {
		if err := batchIngest(ctx, allChunks, embedder, index); err != nil {
			log.Error("Error indexing documents", "error", err)
			return docModel.IngestionReport{
				Status:             "error",
				Message:            fmt.Sprintf("Error indexing documents: %s", err),
				TotalDocuments:     len(files),
				ProcessedDocuments: processed,
			}
		}
		metrics.AddIngestedChunks(len(allChunks))
	}

	return docModel.IngestionReport{
		Status:             "success",
		Message:            "Documents ingested successfully",
		TotalDocuments:     len(files),
		ProcessedDocuments: processed,
		TotalChunks:        len(allChunks),
	}
}

// batchIngest embeds and upserts chunks in fixed-size batches so one huge
// corpus does not turn into one huge embedding call.
func batchIngest(ctx context.Context, chunks []docModel.Chunk, embedder embedding.Embedder, index vectorDB.Index) error {
	for i := 0; i < len(chunks); i += batchSize {
		end := i + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		currentBatch := chunks[i:end]

		texts := make([]string, len(currentBatch))
		for j, c := range currentBatch {
			texts[j] = c.Text
		}

		vectors, err := embedder.BatchEmbedding(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding batch failed: %w", err)
		}

		if err := index.Upsert(ctx, currentBatch, vectors); err != nil {
			return fmt.Errorf("upserting batch failed: %w", err)
		}
	}
	return nil
}

func listDocuments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if supportedExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
