package rag

import (
	"context"
	"time"

	"github.com/specwright/ConstructQA/internal/config"
	"github.com/specwright/ConstructQA/internal/domain/docModel"
	"github.com/specwright/ConstructQA/internal/metrics"
	"github.com/specwright/ConstructQA/internal/rag/embedding"
	"github.com/specwright/ConstructQA/internal/rag/extract"
	"github.com/specwright/ConstructQA/internal/rag/ingest"
	"github.com/specwright/ConstructQA/internal/rag/llm"
	"github.com/specwright/ConstructQA/internal/rag/retriever"
	"github.com/specwright/ConstructQA/internal/rag/vectorDB"
	"github.com/specwright/ConstructQA/pkg/logger_i"
)

// Service is the public contract the hosting boundaries (HTTP, MCP) consume.
// The private struct underneath holds the index, embedder and model client;
// the constructor wires them once at process start so there is exactly one
// index per persistence directory and one retriever/extractor per index.
type Service interface {
	IngestDirectory(ctx context.Context, dir string) docModel.IngestionReport
	AnswerQuestion(ctx context.Context, question string) (string, []docModel.Source)
	DetectExtractionIntent(query string) (bool, docModel.Category)
	Extract(ctx context.Context, category docModel.Category) ([]docModel.ExtractedRecord, []docModel.Source)
}

type service struct {
	index     vectorDB.Index
	embedder  embedding.Embedder
	provider  llm.Provider
	retriever *retriever.Retriever
	extractor *extract.Extractor
	logger    *logger_i.Logger
}

// NewService constructor
func NewService(index vectorDB.Index, provider llm.Provider, em embedding.Embedder) Service {
	retr := retriever.New(index, em, provider)
	return &service{
		index:     index,
		embedder:  em,
		provider:  provider,
		retriever: retr,
		extractor: extract.New(retr, provider),
		logger:    logger_i.NewLogger("RAG Service"),
	}
}

func (s *service) IngestDirectory(ctx context.Context, dir string) docModel.IngestionReport {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	log.Info("Starting corpus ingestion", "dir", dir)

	report := ingest.ProcessDirectory(ctx, dir, s.embedder, s.index)

	log.Info("Ingestion finished",
		"status", report.Status,
		"documents", report.ProcessedDocuments,
		"chunks", report.TotalChunks)
	return report
}

func (s *service) AnswerQuestion(ctx context.Context, question string) (string, []docModel.Source) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("answer_question", time.Since(start)) }()

	return s.retriever.Answer(ctx, question)
}

func (s *service) DetectExtractionIntent(query string) (bool, docModel.Category) {
	return retriever.DetectExtractionIntent(query)
}

func (s *service) Extract(ctx context.Context, category docModel.Category) ([]docModel.ExtractedRecord, []docModel.Source) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("structured_extraction", time.Since(start)) }()

	return s.extractor.Extract(ctx, category)
}
