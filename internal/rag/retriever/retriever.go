package retriever

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"context"

	"github.com/specwright/ConstructQA/internal/config"
	"github.com/specwright/ConstructQA/internal/domain/docModel"
	"github.com/specwright/ConstructQA/internal/metrics"
	"github.com/specwright/ConstructQA/internal/rag/embedding"
	"github.com/specwright/ConstructQA/internal/rag/llm"
	"github.com/specwright/ConstructQA/internal/rag/vectorDB"
	"github.com/specwright/ConstructQA/pkg/logger_i"
)

// Retriever runs similarity queries against the index and synthesizes
// answers with citations from the retrieved context.
type Retriever struct {
	index    vectorDB.Index
	embedder embedding.Embedder
	provider llm.Provider
	logger   *logger_i.Logger
}

func New(index vectorDB.Index, embedder embedding.Embedder, provider llm.Provider) *Retriever {
	return &Retriever{
		index:    index,
		embedder: embedder,
		provider: provider,
		logger:   logger_i.NewLogger("Retriever"),
	}
}

// Retrieve returns the top-k chunks for a query. An empty or uninitialized
// index yields an empty result, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]docModel.RetrievalResult, error) {
	if k <= 0 {
		k = config.MaxRetrievalDocs
	}

	start := time.Now()
	vector, err := r.embedder.GetEmbedding(ctx, query)
	metrics.CaptureExecutionMetrics("embedding", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	start = time.Now()
	results, err := r.index.Search(ctx, vector, k)
	metrics.CaptureExecutionMetrics("vector_search", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	return results, nil
}

// Answer retrieves context for the question and asks the model for an answer
// grounded in it. Failures never surface as errors: with nothing retrieved
// the fixed no-documents message comes back and the model is not invoked,
// and a model failure becomes the answer text alongside whatever sources
// were already retrieved.
func (r *Retriever) Answer(ctx context.Context, question string) (string, []docModel.Source) {
	log := r.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	retrieved, err := r.Retrieve(ctx, question, config.MaxRetrievalDocs)
	if err != nil {
		log.Error("Retrieval failed", "error", err)
		return fmt.Sprintf("Error retrieving documents: %s", err), nil
	}
	if len(retrieved) == 0 {
		return config.NoDocumentsAnswer, []docModel.Source{}
	}

	prompt := buildQAPrompt(question, ContextBlock(retrieved))
	sources := ToSources(retrieved, len(retrieved), true)

	start := time.Now()
	answer, err := r.provider.Complete(ctx, prompt)
	metrics.CaptureExecutionMetrics("llm_generation", time.Since(start))
	if err != nil {
		log.Error("Answer generation failed", "error", err)
		return fmt.Sprintf("Error generating answer: %s", err), sources
	}

	return answer, sources
}

func buildQAPrompt(question string, contextBlock string) string {
	var b strings.Builder
	b.WriteString(config.QAPromptHeader)
	b.WriteString("\n\nContext:\n")
	b.WriteString(contextBlock)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nProvide a clear, concise answer with citations to specific documents and pages:\nAnswer:")
	return b.String()
}

// ContextBlock labels each retrieved chunk with its citation and joins them
// with blank lines, in retrieval-rank order.
func ContextBlock(results []docModel.RetrievalResult) string {
	parts := make([]string, 0, len(results))
	for i, res := range results {
		parts = append(parts, fmt.Sprintf("[Document %d: %s, Page %d]\n%s",
			i+1, res.Chunk.SourceFile, res.Chunk.PageNumber, res.Chunk.Text))
	}
	return strings.Join(parts, "\n\n")
}

// ToSources converts ranked results into citation units, truncating snippets.
func ToSources(results []docModel.RetrievalResult, limit int, withScore bool) []docModel.Source {
	if limit > len(results) {
		limit = len(results)
	}
	sources := make([]docModel.Source, 0, limit)
	for _, res := range results[:limit] {
		src := docModel.Source{
			FileName:       res.Chunk.SourceFile,
			PageNumber:     res.Chunk.PageNumber,
			ContentSnippet: Snippet(res.Chunk.Text),
		}
		if withScore {
			score := res.Score
			src.Score = &score
		}
		sources = append(sources, src)
	}
	return sources
}

// Snippet truncates content to the citation limit, marking the cut. The cut
// backs up to a rune boundary so the snippet stays valid UTF-8.
func Snippet(text string) string {
	if len(text) <= config.SnippetLimit {
		return text
	}
	cut := config.SnippetLimit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
