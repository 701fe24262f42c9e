package extract

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
	"github.com/specwright/ConstructQA/internal/config"
	"github.com/specwright/ConstructQA/internal/domain/docModel"
	"github.com/specwright/ConstructQA/internal/metrics"
	"github.com/specwright/ConstructQA/internal/rag/llm"
	"github.com/specwright/ConstructQA/internal/rag/retriever"
	"github.com/specwright/ConstructQA/pkg/logger_i"
)

// Extractor converts retrieved document text into typed records for a known
// entity schema. Extraction degrades, it never errors: model or parse
// failures fall back to the regex engine where one exists and to an empty
// record list everywhere else.
type Extractor struct {
	retriever *retriever.Retriever
	provider  llm.Provider
	logger    *logger_i.Logger
}

func New(retr *retriever.Retriever, provider llm.Provider) *Extractor {
	return &Extractor{
		retriever: retr,
		provider:  provider,
		logger:    logger_i.NewLogger("Extractor"),
	}
}

// Topically-diverse queries per category. Doors get several to cover the
// different ways schedules, specs and hardware sheets mention them.
var doorQueries = []string{
	"door schedule marks types sizes ratings",
	"door specifications hardware fire rating",
	"door dimensions width height material",
}

const roomQuery = "room schedule area finishes floor"
const equipmentQuery = "equipment schedule mechanical electrical plumbing capacity model"

// Extract runs the extraction pipeline for a category.
func (e *Extractor) Extract(ctx context.Context, category docModel.Category) ([]docModel.ExtractedRecord, []docModel.Source) {
	var records []docModel.ExtractedRecord
	var sources []docModel.Source

	switch category {
	case docModel.CategoryDoorSchedule:
		records, sources = e.extractDoorSchedule(ctx)
	case docModel.CategoryRoomSummary:
		records, sources = e.extractRoomSummary(ctx)
	case docModel.CategoryEquipmentList:
		records, sources = e.extractEquipmentList(ctx)
	default:
		e.logger.Warn("Unknown extraction category", "category", category)
		return []docModel.ExtractedRecord{}, []docModel.Source{}
	}

	metrics.AddExtractedRecords(string(category), len(records))
	return records, sources
}

func (e *Extractor) extractDoorSchedule(ctx context.Context) ([]docModel.ExtractedRecord, []docModel.Source) {
	log := e.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "category", docModel.CategoryDoorSchedule)

	deduped := e.multiQuery(ctx, doorQueries)
	if len(deduped) == 0 {
		return []docModel.ExtractedRecord{}, []docModel.Source{}
	}

	contextLimit := config.ExtractionCtxLimit
	if contextLimit > len(deduped) {
		contextLimit = len(deduped)
	}
	combinedContext := retriever.ContextBlock(deduped[:contextLimit])
	sources := retriever.ToSources(deduped, config.ExtractionSrcLimit, false)

	records, err := e.modelExtraction(ctx, doorPrompt(combinedContext), "mark")
	if err != nil {
		log.Warn("Model extraction failed, using regex fallback", "error", err)
		metrics.CountFallbackExtraction()
		records = fallbackDoorExtraction(combinedContext)
	}

	return records, sources
}

func (e *Extractor) extractRoomSummary(ctx context.Context) ([]docModel.ExtractedRecord, []docModel.Source) {
	log := e.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "category", docModel.CategoryRoomSummary)

	deduped := e.multiQuery(ctx, []string{roomQuery})
	if len(deduped) == 0 {
		return []docModel.ExtractedRecord{}, []docModel.Source{}
	}

	combinedContext := retriever.ContextBlock(deduped)
	sources := retriever.ToSources(deduped, config.ExtractionSrcLimit, false)

	records, err := e.modelExtraction(ctx, roomPrompt(combinedContext), "")
	if err != nil {
		// No deterministic fallback here: room rows carry no anchor token
		// comparable to a door mark.
		log.Warn("Room extraction failed", "error", err)
		records = []docModel.ExtractedRecord{}
	}

	return records, sources
}

func (e *Extractor) extractEquipmentList(ctx context.Context) ([]docModel.ExtractedRecord, []docModel.Source) {
	log := e.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "category", docModel.CategoryEquipmentList)

	deduped := e.multiQuery(ctx, []string{equipmentQuery})
	if len(deduped) == 0 {
		return []docModel.ExtractedRecord{}, []docModel.Source{}
	}

	combinedContext := retriever.ContextBlock(deduped)
	sources := retriever.ToSources(deduped, config.ExtractionSrcLimit, false)

	records, err := e.modelExtraction(ctx, equipmentPrompt(combinedContext), "tag")
	if err != nil {
		log.Warn("Equipment extraction failed", "error", err)
		records = []docModel.ExtractedRecord{}
	}

	return records, sources
}

// multiQuery retrieves a generous top-k for every query and deduplicates
// across the result sets, keeping first-seen order.
func (e *Extractor) multiQuery(ctx context.Context, queries []string) []docModel.RetrievalResult {
	var all []docModel.RetrievalResult
	for _, q := range queries {
		results, err := e.retriever.Retrieve(ctx, q, config.ExtractionTopK)
		if err != nil {
			e.logger.Error("Extraction query failed", "query", q, "error", err)
			continue
		}
		all = append(all, results...)
	}
	return dedupByPrefix(all)
}

// dedupByPrefix treats chunks sharing the same content prefix as duplicates.
// Hashing only the prefix is an approximate-identity shortcut; two distinct
// chunks with a shared prefix merge, an accepted risk.
func dedupByPrefix(results []docModel.RetrievalResult) []docModel.RetrievalResult {
	seen := make(map[uint64]struct{}, len(results))
	deduped := make([]docModel.RetrievalResult, 0, len(results))

	for _, res := range results {
		prefix := res.Chunk.Text
		if len(prefix) > config.DedupPrefixLen {
			cut := config.DedupPrefixLen
			// Keep the key on a rune boundary so equal texts hash equally
			// regardless of where a multi-byte rune falls.
			for cut > 0 && !utf8.RuneStart(prefix[cut]) {
				cut--
			}
			prefix = prefix[:cut]
		}
		key := xxhash.Sum64String(prefix)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, res)
	}
	return deduped
}

// modelExtraction invokes the model and parses its response into records.
// When requiredField is set, records missing it are discarded; everything
// else passes through untouched.
func (e *Extractor) modelExtraction(ctx context.Context, prompt string, requiredField string) ([]docModel.ExtractedRecord, error) {
	start := time.Now()
	response, err := e.provider.Complete(ctx, prompt)
	metrics.CaptureExecutionMetrics("extraction_llm", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}

	parsed, err := parseRecordArray(response)
	if err != nil {
		return nil, fmt.Errorf("parsing extraction response: %w", err)
	}

	if requiredField == "" {
		return parsed, nil
	}

	cleaned := make([]docModel.ExtractedRecord, 0, len(parsed))
	for _, rec := range parsed {
		if v, ok := rec[requiredField]; ok && v != nil {
			cleaned = append(cleaned, rec)
		}
	}
	return cleaned, nil
}

func doorPrompt(combinedContext string) string {
	var b strings.Builder
	b.WriteString("You are an expert at extracting structured data from construction documents.\n\n")
	b.WriteString("Extract all door information from the following construction documents into a JSON array.\n")
	b.WriteString("Each door should be an object with these fields (use null if not found):\n")
	b.WriteString("- mark: Door identifier (e.g., \"D-101\", \"101\", \"1A\")\n")
	b.WriteString("- location: Where the door is located\n")
	b.WriteString("- width_mm: Width in millimeters (convert from inches/feet if needed)\n")
	b.WriteString("- height_mm: Height in millimeters (convert from inches/feet if needed)\n")
	b.WriteString("- fire_rating: Fire rating (e.g., \"1 HR\", \"90 MIN\", \"2 HR\")\n")
	b.WriteString("- material: Door material (e.g., \"Hollow Metal\", \"Wood\", \"Glass\")\n\n")
	b.WriteString("Documents:\n")
	b.WriteString(combinedContext)
	b.WriteString("\n\nImportant:\n")
	b.WriteString("- Extract ALL doors mentioned in the documents\n")
	b.WriteString("- Be precise with measurements and convert units as needed\n")
	b.WriteString("- If dimensions are in inches, convert to mm (1 inch = 25.4 mm)\n")
	b.WriteString("- Only include doors that are explicitly mentioned\n")
	b.WriteString("- Return ONLY a valid JSON array, no other text\n\n")
	b.WriteString("JSON Array:")
	return b.String()
}

func roomPrompt(combinedContext string) string {
	var b strings.Builder
	b.WriteString("Extract all room information from these construction documents into a JSON array.\n")
	b.WriteString("Each room should have: room_number, room_name, area_sqft, floor_finish, wall_finish, ceiling_finish. Use null for unknown fields.\n\n")
	b.WriteString("Documents:\n")
	b.WriteString(combinedContext)
	b.WriteString("\n\nReturn ONLY a valid JSON array:")
	return b.String()
}

func equipmentPrompt(combinedContext string) string {
	var b strings.Builder
	b.WriteString("Extract all MEP equipment from these construction documents into a JSON array.\n")
	b.WriteString("Each item should have: tag, description, location, capacity, model, manufacturer. Use null for unknown fields.\n\n")
	b.WriteString("Documents:\n")
	b.WriteString(combinedContext)
	b.WriteString("\n\nReturn ONLY a valid JSON array:")
	return b.String()
}
