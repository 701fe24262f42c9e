package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/specwright/ConstructQA/internal/config"
	"github.com/specwright/ConstructQA/internal/domain/docModel"
)

type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the ingested construction documents"`
}

type AskOutput struct {
	Answer  string            `json:"answer"`
	Sources []docModel.Source `json:"sources"`
}

type ExtractInput struct {
	ExtractionType string `json:"extraction_type" jsonschema:"one of door_schedule, room_summary, equipment_list"`
}

type ExtractOutput struct {
	Data    []docModel.ExtractedRecord `json:"data"`
	Sources []docModel.Source          `json:"sources"`
	Count   int                        `json:"count"`
}

type IngestInput struct {
	Directory string `json:"directory,omitempty" jsonschema:"directory holding the documents to ingest (defaults to the configured corpus directory)"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question about the ingested construction documents, with page-level citations",
	}, s.handleAsk)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "extract_schedule",
		Description: "Extract a structured schedule (doors, rooms or equipment) from the ingested documents",
	}, s.handleExtract)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ingest_corpus",
		Description: "Ingest every supported document in a directory into the vector index",
	}, s.handleIngest)
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if input.Question == "" {
		return nil, AskOutput{}, fmt.Errorf("question is required")
	}

	answer, sources := s.ragService.AnswerQuestion(ctx, input.Question)
	return nil, AskOutput{Answer: answer, Sources: sources}, nil
}

func (s *Server) handleExtract(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExtractInput,
) (*mcp.CallToolResult, ExtractOutput, error) {
	category := docModel.Category(input.ExtractionType)
	switch category {
	case docModel.CategoryDoorSchedule, docModel.CategoryRoomSummary, docModel.CategoryEquipmentList:
	default:
		return nil, ExtractOutput{}, fmt.Errorf("unsupported extraction_type %q", input.ExtractionType)
	}

	records, sources := s.ragService.Extract(ctx, category)
	return nil, ExtractOutput{Data: records, Sources: sources, Count: len(records)}, nil
}

func (s *Server) handleIngest(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IngestInput,
) (*mcp.CallToolResult, docModel.IngestionReport, error) {
	dir := input.Directory
	if dir == "" {
		dir = config.DocumentsDir
	}

	report := s.ragService.IngestDirectory(ctx, dir)
	return nil, report, nil
}
