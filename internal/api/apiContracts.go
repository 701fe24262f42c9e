package api

import "github.com/specwright/ConstructQA/internal/domain/docModel"

// requests---------------------

type ChatRequest struct {
	Message string `json:"message" validate:"required"`
	ChatID  string `json:"chatID,omitempty"`
}

type IngestRequest struct {
	Directory string `json:"directory,omitempty"`
}

type ExtractionRequest struct {
	ExtractionType string `json:"extraction_type" validate:"required"`
}

// responses--------------------

type ChatResponse struct {
	Message                string                     `json:"message"`
	Sources                []docModel.Source          `json:"sources"`
	ChatID                 string                     `json:"chat_id"`
	IsStructuredExtraction bool                       `json:"is_structured_extraction"`
	StructuredData         []docModel.ExtractedRecord `json:"structured_data,omitempty"`
}

type HistoryResponse struct {
	ChatID  string              `json:"chat_id"`
	History []docModel.ChatTurn `json:"history"`
}

type ExtractionResponse struct {
	ExtractionType string                     `json:"extraction_type"`
	Data           []docModel.ExtractedRecord `json:"data"`
	Sources        []docModel.Source          `json:"sources"`
}

type ErrorResponse struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Bad Request"`
}
