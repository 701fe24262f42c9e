package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/specwright/ConstructQA/internal/adapter/utils"
	"github.com/specwright/ConstructQA/internal/api"
	"github.com/specwright/ConstructQA/internal/config"
	"github.com/specwright/ConstructQA/internal/domain/docModel"
	"github.com/specwright/ConstructQA/internal/rag"
	"github.com/specwright/ConstructQA/pkg/logger_i"
)

var (
	handlerInstance *requestHandler //private singleton
	once            sync.Once
	logRH           *logger_i.Logger
)

type requestHandler struct {
	ragService   rag.Service
	messageStore docModel.MessageStore
}

func InitHandlers(ragService rag.Service, messageStore docModel.MessageStore) {
	once.Do(func() {
		handlerInstance = &requestHandler{
			ragService:   ragService,
			messageStore: messageStore,
		}
		logRH = logger_i.NewLogger("RequestHandler")
		logRH.Info("Request handlers initialized")
	})
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// ChatHandler answers a question about the ingested corpus. When the message
// reads like a structured-extraction request the extraction pipeline runs
// instead and the rows ride along in structured_data.
func ChatHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("Invalid context by request", "remote", request.RemoteAddr)
		return
	}

	var requestData api.ChatRequest
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logRH.Error("Couldn't close the chat request reader", "error", err)
		}
	}(request.Body)

	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || requestData.Message == "" {
		logRH.Warn("Bad chat request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, "message is required")
		return
	}

	ctx := request.Context()
	chatID := requestData.ChatID
	if chatID == "" {
		chatID = utils.GetNewUUID()
		if err := handlerInstance.messageStore.InitNewChat(ctx, chatID); err != nil {
			logRH.Error("Error initiating new chat", "chatId", chatID, "error", err)
		}
	} else if !handlerInstance.messageStore.ValidateChatId(ctx, chatID) {
		WriteErrorResponse(w, http.StatusBadRequest, "unknown chat id")
		return
	}

	response := api.ChatResponse{ChatID: chatID}

	if isExtraction, category := handlerInstance.ragService.DetectExtractionIntent(requestData.Message); isExtraction {
		records, sources := handlerInstance.ragService.Extract(ctx, category)
		response.IsStructuredExtraction = true
		response.StructuredData = records
		response.Sources = sources
		response.Message = extractionSummary(category, len(records))
	} else {
		answer, sources := handlerInstance.ragService.AnswerQuestion(ctx, requestData.Message)
		response.Message = answer
		response.Sources = sources
	}

	turn := docModel.ChatTurn{Question: requestData.Message, Answer: response.Message, Sources: response.Sources}
	if err := handlerInstance.messageStore.TrySaveChat(ctx, chatID, turn); err != nil {
		logRH.Error("Failed to save chat history", "error", err)
	}

	writeJsonResponse(w, http.StatusOK, response)
}

// HistoryHandler returns the recent turns of a conversation, oldest first.
// The empty marker turn written at chat initialization is filtered out.
func HistoryHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid context by request", "remote", r.RemoteAddr)
		return
	}

	ctx := r.Context()
	chatID := chi.URLParam(r, "chatID")
	if chatID == "" || !handlerInstance.messageStore.ValidateChatId(ctx, chatID) {
		WriteErrorResponse(w, http.StatusNotFound, "unknown chat id")
		return
	}

	raw, err := handlerInstance.messageStore.GetMessageHistory(ctx, chatID)
	if err != nil {
		logRH.Error("Failed to load chat history", "chatId", chatID, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "could not load history")
		return
	}

	turns := make([]docModel.ChatTurn, 0, len(raw))
	for _, entry := range raw {
		var turn docModel.ChatTurn
		if err := json.Unmarshal([]byte(entry), &turn); err != nil {
			logRH.Error("Corrupt history entry", "chatId", chatID, "error", err)
			continue
		}
		if turn.Question == "" && turn.Answer == "" {
			continue
		}
		turns = append(turns, turn)
	}

	writeJsonResponse(w, http.StatusOK, api.HistoryResponse{ChatID: chatID, History: turns})
}

// IngestHandler runs a synchronous whole-corpus ingestion. Concurrent runs
// are rejected by the in-flight guard inside the pipeline.
func IngestHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid context by request", "remote", r.RemoteAddr)
		return
	}

	var requestData api.IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil && err != io.EOF {
		WriteErrorResponse(w, http.StatusBadRequest, "Bad Request")
		return
	}
	dir := requestData.Directory
	if dir == "" {
		dir = config.DocumentsDir
	}

	report := handlerInstance.ragService.IngestDirectory(r.Context(), dir)

	status := http.StatusOK
	if report.Status != "success" {
		status = http.StatusConflict
		if report.Message != "Ingestion already in progress" {
			status = http.StatusInternalServerError
		}
	}
	writeJsonResponse(w, status, report)
}

// ExtractHandler runs a structured extraction for an explicit category.
func ExtractHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid context by request", "remote", r.RemoteAddr)
		return
	}

	var requestData api.ExtractionRequest
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || requestData.ExtractionType == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "extraction_type is required")
		return
	}

	category := docModel.Category(requestData.ExtractionType)
	switch category {
	case docModel.CategoryDoorSchedule, docModel.CategoryRoomSummary, docModel.CategoryEquipmentList:
	default:
		WriteErrorResponse(w, http.StatusBadRequest, "unsupported extraction_type")
		return
	}

	records, sources := handlerInstance.ragService.Extract(r.Context(), category)
	writeJsonResponse(w, http.StatusOK, api.ExtractionResponse{
		ExtractionType: requestData.ExtractionType,
		Data:           records,
		Sources:        sources,
	})
}

func extractionSummary(category docModel.Category, count int) string {
	switch category {
	case docModel.CategoryDoorSchedule:
		return summaryLine("door", count)
	case docModel.CategoryRoomSummary:
		return summaryLine("room", count)
	case docModel.CategoryEquipmentList:
		return summaryLine("equipment", count)
	default:
		return summaryLine("record", count)
	}
}

func summaryLine(noun string, count int) string {
	if count == 0 {
		return "No " + noun + " records could be extracted from the ingested documents."
	}
	if count == 1 {
		return "Extracted 1 " + noun + " record from the ingested documents."
	}
	return "Extracted " + strconv.Itoa(count) + " " + noun + " records from the ingested documents."
}
