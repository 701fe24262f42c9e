package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/specwright/ConstructQA/internal/api"
	"github.com/specwright/ConstructQA/internal/data/store"
	"github.com/specwright/ConstructQA/internal/domain/docModel"
)

type stubRagService struct{}

func (stubRagService) IngestDirectory(ctx context.Context, dir string) docModel.IngestionReport {
	return docModel.IngestionReport{Status: "success"}
}

func (stubRagService) AnswerQuestion(ctx context.Context, question string) (string, []docModel.Source) {
	return "answer to " + question, []docModel.Source{}
}

func (stubRagService) DetectExtractionIntent(query string) (bool, docModel.Category) {
	return false, ""
}

func (stubRagService) Extract(ctx context.Context, category docModel.Category) ([]docModel.ExtractedRecord, []docModel.Source) {
	return []docModel.ExtractedRecord{}, []docModel.Source{}
}

// newTestRouter rebinds the handler singleton to a fresh in-memory store so
// each test starts with no conversations.
func newTestRouter(t *testing.T) (*chi.Mux, docModel.MessageStore) {
	t.Helper()
	messages := store.InitMessageStore()
	InitHandlers(stubRagService{}, messages)
	handlerInstance = &requestHandler{ragService: stubRagService{}, messageStore: messages}

	r := chi.NewRouter()
	r.Post("/chat", ChatHandler)
	r.Get("/conversation/{chatID}", HistoryHandler)
	return r, messages
}

func TestHistoryHandler_ReturnsSavedTurns(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat",
		strings.NewReader(`{"message":"what doors are fire rated?"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("chat status got %d", rec.Code)
	}

	var chat api.ChatResponse
	if err := json.NewDecoder(rec.Body).Decode(&chat); err != nil {
		t.Fatal(err)
	}
	if chat.ChatID == "" {
		t.Fatal("chat response should carry a chat id")
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/conversation/"+chat.ChatID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("history status got %d", rec.Code)
	}

	var history api.HistoryResponse
	if err := json.NewDecoder(rec.Body).Decode(&history); err != nil {
		t.Fatal(err)
	}
	if history.ChatID != chat.ChatID {
		t.Errorf("chat id got %s, want %s", history.ChatID, chat.ChatID)
	}
	if len(history.History) != 1 {
		t.Fatalf("history length got %d, want 1", len(history.History))
	}
	turn := history.History[0]
	if turn.Question != "what doors are fire rated?" {
		t.Errorf("question got %q", turn.Question)
	}
	if turn.Answer != "answer to what doors are fire rated?" {
		t.Errorf("answer got %q", turn.Answer)
	}
}

func TestHistoryHandler_UnknownChat(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/conversation/ghost", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown chat id should 404, got %d", rec.Code)
	}
}

func TestHistoryHandler_FiltersEmptyMarkerTurn(t *testing.T) {
	router, messages := newTestRouter(t)
	ctx := context.Background()

	if err := messages.InitNewChat(ctx, "chat-m"); err != nil {
		t.Fatal(err)
	}
	// An empty turn is the initialization marker shape; it should not surface.
	if err := messages.TrySaveChat(ctx, "chat-m", docModel.ChatTurn{}); err != nil {
		t.Fatal(err)
	}
	if err := messages.TrySaveChat(ctx, "chat-m", docModel.ChatTurn{Question: "q1", Answer: "a1"}); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/conversation/chat-m", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("history status got %d", rec.Code)
	}

	var history api.HistoryResponse
	if err := json.NewDecoder(rec.Body).Decode(&history); err != nil {
		t.Fatal(err)
	}
	if len(history.History) != 1 {
		t.Fatalf("marker turn should be filtered, got %d turns", len(history.History))
	}
	if history.History[0].Question != "q1" {
		t.Errorf("question got %q", history.History[0].Question)
	}
}
