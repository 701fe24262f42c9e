package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/specwright/ConstructQA/internal/config"
	"github.com/specwright/ConstructQA/internal/data/store"
	"github.com/specwright/ConstructQA/internal/domain/docModel"
	"github.com/specwright/ConstructQA/internal/handlers"
	"github.com/specwright/ConstructQA/internal/mcpserver"
	"github.com/specwright/ConstructQA/internal/rag"
	"github.com/specwright/ConstructQA/internal/rag/embedding"
	"github.com/specwright/ConstructQA/internal/rag/embedding/googleEmbedding"
	"github.com/specwright/ConstructQA/internal/rag/embedding/localEmbedding"
	"github.com/specwright/ConstructQA/internal/rag/llm"
	"github.com/specwright/ConstructQA/internal/rag/llm/gemini"
	"github.com/specwright/ConstructQA/internal/rag/llm/openai"
	"github.com/specwright/ConstructQA/internal/rag/vectorDB"
	"github.com/specwright/ConstructQA/internal/rag/vectorDB/localDB"
	"github.com/specwright/ConstructQA/internal/rag/vectorDB/qdrantDB"
	"github.com/specwright/ConstructQA/internal/server"
	"github.com/specwright/ConstructQA/pkg/logger_i"
)

var (
	listenAddr string
	mcpMode    bool
	ingestDir  string
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	config.LoadEnv()
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.BoolVar(&mcpMode, "mcp", false, "serve over MCP stdio instead of HTTP")
	flag.StringVar(&ingestDir, "ingest-dir", "", "ingest this directory and exit")
	flag.Parse()

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	index := selectIndex(serviceContext, logger)
	embeddingService := selectEmbedder(serviceContext, logger)
	llmProvider := selectProvider(serviceContext, logger)

	if index == nil || embeddingService == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "Index", index != nil, "EmbeddingService", embeddingService != nil, "LLMProvider", llmProvider != nil)
		return
	}

	ragService := rag.NewService(index, llmProvider, embeddingService)

	//one-shot ingestion mode
	if ingestDir != "" {
		report := ragService.IngestDirectory(serviceContext, ingestDir)
		logger.Info("Ingestion finished", "status", report.Status, "documents", report.ProcessedDocuments, "chunks", report.TotalChunks, "message", report.Message)
		if report.Status != "success" {
			os.Exit(1)
		}
		return
	}

	if mcpMode {
		if err := mcpserver.NewServer(ragService).Run(serviceContext); err != nil {
			logger.Error("MCP server stopped", "error", err)
		}
		return
	}

	var messageStore docModel.MessageStore
	if redisMessages := store.GetRedisMessageStore(serviceContext); redisMessages != nil {
		messageStore = redisMessages
	} else {
		logger.Warn("Redis message store is offline, keeping chat history in memory")
		messageStore = store.InitMessageStore()
	}

	handlers.InitHandlers(ragService, messageStore)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

func selectIndex(ctx context.Context, logger *logger_i.Logger) vectorDB.Index {
	if config.QdrantHost != "" {
		logger.Info("Using qdrant vector index", "host", config.QdrantHost)
		holder := qdrantDB.GetQdrantClient(ctx, config.QdrantHost)
		if holder == nil {
			return nil
		}
		return holder
	}

	logger.Info("Using local persistent vector index", "dir", config.PersistDir)
	index, err := localDB.NewStore(config.PersistDir)
	if err != nil {
		logger.Error("Could not open the local vector index", "dir", config.PersistDir, "error", err)
		return nil
	}
	return index
}

func selectEmbedder(ctx context.Context, logger *logger_i.Logger) embedding.Embedder {
	if config.Embedder == "google" {
		logger.Info("Using google embeddings")
		return googleEmbedding.GetGoogleEmbeddingClient(ctx, config.GoogleEmbeddingModel, config.GeminiAPIKey)
	}
	logger.Info("Using local hashing embeddings")
	return localEmbedding.NewLocalEmbedder()
}

func selectProvider(ctx context.Context, logger *logger_i.Logger) llm.Provider {
	if config.LLMProvider == "gemini" {
		logger.Info("Using gemini completions", "model", config.GeminiModelName)
		return gemini.GetGeminiClient(ctx, config.GeminiModelName, config.GeminiAPIKey)
	}
	logger.Info("Using openai completions", "model", config.OpenAIModelName)
	return openai.GetOpenAIClient(config.OpenAIModelName, config.OpenAIAPIKey)
}
