package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//segmenter
	ChunkSize    = 1000 //characters
	ChunkOverlap = 200

	//retrieval
	MaxRetrievalDocs   = 5  //default top-k for Q&A
	ExtractionTopK     = 10 //per-query top-k during structured extraction
	ExtractionCtxLimit = 15 //dedup'd chunks concatenated into the extraction context
	ExtractionSrcLimit = 10 //dedup'd chunks returned as citations
	DedupPrefixLen     = 100
	SnippetLimit       = 200 //citation snippet truncation

	//vector index
	EmbeddingDimension = 384
	VectorCollection   = "construction-docs"
	DefaultPersistDir  = "./vector_db"

	//qdrant (optional remote index, enabled via QDRANT_HOST)
	QdrantGrpcPort         = 6334
	QdrantUseTLS           = false
	QdrantPoolSize         = 1
	QdrantKeepAliveTimeout = 30 * time.Second

	//llm
	ModelCallTimeout = 30 * time.Second
	GeminiModelName  = "gemini-2.5-flash-lite-preview-09-2025"

	GoogleEmbeddingModel = "gemini-embedding-001"
	OpenAIModelName      = "gpt-4o-mini"

	QAPromptHeader = "You are an AI assistant specialized in construction project documentation. " +
		"You help users understand specifications, drawings, schedules, and other construction documents.\n\n" +
		"Use the following pieces of context from construction documents to answer the question at the end.\n" +
		"If you don't know the answer based on the context provided, say so clearly - do not make up information.\n" +
		"Always cite which document and page your information comes from."

	NoDocumentsAnswer = "I don't have any relevant documents to answer this question. " +
		"Please make sure documents have been ingested."

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 60 * time.Second //synchronous answer/extraction calls wait on the model
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	RedisMessageStore    = 1
	RedisMessageStoreTTL = 24 * time.Hour
)

// Env-backed settings. LoadEnv must run before these are read.
var (
	GeminiAPIKey  string
	OpenAIAPIKey  string
	AuthToken     string
	NoAuthBypass  bool
	LLMProvider   string //"gemini" or "openai"
	Embedder      string //"local" or "google"
	PersistDir    string
	DocumentsDir  string
	QdrantHost    string
	RedisPassword string
)

// LoadEnv reads .env if present and snapshots the settings this process uses.
// Missing .env is fine, the environment alone is enough.
func LoadEnv() {
	_ = godotenv.Load()

	GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	AuthToken = os.Getenv("AUTH_TOKEN")
	NoAuthBypass = os.Getenv("NO_AUTH_BYPASS") == "true" || AuthToken == ""
	RedisPassword = os.Getenv("REDIS_PASSWORD")
	QdrantHost = os.Getenv("QDRANT_HOST")

	LLMProvider = os.Getenv("LLM_PROVIDER")
	if LLMProvider == "" {
		LLMProvider = "openai"
	}
	Embedder = os.Getenv("EMBEDDING_PROVIDER")
	if Embedder == "" {
		Embedder = "local"
	}
	PersistDir = os.Getenv("VECTOR_PERSIST_DIR")
	if PersistDir == "" {
		PersistDir = DefaultPersistDir
	}
	DocumentsDir = os.Getenv("DOCUMENTS_DIR")
	if DocumentsDir == "" {
		DocumentsDir = "./documents"
	}
}
