package qdrantDB

import (
	"context"
	"errors"
	"sync"

	"github.com/qdrant/go-client/qdrant"
	"github.com/specwright/ConstructQA/internal/config"
	"github.com/specwright/ConstructQA/internal/domain/docModel"
	"github.com/specwright/ConstructQA/pkg/logger_i"
)

// Remote index for deployments that outgrow the local snapshot store. Same
// Index contract: ascending cosine distance, payload carries chunk metadata.

var logger *logger_i.Logger
var qdrantInstance *qdrant.Client
var once sync.Once
var dimension = uint64(config.EmbeddingDimension)
var collectionName = config.VectorCollection

type ClientHolder struct {
	QObj *qdrant.Client
}

func GetQdrantClient(ctx context.Context, host string) *ClientHolder {
	once.Do(func() {
		logger = logger_i.NewLogger("Qdrant")
		res := newClient(host)
		if res != nil {
			qdrantInstance = res
			go closeQdrant(ctx, qdrantInstance)
		}
	})

	if qdrantInstance == nil {
		return nil
	}
	return &ClientHolder{
		QObj: qdrantInstance,
	}
}

func newClient(host string) *qdrant.Client {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     config.QdrantGrpcPort,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate qdrant client", "error", err)
		return nil
	}

	if err = createCollection(context.Background(), client, collectionName); err != nil {
		logger.Error("could not create collection", "collectionName", collectionName, "error", err)
		return nil
	}

	return client
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	if err := qi.Close(); err != nil {
		logger.Error("could not close Qdrant", "error", err)
	}
}

func (db *ClientHolder) Search(ctx context.Context, vector []float32, k int) ([]docModel.RetrievalResult, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(k)),
		WithPayload:    qdrant.NewWithPayload(true),
	})

	if err != nil {
		loggr.Error("Error querying Qdrant", "error", err)
		return nil, err
	}

	var results []docModel.RetrievalResult
	for _, hit := range result {
		chunk := docModel.Chunk{
			Id:          hit.Payload["chunk_id"].GetStringValue(),
			Text:        hit.Payload["content"].GetStringValue(),
			SourceFile:  hit.Payload["source_file"].GetStringValue(),
			PageNumber:  int(hit.Payload["page_number"].GetIntegerValue()),
			TotalPages:  int(hit.Payload["total_pages"].GetIntegerValue()),
			ChunkIndex:  int(hit.Payload["chunk_index"].GetIntegerValue()),
			ContentType: docModel.ContentType(hit.Payload["content_type"].GetStringValue()),
		}
		results = append(results, docModel.RetrievalResult{
			Chunk: chunk,
			// Qdrant reports cosine similarity, the Index contract wants distance.
			Score: 1 - hit.Score,
		})
	}

	return results, nil
}

func (db *ClientHolder) Upsert(ctx context.Context, chunks []docModel.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return errors.New("mismatched chunk and vector counts")
	}

	qdrantPoints := make([]*qdrant.PointStruct, len(chunks))
	for i, chunk := range chunks {
		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.Id),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"chunk_id":     chunk.Id,
				"content":      chunk.Text,
				"source_file":  chunk.SourceFile,
				"page_number":  chunk.PageNumber,
				"total_pages":  chunk.TotalPages,
				"chunk_index":  chunk.ChunkIndex,
				"content_type": string(chunk.ContentType),
			}),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionName,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})
	return err
}

func (db *ClientHolder) Count(ctx context.Context) (uint64, error) {
	return db.QObj.Count(ctx, &qdrant.CountPoints{
		CollectionName: collectionName,
	})
}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	return client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
}
