package localEmbedding

import (
	"context"
	"math"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/specwright/ConstructQA/internal/config"
	"github.com/specwright/ConstructQA/internal/rag/embedding"
)

// client is a local feature-hashing embedder. Words and word bigrams are
// hashed into a fixed-size vector which is then L2-normalized, so cosine
// similarity reduces to a dot product. The output is a pure function of the
// input text: no network, no model weights, reproducible fixtures.
type client struct {
	dimension int
}

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+`)

func NewLocalEmbedder() embedding.Embedder {
	return &client{dimension: config.EmbeddingDimension}
}

func (c *client) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	return c.embed(text), nil
}

func (c *client) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vectors[i] = c.embed(t)
	}
	return vectors, nil
}

func (c *client) embed(text string) []float32 {
	vector := make([]float32, c.dimension)
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)

	for i, tok := range tokens {
		addFeature(vector, tok)
		if i+1 < len(tokens) {
			addFeature(vector, tok+" "+tokens[i+1])
		}
	}

	normalize(vector)
	return vector
}

// addFeature hashes a feature into a bucket; one hash bit picks the sign so
// collisions cancel rather than pile up.
func addFeature(vector []float32, feature string) {
	h := xxhash.Sum64String(feature)
	idx := int(h % uint64(len(vector)))
	if h&(1<<63) != 0 {
		vector[idx] -= 1
	} else {
		vector[idx] += 1
	}
}

func normalize(vector []float32) {
	var sum float64
	for _, v := range vector {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range vector {
		vector[i] /= norm
	}
}
