package localDB

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/specwright/ConstructQA/internal/domain/docModel"
	"github.com/specwright/ConstructQA/pkg/logger_i"
)

const snapshotFile = "index.json"

// Store is a brute-force cosine index persisted as a JSON snapshot in a
// directory. Vectors are expected L2-normalized so similarity is a plain dot
// product; the reported score is the cosine distance (1 - similarity).
// Reads are safe concurrently; writes are the infrequent ingestion batch and
// take the write lock.
type Store struct {
	mu     sync.RWMutex
	dir    string
	points []point
	logger *logger_i.Logger
}

type point struct {
	Chunk  docModel.Chunk `json:"chunk"`
	Vector []float32      `json:"vector"`
}

type snapshot struct {
	Points []point `json:"points"`
}

// NewStore opens the index persisted under dir, creating the directory when
// needed. A missing snapshot initializes an empty index; an unreadable or
// corrupt one is an error, that is a startup misconfiguration the caller
// should treat as fatal.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, errors.New("empty persistence directory")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("creating persistence directory: %w", err)
	}

	s := &Store{
		dir:    dir,
		logger: logger_i.NewLogger("LocalVectorDB"),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	s.logger.Info("Vector index loaded", "dir", dir, "points", len(s.points))
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(filepath.Join(s.dir, snapshotFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading index snapshot: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parsing index snapshot: %w", err)
	}
	s.points = snap.Points
	return nil
}

// persist writes the snapshot through a temp file so a crash mid-write never
// leaves a truncated index behind.
func (s *Store) persist() error {
	data, err := json.Marshal(snapshot{Points: s.points})
	if err != nil {
		return fmt.Errorf("encoding index snapshot: %w", err)
	}

	tmp := filepath.Join(s.dir, snapshotFile+".tmp")
	if err := os.WriteFile(tmp, data, 0640); err != nil {
		return fmt.Errorf("writing index snapshot: %w", err)
	}
	return os.Rename(tmp, filepath.Join(s.dir, snapshotFile))
}

func (s *Store) Upsert(ctx context.Context, chunks []docModel.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range chunks {
		s.points = append(s.points, point{Chunk: chunks[i], Vector: vectors[i]})
	}
	return s.persist()
}

func (s *Store) Search(ctx context.Context, vector []float32, k int) ([]docModel.RetrievalResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]docModel.RetrievalResult, 0, len(s.points))
	for _, p := range s.points {
		results = append(results, docModel.RetrievalResult{
			Chunk: p.Chunk,
			Score: 1 - dot(p.Vector, vector),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score < results[j].Score
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

func (s *Store) Count(ctx context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return uint64(len(s.points)), nil
}

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
