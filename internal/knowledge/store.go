package knowledge

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/clinicdesk/medibot/pkg/logging"
)

// Embedder turns texts into embedding vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Retriever exposes the query capability the orchestrator needs.
type Retriever interface {
	Query(ctx context.Context, query string, topK int) ([]string, error)
}

// Ingestor describes how clinic documents are added to the index.
type Ingestor interface {
	AddDocuments(ctx context.Context, contents []string) error
}

// MemoryStore keeps embeddings in memory and supports simple cosine
// retrieval. Good enough for a single-clinic document set; the index is
// rebuilt by re-ingesting after a restart.
type MemoryStore struct {
	embedder Embedder
	splitter *Splitter
	logger   *logging.Logger

	mu   sync.RWMutex
	docs []document
}

type document struct {
	content   string
	embedding []float32
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore(embedder Embedder, splitter *Splitter, logger *logging.Logger) *MemoryStore {
	if embedder == nil {
		panic("knowledge: embedder cannot be nil")
	}
	if splitter == nil {
		splitter = NewSplitter()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &MemoryStore{embedder: embedder, splitter: splitter, logger: logger}
}

// AddDocuments chunks, embeds and stores the provided document texts.
func (s *MemoryStore) AddDocuments(ctx context.Context, contents []string) error {
	var chunks []string
	for _, content := range contents {
		chunks = append(chunks, s.splitter.Split(content)...)
	}
	if len(chunks) == 0 {
		return nil
	}

	vectors, err := s.embedder.Embed(ctx, chunks)
	if err != nil {
		return err
	}
	if len(vectors) != len(chunks) {
		return errors.New("knowledge: embedding response size mismatch")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, chunk := range chunks {
		s.docs = append(s.docs, document{content: chunk, embedding: vectors[i]})
	}
	s.logger.Info("documents indexed", "chunks", len(chunks), "total", len(s.docs))
	return nil
}

// Query returns up to topK chunks closest to the query, best first. An
// empty index yields no results and no error.
func (s *MemoryStore) Query(ctx context.Context, query string, topK int) ([]string, error) {
	if topK <= 0 {
		topK = 3
	}

	s.mu.RLock()
	empty := len(s.docs) == 0
	s.mu.RUnlock()
	if empty {
		return nil, nil
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, nil
	}
	queryVec := vectors[0]

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		score   float64
		content string
	}
	results := make([]scored, 0, len(s.docs))
	for _, doc := range s.docs {
		results = append(results, scored{score: cosineSimilarity(queryVec, doc.embedding), content: doc.content})
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	if len(results) < topK {
		topK = len(results)
	}
	out := make([]string, topK)
	for i := 0; i < topK; i++ {
		out[i] = results[i].content
	}
	return out, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
