// Package store implements the in-memory vector store: it owns the chunk
// corpus, computes one embedding per chunk at build time, and answers
// semantic, keyword, and hybrid ranked-search queries over it. The corpus is
// immutable after Build, so queries need no locking and may run with
// unbounded concurrency.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/verdantscape/knowledge-engine/internal/embedding"
	"github.com/verdantscape/knowledge-engine/internal/knowledge"
)

// DefaultTopK is the result count used when a caller passes topK <= 0.
const DefaultTopK = 5

// hybridCandidates widens the per-strategy candidate pool so the combined
// ranking is not clipped by either input set.
const hybridCandidates = 3

// Filter is an exact-match predicate over chunk classification fields.
// Filtering happens before scoring, never after truncation to topK.
type Filter struct {
	Category    knowledge.Category
	ServiceType knowledge.ServiceType
}

// Matches reports whether a chunk passes the filter. A zero filter matches
// every chunk.
func (f *Filter) Matches(chunk *knowledge.DocumentChunk) bool {
	if f == nil {
		return true
	}
	if f.Category != "" && chunk.Metadata.Category != f.Category {
		return false
	}
	if f.ServiceType != "" && chunk.Metadata.ServiceType != f.ServiceType {
		return false
	}
	return true
}

// HybridWeights controls the semantic/keyword blend in HybridSearch.
type HybridWeights struct {
	Semantic float64
	Keyword  float64
}

// DefaultWeights favors semantic similarity but keeps lexical overlap in play.
func DefaultWeights() HybridWeights {
	return HybridWeights{Semantic: 0.7, Keyword: 0.3}
}

// Store holds the embedded chunk corpus and its keyword index.
type Store struct {
	provider embedding.Provider
	logger   *slog.Logger
	chunks   []*knowledge.DocumentChunk
	terms    []map[string]int // Per-chunk term frequencies, aligned with chunks
}

// Build computes an embedding for every chunk and constructs the keyword
// index. This is the only point embeddings are computed; chunks are
// immutable afterward. An embedding provider failure fails the build.
func Build(ctx context.Context, provider embedding.Provider, chunks []knowledge.DocumentChunk, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		provider: provider,
		logger:   logger,
		chunks:   make([]*knowledge.DocumentChunk, len(chunks)),
		terms:    make([]map[string]int, len(chunks)),
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		c := chunks[i]
		s.chunks[i] = &c
		s.terms[i] = termFrequencies(c.Content)
		texts[i] = c.Content
	}

	if len(texts) > 0 {
		vectors, err := provider.EmbedTexts(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("%w: got %d vectors for %d chunks", ErrDimensionMismatch, len(vectors), len(texts))
		}
		dim := len(vectors[0])
		for i, vec := range vectors {
			if len(vec) != dim {
				return nil, fmt.Errorf("%w: chunk %d has %d dimensions, expected %d", ErrDimensionMismatch, i, len(vec), dim)
			}
			s.chunks[i].Embedding = vec
		}
	}

	logger.Info("vector store built", "chunks", len(chunks))
	return s, nil
}

// Size returns the number of chunks in the corpus.
func (s *Store) Size() int {
	return len(s.chunks)
}

// Chunks returns the corpus. Callers must treat it as read-only.
func (s *Store) Chunks() []*knowledge.DocumentChunk {
	return s.chunks
}

// SemanticSearch embeds the query and ranks chunks by cosine similarity.
// An empty corpus yields an empty result list; a provider failure is
// surfaced to the caller as an error.
func (s *Store) SemanticSearch(ctx context.Context, query string, topK int, filter *Filter) ([]knowledge.SearchResult, error) {
	if len(s.chunks) == 0 {
		return nil, nil
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	vectors, err := s.provider.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	queryVec := vectors[0]

	var results []knowledge.SearchResult
	for _, chunk := range s.chunks {
		if !filter.Matches(chunk) {
			continue
		}
		results = append(results, knowledge.SearchResult{
			Chunk:     chunk,
			Score:     cosineScore(queryVec, chunk.Embedding),
			MatchType: knowledge.MatchSemantic,
		})
	}
	sortByScore(results)
	return truncate(results, topK), nil
}

// KeywordSearch scores chunks by query-term frequency against their
// content. It never touches the embedding provider, so it cannot suspend
// and cannot fail. Scores are normalized so the best match is 1.0.
func (s *Store) KeywordSearch(query string, topK int, filter *Filter) []knowledge.SearchResult {
	if len(s.chunks) == 0 {
		return nil
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	queryTerms := tokenize(query)
	if len(queryTerms) == 0 {
		return nil
	}

	var results []knowledge.SearchResult
	maxRaw := 0.0
	for i, chunk := range s.chunks {
		if !filter.Matches(chunk) {
			continue
		}
		raw := 0.0
		for _, term := range queryTerms {
			raw += float64(s.terms[i][term])
		}
		if raw == 0 {
			continue
		}
		if raw > maxRaw {
			maxRaw = raw
		}
		results = append(results, knowledge.SearchResult{
			Chunk:     chunk,
			Score:     raw,
			MatchType: knowledge.MatchKeyword,
		})
	}
	for i := range results {
		results[i].Score /= maxRaw
	}
	sortByScore(results)
	return truncate(results, topK)
}

// HybridSearch combines semantic and keyword rankings: each result set is
// min-max normalized to [0,1] and blended per-chunk with the given weights
// (a chunk missing from one set contributes 0 for that component). Ties are
// broken by semantic rank. When the embedding call fails, HybridSearch
// degrades to keyword-only scoring; the degradation is logged and flagged
// in the returned bool, never silent.
func (s *Store) HybridSearch(ctx context.Context, query string, topK int, weights *HybridWeights, filter *Filter) (results []knowledge.SearchResult, degraded bool, err error) {
	if len(s.chunks) == 0 {
		return nil, false, nil
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	w := DefaultWeights()
	if weights != nil {
		w = *weights
	}
	if sum := w.Semantic + w.Keyword; sum > 0 {
		w.Semantic /= sum
		w.Keyword /= sum
	} else {
		w = DefaultWeights()
	}

	candidateK := topK * hybridCandidates
	keyword := s.KeywordSearch(query, candidateK, filter)

	semantic, err := s.SemanticSearch(ctx, query, candidateK, filter)
	if err != nil {
		s.logger.Warn("hybrid search degraded to keyword-only", "query", query, "error", err)
		for i := range keyword {
			keyword[i].MatchType = knowledge.MatchKeyword
		}
		return truncate(keyword, topK), true, nil
	}

	semScores := normalize(semantic)
	kwScores := normalize(keyword)
	semRank := make(map[string]int, len(semantic))
	for i, r := range semantic {
		semRank[r.Chunk.ID] = i
	}

	combined := make(map[string]*knowledge.SearchResult)
	for _, r := range semantic {
		combined[r.Chunk.ID] = &knowledge.SearchResult{
			Chunk:     r.Chunk,
			Score:     w.Semantic * semScores[r.Chunk.ID],
			MatchType: knowledge.MatchHybrid,
		}
	}
	for _, r := range keyword {
		if existing, ok := combined[r.Chunk.ID]; ok {
			existing.Score += w.Keyword * kwScores[r.Chunk.ID]
			continue
		}
		combined[r.Chunk.ID] = &knowledge.SearchResult{
			Chunk:     r.Chunk,
			Score:     w.Keyword * kwScores[r.Chunk.ID],
			MatchType: knowledge.MatchHybrid,
		}
	}

	results = make([]knowledge.SearchResult, 0, len(combined))
	for _, r := range combined {
		results = append(results, *r)
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return hybridTieRank(semRank, results[i]) < hybridTieRank(semRank, results[j])
	})
	return truncate(results, topK), false, nil
}

// hybridTieRank orders tied scores by original semantic rank; chunks absent
// from the semantic set sort after all semantic hits, by chunk index.
func hybridTieRank(semRank map[string]int, r knowledge.SearchResult) int {
	if rank, ok := semRank[r.Chunk.ID]; ok {
		return rank
	}
	return (1 << 20) + r.Chunk.Metadata.ChunkIndex
}

// normalize min-max scales a result set's scores to [0,1], keyed by chunk
// ID. A single-score or constant-score set maps to 1.0.
func normalize(results []knowledge.SearchResult) map[string]float64 {
	scores := make(map[string]float64, len(results))
	if len(results) == 0 {
		return scores
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, r := range results {
		lo = math.Min(lo, r.Score)
		hi = math.Max(hi, r.Score)
	}
	for _, r := range results {
		if hi > lo {
			scores[r.Chunk.ID] = (r.Score - lo) / (hi - lo)
		} else {
			scores[r.Chunk.ID] = 1.0
		}
	}
	return scores
}

// cosineScore maps cosine similarity onto [0,1].
func cosineScore(a, b []float32) float64 {
	var dot, normA, normB float64
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Max(0, math.Min(1, (cos+1)/2))
}

func sortByScore(results []knowledge.SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.Metadata.ChunkIndex < results[j].Chunk.Metadata.ChunkIndex
	})
}

func truncate(results []knowledge.SearchResult, topK int) []knowledge.SearchResult {
	if len(results) > topK {
		return results[:topK]
	}
	return results
}

var tokenPattern = regexp.MustCompile(`[\pL\pN]+`)

func tokenize(text string) []string {
	return tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func termFrequencies(content string) map[string]int {
	tf := make(map[string]int)
	for _, term := range tokenize(content) {
		tf[term]++
	}
	return tf
}
