package corpus

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Index is a flat L2 nearest-neighbor index over corpus fragments.
// It is built once at startup and immutable afterwards, so concurrent
// searches need no locking.
type Index struct {
	embedder  Embedder
	fragments []string
	vectors   [][]float32
	dimension int
}

// Build embeds every fragment and constructs the index. The fragment
// and vector counts are checked so the index can never be searched in a
// half-built state.
func Build(ctx context.Context, embedder Embedder, fragments []string) (*Index, error) {
	if len(fragments) == 0 {
		fragments = []string{Sentinel}
	}

	vectors, err := embedder.EmbedBatch(ctx, fragments)
	if err != nil {
		return nil, fmt.Errorf("embed corpus: %w", err)
	}
	if len(vectors) != len(fragments) {
		return nil, fmt.Errorf("embedding count mismatch: %d fragments, %d vectors", len(fragments), len(vectors))
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return nil, fmt.Errorf("embedder returned empty vectors")
	}

	dimension := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dimension {
			return nil, fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), dimension)
		}
	}

	return &Index{
		embedder:  embedder,
		fragments: fragments,
		vectors:   vectors,
		dimension: dimension,
	}, nil
}

// Len returns the number of indexed fragments.
func (i *Index) Len() int {
	return len(i.fragments)
}

// Search embeds the query and returns the k nearest fragments by
// Euclidean distance, closest first.
func (i *Index) Search(ctx context.Context, query string, k int) ([]string, error) {
	if k <= 0 {
		k = 4
	}

	qv, err := i.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(qv) != i.dimension {
		return nil, fmt.Errorf("query vector has dimension %d, want %d", len(qv), i.dimension)
	}

	type hit struct {
		idx  int
		dist float32
	}
	hits := make([]hit, len(i.vectors))
	for idx, v := range i.vectors {
		hits[idx] = hit{idx: idx, dist: squaredL2(qv, v)}
	}
	sort.Slice(hits, func(a, b int) bool { return hits[a].dist < hits[b].dist })

	if k > len(hits) {
		k = len(hits)
	}
	results := make([]string, 0, k)
	for _, h := range hits[:k] {
		results = append(results, i.fragments[h.idx])
	}
	return results, nil
}

// Context returns the k nearest fragments joined into a single context
// block for the generation prompt.
func (i *Index) Context(ctx context.Context, query string, k int) (string, error) {
	fragments, err := i.Search(ctx, query, k)
	if err != nil {
		return "", err
	}
	return strings.Join(fragments, "\n"), nil
}

func squaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
