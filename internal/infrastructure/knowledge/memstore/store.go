package memstore

import (
	"context"
	"slices"
	"strings"
	"sync"
	"unicode"

	"github.com/dkozyrev/corpusqa/internal/core/domain"
)

// Store is an in-memory keyword-overlap knowledge store. It exists for
// local runs and tests where a graph database is not available; ranking
// is by the number of query tokens contained in the chunk text.
type Store struct {
	mu     sync.RWMutex
	chunks []domain.Chunk
}

func New() *Store {
	return &Store{}
}

func (s *Store) Add(chunks ...domain.Chunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, chunks...)
}

func (s *Store) Search(ctx context.Context, queryText string, scope []string, topK int) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tokens := tokenize(queryText)
	if len(tokens) == 0 || topK <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		chunk domain.Chunk
		hits  int
		order int
	}
	matches := make([]scored, 0, len(s.chunks))
	for i, chunk := range s.chunks {
		if len(scope) > 0 && !slices.Contains(scope, chunk.DocumentID) {
			continue
		}
		lower := strings.ToLower(chunk.Text)
		hits := 0
		for _, token := range tokens {
			if strings.Contains(lower, token) {
				hits++
			}
		}
		if hits > 0 {
			matches = append(matches, scored{chunk: chunk, hits: hits, order: i})
		}
	}

	slices.SortFunc(matches, func(a, b scored) int {
		if a.hits != b.hits {
			return b.hits - a.hits
		}
		return a.order - b.order
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}

	out := make([]domain.Chunk, len(matches))
	for i, m := range matches {
		out[i] = m.chunk
	}
	return out, nil
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) > 1 {
			out = append(out, f)
		}
	}
	return out
}
