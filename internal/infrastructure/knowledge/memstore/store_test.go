package memstore

import (
	"context"
	"testing"

	"github.com/dkozyrev/corpusqa/internal/core/domain"
)

func seededStore() *Store {
	s := New()
	s.Add(
		domain.Chunk{ID: "c1", DocumentID: "doc-a", Text: "The merger between Acme and Globex closed in March.", Location: domain.PageRange(5, 6)},
		domain.Chunk{ID: "c2", DocumentID: "doc-a", Text: "Quarterly revenue grew by twelve percent."},
		domain.Chunk{ID: "c3", DocumentID: "doc-b", Text: "The merger was approved by regulators after review."},
	)
	return s
}

func TestSearchRanksByTokenHits(t *testing.T) {
	s := seededStore()
	chunks, err := s.Search(context.Background(), "merger Acme", nil, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0].ID != "c1" {
		t.Fatalf("best match = %s, want c1 (two token hits)", chunks[0].ID)
	}
	if chunks[1].ID != "c3" {
		t.Fatalf("second match = %s, want c3", chunks[1].ID)
	}
}

func TestSearchScopeFiltersDocuments(t *testing.T) {
	s := seededStore()
	chunks, err := s.Search(context.Background(), "merger", []string{"doc-b"}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(chunks) != 1 || chunks[0].ID != "c3" {
		t.Fatalf("scope filter failed: %v", chunks)
	}
}

func TestSearchHonorsTopKAndEmptyQuery(t *testing.T) {
	s := seededStore()
	chunks, err := s.Search(context.Background(), "merger approved regulators", nil, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("topK not honored: got %d", len(chunks))
	}

	chunks, err = s.Search(context.Background(), "   ", nil, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("empty query should match nothing, got %v", chunks)
	}
}
