package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dkozyrev/corpusqa/internal/core/domain"
)

type storeFake struct {
	byQuery map[string][]domain.Chunk
	errs    map[string]error
	calls   int
}

func (f *storeFake) Search(_ context.Context, queryText string, _ []string, _ int) ([]domain.Chunk, error) {
	f.calls++
	if err, ok := f.errs[queryText]; ok {
		return nil, err
	}
	return f.byQuery[queryText], nil
}

type extractorFake struct {
	labels []domain.ExtractedEntity
	err    error
}

func (f *extractorFake) ExtractEntities(context.Context, string) ([]domain.ExtractedEntity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.labels, nil
}

func variantsOf(texts ...string) []domain.QueryVariant {
	out := make([]domain.QueryVariant, 0, len(texts))
	for i, text := range texts {
		origin := domain.VariantGenerated
		if i == 0 {
			origin = domain.VariantOriginal
		}
		out = append(out, domain.QueryVariant{Text: text, Origin: origin})
	}
	return out
}

func TestRetrieveMergesAndDeduplicates(t *testing.T) {
	store := &storeFake{byQuery: map[string][]domain.Chunk{
		"a": {{ID: "1", Text: "one"}, {ID: "2", Text: "two"}},
		"b": {{ID: "2", Text: "two"}, {ID: "3", Text: "three"}},
	}}
	retriever := NewRetriever(store, nil, time.Second)

	result, err := retriever.Retrieve(context.Background(), variantsOf("a", "b"), nil, 5)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}

	if len(result.Chunks) != 3 {
		t.Fatalf("expected 3 deduplicated chunks, got %d", len(result.Chunks))
	}
	ids := map[string]struct{}{}
	for _, chunk := range result.Chunks {
		if _, dup := ids[chunk.ID]; dup {
			t.Fatalf("duplicate chunk id %s", chunk.ID)
		}
		ids[chunk.ID] = struct{}{}
	}
	if got := result.VariantsByChunk["2"]; len(got) != 2 {
		t.Fatalf("chunk 2 should be attributed to both variants, got %v", got)
	}
	if got := result.VariantsByChunk["1"]; len(got) != 1 || got[0] != "a" {
		t.Fatalf("chunk 1 attribution = %v", got)
	}
}

type stallingStoreFake struct {
	chunks []domain.Chunk
}

func (f *stallingStoreFake) Search(ctx context.Context, queryText string, _ []string, _ int) ([]domain.Chunk, error) {
	if queryText == "slow" {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.chunks, nil
}

func TestRetrieveDropsVariantExceedingItsBudget(t *testing.T) {
	store := &stallingStoreFake{chunks: []domain.Chunk{{ID: "1", DocumentID: "d1", Text: "fast hit"}}}
	retriever := NewRetriever(store, nil, 100*time.Millisecond)

	start := time.Now()
	result, err := retriever.Retrieve(context.Background(), variantsOf("fast", "slow"), nil, 5)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("merge waited %v for a variant past its budget", elapsed)
	}

	if len(result.Chunks) != 1 || result.Chunks[0].ID != "1" {
		t.Fatalf("expected only the fast variant's chunk, got %+v", result.Chunks)
	}
	if got := result.VariantsByChunk["1"]; len(got) != 1 || got[0] != "fast" {
		t.Fatalf("chunk 1 attribution = %v", got)
	}
}

func TestRetrieveToleratesPartialFailure(t *testing.T) {
	store := &storeFake{
		byQuery: map[string][]domain.Chunk{"a": {{ID: "1", Text: "one"}}},
		errs:    map[string]error{"b": errors.New("backend down")},
	}
	retriever := NewRetriever(store, nil, time.Second)

	result, err := retriever.Retrieve(context.Background(), variantsOf("a", "b"), nil, 5)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(result.Chunks) != 1 || result.Chunks[0].ID != "1" {
		t.Fatalf("unexpected chunks: %+v", result.Chunks)
	}
}

func TestRetrieveAllVariantsFailed(t *testing.T) {
	store := &storeFake{errs: map[string]error{
		"a": errors.New("backend down"),
		"b": errors.New("backend down"),
	}}
	retriever := NewRetriever(store, nil, time.Second)

	_, err := retriever.Retrieve(context.Background(), variantsOf("a", "b"), nil, 5)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrRetrievalUnavailable) {
		t.Fatalf("expected ErrRetrievalUnavailable, got %v", err)
	}
}

func TestRetrieveDerivesEntityMentions(t *testing.T) {
	store := &storeFake{byQuery: map[string][]domain.Chunk{
		"a": {{ID: "1", Text: "Jane Smith joined Acme Corp."}},
	}}
	extractor := &extractorFake{labels: []domain.ExtractedEntity{
		{Name: "Jane Smith", Type: "PERSON"},
		{Name: "Acme Corp", Type: "ORG"},
	}}
	retriever := NewRetriever(store, extractor, time.Second)

	result, err := retriever.Retrieve(context.Background(), variantsOf("a"), nil, 5)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(result.Entities) != 2 {
		t.Fatalf("expected 2 mentions, got %d", len(result.Entities))
	}
	for _, mention := range result.Entities {
		if mention.ChunkID != "1" {
			t.Fatalf("mention not attributed to source chunk: %+v", mention)
		}
	}
}

func TestRetrieveToleratesExtractorFailure(t *testing.T) {
	store := &storeFake{byQuery: map[string][]domain.Chunk{
		"a": {{ID: "1", Text: "text"}},
	}}
	retriever := NewRetriever(store, &extractorFake{err: errors.New("extractor down")}, time.Second)

	result, err := retriever.Retrieve(context.Background(), variantsOf("a"), nil, 5)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(result.Entities) != 0 {
		t.Fatalf("expected no mentions, got %+v", result.Entities)
	}
}

func TestRetrieveRejectsEmptyVariants(t *testing.T) {
	retriever := NewRetriever(&storeFake{}, nil, time.Second)
	_, err := retriever.Retrieve(context.Background(), nil, nil, 5)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
