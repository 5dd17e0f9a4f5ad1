package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dkozyrev/corpusqa/internal/core/domain"
	"github.com/dkozyrev/corpusqa/internal/core/ports"
)

const maxEntityChunks = 8

type Retriever struct {
	store             ports.KnowledgeStore
	entities          ports.EntityExtractor
	perVariantTimeout time.Duration
}

func NewRetriever(store ports.KnowledgeStore, entities ports.EntityExtractor, perVariantTimeout time.Duration) *Retriever {
	if perVariantTimeout <= 0 {
		perVariantTimeout = 5 * time.Second
	}
	return &Retriever{store: store, entities: entities, perVariantTimeout: perVariantTimeout}
}

// Retrieve fans the variants out to the knowledge store concurrently, merges
// the results first-seen-wins by chunk id, and derives entity mentions from
// the merged chunks. A failing variant is dropped from the merge; only when
// every variant fails does the call report ErrRetrievalUnavailable.
func (r *Retriever) Retrieve(ctx context.Context, variants []domain.QueryVariant, scope []string, topK int) (*domain.RetrievalResult, error) {
	if len(variants) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "retrieve", fmt.Errorf("no query variants"))
	}
	if topK <= 0 {
		topK = 5
	}

	type variantHit struct {
		chunks []domain.Chunk
		err    error
	}
	hits := make([]variantHit, len(variants))

	var group errgroup.Group
	for i, variant := range variants {
		group.Go(func() error {
			variantCtx, cancel := context.WithTimeout(ctx, r.perVariantTimeout)
			defer cancel()
			chunks, err := r.store.Search(variantCtx, variant.Text, scope, topK)
			hits[i] = variantHit{chunks: chunks, err: err}
			return nil
		})
	}
	_ = group.Wait()

	failed := 0
	var lastErr error
	result := &domain.RetrievalResult{VariantsByChunk: make(map[string][]string)}
	seen := make(map[string]struct{})

	// Merge in variant order so ordering stays deterministic across runs.
	for i, hit := range hits {
		if hit.err != nil {
			failed++
			lastErr = hit.err
			slog.Warn("variant_retrieval_failed", "variant", variants[i].Text, "error", hit.err)
			continue
		}
		for _, chunk := range hit.chunks {
			result.VariantsByChunk[chunk.ID] = appendUnique(result.VariantsByChunk[chunk.ID], variants[i].Text)
			if _, dup := seen[chunk.ID]; dup {
				continue
			}
			seen[chunk.ID] = struct{}{}
			result.Chunks = append(result.Chunks, chunk)
		}
	}

	if failed == len(variants) {
		return nil, domain.WrapError(domain.ErrRetrievalUnavailable, "retrieve", lastErr)
	}

	result.Entities = r.extractMentions(ctx, result.Chunks)
	return result, nil
}

// extractMentions labels entities per chunk, concurrently, tolerating
// extractor failures: a chunk that cannot be labeled contributes no mentions.
func (r *Retriever) extractMentions(ctx context.Context, chunks []domain.Chunk) []domain.EntityMention {
	if r.entities == nil || len(chunks) == 0 {
		return nil
	}
	limit := len(chunks)
	if limit > maxEntityChunks {
		limit = maxEntityChunks
	}

	perChunk := make([][]domain.EntityMention, limit)
	var group errgroup.Group
	for i := range limit {
		chunk := chunks[i]
		group.Go(func() error {
			labels, err := r.entities.ExtractEntities(ctx, chunk.Text)
			if err != nil {
				slog.Warn("entity_extraction_failed", "chunk_id", chunk.ID, "error", err)
				return nil
			}
			mentions := make([]domain.EntityMention, 0, len(labels))
			for _, label := range labels {
				mentions = append(mentions, domain.EntityMention{
					Name:    label.Name,
					Type:    label.Type,
					ChunkID: chunk.ID,
				})
			}
			perChunk[i] = mentions
			return nil
		})
	}
	_ = group.Wait()

	out := make([]domain.EntityMention, 0)
	dedup := make(map[string]struct{})
	for _, mentions := range perChunk {
		for _, mention := range mentions {
			key := normalizeVariant(mention.Name) + "|" + normalizeVariant(mention.Type)
			if _, dup := dedup[key]; dup {
				continue
			}
			dedup[key] = struct{}{}
			out = append(out, mention)
		}
	}
	return out
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
