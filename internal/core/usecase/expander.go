package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dkozyrev/corpusqa/internal/core/domain"
	"github.com/dkozyrev/corpusqa/internal/core/ports"
)

// Queries that open with a direct interrogative are already narrow enough
// that paraphrasing rarely changes recall; skipping them saves a model call.
var narrowPrefixes = []string{
	"what is", "what are", "how many", "how much",
	"list", "define", "who is", "who was", "when did", "when was",
}

type Expander struct {
	llm         ports.InferenceClient
	maxVariants int
	timeout     time.Duration
}

func NewExpander(llm ports.InferenceClient, maxVariants int, timeout time.Duration) *Expander {
	if maxVariants <= 0 {
		maxVariants = 3
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Expander{llm: llm, maxVariants: maxVariants, timeout: timeout}
}

// Expand produces retrieval variants for a query. The original phrasing is
// always first; paraphrases come from the inference collaborator and use the
// conversation history to resolve references like "it" or "tell me more".
// Any expansion failure degrades to the original alone.
func (e *Expander) Expand(ctx context.Context, query domain.Query, category domain.QueryCategory, widen bool) []domain.QueryVariant {
	original := domain.QueryVariant{Text: query.Text, Origin: domain.VariantOriginal}
	variants := []domain.QueryVariant{original}

	if !widen && e.skipExpansion(query.Text) {
		return variants
	}

	want := e.maxVariants - 1
	if want <= 0 {
		return variants
	}

	expandCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	paraphrases, err := e.llm.Paraphrase(expandCtx, query.Text, query.History, want)
	if err != nil {
		slog.Warn("query_expansion_degraded",
			"error", domain.WrapError(domain.ErrExpansionUnavailable, "expand", err))
		return variants
	}

	seen := map[string]struct{}{normalizeVariant(query.Text): {}}
	for _, text := range paraphrases {
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		key := normalizeVariant(text)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		variants = append(variants, domain.QueryVariant{Text: text, Origin: domain.VariantGenerated})
		if len(variants) >= e.maxVariants {
			break
		}
	}
	return variants
}

func (e *Expander) skipExpansion(text string) bool {
	normalized := strings.Join(tokenizeLower(text), " ")
	for _, prefix := range narrowPrefixes {
		if phrasePrefix(normalized, prefix) {
			return true
		}
	}
	return false
}

func normalizeVariant(text string) string {
	return strings.Join(tokenizeLower(text), " ")
}
