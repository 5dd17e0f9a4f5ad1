package ports

import (
	"context"

	"github.com/dkozyrev/corpusqa/internal/core/domain"
)

// KnowledgeStore serves relevance-ranked chunk retrieval. Matching internals
// are the store's concern; results arrive in decreasing relevance order.
type KnowledgeStore interface {
	Search(ctx context.Context, queryText string, scope []string, topK int) ([]domain.Chunk, error)
}

// InferenceClient is the language-model collaborator. Both calls must honor
// the caller's context deadline.
type InferenceClient interface {
	Paraphrase(ctx context.Context, query string, history []domain.Turn, count int) ([]string, error)
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// EntityExtractor labels named entities in chunk text. Pure label producer.
type EntityExtractor interface {
	ExtractEntities(ctx context.Context, text string) ([]domain.ExtractedEntity, error)
}

// CorpusRegistry reads corpus-level metadata from the document registry.
type CorpusRegistry interface {
	Stats(ctx context.Context) (domain.CorpusStats, error)
	ListDocuments(ctx context.Context) ([]domain.DocumentInfo, error)
}

// AnswerScorer is the pluggable scoring capability behind the evaluator.
type AnswerScorer interface {
	Score(ctx context.Context, question, answer string, chunks []domain.Chunk) (domain.ScoreParts, error)
}

// AnswerEventPublisher emits audit events for completed asks.
type AnswerEventPublisher interface {
	PublishAnswerProduced(ctx context.Context, event domain.AnswerEvent) error
}
