package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dkozyrev/corpusqa/internal/core/domain"
	"github.com/dkozyrev/corpusqa/internal/core/ports"
)

type PipelineConfig struct {
	MaxAttempts     int
	TopK            int
	TopKStep        int
	MaxContextChars int
}

func (c PipelineConfig) normalize() PipelineConfig {
	out := c
	if out.MaxAttempts <= 0 {
		out.MaxAttempts = 3
	}
	if out.TopK <= 0 {
		out.TopK = 5
	}
	if out.TopKStep <= 0 {
		out.TopKStep = 3
	}
	if out.MaxContextChars <= 0 {
		out.MaxContextChars = 6000
	}
	return out
}

// Pipeline is the feedback controller: it routes a question, then runs
// retrieve→assemble→generate→evaluate cycles until an attempt is sufficient
// or the attempt budget is spent, and returns the best attempt produced.
type Pipeline struct {
	expander  *Expander
	retriever *Retriever
	generator *Generator
	evaluator *Evaluator
	registry  ports.CorpusRegistry
	events    ports.AnswerEventPublisher
	cfg       PipelineConfig
}

func NewPipeline(
	expander *Expander,
	retriever *Retriever,
	generator *Generator,
	evaluator *Evaluator,
	registry ports.CorpusRegistry,
	events ports.AnswerEventPublisher,
	cfg PipelineConfig,
) *Pipeline {
	return &Pipeline{
		expander:  expander,
		retriever: retriever,
		generator: generator,
		evaluator: evaluator,
		registry:  registry,
		events:    events,
		cfg:       cfg.normalize(),
	}
}

func (p *Pipeline) Ask(ctx context.Context, req domain.AskRequest) (*domain.PipelineResult, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ask", fmt.Errorf("question is required"))
	}

	started := time.Now()
	query := domain.Query{Text: question, DocumentScope: req.DocumentScope, History: req.History}

	stats, err := p.registry.Stats(ctx)
	if err != nil {
		// Unknown corpus size must not trigger the empty-corpus override.
		slog.Warn("corpus_stats_unavailable", "error", err)
		stats = domain.CorpusStats{Documents: -1, Entities: -1}
	}

	category, strategy := Classify(question, stats)

	var result *domain.PipelineResult
	switch strategy {
	case domain.RouteDirectReply, domain.RouteClarify:
		result = p.directResult(category, strategy, stats)
	default:
		result, err = p.runAttempts(ctx, query, category, strategy, stats)
		if err != nil {
			return nil, err
		}
	}

	p.publishEvent(ctx, result, time.Since(started))
	return result, nil
}

// runAttempts is the Retrieving→Generating→Evaluating loop. Attempts are
// collected immutably and the final selection is a single fold for the
// highest overall score, not a running best.
func (p *Pipeline) runAttempts(ctx context.Context, query domain.Query, category domain.QueryCategory, strategy domain.RoutingStrategy, stats domain.CorpusStats) (*domain.PipelineResult, error) {
	variants := p.expander.Expand(ctx, query, category, false)
	topK := p.cfg.TopK
	attempts := make([]domain.Attempt, 0, p.cfg.MaxAttempts)

	for i := 1; i <= p.cfg.MaxAttempts; i++ {
		if ctx.Err() != nil {
			break
		}

		attempt := p.runOneAttempt(ctx, i, query, variants, topK, category, strategy)
		attempts = append(attempts, attempt)
		if attempt.Score.Sufficient {
			break
		}

		if i < p.cfg.MaxAttempts {
			topK += p.cfg.TopKStep
			variants = p.expander.Expand(ctx, query, category, true)
		}
	}

	if len(attempts) == 0 {
		return nil, domain.WrapError(domain.ErrCancelled, "ask", ctx.Err())
	}

	best := attempts[0]
	for _, attempt := range attempts[1:] {
		if attempt.Score.Overall > best.Score.Overall {
			best = attempt
		}
	}

	answer := best.Answer
	if !best.Score.Sufficient {
		answer.Text += limitationNote(len(attempts), stats, best.Entities)
	}

	return &domain.PipelineResult{
		Answer:          answer,
		Score:           best.Score,
		Entities:        best.Entities,
		Category:        category,
		Strategy:        strategy,
		Attempts:        len(attempts),
		RetrievedChunks: best.RetrievedChunks,
	}, nil
}

func (p *Pipeline) runOneAttempt(ctx context.Context, index int, query domain.Query, variants []domain.QueryVariant, topK int, category domain.QueryCategory, strategy domain.RoutingStrategy) domain.Attempt {
	result, err := p.retriever.Retrieve(ctx, variants, query.DocumentScope, topK)
	if err != nil && domain.IsKind(err, domain.ErrRetrievalUnavailable) && ctx.Err() == nil {
		// One backend-level retry with a smaller ask before giving up on
		// this attempt.
		retryTopK := topK / 2
		if retryTopK < 1 {
			retryTopK = 1
		}
		result, err = p.retriever.Retrieve(ctx, variants, query.DocumentScope, retryTopK)
	}
	if err != nil {
		slog.Warn("attempt_retrieval_unavailable", "attempt", index, "error", err)
		return domain.Attempt{
			Index:    index,
			Variants: variants,
			TopK:     topK,
			Answer: domain.Answer{
				Text:     "The knowledge store is currently unreachable, so the corpus could not be searched for this question.",
				Category: category,
				Strategy: strategy,
				Degraded: true,
			},
			Score: domain.EvaluationScore{},
		}
	}

	assembled := Assemble(result, category, p.cfg.MaxContextChars)
	answer := p.generator.Generate(ctx, query, assembled, category, strategy)
	score := p.evaluator.Evaluate(ctx, query.Text, answer, assembled.Included)

	return domain.Attempt{
		Index:           index,
		Variants:        variants,
		TopK:            topK,
		Answer:          answer,
		Score:           score,
		Entities:        result.Entities,
		RetrievedChunks: len(result.Chunks),
	}
}

func (p *Pipeline) directResult(category domain.QueryCategory, strategy domain.RoutingStrategy, stats domain.CorpusStats) *domain.PipelineResult {
	text := directReplyText(category, strategy, stats)
	return &domain.PipelineResult{
		Answer: domain.Answer{
			Text:     text,
			Category: category,
			Strategy: strategy,
		},
		Score: domain.EvaluationScore{
			Quality: 1, Completeness: 1, Relevance: 1, Overall: 1, Sufficient: true,
		},
		Category: category,
		Strategy: strategy,
		Attempts: 0,
	}
}

func directReplyText(category domain.QueryCategory, strategy domain.RoutingStrategy, stats domain.CorpusStats) string {
	corpusLine := ""
	if stats.Documents >= 0 {
		corpusLine = fmt.Sprintf("The corpus currently holds %d documents with %d recognized entities.", stats.Documents, stats.Entities)
	}

	if strategy == domain.RouteClarify {
		text := "Your question is quite open-ended. Could you rephrase it with a bit more detail, for example naming the topic, person, or document you mean?"
		if corpusLine != "" {
			text += " " + corpusLine
		}
		return text
	}

	switch category {
	case domain.CategoryGreeting:
		if corpusLine != "" {
			return "Hello! " + corpusLine + " Ask me anything about them."
		}
		return "Hello! Ask me anything about your indexed documents."
	case domain.CategoryIdentity:
		text := "I am a question answering assistant for your indexed document corpus. I search it, cite the passages I used, and tell you when the material is not sufficient."
		if corpusLine != "" {
			text += " " + corpusLine
		}
		return text
	case domain.CategoryAcknowledgment:
		return "You're welcome. Ask whenever you have another question about the corpus."
	case domain.CategoryFarewell:
		return "Goodbye! Come back when you have more questions about your documents."
	case domain.CategoryMeta:
		text := "You can ask factual, analytical, comparison, summary, or entity questions about the indexed documents; I answer from their contents with citations."
		if corpusLine != "" {
			text += " " + corpusLine
		}
		return text
	default:
		// Content question against an empty corpus.
		return "There are no documents in the corpus yet, so there is nothing to search. Ingest documents first, then ask again."
	}
}

func limitationNote(attempts int, stats domain.CorpusStats, entities []domain.EntityMention) string {
	note := fmt.Sprintf("\n\nNote: no sufficiently grounded answer was found after %d attempt(s).", attempts)
	if stats.Documents >= 0 {
		note += fmt.Sprintf(" The corpus holds %d documents.", stats.Documents)
	}
	if len(entities) > 0 {
		names := make([]string, 0, 5)
		for _, entity := range entities {
			names = appendUnique(names, entity.Name)
			if len(names) == 5 {
				break
			}
		}
		note += " Nearby entities that did match: " + strings.Join(names, ", ") + "."
	}
	return note
}

func (p *Pipeline) publishEvent(ctx context.Context, result *domain.PipelineResult, elapsed time.Duration) {
	if p.events == nil || result == nil {
		return
	}

	eventCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()

	event := domain.AnswerEvent{
		RequestID:  uuid.NewString(),
		Category:   string(result.Category),
		Strategy:   string(result.Strategy),
		Attempts:   result.Attempts,
		Sufficient: result.Score.Sufficient,
		DurationMS: float64(elapsed.Microseconds()) / 1000.0,
	}
	if err := p.events.PublishAnswerProduced(eventCtx, event); err != nil {
		slog.Warn("answer_event_publish_failed", "error", err)
	}
}
