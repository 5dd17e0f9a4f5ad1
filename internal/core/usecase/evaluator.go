package usecase

import (
	"context"
	"log/slog"

	"github.com/dkozyrev/corpusqa/internal/core/domain"
	"github.com/dkozyrev/corpusqa/internal/core/ports"
)

type Evaluator struct {
	scorer    ports.AnswerScorer
	threshold float64
}

func NewEvaluator(scorer ports.AnswerScorer, threshold float64) *Evaluator {
	if threshold <= 0 || threshold > 1 {
		threshold = 0.7
	}
	return &Evaluator{scorer: scorer, threshold: threshold}
}

// Evaluate scores an answer against the question and the chunks it was built
// from. The aggregate is the clamped arithmetic mean of the three facets.
// Degraded answers are never sufficient; a failing scorer is treated
// conservatively as a zero score rather than an error.
func (e *Evaluator) Evaluate(ctx context.Context, question string, answer domain.Answer, chunks []domain.Chunk) domain.EvaluationScore {
	parts, err := e.scorer.Score(ctx, question, answer.Text, chunks)
	if err != nil {
		slog.Warn("evaluation_degraded", "error",
			domain.WrapError(domain.ErrEvaluationUnavailable, "evaluate", err))
		return domain.EvaluationScore{}
	}

	score := domain.EvaluationScore{
		Quality:      clamp01(parts.Quality),
		Completeness: clamp01(parts.Completeness),
		Relevance:    clamp01(parts.Relevance),
	}
	score.Overall = clamp01((score.Quality + score.Completeness + score.Relevance) / 3)
	score.Sufficient = score.Overall >= e.threshold && !answer.Degraded
	return score
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
