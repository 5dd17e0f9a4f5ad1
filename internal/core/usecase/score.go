package usecase

import (
	"context"

	"github.com/dkozyrev/corpusqa/internal/core/domain"
)

// HeuristicScorer is the model-free scoring capability: lexical overlap
// between question, answer, and evidence. Cheap, deterministic, and good
// enough to drive the retry loop when no scoring model is configured.
type HeuristicScorer struct{}

func NewHeuristicScorer() HeuristicScorer { return HeuristicScorer{} }

func (HeuristicScorer) Score(_ context.Context, question, answer string, chunks []domain.Chunk) (domain.ScoreParts, error) {
	answerTokens := tokenSet(answer)
	if len(answerTokens) == 0 {
		return domain.ScoreParts{}, nil
	}

	evidenceTokens := make(map[string]struct{})
	for _, chunk := range chunks {
		for token := range tokenSet(chunk.Text) {
			evidenceTokens[token] = struct{}{}
		}
	}

	// Grounding: how much of the answer is present in the evidence.
	relevance := tokenOverlap(answerTokens, evidenceTokens)
	// Coverage: how much of the question the answer addresses.
	completeness := tokenOverlap(tokenSet(question), answerTokens)

	lengthScore := float64(len(answerTokens)) / 30.0
	if lengthScore > 1 {
		lengthScore = 1
	}
	quality := 0.5*lengthScore + 0.5*relevance

	return domain.ScoreParts{
		Quality:      quality,
		Completeness: completeness,
		Relevance:    relevance,
	}, nil
}
