package ports

import (
	"context"

	"github.com/dkozyrev/corpusqa/internal/core/domain"
)

// AnswerPipeline is the inbound contract for question answering.
type AnswerPipeline interface {
	Ask(ctx context.Context, req domain.AskRequest) (*domain.PipelineResult, error)
}
